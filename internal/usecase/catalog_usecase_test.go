package usecase_test

import (
	"context"
	"testing"

	"toyshop/internal/domain/model"
	"toyshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type CatalogClientMock struct{ mock.Mock }

func (m *CatalogClientMock) ListToys(ctx context.Context) ([]model.Toy, error) {
	args := m.Called(ctx)
	toys, _ := args.Get(0).([]model.Toy)
	return toys, args.Error(1)
}

func (m *CatalogClientMock) GetToy(ctx context.Context, toyID int64) (model.Toy, error) {
	args := m.Called(ctx, toyID)
	t, _ := args.Get(0).(model.Toy)
	return t, args.Error(1)
}

func (m *CatalogClientMock) ToysByIDs(ctx context.Context, ids []int64) ([]model.Toy, error) {
	args := m.Called(ctx, ids)
	toys, _ := args.Get(0).([]model.Toy)
	return toys, args.Error(1)
}

func (m *CatalogClientMock) ListTypes(ctx context.Context) ([]model.ToyType, error) {
	args := m.Called(ctx)
	types, _ := args.Get(0).([]model.ToyType)
	return types, args.Error(1)
}

type fixedRatings map[int64]model.ToyRating

func (f fixedRatings) Rating(_ context.Context, toyID int64) model.ToyRating {
	r := f[toyID]
	r.ToyID = toyID
	return r
}

func catalogToys() []model.Toy {
	puzzle := &model.ToyType{TypeID: 1, Name: "Slagalica"}
	car := &model.ToyType{TypeID: 2, Name: "Autic"}
	small := &model.AgeGroup{AgeGroupID: 1, Name: "3-5"}
	big := &model.AgeGroup{AgeGroupID: 2, Name: "6-9"}

	return []model.Toy{
		{ToyID: 1, Name: "Zoo Puzzle", TargetGroup: "devojcica", Price: decimal.RequireFromString("1200"), Type: puzzle, AgeGroup: small, ProductionDate: "2023-01-10"},
		{ToyID: 2, Name: "Race Car", TargetGroup: "decak", Price: decimal.RequireFromString("2500"), Type: car, AgeGroup: big, ProductionDate: "2022-05-01"},
		{ToyID: 3, Name: "Puzzle Map", TargetGroup: "svi", Price: decimal.RequireFromString("800"), Type: puzzle, AgeGroup: big, ProductionDate: "2024-02-02"},
		{ToyID: 4, Name: "Mystery Box", TargetGroup: "decak", Price: decimal.RequireFromString("990")},
	}
}

func ids(toys []model.Toy) []int64 {
	out := make([]int64, 0, len(toys))
	for _, t := range toys {
		out = append(out, t.ToyID)
	}
	return out
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestFilterToys(t *testing.T) {
	tests := []struct {
		name   string
		filter usecase.ToyFilter
		want   []int64
	}{
		{"no filter keeps order", usecase.ToyFilter{}, []int64{1, 2, 3, 4}},
		{"name search ignores case", usecase.ToyFilter{Query: "PUZZLE"}, []int64{1, 3}},
		{"type ids", usecase.ToyFilter{TypeIDs: []int64{2}}, []int64{2}},
		{"target group all", usecase.ToyFilter{TargetGroup: "svi"}, []int64{1, 2, 3, 4}},
		{"target group", usecase.ToyFilter{TargetGroup: "decak"}, []int64{2, 4}},
		{"age group names", usecase.ToyFilter{AgeGroups: []string{"6-9"}}, []int64{2, 3}},
		{"price range inclusive", usecase.ToyFilter{MinPrice: price("800"), MaxPrice: price("1200")}, []int64{1, 3, 4}},
		{"sort by price asc", usecase.ToyFilter{SortBy: "price"}, []int64{3, 4, 1, 2}},
		{"sort by price desc", usecase.ToyFilter{SortBy: "price", Desc: true}, []int64{2, 1, 4, 3}},
		{"sort by nested type name", usecase.ToyFilter{SortBy: "type.name"}, []int64{4, 2, 1, 3}},
		{"sort by production date desc", usecase.ToyFilter{SortBy: "productionDate", Desc: true}, []int64{3, 1, 2, 4}},
		{"unknown sort field keeps order", usecase.ToyFilter{SortBy: "color"}, []int64{1, 2, 3, 4}},
		{"combined", usecase.ToyFilter{Query: "puzzle", AgeGroups: []string{"6-9"}, SortBy: "name"}, []int64{3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(usecase.FilterToys(catalogToys(), tt.filter)))
		})
	}
}

func TestCatalog_SearchAddsRatings(t *testing.T) {
	client := new(CatalogClientMock)
	client.On("ListToys", mock.Anything).Return(catalogToys(), nil)
	uc := usecase.NewCatalogUsecase(client, fixedRatings{3: {AvgRating: 4.5, ReviewCount: 2}})

	out, err := uc.Search(context.Background(), usecase.ToyFilter{Query: "map"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 4.5, out[0].AvgRating)
	assert.Equal(t, 2, out[0].ReviewCount)
	client.AssertExpectations(t)
}

func TestCatalog_ErrorsPassThrough(t *testing.T) {
	client := new(CatalogClientMock)
	client.On("ListToys", mock.Anything).Return(nil, usecase.ErrCatalogUnavailable)
	client.On("GetToy", mock.Anything, int64(9)).Return(nil, errBoom)
	uc := usecase.NewCatalogUsecase(client, fixedRatings{})

	_, err := uc.Search(context.Background(), usecase.ToyFilter{})
	assert.ErrorIs(t, err, usecase.ErrCatalogUnavailable)
	_, err = uc.Toy(context.Background(), 9)
	assert.ErrorIs(t, err, errBoom)
}

func TestCatalog_ToysByIDsSkipsEmpty(t *testing.T) {
	client := new(CatalogClientMock)
	uc := usecase.NewCatalogUsecase(client, fixedRatings{})

	out, err := uc.ToysByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, out)
	client.AssertNotCalled(t, "ToysByIDs", mock.Anything, mock.Anything)
}
