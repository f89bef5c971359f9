package usecase

import (
	"context"
	"slices"
	"strings"

	"toyshop/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 対象グループの「全部」
const TargetGroupAll = "svi"

// 外部のおもちゃAPI
type CatalogClient interface {
	ListToys(ctx context.Context) ([]model.Toy, error)
	GetToy(ctx context.Context, toyID int64) (model.Toy, error)
	ToysByIDs(ctx context.Context, ids []int64) ([]model.Toy, error)
	ListTypes(ctx context.Context) ([]model.ToyType, error)
}

// 評価の集計
type RatingReader interface {
	Rating(ctx context.Context, toyID int64) model.ToyRating
}

// 一覧の絞り込み条件。ゼロ値は「条件なし」。
type ToyFilter struct {
	Query       string
	TypeIDs     []int64
	TargetGroup string
	AgeGroups   []string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	//"price", "type.name" のようなドット区切り
	SortBy string
	Desc   bool
}

// 一覧・詳細で返すおもちゃ＋評価
type ToyWithRating struct {
	model.Toy
	AvgRating   float64 `json:"avgRating"`
	ReviewCount int     `json:"reviewCount"`
}

type CatalogUsecase struct {
	client  CatalogClient
	ratings RatingReader
}

// DI
func NewCatalogUsecase(client CatalogClient, ratings RatingReader) *CatalogUsecase {
	return &CatalogUsecase{client: client, ratings: ratings}
}

// 絞り込み＋並び替えした一覧
func (u *CatalogUsecase) Search(ctx context.Context, f ToyFilter) ([]ToyWithRating, error) {
	toys, err := u.client.ListToys(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterToys(toys, f)

	out := make([]ToyWithRating, 0, len(filtered))
	for _, t := range filtered {
		out = append(out, u.withRating(ctx, t))
	}
	return out, nil
}

func (u *CatalogUsecase) Toy(ctx context.Context, toyID int64) (ToyWithRating, error) {
	t, err := u.client.GetToy(ctx, toyID)
	if err != nil {
		return ToyWithRating{}, err
	}
	return u.withRating(ctx, t), nil
}

// お気に入り・トップ評価の表示用
func (u *CatalogUsecase) ToysByIDs(ctx context.Context, ids []int64) ([]model.Toy, error) {
	if len(ids) == 0 {
		return []model.Toy{}, nil
	}
	return u.client.ToysByIDs(ctx, ids)
}

func (u *CatalogUsecase) Types(ctx context.Context) ([]model.ToyType, error) {
	return u.client.ListTypes(ctx)
}

func (u *CatalogUsecase) withRating(ctx context.Context, t model.Toy) ToyWithRating {
	r := u.ratings.Rating(ctx, t.ToyID)
	return ToyWithRating{Toy: t, AvgRating: r.AvgRating, ReviewCount: r.ReviewCount}
}

// FilterToys は条件に合うおもちゃを返す（元のスライスは変更しない）。
// SortByが未知のフィールドなら並び順はそのまま。
func FilterToys(toys []model.Toy, f ToyFilter) []model.Toy {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]model.Toy, 0, len(toys))
	for _, t := range toys {
		if len(f.TypeIDs) > 0 && (t.Type == nil || !slices.Contains(f.TypeIDs, t.Type.TypeID)) {
			continue
		}
		if f.TargetGroup != "" && f.TargetGroup != TargetGroupAll && t.TargetGroup != f.TargetGroup {
			continue
		}
		if len(f.AgeGroups) > 0 && (t.AgeGroup == nil || !slices.Contains(f.AgeGroups, t.AgeGroup.Name)) {
			continue
		}
		if f.MinPrice != nil && t.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && t.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(t.Name), query) {
			continue
		}
		out = append(out, t)
	}

	if f.SortBy == "" || !sortableField(f.SortBy) {
		return out
	}
	slices.SortStableFunc(out, func(a, b model.Toy) int {
		c := compareToyField(a, b, f.SortBy)
		if f.Desc {
			return -c
		}
		return c
	})
	return out
}

func sortableField(path string) bool {
	switch path {
	case "toyId", "name", "permalink", "targetGroup", "productionDate", "price", "type.name", "ageGroup.name":
		return true
	}
	return false
}

// nilのtype/ageGroupは空文字扱い
func compareToyField(a, b model.Toy, path string) int {
	switch path {
	case "toyId":
		return compareInt64(a.ToyID, b.ToyID)
	case "price":
		return a.Price.Cmp(b.Price)
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "permalink":
		return strings.Compare(a.Permalink, b.Permalink)
	case "targetGroup":
		return strings.Compare(a.TargetGroup, b.TargetGroup)
	case "productionDate":
		return strings.Compare(a.ProductionDate, b.ProductionDate)
	case "type.name":
		return strings.Compare(typeName(a), typeName(b))
	case "ageGroup.name":
		return strings.Compare(ageGroupName(a), ageGroupName(b))
	}
	return 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func typeName(t model.Toy) string {
	if t.Type == nil {
		return ""
	}
	return t.Type.Name
}

func ageGroupName(t model.Toy) string {
	if t.AgeGroup == nil {
		return ""
	}
	return t.AgeGroup.Name
}
