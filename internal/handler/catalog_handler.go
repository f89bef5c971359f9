package handler

import (
	"net/http"
	"strconv"
	"strings"

	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /toys, /types, /reviews/top の公開API
type CatalogHandler struct {
	catalog *usecase.CatalogUsecase
	reviews *usecase.ReviewUsecase
}

// DI
func NewCatalogHandler(catalog *usecase.CatalogUsecase, reviews *usecase.ReviewUsecase) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, reviews: reviews}
}

const defaultToySort = "name"

type TopRatedToy struct {
	usecase.ToyWithRating
}

func (h *CatalogHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/toys", h.list)
	e.GET("/toys/:id", h.detail)
	e.GET("/types", h.types)
	e.GET("/reviews/top", h.topRated)
}

func (h *CatalogHandler) list(c echo.Context) error {
	f := usecase.ToyFilter{
		Query:       c.QueryParam("q"),
		TargetGroup: c.QueryParam("targetGroup"),
		SortBy:      c.QueryParam("sort"),
		Desc:        strings.EqualFold(c.QueryParam("dir"), "desc"),
	}
	//指定なしは名前の昇順
	if f.SortBy == "" {
		f.SortBy = defaultToySort
	}

	// type=1,2 or type=1&type=2
	for _, raw := range splitMulti(c.QueryParams()["type"]) {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid type"})
		}
		f.TypeIDs = append(f.TypeIDs, id)
	}
	f.AgeGroups = splitMulti(c.QueryParams()["ageGroup"])

	if v := c.QueryParam("minPrice"); v != "" {
		x, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid minPrice"})
		}
		f.MinPrice = &x
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		x, err := decimal.NewFromString(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid maxPrice"})
		}
		f.MaxPrice = &x
	}

	out, err := h.catalog.Search(c.Request().Context(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) detail(c echo.Context) error {
	id, ok := parseToyID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	t, err := h.catalog.Toy(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *CatalogHandler) types(c echo.Context) error {
	out, err := h.catalog.Types(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CatalogHandler) topRated(c echo.Context) error {
	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	ctx := c.Request().Context()
	ratings := h.reviews.TopRated(ctx, limit)
	if len(ratings) == 0 {
		return c.JSON(http.StatusOK, []TopRatedToy{})
	}

	ids := make([]int64, len(ratings))
	for i, r := range ratings {
		ids[i] = r.ToyID
	}
	toys, err := h.catalog.ToysByIDs(ctx, ids)
	if err != nil {
		return writeError(c, err)
	}

	//評価順を保つ
	out := make([]TopRatedToy, 0, len(ratings))
	for _, r := range ratings {
		for _, t := range toys {
			if t.ToyID == r.ToyID {
				out = append(out, TopRatedToy{usecase.ToyWithRating{Toy: t, AvgRating: r.AvgRating, ReviewCount: r.ReviewCount}})
				break
			}
		}
	}
	return c.JSON(http.StatusOK, out)
}

func splitMulti(values []string) []string {
	out := make([]string, 0)
	for _, v := range values {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
