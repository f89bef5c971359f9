package handler

import (
	"net/http"

	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type FavoriteHandler struct {
	favorites *usecase.FavoriteUsecase
	catalog   *usecase.CatalogUsecase
}

func NewFavoriteHandler(favorites *usecase.FavoriteUsecase, catalog *usecase.CatalogUsecase) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, catalog: catalog}
}

type ToggleFavoriteResponse struct {
	ToyID    int64 `json:"toyId"`
	Favorite bool  `json:"favorite"`
}

func (h *FavoriteHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/favorites", h.list)
	e.POST("/favorites/:toyId/toggle", h.toggle)
}

func (h *FavoriteHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, h.favorites.List())
}

func (h *FavoriteHandler) toggle(c echo.Context) error {
	toyID, ok := parseToyID(c, "toyId")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	ctx := c.Request().Context()

	//外すときはカタログを見に行かない
	if h.favorites.IsFavorite(toyID) {
		if err := h.favorites.Remove(ctx, toyID); err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, ToggleFavoriteResponse{ToyID: toyID, Favorite: false})
	}

	t, err := h.catalog.Toy(ctx, toyID)
	if err != nil {
		return writeError(c, err)
	}
	fav, err := h.favorites.Toggle(ctx, t.Toy)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ToggleFavoriteResponse{ToyID: toyID, Favorite: fav})
}
