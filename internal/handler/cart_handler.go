package handler

import (
	"net/http"

	"toyshop/internal/domain/model"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /cartのHTTP
type CartHandler struct {
	shop    *usecase.Shop
	catalog *usecase.CatalogUsecase
}

// DI
func NewCartHandler(shop *usecase.Shop, catalog *usecase.CatalogUsecase) *CartHandler {
	return &CartHandler{shop: shop, catalog: catalog}
}

type AddCartRequest struct {
	ToyID int64 `json:"toyId"`
}

type UpdateCartItemRequest struct {
	Quantity *int64 `json:"quantity"`
}

type CartResponse struct {
	Items      []model.LineItem `json:"items"`
	TotalPrice decimal.Decimal  `json:"totalPrice"`
	ItemCount  int64            `json:"itemCount"`
}

// /cart, /cart/{lineId} を登録
func (h *CartHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/cart")

	g.GET("", h.getCart)
	g.POST("", h.addToCart)
	g.DELETE("", h.clear)
	g.PATCH("/:lineId", h.patchItem)
	g.DELETE("/:lineId", h.deleteItem)
}

func (h *CartHandler) cart() CartResponse {
	return CartResponse{
		Items:      h.shop.Items(),
		TotalPrice: h.shop.TotalPrice(),
		ItemCount:  h.shop.ItemCount(),
	}
}

func (h *CartHandler) getCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHandler) addToCart(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil || req.ToyID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//価格はカタログの現在値をスナップショット
	toy, err := h.catalog.Toy(c.Request().Context(), req.ToyID)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.shop.AddItem(c.Request().Context(), toy.Toy); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHandler) patchItem(c echo.Context) error {
	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	//1未満は削除
	if err := h.shop.UpdateQuantity(c.Request().Context(), c.Param("lineId"), *req.Quantity); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	if err := h.shop.RemoveItem(c.Request().Context(), c.Param("lineId")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.cart())
}

func (h *CartHandler) clear(c echo.Context) error {
	if err := h.shop.Clear(c.Request().Context()); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, h.cart())
}
