package handler

import (
	"net/http"

	"toyshop/internal/domain/model"
	"toyshop/internal/middleware"
	repo "toyshop/internal/repository"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	shop    *usecase.Shop
	reviews *usecase.ReviewUsecase
}

func NewOrderHandler(shop *usecase.Shop, reviews *usecase.ReviewUsecase) *OrderHandler {
	return &OrderHandler{shop: shop, reviews: reviews}
}

type OrderItemStatusRequest struct {
	Status model.OrderStatus `json:"status"`
}

type ToyOrderStatusResponse struct {
	ToyID     int64                `json:"toyId"`
	Status    model.ToyOrderStatus `json:"status"`
	Received  bool                 `json:"received"`
	CanReview bool                 `json:"canReview"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, jwtSecret string, users usecase.UserFinder) {
	auth := []echo.MiddlewareFunc{middleware.AuthJWT(jwtSecret), middleware.AccountGuard(users)}

	g := e.Group("/orders", auth...)
	g.GET("", h.list)
	g.GET("/:id", h.detail)
	g.PATCH("/:id/items/:lineId", h.updateStatus)
	g.POST("/:id/items/:lineId/cancel", h.cancel)
	g.POST("/:id/items/:lineId/arrived", h.arrived)
	g.DELETE("/:id/items/:lineId", h.deleteItem)

	e.GET("/toys/:id/order-status", h.toyStatus, auth...)
}

func (h *OrderHandler) list(c echo.Context) error {
	return c.JSON(http.StatusOK, h.shop.Orders(c.Request().Context()))
}

func (h *OrderHandler) detail(c echo.Context) error {
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	var req OrderItemStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	return h.mutateItem(c, func(orderID, lineID string) error {
		return h.shop.UpdateItemStatus(c.Request().Context(), orderID, lineID, req.Status)
	})
}

func (h *OrderHandler) cancel(c echo.Context) error {
	return h.mutateItem(c, func(orderID, lineID string) error {
		return h.shop.CancelItem(c.Request().Context(), orderID, lineID)
	})
}

func (h *OrderHandler) arrived(c echo.Context) error {
	return h.mutateItem(c, func(orderID, lineID string) error {
		return h.shop.MarkAsArrived(c.Request().Context(), orderID, lineID)
	})
}

func (h *OrderHandler) deleteItem(c echo.Context) error {
	if _, err := h.ownOrder(c); err != nil {
		return writeError(c, err)
	}
	if err := h.shop.DeleteItem(c.Request().Context(), c.Param("id"), c.Param("lineId")); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) toyStatus(c echo.Context) error {
	toyID, ok := parseToyID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	ctx := c.Request().Context()
	return c.JSON(http.StatusOK, ToyOrderStatusResponse{
		ToyID:     toyID,
		Status:    h.shop.ToyOrderStatus(ctx, toyID),
		Received:  h.shop.HasUserReceivedToy(ctx, toyID),
		CanReview: h.reviews.CanReview(ctx, toyID),
	})
}

// 所有者チェック付きで明細を変更し、変更後の注文を返す
func (h *OrderHandler) mutateItem(c echo.Context, fn func(orderID, lineID string) error) error {
	if _, err := h.ownOrder(c); err != nil {
		return writeError(c, err)
	}
	if err := fn(c.Param("id"), c.Param("lineId")); err != nil {
		return writeError(c, err)
	}
	o, err := h.ownOrder(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// 他人の注文は存在しない扱い（404）
func (h *OrderHandler) ownOrder(c echo.Context) (model.Order, error) {
	email, ok := getUserEmailFromContext(c)
	if !ok {
		return model.Order{}, usecase.ErrUnauthorized
	}
	o, found := h.shop.OrderByID(c.Request().Context(), c.Param("id"))
	if !found || o.UserEmail != email {
		return model.Order{}, repo.ErrNotFound
	}
	return o, nil
}
