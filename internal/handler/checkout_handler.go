package handler

import (
	"net/http"
	"time"

	"toyshop/internal/middleware"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type CheckoutHandler struct {
	shop  *usecase.Shop
	delay time.Duration
}

// delayは注文確定前の待ち時間（0なら待たない）
func NewCheckoutHandler(shop *usecase.Shop, delay time.Duration) *CheckoutHandler {
	return &CheckoutHandler{shop: shop, delay: delay}
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, jwtSecret string, users usecase.UserFinder) {
	e.POST("/checkout", h.checkout, middleware.AuthJWT(jwtSecret), middleware.AccountGuard(users))
}

func (h *CheckoutHandler) checkout(c echo.Context) error {
	ctx := c.Request().Context()

	if h.delay > 0 {
		t := time.NewTimer(h.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "request canceled"})
		case <-t.C:
		}
	}

	if _, ok := usecase.IdentityFromContext(ctx); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	order, ok, err := h.shop.Checkout(ctx)
	if err != nil {
		return writeError(c, err)
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cart empty"})
	}
	return c.JSON(http.StatusCreated, order)
}
