package server

import (
	"toyshop/internal/handler"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 全ハンドラ
type Handlers struct {
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Checkout *handler.CheckoutHandler
	Order    *handler.OrderHandler
	Catalog  *handler.CatalogHandler
	Favorite *handler.FavoriteHandler
	Review   *handler.ReviewHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, jwtSecret string, users usecase.UserFinder) {
	h.Auth.RegisterRoutes(e, jwtSecret)
	h.Catalog.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e)
	h.Favorite.RegisterRoutes(e)
	h.Checkout.RegisterRoutes(e, jwtSecret, users)
	h.Order.RegisterRoutes(e, jwtSecret, users)
	h.Review.RegisterRoutes(e, jwtSecret, users)
}
