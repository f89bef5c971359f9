package middleware

import (
	"net/http"

	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// JWTのemailの会員がまだ存在するか確認。
// emailを変更した後の古いトークンはここで401になる。
func AccountGuard(users usecase.UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//AuthJWTが入れたemailを取得する
			email, ok := c.Get(CtxUserEmailKey).(string)
			if !ok || email == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			if _, found := users.FindByEmail(email); !found {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			return next(c)
		}
	}
}
