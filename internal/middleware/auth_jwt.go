package middleware

import (
	"errors"
	"net/http"
	"strings"

	"toyshop/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

const CtxUserEmailKey = "user_email" // string

// bearerAuth用のJWT検証ミドルウェア。
// 成功したらemailをechoのcontextとリクエストのcontext（usecase.WithIdentity）の両方に入れる。
func AuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			email, err := emailFromRequest(c, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			setIdentity(c, email)
			return next(c)
		}
	}
}

// ヘッダが無い/不正でも通す。正しいトークンがあればログイン扱い。
func OptionalAuthJWT(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if email, err := emailFromRequest(c, secret); err == nil {
				setIdentity(c, email)
			}
			return next(c)
		}
	}
}

var errNoToken = errors.New("no bearer token")

func emailFromRequest(c echo.Context, secret string) (string, error) {
	//Authorizationヘッダを取得
	authz := c.Request().Header.Get("Authorization")
	if authz == "" {
		return "", errNoToken
	}

	//Bearer形式か確認してtokenを抜く
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errNoToken
	}
	rawToken := strings.TrimSpace(parts[1])
	if rawToken == "" {
		return "", errNoToken
	}

	//JWTをパースして検証する（expもここで見る）
	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}

	//subはemail
	sub, ok := claims["sub"].(string)
	if !ok || strings.TrimSpace(sub) == "" {
		return "", errors.New("invalid sub")
	}
	return sub, nil
}

func setIdentity(c echo.Context, email string) {
	c.Set(CtxUserEmailKey, email)
	req := c.Request()
	c.SetRequest(req.WithContext(usecase.WithIdentity(req.Context(), usecase.Identity{Email: email})))
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
