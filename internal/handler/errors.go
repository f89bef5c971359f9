package handler

import (
	"errors"
	"net/http"
	"strconv"

	"toyshop/internal/middleware"
	repo "toyshop/internal/repository"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}

// usecaseのエラー → ステータス
var errorStatus = []struct {
	err    error
	status int
}{
	{repo.ErrNotFound, http.StatusNotFound},
	{usecase.ErrInvalidStatus, http.StatusBadRequest},
	{usecase.ErrInvalidEmailFormat, http.StatusBadRequest},
	{usecase.ErrPasswordTooShort, http.StatusBadRequest},
	{usecase.ErrInvalidRating, http.StatusBadRequest},
	{usecase.ErrUnauthorized, http.StatusUnauthorized},
	{usecase.ErrInvalidCredentials, http.StatusUnauthorized},
	{usecase.ErrReviewNotAllowed, http.StatusForbidden},
	{usecase.ErrEmailAlreadyExists, http.StatusConflict},
	{usecase.ErrAlreadyReviewed, http.StatusConflict},
	{usecase.ErrCatalogUnavailable, http.StatusServiceUnavailable},
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return c.JSON(m.status, ErrorResponse{Error: m.err.Error()})
		}
	}

	//500（原因はアクセスログに出す）
	c.Set(middleware.CtxErrorKey, err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserEmailFromContext(c echo.Context) (string, bool) {
	v, ok := c.Get(middleware.CtxUserEmailKey).(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func parseToyID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
