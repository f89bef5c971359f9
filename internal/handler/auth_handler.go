package handler

import (
	"net/http"

	"toyshop/internal/middleware"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /auth と /account
type AuthHandler struct {
	uc *usecase.AuthUsecase
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type signupRequest struct {
	Email            string   `json:"email"`
	Password         string   `json:"password"`
	Name             string   `json:"name"`
	Surname          string   `json:"surname"`
	Phone            string   `json:"phone"`
	Address          string   `json:"address"`
	FavoriteToyTypes []string `json:"favoriteToyTypes"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// 送られた項目だけ更新
type updateProfileRequest struct {
	Email            *string  `json:"email"`
	Name             *string  `json:"name"`
	Surname          *string  `json:"surname"`
	Phone            *string  `json:"phone"`
	Address          *string  `json:"address"`
	FavoriteToyTypes []string `json:"favoriteToyTypes"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, jwtSecret string) {
	e.POST("/auth/signup", h.signup)
	e.POST("/auth/login", h.login)

	g := e.Group("/account")
	g.Use(middleware.AuthJWT(jwtSecret))
	g.Use(middleware.AccountGuard(h.uc))

	g.GET("", h.profile)
	g.PATCH("", h.updateProfile)
	g.PUT("/password", h.changePassword)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.Name == "" || req.Surname == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name and surname are required"})
	}

	out, err := h.uc.Signup(c.Request().Context(), usecase.SignupInput{
		Email:            req.Email,
		Password:         req.Password,
		Name:             req.Name,
		Surname:          req.Surname,
		Phone:            req.Phone,
		Address:          req.Address,
		FavoriteToyTypes: req.FavoriteToyTypes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) profile(c echo.Context) error {
	out, err := h.uc.Profile(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateProfile(c.Request().Context(), usecase.UpdateProfileInput{
		Email:            req.Email,
		Name:             req.Name,
		Surname:          req.Surname,
		Phone:            req.Phone,
		Address:          req.Address,
		FavoriteToyTypes: req.FavoriteToyTypes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AuthHandler) changePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "password changed"})
}
