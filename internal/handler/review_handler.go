package handler

import (
	"net/http"

	"toyshop/internal/middleware"
	"toyshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ReviewHandler struct {
	reviews *usecase.ReviewUsecase
}

func NewReviewHandler(reviews *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type AddReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) RegisterRoutes(e *echo.Echo, jwtSecret string, users usecase.UserFinder) {
	e.GET("/toys/:id/reviews", h.list)
	e.POST("/toys/:id/reviews", h.add, middleware.AuthJWT(jwtSecret), middleware.AccountGuard(users))
}

func (h *ReviewHandler) list(c echo.Context) error {
	toyID, ok := parseToyID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	return c.JSON(http.StatusOK, h.reviews.ReviewsForToy(c.Request().Context(), toyID))
}

func (h *ReviewHandler) add(c echo.Context) error {
	toyID, ok := parseToyID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	var req AddReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	r, err := h.reviews.AddReview(c.Request().Context(), toyID, req.Rating, req.Comment)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}
