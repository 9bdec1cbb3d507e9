package router

import (
	"farmlink/internal/adapter/api/handler"
	"farmlink/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupReviewRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	reviewHandler := handler.GetReviewHandler()

	// Public farmer ratings
	e.GET("/v1/farmers/:id/reviews", reviewHandler.ListFarmerReviews)
	e.GET("/v1/farmers/:id/rating", reviewHandler.GetFarmerRating)

	reviews := e.Group("/v1/reviews")
	reviews.Use(authMiddleware.Authenticate)

	reviews.POST("", reviewHandler.CreateReview)
}
