package router

import (
	"farmlink/internal/adapter/api/handler"
	"farmlink/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupMarketPriceRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	marketPriceHandler := handler.GetMarketPriceHandler()

	// Public price board
	e.GET("/v1/market-prices", marketPriceHandler.ListPrices)

	// Admin-only writes; the role check lives in the use case
	protected := e.Group("/v1/market-prices")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("", marketPriceHandler.UpsertPrice)
}
