package router

import (
	"farmlink/internal/adapter/api/handler"
	"farmlink/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupProductRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	productHandler := handler.GetProductHandler()

	// Public catalog
	e.GET("/v1/products", productHandler.ListProducts)
	e.GET("/v1/products/:id", productHandler.GetProduct)

	protected := e.Group("/v1/products")
	protected.Use(authMiddleware.Authenticate)

	protected.POST("", productHandler.CreateProduct)
	protected.PUT("/:id", productHandler.UpdateProduct)
	protected.DELETE("/:id", productHandler.DeleteProduct)

	mine := e.Group("/v1/my-products")
	mine.Use(authMiddleware.Authenticate)
	mine.GET("", productHandler.ListMyProducts)
}
