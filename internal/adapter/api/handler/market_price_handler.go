package handler

import (
	"github.com/labstack/echo/v4"

	"farmlink/internal/usecase"
	"farmlink/pkg/response"
)

type MarketPriceHandler struct {
	marketPriceUseCase *usecase.MarketPriceUseCase
}

func NewMarketPriceHandler(marketPriceUseCase *usecase.MarketPriceUseCase) *MarketPriceHandler {
	return &MarketPriceHandler{
		marketPriceUseCase: marketPriceUseCase,
	}
}

type upsertMarketPriceRequest struct {
	ID       string  `json:"id"`
	Name     string  `json:"name" validate:"required"`
	Category string  `json:"category"`
	Price    float64 `json:"price" validate:"required,gt=0"`
}

func (h *MarketPriceHandler) ListPrices(c echo.Context) error {
	prices, err := h.marketPriceUseCase.ListPrices(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, prices)
}

func (h *MarketPriceHandler) UpsertPrice(c echo.Context) error {
	var req upsertMarketPriceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	price, err := h.marketPriceUseCase.UpsertPrice(c.Request().Context(), userID, usecase.UpsertMarketPriceInput{
		ID:       req.ID,
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, price)
}
