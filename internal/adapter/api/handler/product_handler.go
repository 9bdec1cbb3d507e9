package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"farmlink/internal/usecase"
	"farmlink/pkg/response"
	"farmlink/pkg/utils"
)

type ProductHandler struct {
	productUseCase *usecase.ProductUseCase
}

func NewProductHandler(productUseCase *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{
		productUseCase: productUseCase,
	}
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Unit        string  `json:"unit" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,gt=0"`
	Location    string  `json:"location"`
	IsOrganic   bool    `json:"is_organic"`
	HarvestDate string  `json:"harvest_date"`
	ImageURL    string  `json:"image_url" validate:"omitempty,url"`
}

func (r *productRequest) harvestDate() (*time.Time, error) {
	if r.HarvestDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", r.HarvestDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	harvestDate, err := req.harvestDate()
	if err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	product, err := h.productUseCase.CreateProduct(c.Request().Context(), userID, usecase.CreateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		Location:    req.Location,
		IsOrganic:   req.IsOrganic,
		HarvestDate: harvestDate,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, product)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	detail, err := h.productUseCase.GetProductDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, detail)
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	filter := map[string]interface{}{}
	if category := c.QueryParam("category"); category != "" {
		filter["category"] = category
	}
	if c.QueryParam("organic") == "true" {
		filter["isOrganic"] = true
	}

	products, total, err := h.productUseCase.ListProducts(c.Request().Context(), filter, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, params.Page, params.PageSize)
}

func (h *ProductHandler) ListMyProducts(c echo.Context) error {
	params := utils.GetPaginationParams(c)
	userID := c.Get("uid").(string)

	products, total, err := h.productUseCase.ListMyProducts(c.Request().Context(), userID, params.PageSize, params.Offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, products, total, params.Page, params.PageSize)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	harvestDate, err := req.harvestDate()
	if err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	product, err := h.productUseCase.UpdateProduct(c.Request().Context(), userID, c.Param("id"), usecase.UpdateProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Unit:        req.Unit,
		Quantity:    req.Quantity,
		Location:    req.Location,
		IsOrganic:   req.IsOrganic,
		HarvestDate: harvestDate,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.productUseCase.DeleteProduct(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"status": "Product deleted"})
}
