package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/model"
	"marketplace-settlement/internal/repository"
)

type MerchantHandler struct {
	merchantRepo repository.MerchantRepository
	productRepo  repository.ProductRepository
}

func NewMerchantHandler(merchantRepo repository.MerchantRepository, productRepo repository.ProductRepository) *MerchantHandler {
	return &MerchantHandler{
		merchantRepo: merchantRepo,
		productRepo:  productRepo,
	}
}

func (h *MerchantHandler) CreateMerchant(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateMerchantRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.MerchantName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "merchantName is required")
	}

	merchant := &model.Merchant{
		ID:   uuid.NewString(),
		Name: req.MerchantName,
	}
	if err := h.merchantRepo.Create(ctx, merchant); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"id": merchant.ID,
	})
}

func (h *MerchantHandler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.productRepo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, products)
}
