package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"marketplace-settlement/internal/apperror"
	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/service"
)

type PayoutHandler struct {
	payoutService service.PayoutService
}

func NewPayoutHandler(payoutService service.PayoutService) *PayoutHandler {
	return &PayoutHandler{
		payoutService: payoutService,
	}
}

func merchantIDFromContext(c echo.Context) (string, error) {
	merchantID, _ := c.Get("merchant_id").(string)
	if merchantID == "" {
		return "", echo.NewHTTPError(http.StatusForbidden, "merchant account required")
	}
	return merchantID, nil
}

func (h *PayoutHandler) GetStatement(c echo.Context) error {
	ctx := c.Request().Context()

	merchantID, err := merchantIDFromContext(c)
	if err != nil {
		return err
	}

	statement, err := h.payoutService.Statement(ctx, merchantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, statement)
}

func (h *PayoutHandler) RequestPayout(c echo.Context) error {
	ctx := c.Request().Context()

	merchantID, err := merchantIDFromContext(c)
	if err != nil {
		return err
	}

	var req dto.PayoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return apperror.Validation("invalid payout amount %q", req.Amount)
	}

	txn, err := h.payoutService.RequestPayout(ctx, merchantID, amount, req.Method)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"transaction": dto.PayoutTransactionView{
			ID:        txn.ID,
			Type:      txn.Type,
			Amount:    txn.Amount.StringFixed(2),
			Status:    txn.Status,
			Method:    txn.Method,
			CreatedAt: txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		},
	})
}

func (h *PayoutHandler) MarkPaid(c echo.Context) error {
	ctx := c.Request().Context()

	var req struct {
		ExternalRef string `json:"externalRef"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if err := h.payoutService.MarkPaid(ctx, c.Param("id"), req.ExternalRef); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "PAID"})
}

func (h *PayoutHandler) MarkFailed(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.payoutService.MarkFailed(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "FAILED"})
}
