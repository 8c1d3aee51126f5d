package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/dto"
	"marketplace-settlement/internal/gateway"
	"marketplace-settlement/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.CheckoutService
}

func NewCheckoutHandler(checkoutService service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
	}
}

func (h *CheckoutHandler) Split(c echo.Context) error {
	ctx := c.Request().Context()

	customerID, _ := c.Get("customer_id").(string)
	if customerID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing customer identity")
	}

	var req dto.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.checkoutService.StartCheckout(ctx, customerID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Confirm is the buyer-side redirect callback. The gateway order / intent id
// arrives as a query token; its status is re-verified with the gateway before
// anything settles.
func (h *CheckoutHandler) Confirm(c echo.Context) error {
	ctx := c.Request().Context()

	kind, err := gateway.ParseKind(c.QueryParam("gateway"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	handle := c.QueryParam("token")
	if handle == "" {
		handle = c.QueryParam("payment_intent")
	}
	if handle == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing payment token")
	}

	result, err := h.checkoutService.ConfirmPayment(ctx, kind, handle)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
