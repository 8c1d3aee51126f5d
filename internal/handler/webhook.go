package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"marketplace-settlement/internal/gateway"
	"marketplace-settlement/internal/service"
)

type WebhookHandler struct {
	checkoutService service.CheckoutService
}

func NewWebhookHandler(checkoutService service.CheckoutService) *WebhookHandler {
	return &WebhookHandler{
		checkoutService: checkoutService,
	}
}

func (h *WebhookHandler) Handle(c echo.Context) error {
	ctx := c.Request().Context()

	kind, err := gateway.ParseKind(c.Param("gateway"))
	if err != nil {
		return c.NoContent(http.StatusNotFound)
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	if err := h.checkoutService.HandleWebhook(ctx, kind, c.Request().Header, body); err != nil {
		return fmt.Errorf("handle %s webhook: %w", kind, err)
	}

	return c.NoContent(http.StatusOK)
}
