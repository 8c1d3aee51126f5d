package apperror

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPErrorHandler maps the error taxonomy onto HTTP responses. Anything
// outside the taxonomy falls through to echo's default handling.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		validationErr  *ValidationError
		notFoundErr    *NotFoundError
		gatewayErr     *GatewayError
		balanceErr     *InsufficientBalanceError
		consistencyErr *ConsistencyError
	)

	switch {
	case errors.As(err, &validationErr):
		_ = c.JSON(http.StatusBadRequest, map[string]any{
			"error": validationErr.Msg,
		})
	case errors.As(err, &notFoundErr):
		_ = c.JSON(http.StatusNotFound, map[string]any{
			"error": notFoundErr.Error(),
		})
	case errors.As(err, &gatewayErr):
		_ = c.JSON(http.StatusInternalServerError, map[string]any{
			"error":   "payment gateway rejected the request",
			"details": gatewayErr,
		})
	case errors.As(err, &balanceErr):
		_ = c.JSON(http.StatusBadRequest, map[string]any{
			"error":     balanceErr.Error(),
			"available": balanceErr.Available.StringFixed(2),
		})
	case errors.As(err, &consistencyErr):
		c.Logger().Errorf("RECONCILE: %v", consistencyErr)
		_ = c.JSON(http.StatusInternalServerError, map[string]any{
			"error": "settlement inconsistency, flagged for reconciliation",
		})
	default:
		c.Echo().DefaultHTTPErrorHandler(err, c)
	}
}
