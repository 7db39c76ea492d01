package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventmarket_app/internal/services"
)

// PaymentMethodHandler exposes the processor's payment method management
// to authenticated users. It shares the processor trust boundary with the
// webhook endpoint but performs no reconciliation itself.
type PaymentMethodHandler struct {
	processor *services.ProcessorClient
}

func NewPaymentMethodHandler(processor *services.ProcessorClient) *PaymentMethodHandler {
	return &PaymentMethodHandler{processor: processor}
}

// GetPaymentMethod returns the details of a stored payment method
func (h *PaymentMethodHandler) GetPaymentMethod(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing payment method id")
	}

	details, err := h.processor.RetrievePaymentMethodDetails(id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to retrieve payment method")
	}
	return c.JSON(http.StatusOK, details)
}

type attachPaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id"`
	CustomerRef     string `json:"customer_ref"`
	SetDefault      bool   `json:"set_default"`
}

// AttachPaymentMethod attaches a payment method to the customer and
// optionally makes it the default
func (h *PaymentMethodHandler) AttachPaymentMethod(c echo.Context) error {
	var req attachPaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.PaymentMethodID == "" || req.CustomerRef == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "payment_method_id and customer_ref are required")
	}

	if err := h.processor.AttachPaymentMethod(req.PaymentMethodID, req.CustomerRef); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to attach payment method")
	}

	if req.SetDefault {
		if err := h.processor.SetDefaultPaymentMethod(req.PaymentMethodID, req.CustomerRef); err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "Attached, but failed to set as default")
		}
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "attached"})
}
