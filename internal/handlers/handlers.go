package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/service"
)

// Handlers holds all HTTP handlers for the checkout service.
type Handlers struct {
	checkout *service.CheckoutService
	config   *config.Config
	logger   *logging.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(checkout *service.CheckoutService, cfg *config.Config) *Handlers {
	return &Handlers{
		checkout: checkout,
		config:   cfg,
		logger:   logging.New("handlers"),
	}
}

// handleError maps the error taxonomy onto HTTP statuses: validation → 400,
// not found → 404, duplicate payment → 409, stock conflict → 500 with the
// flagged order id, everything else → plain 500.
func handleError(c *gin.Context, err error) {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, gin.H{"error": ve.Message, "field": ve.Field})
		return
	}

	if errors.Is(err, apperr.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	if errors.Is(err, apperr.ErrDuplicatePayment) {
		c.JSON(http.StatusConflict, gin.H{"error": "payment already processed"})
		return
	}

	if orderID, ok := apperr.IsStockConflict(err); ok {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":    "insufficient stock, order flagged",
			"order_id": orderID,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
