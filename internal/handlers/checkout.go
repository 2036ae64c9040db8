package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verdantcart/verdantcart-checkout-service/internal/middleware"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// InitiateCheckout handles POST /api/v1/checkout/initiate
func (h *Handlers) InitiateCheckout(c *gin.Context) {
	var req models.InitiateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to bind initiate request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if _, ok := middleware.UserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	resp, err := h.checkout.InitiateCheckout(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// VerifyPayment handles POST /api/v1/checkout/verify
func (h *Handlers) VerifyPayment(c *gin.Context) {
	var req models.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to bind verify request", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	order, err := h.checkout.VerifyAndPlaceOrder(c.Request.Context(), userID, middleware.UserEmail(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"order": order})
}
