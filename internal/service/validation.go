package service

import (
	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// ValidateInitiateCheckoutRequest validates a checkout initiation request.
func ValidateInitiateCheckoutRequest(req *models.InitiateCheckoutRequest) error {
	if req.Amount <= 0 {
		return apperr.NewValidationError("amount", "amount must be positive")
	}

	if len(req.Items) == 0 {
		return apperr.NewValidationError("items", "at least one item is required")
	}

	for _, item := range req.Items {
		if err := validateCheckoutItem(&item); err != nil {
			return err
		}
	}

	if req.Currency != "" && len(req.Currency) != 3 {
		return apperr.NewValidationError("currency", "currency must be a 3-letter ISO code")
	}

	return nil
}

// ValidateVerifyPaymentRequest validates a payment verification request.
// Signature correctness is checked separately; this covers structure only.
func ValidateVerifyPaymentRequest(req *models.VerifyPaymentRequest) error {
	if req.RazorpayOrderID == "" {
		return apperr.NewValidationError("razorpay_order_id", "gateway order id is required")
	}
	if req.RazorpayPaymentID == "" {
		return apperr.NewValidationError("razorpay_payment_id", "gateway payment id is required")
	}
	if req.RazorpaySignature == "" {
		return apperr.NewValidationError("razorpay_signature", "signature is required")
	}

	if len(req.Items) == 0 {
		return apperr.NewValidationError("items", "at least one item is required")
	}
	for _, item := range req.Items {
		if err := validateCheckoutItem(&item); err != nil {
			return err
		}
	}

	if req.DeclaredTotal <= 0 {
		return apperr.NewValidationError("total_amount", "total must be positive")
	}

	seen := make(map[string]bool, len(req.Items))
	for _, item := range req.Items {
		if seen[item.ProductID] {
			return apperr.NewValidationError("items", "duplicate product in item list")
		}
		seen[item.ProductID] = true
	}

	return nil
}

func validateCheckoutItem(item *models.CheckoutItem) error {
	if item.ProductID == "" {
		return apperr.NewValidationError("items", "product id is required for item")
	}
	if item.Quantity < 1 {
		return apperr.NewValidationError("items", "quantity must be at least 1")
	}
	return nil
}
