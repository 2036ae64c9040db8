package service

import (
	"testing"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

func TestValidateVerifyPaymentRequest(t *testing.T) {
	valid := func() *models.VerifyPaymentRequest {
		return &models.VerifyPaymentRequest{
			RazorpayOrderID:   "order_1",
			RazorpayPaymentID: "pay_1",
			RazorpaySignature: "aabbcc",
			Items:             []models.CheckoutItem{{ProductID: "prod_1", Quantity: 1}},
			DeclaredTotal:     499.99,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*models.VerifyPaymentRequest)
		wantField string
	}{
		{"valid request", func(r *models.VerifyPaymentRequest) {}, ""},
		{"missing order id", func(r *models.VerifyPaymentRequest) {
			r.RazorpayOrderID = ""
		}, "razorpay_order_id"},
		{"missing payment id", func(r *models.VerifyPaymentRequest) {
			r.RazorpayPaymentID = ""
		}, "razorpay_payment_id"},
		{"missing signature", func(r *models.VerifyPaymentRequest) {
			r.RazorpaySignature = ""
		}, "razorpay_signature"},
		{"no items", func(r *models.VerifyPaymentRequest) {
			r.Items = nil
		}, "items"},
		{"item without product id", func(r *models.VerifyPaymentRequest) {
			r.Items = []models.CheckoutItem{{Quantity: 1}}
		}, "items"},
		{"zero quantity", func(r *models.VerifyPaymentRequest) {
			r.Items = []models.CheckoutItem{{ProductID: "prod_1", Quantity: 0}}
		}, "items"},
		{"negative quantity", func(r *models.VerifyPaymentRequest) {
			r.Items = []models.CheckoutItem{{ProductID: "prod_1", Quantity: -2}}
		}, "items"},
		{"zero total", func(r *models.VerifyPaymentRequest) {
			r.DeclaredTotal = 0
		}, "total_amount"},
		{"duplicate product", func(r *models.VerifyPaymentRequest) {
			r.Items = []models.CheckoutItem{
				{ProductID: "prod_1", Quantity: 1},
				{ProductID: "prod_1", Quantity: 2},
			}
		}, "items"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := ValidateVerifyPaymentRequest(req)

			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("ValidateVerifyPaymentRequest() = %v, want nil", err)
				}
				return
			}

			if !apperr.IsValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
			verr := err.(*apperr.ValidationError)
			if verr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", verr.Field, tt.wantField)
			}
		})
	}
}

func TestValidateInitiateCheckoutRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     *models.InitiateCheckoutRequest
		wantErr bool
	}{
		{"valid", &models.InitiateCheckoutRequest{
			Amount: 499.99,
			Items:  []models.CheckoutItem{{ProductID: "prod_1", Quantity: 2}},
		}, false},
		{"valid with currency", &models.InitiateCheckoutRequest{
			Amount:   10,
			Currency: "USD",
			Items:    []models.CheckoutItem{{ProductID: "prod_1", Quantity: 1}},
		}, false},
		{"bad currency code", &models.InitiateCheckoutRequest{
			Amount:   10,
			Currency: "RUPEES",
			Items:    []models.CheckoutItem{{ProductID: "prod_1", Quantity: 1}},
		}, true},
		{"zero amount", &models.InitiateCheckoutRequest{
			Amount: 0,
			Items:  []models.CheckoutItem{{ProductID: "prod_1", Quantity: 1}},
		}, true},
		{"no items", &models.InitiateCheckoutRequest{Amount: 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInitiateCheckoutRequest(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateInitiateCheckoutRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !apperr.IsValidation(err) {
				t.Errorf("error is not a validation error: %v", err)
			}
		})
	}
}
