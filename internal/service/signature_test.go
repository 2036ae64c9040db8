package service

import "testing"

func TestVerifySignature_ValidSignature(t *testing.T) {
	secret := "test_secret_key"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"

	sig := ComputeSignature(secret, orderID, paymentID)

	if !VerifySignature(secret, orderID, paymentID, sig) {
		t.Error("expected correctly computed signature to verify")
	}
}

func TestVerifySignature_SingleCharacterMutation(t *testing.T) {
	secret := "test_secret_key"
	orderID := "order_ABC123"
	paymentID := "pay_XYZ789"

	sig := ComputeSignature(secret, orderID, paymentID)

	// Flip each hex digit in turn; every mutation must fail.
	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		if mutated[i] == '0' {
			mutated[i] = '1'
		} else {
			mutated[i] = '0'
		}
		if VerifySignature(secret, orderID, paymentID, string(mutated)) {
			t.Errorf("mutated signature at index %d unexpectedly verified", i)
		}
	}
}

func TestVerifySignature_WrongInputs(t *testing.T) {
	secret := "test_secret_key"
	sig := ComputeSignature(secret, "order_1", "pay_1")

	tests := []struct {
		name      string
		secret    string
		orderID   string
		paymentID string
	}{
		{"wrong secret", "other_secret", "order_1", "pay_1"},
		{"wrong order id", secret, "order_2", "pay_1"},
		{"wrong payment id", secret, "order_1", "pay_2"},
		{"swapped ids", secret, "pay_1", "order_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if VerifySignature(tt.secret, tt.orderID, tt.paymentID, sig) {
				t.Error("signature unexpectedly verified")
			}
		})
	}
}

func TestVerifySignature_EmptySignature(t *testing.T) {
	if VerifySignature("secret", "order_1", "pay_1", "") {
		t.Error("empty signature unexpectedly verified")
	}
}

func BenchmarkComputeSignature(b *testing.B) {
	for i := 0; i < b.N; i++ {
		ComputeSignature("test_secret_key", "order_ABC123", "pay_XYZ789")
	}
}
