package gateway

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
)

// PaymentGateway creates payment-gateway orders ahead of checkout.
type PaymentGateway interface {
	// CreateOrder registers a pending order with the gateway and returns its
	// id. Amount is in minor units.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error)
	// KeyID is the public client key handed to the browser SDK.
	KeyID() string
}

// RazorpayGateway implements PaymentGateway against the Razorpay Orders API.
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	logger *logging.Logger
}

// NewRazorpayGateway creates a Razorpay-backed gateway client.
func NewRazorpayGateway(cfg config.RazorpayConfig, logger *logging.Logger) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(cfg.KeyID, cfg.KeySecret),
		keyID:  cfg.KeyID,
		logger: logger,
	}
}

// CreateOrder registers a pending order with Razorpay. The SDK has no context
// plumbing; ctx is accepted for interface symmetry and future timeouts.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
	}
	if receipt != "" {
		data["receipt"] = receipt
	}
	if len(notes) > 0 {
		data["notes"] = notes
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		g.logger.Error("gateway order creation failed",
			"amount", amount,
			"currency", currency,
			"error", err.Error(),
		)
		return "", fmt.Errorf("gateway order create: %w", err)
	}

	orderID, ok := body["id"].(string)
	if !ok || orderID == "" {
		return "", fmt.Errorf("gateway returned no order id")
	}

	g.logger.Info("gateway order created",
		"gateway_order_id", orderID,
		"amount", amount,
		"currency", currency,
	)
	return orderID, nil
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

// MockGateway is a deterministic in-memory gateway for tests.
type MockGateway struct {
	NextOrderID string
	Err         error
	Created     []int64
}

func (m *MockGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Created = append(m.Created, amount)
	if m.NextOrderID != "" {
		return m.NextOrderID, nil
	}
	return "order_mock_1", nil
}

func (m *MockGateway) KeyID() string {
	return "rzp_test_key"
}
