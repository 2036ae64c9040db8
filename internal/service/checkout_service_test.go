package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/events"
	"github.com/verdantcart/verdantcart-checkout-service/internal/gateway"
	"github.com/verdantcart/verdantcart-checkout-service/internal/invoice"
	"github.com/verdantcart/verdantcart-checkout-service/internal/mailer"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
	"github.com/verdantcart/verdantcart-checkout-service/internal/repository"
)

const testSecret = "test_gateway_secret"

type testEnv struct {
	svc       *CheckoutService
	orders    *repository.MockOrderRepository
	products  *repository.MockProductRepository
	carts     *repository.MockCartRepository
	cache     *repository.MockOrderCache
	ephemeral *repository.MockEphemeralStore
	mail      *mailer.MockMailer
	publisher *events.MockPublisher
	gw        *gateway.MockGateway
}

func newTestEnv(products ...*models.Product) *testEnv {
	env := &testEnv{
		orders:    repository.NewMockOrderRepository(),
		products:  repository.NewMockProductRepository(products...),
		carts:     repository.NewMockCartRepository(),
		cache:     repository.NewMockOrderCache(),
		ephemeral: repository.NewMockEphemeralStore(),
		mail:      &mailer.MockMailer{},
		publisher: events.NewMockPublisher(),
		gw:        &gateway.MockGateway{},
	}

	cfg := &config.Config{
		Razorpay: config.RazorpayConfig{KeyID: "rzp_test_key", KeySecret: testSecret},
		Features: config.FeatureFlags{
			EnableOrderCaching:   true,
			EnableCheckoutEvents: true,
			EnableInvoiceEmail:   true,
		},
	}

	env.svc = NewCheckoutService(
		env.orders,
		env.products,
		env.carts,
		env.cache,
		env.ephemeral,
		env.gw,
		invoice.NewPDFRenderer("Test Store"),
		env.mail,
		env.publisher,
		cfg,
	)
	return env
}

func testProduct(id string, priceMinor int64, quantity int) *models.Product {
	return &models.Product{
		ID:       id,
		Name:     "Product " + id,
		Price:    models.Money{Amount: priceMinor, Currency: "INR"},
		Quantity: quantity,
	}
}

// signedVerifyRequest builds a verify request with a genuine signature for
// the given payment id.
func signedVerifyRequest(paymentID string, declaredTotal float64, items ...models.CheckoutItem) *models.VerifyPaymentRequest {
	orderID := "order_" + paymentID
	return &models.VerifyPaymentRequest{
		RazorpayOrderID:   orderID,
		RazorpayPaymentID: paymentID,
		RazorpaySignature: ComputeSignature(testSecret, orderID, paymentID),
		Items:             items,
		DeclaredTotal:     declaredTotal,
		ShippingAddress:   models.Address{City: "Pune", Country: "IN"},
	}
}

func TestVerifyAndPlaceOrder_Success(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))

	req := signedVerifyRequest("pay_1", 999.98,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 2},
	)

	order, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "user@example.com", req)
	if err != nil {
		t.Fatalf("VerifyAndPlaceOrder() error = %v", err)
	}

	if order.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", order.PaymentStatus)
	}
	if order.Total.Amount != 99998 {
		t.Errorf("total = %d, want 99998", order.Total.Amount)
	}
	if got := order.ComputeTotal(); got.Amount != order.Total.Amount {
		t.Errorf("stored total %d does not equal item sum %d", order.Total.Amount, got.Amount)
	}
	if order.Items[0].ProductName != "Product prod_1" {
		t.Errorf("product name not captured server-side: %q", order.Items[0].ProductName)
	}

	if env.products.Stock("prod_1") != 8 {
		t.Errorf("stock = %d, want 8", env.products.Stock("prod_1"))
	}
	if env.products.PurchaseCount("prod_1") != 2 {
		t.Errorf("purchase count = %d, want 2", env.products.PurchaseCount("prod_1"))
	}

	if !env.carts.ClearedFor("user_1") {
		t.Error("cart was not cleared")
	}
	if env.mail.SentCount() != 1 {
		t.Errorf("emails sent = %d, want 1", env.mail.SentCount())
	}
	if len(env.publisher.ByType(events.EventTypeCheckoutCompleted)) != 1 {
		t.Error("checkout.completed event not published")
	}
}

func TestVerifyAndPlaceOrder_SignatureMismatch(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))

	req := signedVerifyRequest("pay_1", 499.99,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)
	req.RazorpaySignature = ComputeSignature("stolen_secret", req.RazorpayOrderID, req.RazorpayPaymentID)

	_, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "user@example.com", req)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	// Idempotent no-op: nothing written anywhere.
	if env.orders.Count() != 0 {
		t.Errorf("orders created = %d, want 0", env.orders.Count())
	}
	if env.products.Stock("prod_1") != 10 {
		t.Errorf("stock = %d, want 10 (unchanged)", env.products.Stock("prod_1"))
	}
	if env.carts.ClearedFor("user_1") {
		t.Error("cart cleared after failed verification")
	}
	if env.mail.SentCount() != 0 {
		t.Error("email sent after failed verification")
	}
}

func TestVerifyAndPlaceOrder_DuplicatePaymentID(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))

	req := signedVerifyRequest("pay_1", 499.99,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)

	if _, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", req); err != nil {
		t.Fatalf("first verify failed: %v", err)
	}

	_, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", req)
	if !errors.Is(err, apperr.ErrDuplicatePayment) {
		t.Fatalf("expected ErrDuplicatePayment, got %v", err)
	}

	if env.orders.Count() != 1 {
		t.Errorf("orders created = %d, want 1", env.orders.Count())
	}
	if env.products.Stock("prod_1") != 9 {
		t.Errorf("stock = %d, want 9 (single decrement)", env.products.Stock("prod_1"))
	}
}

func TestVerifyAndPlaceOrder_PricingMismatch(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))

	// Client claims a lower total than current catalog pricing.
	req := signedVerifyRequest("pay_1", 1.00,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)

	_, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", req)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.orders.Count() != 0 {
		t.Errorf("orders created = %d, want 0", env.orders.Count())
	}

	// The idempotency hold is released on pre-persist failure; a corrected
	// retry with the same payment id succeeds.
	retry := signedVerifyRequest("pay_1", 499.99,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)
	if _, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", retry); err != nil {
		t.Fatalf("corrected retry failed: %v", err)
	}
}

func TestVerifyAndPlaceOrder_UnknownProduct(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))

	req := signedVerifyRequest("pay_1", 499.99,
		models.CheckoutItem{ProductID: "prod_ghost", Quantity: 1},
	)

	_, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", req)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if env.orders.Count() != 0 {
		t.Errorf("orders created = %d, want 0", env.orders.Count())
	}
}

func TestVerifyAndPlaceOrder_LastUnitRace(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 1))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := signedVerifyRequest(fmt.Sprintf("pay_race_%d", n), 499.99,
				models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
			)
			_, results[n] = env.svc.VerifyAndPlaceOrder(
				context.Background(), fmt.Sprintf("user_%d", n), "", req)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		switch {
		case err == nil:
			successes++
		default:
			if _, ok := apperr.IsStockConflict(err); ok {
				conflicts++
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}
	}

	if successes != 1 || conflicts != 1 {
		t.Fatalf("successes = %d, conflicts = %d; want exactly 1 of each", successes, conflicts)
	}
	if env.products.Stock("prod_1") != 0 {
		t.Errorf("stock = %d, want 0", env.products.Stock("prod_1"))
	}
	if env.products.PurchaseCount("prod_1") != 1 {
		t.Errorf("purchase count = %d, want 1", env.products.PurchaseCount("prod_1"))
	}
}

func TestVerifyAndPlaceOrder_ConcurrentDemandExceedsStock(t *testing.T) {
	const stock = 3
	const demand = 8

	env := newTestEnv(testProduct("prod_1", 1000, stock))

	var wg sync.WaitGroup
	results := make([]error, demand)
	for i := 0; i < demand; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := signedVerifyRequest(fmt.Sprintf("pay_demand_%d", n), 10.00,
				models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
			)
			_, results[n] = env.svc.VerifyAndPlaceOrder(
				context.Background(), fmt.Sprintf("user_%d", n), "", req)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range results {
		if err == nil {
			successes++
		} else if _, ok := apperr.IsStockConflict(err); ok {
			conflicts++
		} else {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != stock {
		t.Errorf("successes = %d, want %d", successes, stock)
	}
	if conflicts != demand-stock {
		t.Errorf("conflicts = %d, want %d", conflicts, demand-stock)
	}
	if env.products.Stock("prod_1") != 0 {
		t.Errorf("stock = %d, want 0", env.products.Stock("prod_1"))
	}
	if got := len(env.publisher.ByType(events.EventTypeCheckoutStockFailed)); got != demand-stock {
		t.Errorf("stock_failed events = %d, want %d", got, demand-stock)
	}
}

func TestVerifyAndPlaceOrder_CompensatesEarlierItems(t *testing.T) {
	env := newTestEnv(
		testProduct("prod_a", 1000, 5),
		testProduct("prod_b", 2000, 0),
	)

	req := signedVerifyRequest("pay_1", 40.00,
		models.CheckoutItem{ProductID: "prod_a", Quantity: 2},
		models.CheckoutItem{ProductID: "prod_b", Quantity: 1},
	)

	_, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "user@example.com", req)
	orderID, ok := apperr.IsStockConflict(err)
	if !ok {
		t.Fatalf("expected stock conflict, got %v", err)
	}

	// prod_a's decrement was compensated; a flagged order holds no stock.
	if env.products.Stock("prod_a") != 5 {
		t.Errorf("prod_a stock = %d, want 5 (compensated)", env.products.Stock("prod_a"))
	}
	if env.products.PurchaseCount("prod_a") != 0 {
		t.Errorf("prod_a purchase count = %d, want 0", env.products.PurchaseCount("prod_a"))
	}

	order, getErr := env.orders.GetByID(context.Background(), orderID)
	if getErr != nil {
		t.Fatalf("flagged order not found: %v", getErr)
	}
	if order.PaymentStatus != models.PaymentStatusStockIssue {
		t.Errorf("order status = %s, want failed_stock_issue", order.PaymentStatus)
	}

	if env.carts.ClearedFor("user_1") {
		t.Error("cart cleared after stock failure")
	}
	if env.mail.SentCount() != 0 {
		t.Error("confirmation sent for flagged order")
	}
}

func TestVerifyAndPlaceOrder_EmailFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(testProduct("prod_1", 49999, 10))
	env.mail.Err = errors.New("smtp relay down")

	req := signedVerifyRequest("pay_1", 499.99,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)

	order, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "user@example.com", req)
	if err != nil {
		t.Fatalf("VerifyAndPlaceOrder() error = %v, want success despite mail failure", err)
	}
	if order.PaymentStatus != models.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", order.PaymentStatus)
	}
	if !env.carts.ClearedFor("user_1") {
		t.Error("cart not cleared after mail failure")
	}
}

func TestHasPurchased(t *testing.T) {
	env := newTestEnv(
		testProduct("prod_1", 1000, 10),
		testProduct("prod_2", 1000, 0),
	)

	req := signedVerifyRequest("pay_1", 10.00,
		models.CheckoutItem{ProductID: "prod_1", Quantity: 1},
	)
	if _, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", req); err != nil {
		t.Fatalf("checkout failed: %v", err)
	}

	// A flagged order must not count as a purchase.
	flagged := signedVerifyRequest("pay_2", 10.00,
		models.CheckoutItem{ProductID: "prod_2", Quantity: 1},
	)
	if _, err := env.svc.VerifyAndPlaceOrder(context.Background(), "user_1", "", flagged); err == nil {
		t.Fatal("expected stock conflict for prod_2")
	}

	tests := []struct {
		name      string
		userID    string
		productID string
		expected  bool
	}{
		{"paid order counts", "user_1", "prod_1", true},
		{"flagged order does not count", "user_1", "prod_2", false},
		{"other user has not purchased", "user_2", "prod_1", false},
		{"unknown product", "user_1", "prod_ghost", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.svc.HasPurchased(context.Background(), tt.userID, tt.productID)
			if err != nil {
				t.Fatalf("HasPurchased() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("HasPurchased() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInitiateCheckout(t *testing.T) {
	env := newTestEnv()
	env.gw.NextOrderID = "order_rzp_42"

	resp, err := env.svc.InitiateCheckout(context.Background(), &models.InitiateCheckoutRequest{
		Amount: 499.99,
		Items:  []models.CheckoutItem{{ProductID: "prod_1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("InitiateCheckout() error = %v", err)
	}

	if resp.Amount != 49999 {
		t.Errorf("minor-unit amount = %d, want 49999", resp.Amount)
	}
	if resp.Currency != "INR" {
		t.Errorf("currency = %s, want INR (default)", resp.Currency)
	}
	if resp.OrderID != "order_rzp_42" {
		t.Errorf("order id = %s, want order_rzp_42", resp.OrderID)
	}
	if resp.KeyID != "rzp_test_key" {
		t.Errorf("key id = %s, want public key id", resp.KeyID)
	}
}

func TestInitiateCheckout_InvalidInput(t *testing.T) {
	env := newTestEnv()

	tests := []struct {
		name string
		req  *models.InitiateCheckoutRequest
	}{
		{"zero amount", &models.InitiateCheckoutRequest{
			Amount: 0,
			Items:  []models.CheckoutItem{{ProductID: "p", Quantity: 1}},
		}},
		{"negative amount", &models.InitiateCheckoutRequest{
			Amount: -5,
			Items:  []models.CheckoutItem{{ProductID: "p", Quantity: 1}},
		}},
		{"empty items", &models.InitiateCheckoutRequest{Amount: 100}},
		{"zero quantity item", &models.InitiateCheckoutRequest{
			Amount: 100,
			Items:  []models.CheckoutItem{{ProductID: "p", Quantity: 0}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := env.svc.InitiateCheckout(context.Background(), tt.req); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if len(env.gw.Created) != 0 {
		t.Errorf("gateway called %d times for invalid input", len(env.gw.Created))
	}
}

func TestInitiateCheckout_GatewayFailure(t *testing.T) {
	env := newTestEnv()
	env.gw.Err = errors.New("gateway unreachable")

	_, err := env.svc.InitiateCheckout(context.Background(), &models.InitiateCheckoutRequest{
		Amount: 100,
		Items:  []models.CheckoutItem{{ProductID: "p", Quantity: 1}},
	})
	if err == nil {
		t.Fatal("expected error from gateway failure")
	}
	if apperr.IsValidation(err) {
		t.Error("gateway failure must not surface as a client error")
	}
}
