package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/events"
	"github.com/verdantcart/verdantcart-checkout-service/internal/gateway"
	"github.com/verdantcart/verdantcart-checkout-service/internal/invoice"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/mailer"
	"github.com/verdantcart/verdantcart-checkout-service/internal/metrics"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
	"github.com/verdantcart/verdantcart-checkout-service/internal/repository"
)

const (
	defaultCurrency = "INR"

	// Allowed drift between the client-declared total and the
	// server-recomputed one, in minor units. Covers client-side rounding of
	// discounted prices; anything beyond it is rejected.
	totalTolerance = 1

	paymentSeenPrefix = "payment_seen:"
	paymentSeenTTL    = 24 * time.Hour
)

// CheckoutService orchestrates the order placement workflow: gateway order
// initiation, payment verification, order persistence, stock reconciliation
// and post-purchase notification.
type CheckoutService struct {
	orders    repository.OrderRepository
	products  repository.ProductRepository
	carts     repository.CartRepository
	cache     repository.OrderCache
	ephemeral repository.EphemeralStore
	gateway   gateway.PaymentGateway
	renderer  invoice.Renderer
	mailer    mailer.Mailer
	publisher events.Publisher
	config    *config.Config
	logger    *logging.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	cache repository.OrderCache,
	ephemeral repository.EphemeralStore,
	gw gateway.PaymentGateway,
	renderer invoice.Renderer,
	m mailer.Mailer,
	publisher events.Publisher,
	cfg *config.Config,
) *CheckoutService {
	return &CheckoutService{
		orders:    orders,
		products:  products,
		carts:     carts,
		cache:     cache,
		ephemeral: ephemeral,
		gateway:   gw,
		renderer:  renderer,
		mailer:    m,
		publisher: publisher,
		config:    cfg,
		logger:    logging.New("checkout-service"),
	}
}

// InitiateCheckout converts the requested amount to minor units and registers
// a pending order with the payment gateway. Nothing is persisted locally, so
// abandoned checkouts never leave orphan order rows behind.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, req *models.InitiateCheckoutRequest) (*models.InitiateCheckoutResponse, error) {
	if err := ValidateInitiateCheckoutRequest(req); err != nil {
		return nil, err
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	minorUnits := models.NewMoney(req.Amount, currency).Amount

	s.logger.Info("initiating checkout",
		"amount", minorUnits,
		"currency", currency,
		"item_count", len(req.Items),
	)

	gatewayOrderID, err := s.gateway.CreateOrder(ctx, minorUnits, currency, req.Receipt, req.Notes)
	if err != nil {
		metrics.GatewayOrders.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("create gateway order: %w", err)
	}
	metrics.GatewayOrders.WithLabelValues("ok").Inc()

	return &models.InitiateCheckoutResponse{
		OrderID:  gatewayOrderID,
		Amount:   minorUnits,
		Currency: currency,
		KeyID:    s.gateway.KeyID(),
	}, nil
}

// VerifyAndPlaceOrder runs the whole post-payment workflow: signature
// verification, server-side re-pricing, order persistence, stock
// reconciliation with compensation, then best-effort notification and cart
// clearing. It either returns the placed order or an error describing the
// terminal state the checkout reached.
func (s *CheckoutService) VerifyAndPlaceOrder(ctx context.Context, userID, userEmail string, req *models.VerifyPaymentRequest) (*models.Order, error) {
	timer := prometheus.NewTimer(metrics.WorkflowDuration)
	defer timer.ObserveDuration()

	if err := ValidateVerifyPaymentRequest(req); err != nil {
		return nil, err
	}

	// Gate everything on the signature. A mismatch means the confirmation did
	// not come from the gateway: reject with zero writes.
	if !VerifySignature(s.config.Razorpay.KeySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		s.logger.Warn("payment signature mismatch",
			"user_id", userID,
			"gateway_order_id", req.RazorpayOrderID,
			"gateway_payment_id", req.RazorpayPaymentID,
		)
		metrics.CheckoutAttempts.WithLabelValues(metrics.OutcomeVerifyFailed).Inc()
		return nil, apperr.NewValidationError("razorpay_signature", "payment verification failed")
	}

	// Idempotency guard: one workflow per gateway payment id. The hold is
	// released if the checkout fails before the order row exists, so the
	// client can retry; once persisted, replays are duplicates.
	seenKey := paymentSeenPrefix + req.RazorpayPaymentID
	stored, err := s.ephemeral.SetNX(ctx, seenKey, userID, paymentSeenTTL)
	if err != nil {
		s.logger.Error("idempotency guard unavailable", "error", err.Error())
	} else if !stored {
		return nil, apperr.ErrDuplicatePayment
	}

	order, err := s.buildOrder(ctx, userID, req)
	if err != nil {
		s.ephemeral.Delete(ctx, seenKey)
		metrics.CheckoutAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	order, err = s.orders.Create(ctx, order)
	if err != nil {
		if !errors.Is(err, apperr.ErrDuplicatePayment) {
			// The user paid but no order exists; the gateway payment needs
			// manual reconciliation. Release the hold so a retry can land.
			s.ephemeral.Delete(ctx, seenKey)
			s.logger.Error("order persistence failed after verified payment",
				"user_id", userID,
				"gateway_payment_id", req.RazorpayPaymentID,
				"error", err.Error(),
			)
		}
		metrics.CheckoutAttempts.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	if err := s.reconcileStock(ctx, order); err != nil {
		metrics.CheckoutAttempts.WithLabelValues(metrics.OutcomeStockFailed).Inc()
		return nil, err
	}

	s.notify(ctx, order, userEmail)

	if s.config.Features.EnableCheckoutEvents {
		if err := s.publisher.PublishCheckoutCompleted(ctx, order); err != nil {
			// Log but don't fail
			s.logger.Error("failed to publish checkout event",
				"order_id", order.ID,
				"error", err.Error(),
			)
		}
	}

	// The cart is cleared regardless of how notification went.
	if err := s.carts.Clear(ctx, order.UserID); err != nil {
		s.logger.Error("failed to clear cart", "user_id", order.UserID, "error", err.Error())
	}

	if s.config.Features.EnableOrderCaching {
		s.cache.InvalidateByUserID(ctx, order.UserID)
	}

	metrics.CheckoutAttempts.WithLabelValues(metrics.OutcomeCompleted).Inc()
	s.logger.Info("checkout completed",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total", order.Total.Amount,
	)
	return order, nil
}

// buildOrder re-prices every line server-side. Client-declared prices are
// never persisted; the declared total is only compared against the
// recomputed one.
func (s *CheckoutService) buildOrder(ctx context.Context, userID string, req *models.VerifyPaymentRequest) (*models.Order, error) {
	items := make([]models.OrderItem, 0, len(req.Items))
	var currency string

	for _, reqItem := range req.Items {
		product, err := s.products.GetByID(ctx, reqItem.ProductID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, apperr.NewValidationError("items",
					fmt.Sprintf("product %s does not exist", reqItem.ProductID))
			}
			return nil, err
		}

		unitPrice := product.EffectivePrice()
		if currency == "" {
			currency = unitPrice.Currency
		} else if unitPrice.Currency != currency {
			return nil, apperr.NewValidationError("items", "items span multiple currencies")
		}

		items = append(items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    reqItem.Quantity,
			UnitPrice:   unitPrice,
			LineTotal:   unitPrice.Mul(reqItem.Quantity),
		})
	}

	order := &models.Order{
		UserID:           userID,
		Items:            items,
		ShippingAddress:  req.ShippingAddress,
		GatewayOrderID:   req.RazorpayOrderID,
		GatewayPaymentID: req.RazorpayPaymentID,
		GatewaySignature: req.RazorpaySignature,
		PaymentStatus:    models.PaymentStatusPaid,
	}
	order.Total = order.ComputeTotal()

	declared := models.NewMoney(req.DeclaredTotal, currency)
	if diff := declared.Amount - order.Total.Amount; diff > totalTolerance || diff < -totalTolerance {
		s.logger.Warn("declared total deviates from server pricing",
			"user_id", userID,
			"declared", declared.Amount,
			"computed", order.Total.Amount,
		)
		return nil, apperr.NewValidationError("total_amount", "declared total does not match current pricing")
	}

	return order, nil
}

// reconcileStock applies the conditional decrement per line item. The
// per-item fetch is only a fast-path check; the conditioned update is the
// correctness guarantee. On any item losing the race, decrements applied for
// earlier items are compensated (LIFO) before the order is flagged, so a
// flagged order never holds stock.
func (s *CheckoutService) reconcileStock(ctx context.Context, order *models.Order) error {
	var applied []models.OrderItem

	for _, item := range order.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err == nil && product.Quantity < item.Quantity {
			// Advisory check caught the lost race early; the conditional
			// update below would miss anyway.
			return s.failStock(ctx, order, applied, item.ProductID)
		}
		if err != nil {
			s.logger.Warn("product lookup failed during reconciliation",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"error", err.Error(),
			)
		}

		ok, err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			s.logger.Error("stock decrement errored",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"error", err.Error(),
			)
			return s.failStock(ctx, order, applied, item.ProductID)
		}
		if !ok {
			metrics.StockConflicts.Inc()
			return s.failStock(ctx, order, applied, item.ProductID)
		}
		applied = append(applied, item)
	}
	return nil
}

// failStock is the compensation path: re-increment everything this order
// already decremented, flag the order, publish the failure event and surface
// a stock conflict to the handler.
func (s *CheckoutService) failStock(ctx context.Context, order *models.Order, applied []models.OrderItem, productID string) error {
	for i := len(applied) - 1; i >= 0; i-- {
		item := applied[i]
		if err := s.products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error("compensation failed, stock left decremented",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"quantity", item.Quantity,
				"error", err.Error(),
			)
		}
	}

	if err := s.orders.MarkStockIssue(ctx, order.ID); err != nil {
		s.logger.Error("failed to flag order", "order_id", order.ID, "error", err.Error())
	}
	order.PaymentStatus = models.PaymentStatusStockIssue

	if s.config.Features.EnableCheckoutEvents {
		if err := s.publisher.PublishStockFailed(ctx, order, productID); err != nil {
			s.logger.Error("failed to publish stock failure event",
				"order_id", order.ID,
				"error", err.Error(),
			)
		}
	}

	s.logger.Warn("checkout lost inventory race",
		"order_id", order.ID,
		"product_id", productID,
	)
	return &apperr.StockConflictError{OrderID: order.ID, ProductID: productID}
}

// notify renders the invoice and emails it with the order summary. Both steps
// are best-effort; a dead SMTP relay never rolls back a placed order.
func (s *CheckoutService) notify(ctx context.Context, order *models.Order, userEmail string) {
	if !s.config.Features.EnableInvoiceEmail || userEmail == "" {
		return
	}

	pdf, err := s.renderer.Render(order)
	if err != nil {
		s.logger.Error("invoice rendering failed", "order_id", order.ID, "error", err.Error())
		pdf = nil
	}

	if err := s.mailer.SendOrderConfirmation(userEmail, order, pdf); err != nil {
		s.logger.Error("confirmation email failed",
			"order_id", order.ID,
			"error", err.Error(),
		)
	}
}
