package repository

import (
	"context"
	"time"

	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// OrderRepository persists immutable order records.
type OrderRepository interface {
	// Create stores a new order and fills in its generated id. A reused
	// gateway payment id returns apperr.ErrDuplicatePayment.
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByUser(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error)
	// MarkStockIssue flags an order after a lost inventory race. The only
	// mutation an order row ever sees.
	MarkStockIssue(ctx context.Context, id string) error
	// HasPurchased reports whether the user has a paid order containing the
	// product.
	HasPurchased(ctx context.Context, userID, productID string) (bool, error)
}

// ProductRepository reads catalog rows and adjusts stock.
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*models.Product, error)
	// DecrementStock applies a conditional decrement: quantity -= qty and
	// purchase_count += qty only when quantity >= qty, in one atomic update.
	// Returns false when the condition did not hold (a concurrent checkout
	// consumed the stock first).
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)
	// IncrementStock reverses a previous decrement during saga compensation.
	IncrementStock(ctx context.Context, productID string, qty int) error
}

// CartRepository mutates the purchaser's cart.
type CartRepository interface {
	Clear(ctx context.Context, userID string) error
}

// OrderCache is a read-through cache for order listings.
type OrderCache interface {
	GetByUserID(ctx context.Context, userID string) ([]*models.Order, error)
	SetByUserID(ctx context.Context, userID string, orders []*models.Order) error
	InvalidateByUserID(ctx context.Context, userID string) error
}

// EphemeralStore is short-lived, expiring key-value state (idempotency
// guards, revoked tokens). Backed by Redis so it survives horizontal scaling;
// never process-local memory.
type EphemeralStore interface {
	// SetNX stores the key only if absent, returning whether it was stored.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
}
