package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

const pqUniqueViolation = "23505"

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresOrderRepository creates a new PostgreSQL order repository.
func NewPostgresOrderRepository(db *sql.DB, logger *logging.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{db: db, logger: logger}
}

// Create stores a new order. The gateway payment id carries a unique index;
// a second verify for the same payment surfaces as ErrDuplicatePayment.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	order.ID = generateOrderID()
	order.CreatedAt = time.Now()

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}
	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO orders (
			id, user_id, items, total_amount, total_currency, shipping_address,
			gateway_order_id, gateway_payment_id, gateway_signature,
			payment_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		itemsJSON,
		order.Total.Amount,
		order.Total.Currency,
		shippingJSON,
		order.GatewayOrderID,
		order.GatewayPaymentID,
		order.GatewaySignature,
		order.PaymentStatus,
		order.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return nil, apperr.ErrDuplicatePayment
		}
		r.logger.Error("failed to create order",
			"user_id", order.UserID,
			"gateway_payment_id", order.GatewayPaymentID,
			"error", err.Error(),
		)
		return nil, err
	}

	r.logger.Info("order created",
		"order_id", order.ID,
		"user_id", order.UserID,
		"total", order.Total.Amount,
	)
	return order, nil
}

// GetByID retrieves an order by its unique identifier.
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `
		SELECT id, user_id, items, total_amount, total_currency, shipping_address,
		       gateway_order_id, gateway_payment_id, gateway_signature,
		       payment_status, created_at
		FROM orders
		WHERE id = $1
	`
	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to fetch order", "order_id", id, "error", err.Error())
		return nil, err
	}
	return order, nil
}

// ListByUser retrieves the user's orders, newest first.
func (r *PostgresOrderRepository) ListByUser(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, filter.UserID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, items, total_amount, total_currency, shipping_address,
		       gateway_order_id, gateway_payment_id, gateway_signature,
		       payment_status, created_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, filter.UserID, filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// MarkStockIssue flags the whole order after a lost inventory race.
func (r *PostgresOrderRepository) MarkStockIssue(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_status = $2 WHERE id = $1`,
		id, models.PaymentStatusStockIssue,
	)
	if err != nil {
		r.logger.Error("failed to flag order", "order_id", id, "error", err.Error())
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperr.ErrNotFound
	}
	r.logger.Warn("order flagged for stock issue", "order_id", id)
	return nil
}

// HasPurchased reports whether the user has a paid order containing the
// product. Used to gate review eligibility.
func (r *PostgresOrderRepository) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM orders o, jsonb_array_elements(o.items) item
			WHERE o.user_id = $1
			  AND o.payment_status = $2
			  AND item->>'product_id' = $3
		)
	`
	var purchased bool
	err := r.db.QueryRowContext(ctx, query, userID, models.PaymentStatusPaid, productID).Scan(&purchased)
	if err != nil {
		return false, err
	}
	return purchased, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var itemsJSON, shippingJSON []byte

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&order.Total.Amount,
		&order.Total.Currency,
		&shippingJSON,
		&order.GatewayOrderID,
		&order.GatewayPaymentID,
		&order.GatewaySignature,
		&order.PaymentStatus,
		&order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shippingJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}
	return &order, nil
}

func generateOrderID() string {
	return "ord_" + uuid.NewString()
}
