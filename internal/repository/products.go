package repository

import (
	"context"
	"database/sql"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// PostgresProductRepository implements ProductRepository using PostgreSQL.
type PostgresProductRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresProductRepository creates a new PostgreSQL product repository.
func NewPostgresProductRepository(db *sql.DB, logger *logging.Logger) *PostgresProductRepository {
	return &PostgresProductRepository{db: db, logger: logger}
}

// GetByID retrieves a product by id.
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `
		SELECT id, name, price_amount, price_currency, discount, quantity,
		       purchase_count, updated_at
		FROM products
		WHERE id = $1
	`
	var p models.Product
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Price.Amount,
		&p.Price.Currency,
		&p.Discount,
		&p.Quantity,
		&p.PurchaseCount,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DecrementStock is the concurrency-safety primitive for checkout: a single
// conditional update that only matches while enough stock remains. Two racing
// checkouts for the last unit cannot both match the quantity predicate.
func (r *PostgresProductRepository) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	query := `
		UPDATE products
		SET quantity = quantity - $2,
		    purchase_count = purchase_count + $2,
		    updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`
	result, err := r.db.ExecContext(ctx, query, productID, qty)
	if err != nil {
		r.logger.Error("stock decrement failed",
			"product_id", productID,
			"quantity", qty,
			"error", err.Error(),
		)
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		r.logger.Warn("stock decrement matched no rows",
			"product_id", productID,
			"quantity", qty,
		)
		return false, nil
	}
	return true, nil
}

// IncrementStock reverses a decrement during compensation. Purchase count is
// rolled back as well so the counter only reflects completed checkouts.
func (r *PostgresProductRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	query := `
		UPDATE products
		SET quantity = quantity + $2,
		    purchase_count = purchase_count - $2,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, productID, qty)
	if err != nil {
		return err
	}
	affected, _ := result.RowsAffected()
	if affected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
