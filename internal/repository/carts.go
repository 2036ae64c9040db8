package repository

import (
	"context"
	"database/sql"

	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
)

// PostgresCartRepository implements CartRepository using PostgreSQL.
type PostgresCartRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

// NewPostgresCartRepository creates a new PostgreSQL cart repository.
func NewPostgresCartRepository(db *sql.DB, logger *logging.Logger) *PostgresCartRepository {
	return &PostgresCartRepository{db: db, logger: logger}
}

// Clear empties the user's cart. Clearing an already empty cart is a no-op,
// which keeps the post-checkout clear idempotent.
func (r *PostgresCartRepository) Clear(ctx context.Context, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1`, userID,
	)
	if err != nil {
		r.logger.Error("failed to clear cart", "user_id", userID, "error", err.Error())
		return err
	}
	removed, _ := result.RowsAffected()
	r.logger.Info("cart cleared", "user_id", userID, "items_removed", removed)
	return nil
}
