package service

import (
	"context"

	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListOrders retrieves the user's orders, newest first. The first page is
// served cache-aside; deeper pages always hit the database.
func (s *CheckoutService) ListOrders(ctx context.Context, userID string, limit, offset int) ([]*models.Order, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	if s.config.Features.EnableOrderCaching && offset == 0 {
		if orders, err := s.cache.GetByUserID(ctx, userID); err == nil && orders != nil {
			s.logger.Debug("orders served from cache", "user_id", userID)
			return orders, len(orders), nil
		}
	}

	filter := &models.OrderListFilter{UserID: userID, Limit: limit, Offset: offset}
	orders, total, err := s.orders.ListByUser(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if s.config.Features.EnableOrderCaching && offset == 0 {
		if err := s.cache.SetByUserID(ctx, userID, orders); err != nil {
			// Log but don't fail
			s.logger.Error("failed to cache orders", "user_id", userID, "error", err.Error())
		}
	}

	return orders, total, nil
}

// HasPurchased reports whether the user has a paid order containing the
// product. The storefront uses this to gate review eligibility; flagged and
// pending orders never count.
func (s *CheckoutService) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	return s.orders.HasPurchased(ctx, userID, productID)
}
