package repository

import (
	"context"
	"sync"
	"time"

	"github.com/verdantcart/verdantcart-checkout-service/internal/apperr"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// Mock implementations for testing. The product mock reproduces the
// conditional-update semantics of the Postgres repository under a mutex so
// concurrency tests exercise the same win-or-miss behavior.

type MockOrderRepository struct {
	mu         sync.Mutex
	orders     map[string]*models.Order
	paymentIDs map[string]bool
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders:     make(map[string]*models.Order),
		paymentIDs: make(map[string]bool),
	}
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.paymentIDs[order.GatewayPaymentID] {
		return nil, apperr.ErrDuplicatePayment
	}
	order.ID = generateOrderID()
	order.CreatedAt = time.Now()
	m.orders[order.ID] = order
	m.paymentIDs[order.GatewayPaymentID] = true
	return order, nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if order, ok := m.orders[id]; ok {
		return order, nil
	}
	return nil, apperr.ErrNotFound
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []*models.Order
	for _, order := range m.orders {
		if order.UserID == filter.UserID {
			orders = append(orders, order)
		}
	}
	return orders, len(orders), nil
}

func (m *MockOrderRepository) MarkStockIssue(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return apperr.ErrNotFound
	}
	order.PaymentStatus = models.PaymentStatusStockIssue
	return nil
}

func (m *MockOrderRepository) HasPurchased(ctx context.Context, userID, productID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, order := range m.orders {
		if order.UserID != userID || order.PaymentStatus != models.PaymentStatusPaid {
			continue
		}
		for _, item := range order.Items {
			if item.ProductID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}

// Count returns the number of stored orders.
func (m *MockOrderRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

type MockProductRepository struct {
	mu       sync.Mutex
	products map[string]*models.Product

	// ids GetByID should pretend were deleted, for fault injection
	missing map[string]bool
}

// MarkMissing makes GetByID report the product as deleted while leaving its
// row in place for stock assertions.
func (m *MockProductRepository) MarkMissing(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[id] = true
}

func NewMockProductRepository(products ...*models.Product) *MockProductRepository {
	m := &MockProductRepository{
		products: make(map[string]*models.Product),
		missing:  make(map[string]bool),
	}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok || m.missing[id] {
		return nil, apperr.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return false, nil
	}
	if p.Quantity < qty {
		return false, nil
	}
	p.Quantity -= qty
	p.PurchaseCount += int64(qty)
	return true, nil
}

func (m *MockProductRepository) IncrementStock(ctx context.Context, productID string, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[productID]
	if !ok {
		return apperr.ErrNotFound
	}
	p.Quantity += qty
	p.PurchaseCount -= int64(qty)
	return nil
}

// Stock returns the current quantity for assertions.
func (m *MockProductRepository) Stock(productID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[productID]; ok {
		return p.Quantity
	}
	return 0
}

// PurchaseCount returns the cumulative units sold for assertions.
func (m *MockProductRepository) PurchaseCount(productID string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.products[productID]; ok {
		return p.PurchaseCount
	}
	return 0
}

type MockCartRepository struct {
	mu      sync.Mutex
	Cleared []string
}

func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{}
}

func (m *MockCartRepository) Clear(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Cleared = append(m.Cleared, userID)
	return nil
}

// ClearedFor reports whether the user's cart was cleared.
func (m *MockCartRepository) ClearedFor(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.Cleared {
		if id == userID {
			return true
		}
	}
	return false
}

type MockEphemeralStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMockEphemeralStore() *MockEphemeralStore {
	return &MockEphemeralStore{data: make(map[string]string)}
}

func (m *MockEphemeralStore) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *MockEphemeralStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *MockEphemeralStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type MockOrderCache struct {
	mu          sync.Mutex
	byUser      map[string][]*models.Order
	Invalidated []string
}

func NewMockOrderCache() *MockOrderCache {
	return &MockOrderCache{byUser: make(map[string][]*models.Order)}
}

func (m *MockOrderCache) GetByUserID(ctx context.Context, userID string) ([]*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byUser[userID], nil
}

func (m *MockOrderCache) SetByUserID(ctx context.Context, userID string, orders []*models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byUser[userID] = orders
	return nil
}

func (m *MockOrderCache) InvalidateByUserID(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byUser, userID)
	m.Invalidated = append(m.Invalidated, userID)
	return nil
}
