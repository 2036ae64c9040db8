package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/verdantcart/verdantcart-checkout-service/internal/config"
	"github.com/verdantcart/verdantcart-checkout-service/internal/logging"
	"github.com/verdantcart/verdantcart-checkout-service/internal/models"
)

// EventType represents the type of checkout event.
type EventType string

const (
	EventTypeCheckoutCompleted   EventType = "checkout.completed"
	EventTypeCheckoutStockFailed EventType = "checkout.stock_failed"
)

// CheckoutEvent is the envelope published for every finished checkout.
type CheckoutEvent struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Publisher publishes checkout lifecycle events.
type Publisher interface {
	PublishCheckoutCompleted(ctx context.Context, order *models.Order) error
	PublishStockFailed(ctx context.Context, order *models.Order, productID string) error
	Close() error
}

// KafkaPublisher publishes checkout events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *logging.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.CheckoutTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{writer: writer, logger: logger}
}

// PublishCheckoutCompleted announces a fully reconciled checkout.
func (p *KafkaPublisher) PublishCheckoutCompleted(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeCheckoutCompleted, order, data))
}

// PublishStockFailed announces a checkout flagged for a lost inventory race.
func (p *KafkaPublisher) PublishStockFailed(ctx context.Context, order *models.Order, productID string) error {
	payload := struct {
		Order     *models.Order `json:"order"`
		ProductID string        `json:"product_id"`
	}{Order: order, ProductID: productID}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(ctx, newEvent(EventTypeCheckoutStockFailed, order, data))
}

func (p *KafkaPublisher) publish(ctx context.Context, event *CheckoutEvent) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("failed to publish event",
			"event_id", event.ID,
			"event_type", string(event.Type),
			"order_id", event.OrderID,
			"error", err.Error(),
		)
		return err
	}

	p.logger.Info("event published",
		"event_id", event.ID,
		"event_type", string(event.Type),
		"order_id", event.OrderID,
	)
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func newEvent(eventType EventType, order *models.Order, data []byte) *CheckoutEvent {
	return &CheckoutEvent{
		ID:        "evt_" + uuid.NewString(),
		Type:      eventType,
		OrderID:   order.ID,
		UserID:    order.UserID,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// MockPublisher records events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*CheckoutEvent
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishCheckoutCompleted(ctx context.Context, order *models.Order) error {
	m.record(EventTypeCheckoutCompleted, order)
	return nil
}

func (m *MockPublisher) PublishStockFailed(ctx context.Context, order *models.Order, productID string) error {
	m.record(EventTypeCheckoutStockFailed, order)
	return nil
}

func (m *MockPublisher) Close() error { return nil }

func (m *MockPublisher) record(t EventType, order *models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, &CheckoutEvent{Type: t, OrderID: order.ID, UserID: order.UserID})
}

// ByType returns recorded events of one type.
func (m *MockPublisher) ByType(t EventType) []*CheckoutEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*CheckoutEvent
	for _, e := range m.Events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
