package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// EventType names an order event.
type EventType string

const (
	EventTypeOrderCreated       EventType = "order.created"
	EventTypeOrderStatusChanged EventType = "order.status_changed"
)

// OrderEvent is the envelope written to the orders topic.
type OrderEvent struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    int64           `json:"customer_id"`
	Data          json.RawMessage `json:"data"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id,omitempty"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes order events keyed by order ID, so all events of
// one order land on the same partition in order.
type KafkaPublisher struct {
	writer messageWriter
	logger *logging.Logger
	now    func() time.Time
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.OrdersTopic,
		Balancer:     &kafka.Hash{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		logger: logger,
		now:    time.Now,
	}
}

func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.logger.Debug("Publishing order created event", logging.Fields{
		"order_id": order.ID,
	})

	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderCreated, order, data))
}

func (p *KafkaPublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previousStatus models.OrderStatus) error {
	p.logger.Debug("Publishing order status changed event", logging.Fields{
		"order_id":        order.ID,
		"previous_status": previousStatus,
		"new_status":      order.Status,
	})

	payload := struct {
		PreviousStatus models.OrderStatus `json:"previous_status"`
		NewStatus      models.OrderStatus `json:"new_status"`
		ApprovedBy     string             `json:"approved_by,omitempty"`
		TotalAmount    int64              `json:"total_amount"`
		Notes          string             `json:"notes,omitempty"`
	}{
		PreviousStatus: previousStatus,
		NewStatus:      order.Status,
		ApprovedBy:     order.ApprovedBy,
		TotalAmount:    order.TotalAmount,
		Notes:          order.Notes,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, p.createEvent(ctx, EventTypeOrderStatusChanged, order, data))
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, order *models.Order, data []byte) *OrderEvent {
	return &OrderEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		Data:          data,
		Timestamp:     p.now().UTC(),
		CorrelationID: logging.RequestID(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *OrderEvent) error {
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
			{Key: "customer_id", Value: []byte(strconv.FormatInt(event.CustomerID, 10))},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"order_id":   event.OrderID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"order_id":   event.OrderID,
	})

	return nil
}

func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when order events are disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderCreated(context.Context, *models.Order) error { return nil }

func (NoopPublisher) PublishOrderStatusChanged(context.Context, *models.Order, models.OrderStatus) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }
