package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/penzflow/penzflow-sales-service/internal/config"
	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

// ApprovalEventType names a decision published by the management console.
type ApprovalEventType string

const (
	ApprovalEventApproved ApprovalEventType = "order.approved"
	ApprovalEventRejected ApprovalEventType = "order.rejected"
)

// ApprovalEvent is a manager's decision on an order awaiting approval.
type ApprovalEvent struct {
	ID        string            `json:"id"`
	Type      ApprovalEventType `json:"type"`
	OrderID   string            `json:"order_id"`
	Approver  string            `json:"approver"`
	Notes     string            `json:"notes"`
	Timestamp time.Time         `json:"timestamp"`
}

// ApprovalHandler applies approval decisions.
type ApprovalHandler interface {
	DecideOrder(ctx context.Context, id string, decision *models.ApprovalDecision) (*models.Order, error)
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// KafkaConsumer reads approval decisions and hands them to the order
// workflow. Decisions that fail are logged and skipped.
type KafkaConsumer struct {
	reader  messageReader
	handler ApprovalHandler
	logger  *logging.Logger
	stopCh  chan struct{}
}

func NewKafkaConsumer(cfg config.KafkaConfig, handler ApprovalHandler, logger *logging.Logger) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.ApprovalsTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})

	return &KafkaConsumer{
		reader:  reader,
		handler: handler,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting approval consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Approval consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			c.handleMessage(ctx, msg)
		}
	}
}

func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

func (c *KafkaConsumer) handleMessage(ctx context.Context, msg kafka.Message) {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event ApprovalEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to unmarshal event", logging.Fields{"error": err.Error()})
		return
	}

	var approve bool
	switch event.Type {
	case ApprovalEventApproved:
		approve = true
	case ApprovalEventRejected:
		approve = false
	default:
		c.logger.Debug("Ignoring unknown event type", logging.Fields{"type": event.Type})
		return
	}

	logger := c.logger.With(logging.Fields{
		"event_id": event.ID,
		"order_id": event.OrderID,
		"approver": event.Approver,
	})

	ctx = logging.WithRequestID(ctx, event.ID)
	order, err := c.handler.DecideOrder(ctx, event.OrderID, &models.ApprovalDecision{
		Approve:  approve,
		Approver: event.Approver,
		Notes:    event.Notes,
	})
	switch {
	case err == nil:
	case errors.IsValidation(err), errors.Is(err, errors.ErrForbidden):
		logger.Warn("Approval decision refused", logging.Fields{"error": err.Error()})
		return
	default:
		logger.Error("Failed to apply approval decision", logging.Fields{"error": err.Error()})
		return
	}

	logger.Info("Approval decision applied", logging.Fields{"status": order.Status})
}
