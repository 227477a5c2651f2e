package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vborodin/storefront/internal/domain"
)

// orderSubmittedEvent is the message written to the order events topic after a
// successful submission.
type orderSubmittedEvent struct {
	OrderID        string             `json:"order_id"`
	IdempotencyKey string             `json:"idempotency_key"`
	Lines          []domain.OrderLine `json:"lines"`
	Total          string             `json:"total"`
	Currency       string             `json:"currency"`
	SubmittedAt    time.Time          `json:"submitted_at"`
}

// KafkaPublisher emits order-submitted events. Publishing is best effort; the
// checkout flow logs failures and moves on.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) OrderSubmitted(ctx context.Context, conf *domain.OrderConfirmation, order *domain.OrderRequest) error {
	event := orderSubmittedEvent{
		OrderID:        conf.OrderID,
		IdempotencyKey: order.IdempotencyKey,
		Lines:          order.Lines,
		Total:          order.Total.StringFixed(2),
		Currency:       order.Currency,
		SubmittedAt:    time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(conf.OrderID),
		Value: value,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
