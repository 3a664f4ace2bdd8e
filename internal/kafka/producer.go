package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// Producer handles publishing order events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishOrderCreated publishes an order created event
func (p *Producer) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	event := models.OrderEvent{
		EventType: "ORDER_CREATED",
		Order:     order,
		UserID:    order.UserID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, order.UserID, event)
}

// PublishOrderCancelled publishes an order cancelled event
func (p *Producer) PublishOrderCancelled(ctx context.Context, order *models.Order) error {
	event := models.OrderEvent{
		EventType: "ORDER_CANCELLED",
		Order:     order,
		UserID:    order.UserID,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, order.UserID, event)
}

func (p *Producer) publish(ctx context.Context, userID int, event models.OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	// Key by user id so all of a user's order events stay in one partition.
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(userID)),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
