package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/rcastellan/brokerage-api/internal/models"
)

// QuoteRepository defines the database operations the quote consumer needs
type QuoteRepository interface {
	GetInstrumentByTicker(ticker string) (*models.Instrument, error)
	UpsertMarketData(md *models.MarketData) error
}

// Consumer ingests daily quote events from the market data feed and upserts
// them into the marketdata table. Upserts are keyed by (instrument, date),
// so redelivered messages are harmless.
type Consumer struct {
	reader *kafka.Reader
	repo   QuoteRepository
}

// NewConsumer creates a new Kafka consumer for quote events
func NewConsumer(brokers []string, topic, groupID string, repo QuoteRepository) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		repo:   repo,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					// Context cancelled, normal shutdown. Close the reader so
					// the consumer group is released either way.
					return c.reader.Close()
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(msg kafka.Message) error {
	var event models.QuoteEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal quote event: %w", err)
	}

	if event.EventType != "QUOTE_UPDATED" {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	md, err := c.convertEventToMarketData(event)
	if err != nil {
		return fmt.Errorf("failed to convert quote event: %w", err)
	}

	if err := c.repo.UpsertMarketData(md); err != nil {
		return fmt.Errorf("failed to save market data: %w", err)
	}

	log.Printf("Saved quote: %s close=%s date=%s",
		event.Ticker, md.Close, md.Date.Format("2006-01-02"))

	return nil
}

// convertEventToMarketData maps a QuoteEvent to a MarketData record,
// resolving the ticker to an instrument id
func (c *Consumer) convertEventToMarketData(event models.QuoteEvent) (*models.MarketData, error) {
	instrument, err := c.repo.GetInstrumentByTicker(event.Ticker)
	if err != nil {
		return nil, fmt.Errorf("unknown ticker %s: %w", event.Ticker, err)
	}

	high, err := decimal.NewFromString(event.High)
	if err != nil {
		return nil, fmt.Errorf("invalid high %s: %w", event.High, err)
	}
	low, err := decimal.NewFromString(event.Low)
	if err != nil {
		return nil, fmt.Errorf("invalid low %s: %w", event.Low, err)
	}
	open, err := decimal.NewFromString(event.Open)
	if err != nil {
		return nil, fmt.Errorf("invalid open %s: %w", event.Open, err)
	}
	close, err := decimal.NewFromString(event.Close)
	if err != nil {
		return nil, fmt.Errorf("invalid close %s: %w", event.Close, err)
	}

	// Previous close is optional in the feed; missing means the valuation
	// layer falls back to the current close.
	prevClose := decimal.Zero
	if event.PrevClose != "" {
		prevClose, err = decimal.NewFromString(event.PrevClose)
		if err != nil {
			return nil, fmt.Errorf("invalid previous close %s: %w", event.PrevClose, err)
		}
	}

	date, err := time.Parse("2006-01-02", event.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %s: %w", event.Date, err)
	}

	return &models.MarketData{
		InstrumentID:  instrument.ID,
		High:          high,
		Low:           low,
		Open:          open,
		Close:         close,
		PreviousClose: prevClose,
		Date:          date,
	}, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
