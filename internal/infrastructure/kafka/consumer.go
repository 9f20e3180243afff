package kafka

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

type MessageHandler func(ctx context.Context, key, value []byte) error

// Consumer reads a topic as part of a consumer group. Offsets are committed
// only after the handler returns, so delivery is at least once.
type Consumer struct {
	reader     *kafka.Reader
	maxRetries int
	backoff    time.Duration
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	if topic == "" {
		topic = DefaultTopic
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6, // 10MB
		MaxWait:  500 * time.Millisecond,
	})
	return &Consumer{reader: reader, maxRetries: 3, backoff: time.Second}
}

func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Consumer] Error reading message: %v", err)
			continue
		}

		c.handle(ctx, handler, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Consumer] Failed to commit offset %d: %v", msg.Offset, err)
		}
	}
}

// handle retries a failing handler, then gives up on the message so one
// poison event cannot stall the partition.
func (c *Consumer) handle(ctx context.Context, handler MessageHandler, msg kafka.Message) {
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		err := handler(ctx, msg.Key, msg.Value)
		if err == nil {
			return
		}
		log.Printf("[Consumer] Attempt %d/%d failed for offset %d: %v", attempt, c.maxRetries, msg.Offset, err)
		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}
	log.Printf("[Consumer] Dropping message at offset %d after %d attempts", msg.Offset, c.maxRetries)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
