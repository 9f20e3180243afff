package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
)

// ============================================
// Retry Tests
// ============================================

func TestConsumer_HandleRetriesUntilSuccess(t *testing.T) {
	c := &Consumer{maxRetries: 3, backoff: time.Millisecond}
	calls := 0
	handler := func(ctx context.Context, key, value []byte) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	}

	c.handle(context.Background(), handler, kafka.Message{Key: []byte("k"), Value: []byte("v")})

	assert.Equal(t, 2, calls)
}

func TestConsumer_HandleGivesUpAfterMaxRetries(t *testing.T) {
	c := &Consumer{maxRetries: 3, backoff: time.Millisecond}
	calls := 0
	handler := func(ctx context.Context, key, value []byte) error {
		calls++
		return errors.New("poison")
	}

	c.handle(context.Background(), handler, kafka.Message{})

	assert.Equal(t, 3, calls)
}

func TestConsumer_HandleStopsOnCancel(t *testing.T) {
	c := &Consumer{maxRetries: 3, backoff: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	handler := func(ctx context.Context, key, value []byte) error {
		calls++
		cancel()
		return errors.New("fail")
	}

	c.handle(ctx, handler, kafka.Message{})

	assert.Equal(t, 1, calls)
}

func TestConsumer_HandlerReceivesKeyAndValue(t *testing.T) {
	c := &Consumer{maxRetries: 1}
	var gotKey, gotValue string
	handler := func(ctx context.Context, key, value []byte) error {
		gotKey, gotValue = string(key), string(value)
		return nil
	}

	c.handle(context.Background(), handler, kafka.Message{Key: []byte("order-1"), Value: []byte(`{"type":"OrderConfirmed"}`)})

	assert.Equal(t, "order-1", gotKey)
	assert.Equal(t, `{"type":"OrderConfirmed"}`, gotValue)
}
