package events

import (
	"context"
	"testing"
	"time"

	kafka_config "sweethomes/pkg/kafka/config"
	"sweethomes/pkg/logger"
)

func TestNew_DisabledIsNoop(t *testing.T) {
	p, err := New(&kafka_config.Config{}, "topic", "site", logger.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := p.(noopPublisher); !ok {
		t.Errorf("expected noop publisher, got %T", p)
	}

	p.Publish(context.Background(), Event{Type: BookingSubmitted, Key: "k", Data: map[string]string{}})
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestNew_NilConfigIsNoop(t *testing.T) {
	p, err := New(nil, "topic", "site", logger.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := p.(noopPublisher); !ok {
		t.Errorf("expected noop publisher, got %T", p)
	}
}

func TestNew_KafkaPublisher(t *testing.T) {
	cfg := &kafka_config.Config{
		Brokers:              []string{"localhost:9092"},
		ProducerMaxAttempts:  1,
		ProducerBatchTimeout: 10 * time.Millisecond,
		ProducerRequireAcks:  1,
		ProducerCompression:  "none",
	}

	p, err := New(cfg, "sweethomes.activity", "admin", logger.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := p.(*kafkaPublisher); !ok {
		t.Fatalf("expected kafka publisher, got %T", p)
	}

	// An empty key is rejected before any network I/O and only logged.
	p.Publish(context.Background(), Event{Type: PriceUpdated, Data: map[string]any{"room": "1 Bedroom"}})

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
