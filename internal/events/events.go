package events

import (
	"context"
	"time"

	"sweethomes/pkg/kafka"
	kafka_config "sweethomes/pkg/kafka/config"
	kafka_middleware "sweethomes/pkg/kafka/middleware"
	"sweethomes/pkg/logger"
	"sweethomes/pkg/middleware"
)

const SchemaVersion = "1"

const (
	BookingSubmitted = "booking.submitted"
	BookingEdited    = "booking.edited"
	BookingDeleted   = "booking.deleted"
	PriceUpdated     = "price.updated"
	ImageUploaded    = "image.uploaded"
	ImageDeleted     = "image.deleted"
	AdminLoggedIn    = "admin.logged_in"
	AdminLoggedOut   = "admin.logged_out"
)

// Event is an audit record of a change made through this service. The
// backend stays the source of truth; events are informational.
type Event struct {
	Type string
	Key  string
	Data any
}

// Publisher never fails the caller: a lost event is logged, not returned.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) {}

func (noopPublisher) Close() error { return nil }

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
	log      *logger.Logger
}

// New returns a Kafka backed publisher, or a no-op one when no brokers are configured.
func New(cfg *kafka_config.Config, topic, source string, log *logger.Logger) (Publisher, error) {
	if cfg == nil || !cfg.Enabled() {
		log.Info("Kafka brokers not configured, activity events disabled")
		return NewNoopPublisher(), nil
	}

	producer, err := kafka.NewProducer(cfg, topic, log)
	if err != nil {
		return nil, err
	}
	if cfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(log))
	}

	cfg.LogConfiguration(log.Info)
	return &kafkaPublisher{producer: producer, source: source, log: log}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) {
	msg := kafka.NewMessage().
		WithKey(event.Key).
		WithValue(event.Data).
		WithEventType(event.Type).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(middleware.RequestID(ctx)).
		Build()

	// Publishing outlives the request that triggered it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.producer.Publish(pubCtx, msg); err != nil {
		p.log.Warn("Failed to publish activity event",
			"event_type", event.Type,
			"key", event.Key,
			"error", err,
		)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}
