package kafka_config

import "time"

const (
	// Empty means events are not published
	DefaultKafkaBrokers = ""

	DefaultDLQTopic = ""

	// Producer defaults
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = 1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = true

	// Middleware defaults
	DefaultEnableMiddleware = true
)
