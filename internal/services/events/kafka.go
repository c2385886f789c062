package events

import (
	"context"
	"fmt"
	"time"

	"cardguard/internal/logging"
	"cardguard/internal/metrics"
	"cardguard/internal/models"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

const flushTimeout = 5 * time.Second

// producer is the part of *kgo.Client the publisher uses.
type producer interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

// KafkaPublisher produces one record per event, keyed by merchant so a
// merchant's events stay ordered within a partition.
type KafkaPublisher struct {
	client  producer
	topic   string
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures the KafkaPublisher.
type Option func(*KafkaPublisher)

func WithLogger(logger *zap.Logger) Option {
	return func(p *KafkaPublisher) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *KafkaPublisher) {
		p.metrics = m
	}
}

func NewKafkaPublisher(brokers []string, topic string, opts ...Option) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(10*time.Millisecond),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}
	return newKafkaPublisher(client, topic, opts...), nil
}

func newKafkaPublisher(client producer, topic string, opts ...Option) *KafkaPublisher {
	p := &KafkaPublisher{
		client: client,
		topic:  topic,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *KafkaPublisher) Publish(_ context.Context, event *models.TransactionEvent) {
	value, err := NewMessage(event).Encode()
	if err != nil {
		p.fail(event, err)
		return
	}

	record := &kgo.Record{Topic: p.topic, Value: value}
	if event.MerchantAPIKey != nil {
		record.Key = []byte(*event.MerchantAPIKey)
	}

	// The request context ends with the response; delivery outlives it.
	p.client.Produce(context.Background(), record, func(_ *kgo.Record, err error) {
		if err != nil {
			p.fail(event, err)
		}
	})
}

// Close flushes buffered records and closes the client.
func (p *KafkaPublisher) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka flush incomplete", zap.Error(err))
	}
	p.client.Close()
}

func (p *KafkaPublisher) fail(event *models.TransactionEvent, err error) {
	p.metrics.IncrementPublishFailure()
	p.logger.Error("failed to publish transaction event",
		zap.String("transaction_id", event.Reference),
		logging.MaskedKey("merchant_key", deref(event.MerchantAPIKey)),
		zap.Error(err),
	)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
