// Package events publishes created invoices to a message topic and builds
// the Kafka transport shared with the ingestion tool.
package events

import (
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// NewKafkaPublisher returns a watermill publisher writing raw payloads to brokers.
func NewKafkaPublisher(brokers []string, log *slog.Logger) (message.Publisher, error) {
	cfg := kafka.DefaultSaramaSyncPublisherConfig()
	cfg.Producer.Return.Successes = true

	pub, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:               brokers,
		Marshaler:             kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg,
	}, NewLogger(log))
	if err != nil {
		return nil, fmt.Errorf("events: new kafka publisher: %w", err)
	}
	return pub, nil
}

// NewKafkaSubscriber returns a watermill subscriber that joins group and
// starts from the oldest retained offset when the group has none.
func NewKafkaSubscriber(brokers []string, group string, log *slog.Logger) (message.Subscriber, error) {
	cfg := kafka.DefaultSaramaSubscriberConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               brokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: cfg,
		ConsumerGroup:         group,
	}, NewLogger(log))
	if err != nil {
		return nil, fmt.Errorf("events: new kafka subscriber: %w", err)
	}
	return sub, nil
}

// slogAdapter bridges *slog.Logger to watermill.LoggerAdapter.
type slogAdapter struct{ log *slog.Logger }

// NewLogger wraps log for watermill components. A nil log uses slog.Default.
func NewLogger(log *slog.Logger) watermill.LoggerAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &slogAdapter{log: log}
}

func (a *slogAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(fieldsToArgs(fields), "error", err)...)
}
func (a *slogAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Info(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debug(msg, fieldsToArgs(fields)...)
}
func (a *slogAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &slogAdapter{log: a.log.With(fieldsToArgs(fields)...)}
}

func fieldsToArgs(fields watermill.LogFields) []any {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return args
}
