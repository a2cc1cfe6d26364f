package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fastygo/marketplace/domain"
	"github.com/fastygo/marketplace/internal/config"
)

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Publisher writes activity entries to a topic, keyed by subject so every
// event about one listing or order lands on the same partition.
type Publisher struct {
	writer messageWriter
	logger *zap.Logger
}

func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	writer := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafkago.RequireOne,
	}
	return &Publisher{writer: writer, logger: logger}
}

func newPublisherWithWriter(w messageWriter, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{writer: w, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, entries []domain.Activity) error {
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(entries))
	for _, entry := range entries {
		payload, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("encode activity %s: %w", entry.ID, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:   []byte(entry.SubjectID),
			Value: payload,
			Time:  entry.CreatedAt,
			Headers: []kafkago.Header{
				{Key: "kind", Value: []byte(entry.Kind)},
			},
		})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write activity batch: %w", err)
	}
	p.logger.Debug("activity published", zap.Int("entries", len(msgs)))
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
