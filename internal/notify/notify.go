// Package notify delivers the toast messages the storefront shows after cart
// and catalog actions.
package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Katyxel/add-basket/internal/session"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Variant string

const (
	VariantSuccess Variant = "success"
	VariantGreen   Variant = "green"
)

type Notification struct {
	Variant  Variant `json:"variant"`
	Title    string  `json:"title"`
	Subtitle string  `json:"subtitle"`
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(ctx context.Context, n Notification) error {
	l.logger.Info("notification",
		zap.String("session_id", session.ID(ctx)),
		zap.String("variant", string(n.Variant)),
		zap.String("title", n.Title),
		zap.String("subtitle", n.Subtitle))
	return nil
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes notifications keyed by session id so that one
// session's toasts stay ordered within a partition.
type KafkaNotifier struct {
	writer messageWriter
}

func NewKafkaNotifier(topic string, brokers ...string) *KafkaNotifier {
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (k *KafkaNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification failed: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(session.ID(ctx)),
		Value: payload,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish notification failed: %w", err)
	}
	return nil
}

func (k *KafkaNotifier) Close() error {
	return k.writer.Close()
}

// Multi fans a notification out to every notifier. Failures are logged and
// swallowed: a lost toast never fails the cart action behind it.
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

func NewMulti(logger *zap.Logger, notifiers ...Notifier) *Multi {
	return &Multi{notifiers: notifiers, logger: logger}
}

func (m *Multi) Notify(ctx context.Context, n Notification) error {
	for _, notifier := range m.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			m.logger.Warn("notification delivery failed",
				zap.String("title", n.Title),
				zap.Error(err))
		}
	}
	return nil
}
