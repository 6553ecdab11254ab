package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Katyxel/add-basket/internal/session"
	amqp "github.com/rabbitmq/amqp091-go"
)

type amqpPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// AMQPNotifier publishes notifications to a RabbitMQ queue on the default
// exchange.
type AMQPNotifier struct {
	ch    amqpPublisher
	queue string
	close func() error
}

// DialAMQP connects to the broker and declares a durable queue.
func DialAMQP(url, queue string) (*AMQPNotifier, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}

	return &AMQPNotifier{
		ch:    ch,
		queue: queue,
		close: func() error {
			ch.Close()
			return conn.Close()
		},
	}, nil
}

func (a *AMQPNotifier) Notify(ctx context.Context, n Notification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification failed: %w", err)
	}

	err = a.ch.PublishWithContext(ctx, "", a.queue, false, false, amqp.Publishing{
		ContentType:   "application/json",
		CorrelationId: session.ID(ctx),
		Body:          body,
	})
	if err != nil {
		return fmt.Errorf("publish notification failed: %w", err)
	}
	return nil
}

func (a *AMQPNotifier) Close() error {
	if a.close == nil {
		return nil
	}
	return a.close()
}
