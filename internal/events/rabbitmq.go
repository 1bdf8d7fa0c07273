package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/example/retailadmin/internal/services"
)

const publishTimeout = 5 * time.Second

// RabbitPublisher publishes committed events to a topic exchange, using the
// event type as routing key.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	log      *slog.Logger

	mu sync.Mutex // amqp channels are not safe for concurrent publishing
}

// ConnectRabbitMQ dials the broker and declares the events exchange.
func ConnectRabbitMQ(url, exchange string, log *slog.Logger) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}

	log.Info("connected to rabbitmq", "exchange", exchange)
	return &RabbitPublisher{conn: conn, channel: channel, exchange: exchange, log: log}, nil
}

var _ services.Notifier = (*RabbitPublisher)(nil)

// Notify publishes evt as a persistent JSON message.
func (p *RabbitPublisher) Notify(ctx context.Context, evt services.Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx,
		p.exchange, // exchange
		evt.Type,   // routing key
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Timestamp:    evt.OccurredAt,
			Type:         evt.Type,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}
	p.log.Debug("event published", "type", evt.Type, "exchange", p.exchange)
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
