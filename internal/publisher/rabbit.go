package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/nwca/sanmar-adapters/internal/metrics"
	"github.com/nwca/sanmar-adapters/pkg/model"
)

type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitPublisher publishes events to a RabbitMQ topic exchange, using the
// subject as routing key.
type RabbitPublisher struct {
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	service  string
	logger   *zap.Logger
}

// NewRabbitPublisher dials url and declares a durable topic exchange.
func NewRabbitPublisher(url, exchange, service string, logger *zap.Logger) (*RabbitPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %q: %w", exchange, err)
	}

	return &RabbitPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		service:  service,
		logger:   logger,
	}, nil
}

func (p *RabbitPublisher) PublishEnvelope(ctx context.Context, subject string, env *model.Envelope) error {
	body, err := json.Marshal(env)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	return p.publish(ctx, subject, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID.String(),
		Type:         env.EventType,
		Timestamp:    env.Timestamp,
		AppId:        p.service,
		Body:         body,
	})
}

func (p *RabbitPublisher) Publish(ctx context.Context, subject string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		metrics.IncError("publisher", "marshal_failed")
		return err
	}
	return p.publish(ctx, subject, amqp.Publishing{
		ContentType: "application/json",
		AppId:       p.service,
		Body:        body,
	})
}

func (p *RabbitPublisher) publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	start := time.Now()
	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	metrics.ObservePublish("rabbitmq", start)
	if err != nil {
		p.logger.Error("publisher.rabbit_publish_failed",
			zap.String("exchange", p.exchange),
			zap.String("routing_key", routingKey),
			zap.Error(err))
		metrics.IncEvent("rabbitmq", routingKey, "error")
		return err
	}
	p.logger.Debug("publisher.rabbit_publish_success",
		zap.String("routing_key", routingKey),
		zap.String("type", msg.Type))
	metrics.IncEvent("rabbitmq", routingKey, "ok")
	return nil
}

func (p *RabbitPublisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
