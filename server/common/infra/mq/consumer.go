package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Delivery handlers return nil to ack. A non-nil error nacks without requeue.
type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	channel *amqp.Channel
	queue   string
}

// NewConsumer declares a durable queue named queue and binds it to topic on exchange.
func NewConsumer(conn *amqp.Connection, exchange, queue, topic string) (*Consumer, error) {
	ch, err := OpenTopicChannel(conn, exchange)
	if err != nil {
		return nil, err
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}
	if err := ch.QueueBind(q.Name, topic, exchange, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("bind queue %s to %s: %w", q.Name, topic, err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("set qos: %w", err)
	}
	return &Consumer{channel: ch, queue: q.Name}, nil
}

// Run blocks until ctx is done or the broker closes the delivery channel.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	deliveries, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel for %s closed", c.queue)
			}
			if err := handle(ctx, d.Body); err != nil {
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (c *Consumer) Close() error {
	return c.channel.Close()
}
