package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	commonlog "syscourse/server/common/log"
)

// EventPublisher streams an event onto topic. Callers treat failures as non-fatal.
type EventPublisher interface {
	StreamEvent(ctx context.Context, topic, eventType string, eventContext map[string]any) error
	Close() error
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	mu       sync.Mutex
	channel  *amqp.Channel
	exchange string
	now      func() time.Time
}

func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	ch, err := OpenTopicChannel(conn, exchange)
	if err != nil {
		return nil, err
	}
	return &AMQPPublisher{conn: conn, channel: ch, exchange: exchange, now: time.Now}, nil
}

// StreamEvent publishes with routing key = topic.
func (p *AMQPPublisher) StreamEvent(ctx context.Context, topic, eventType string, eventContext map[string]any) error {
	body, err := json.Marshal(NewEvent(eventType, eventContext, p.now()))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.channel.PublishWithContext(ctx, p.exchange, topic, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    p.now(),
		Type:         eventType,
	})
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NopPublisher logs events instead of sending them. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) StreamEvent(_ context.Context, topic, eventType string, eventContext map[string]any) error {
	commonlog.Infof("event not published (no broker): topic=%s type=%s context=%v", topic, eventType, eventContext)
	return nil
}

func (NopPublisher) Close() error { return nil }
