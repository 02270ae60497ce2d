// Package notify publishes order lifecycle events to RabbitMQ. The broker is
// optional: a nil Publisher drops every event, so the API runs without one.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const exchange = "orders.events"

// Event is the envelope published for every order lifecycle change.
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// Publisher pushes events onto a topic exchange, routing key = event type.
type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker and declares the exchange. An empty URL
// returns a nil Publisher, which is safe to use.
func Dial(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

// Close releases the channel and connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Publish sends one event. Failures are logged, not returned: a broken
// broker must never fail the order flow.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) {
	if p == nil {
		return
	}

	body, err := json.Marshal(Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		log.Printf("ERROR: marshal event %s: %v", eventType, err)
		return
	}

	err = p.ch.PublishWithContext(ctx, exchange, eventType, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		ContentType:  "application/json",
		Body:         body,
	})
	if err != nil {
		log.Printf("ERROR: publish event %s: %v", eventType, err)
	}
}
