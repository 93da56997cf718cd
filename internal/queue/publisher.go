package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends events to a durable queue.  Each publish dials its own
// connection, so a broker outage only affects the events sent during it.
// A Publisher with an empty URL drops events silently.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger
	now   func() time.Time
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, queue: queue, log: log, now: time.Now}
}

// Encode builds the message body for payload.
func Encode(eventType string, payload any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: eventType, OccurredAt: at.UTC(), Payload: raw})
}

// Publish marshals payload into an Envelope and sends it persistently.
// Errors are logged and returned; callers treat them as non-fatal.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload any) error {
	if p == nil || p.url == "" {
		return nil
	}
	at := p.now()
	body, err := Encode(eventType, payload, at)
	if err != nil {
		p.log.Error("queue: marshal event failed", "type", eventType, "error", err)
		return err
	}

	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("queue: dial failed", "type", eventType, "error", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("queue: channel open failed", "error", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		p.log.Warn("queue: declare failed", "queue", p.queue, "error", err)
		return err
	}

	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    at.UTC(),
		Type:         eventType,
		Body:         body,
	})
	if err != nil {
		p.log.Warn("queue: publish failed", "type", eventType, "error", err)
		return err
	}
	p.log.Debug("queue: event published", "type", eventType)
	return nil
}
