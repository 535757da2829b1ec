package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const userEventsQueue = "user.events"

// Publisher pushes committed-mutation events onto the user.events queue.
// It never panics; any error is logged and returned so callers can ignore
// failures without interrupting the main request flow.
type Publisher struct {
	url string
	log *slog.Logger
}

func NewPublisher(url string, log *slog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// Publish delivers one event, marked persistent so it survives broker
// restarts. The queue declare is idempotent.
func (p *Publisher) Publish(ctx context.Context, ev UserEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn("rabbitmq channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		userEventsQueue, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		p.log.Warn("rabbitmq queue declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		p.log.Warn("marshal event failed", "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",              // default exchange
		userEventsQueue, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		pub,
	); err != nil {
		p.log.Warn("rabbitmq publish failed", "err", err)
		return err
	}
	return nil
}
