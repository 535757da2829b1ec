package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler processes one decoded user event. Errors cause the message to be
// rejected without requeue so a poison message cannot spin the consumer.
type Handler func(ctx context.Context, ev UserEvent)

// StartConsumer connects to RabbitMQ, declares the durable user.events
// queue and consumes it until ctx is cancelled. It runs a reconnect loop
// with capped exponential backoff; individual processing errors are logged
// and the offending message rejected so the server keeps operating.
func StartConsumer(ctx context.Context, url string, handle Handler, log *slog.Logger) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("notification consumer dial failed", "err", err, "retry_in", backoff.String())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(ctx, conn, handle, log); err != nil {
			log.Warn("notification consume loop ended", "err", err)
			_ = conn.Close()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle Handler, log *slog.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(userEventsQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(userEventsQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			var ev UserEvent
			if err := json.Unmarshal(d.Body, &ev); err != nil {
				log.Warn("malformed event rejected", "err", err)
				_ = d.Nack(false, false) // do not requeue, avoids tight loops
				continue
			}
			handle(ctx, ev)
			_ = d.Ack(false)
		}
	}
}
