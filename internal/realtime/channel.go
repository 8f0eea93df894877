// Package realtime is the push side of the tracker: committed mutations are
// published as ChangeEvents on a topic exchange, and clients subscribe to
// the stream for their own user id. Delivery order relative to in-flight
// write confirmations is not guaranteed; consumers reconcile.
package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

type Channel struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
}

func NewChannel(url, exchangeName string) (*Channel, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	c := &Channel{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
	}

	// Topic exchange so subscribers can bind per user ("<user>.*") or per
	// user and table ("<user>.subscriptions").
	err = channel.ExchangeDeclare(
		exchangeName, // name
		"topic",      // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	return c, nil
}

// Publish emits a change event on the stream for its user and table.
func (c *Channel) Publish(ctx context.Context, ev *ChangeEvent) error {
	body, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	routingKey := ev.UserID + "." + ev.Table
	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Transient,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	slog.DebugContext(ctx, "Published change event",
		"table", ev.Table,
		"change_type", ev.ChangeType,
		"user_id", ev.UserID)
	return nil
}

// Subscribe opens a per-user event stream. Events arrive on the returned
// channel until cancel is called or ctx is done; the channel is closed on
// teardown. Undecodable deliveries are logged and skipped, never fatal.
func (c *Channel) Subscribe(ctx context.Context, userID string) (<-chan *ChangeEvent, func(), error) {
	// Exclusive auto-delete queue; the stream lives exactly as long as the
	// consuming component.
	q, err := c.channel.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := c.channel.QueueBind(q.Name, userID+".*", c.exchangeName, false, nil); err != nil {
		return nil, nil, fmt.Errorf("bind queue: %w", err)
	}

	deliveries, err := c.channel.Consume(
		q.Name,
		"",    // consumer tag
		true,  // auto-ack; events are best-effort notifications
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("start consuming: %w", err)
	}

	subCtx, cancel := context.WithCancel(ctx)
	events := make(chan *ChangeEvent)

	go func() {
		defer close(events)
		for {
			select {
			case <-subCtx.Done():
				return
			case delivery, ok := <-deliveries:
				if !ok {
					return
				}
				ev, err := ChangeEventFromJSON(delivery.Body)
				if err != nil {
					slog.Warn("Dropping undecodable change event", "error", err)
					continue
				}
				select {
				case events <- ev:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	slog.Info("Subscribed to change events", "user_id", userID, "queue", q.Name)
	return events, cancel, nil
}

func (c *Channel) Close() error {
	var firstErr error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			firstErr = err
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
