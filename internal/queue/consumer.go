package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// Handler processes one decoded event. A returned error causes the message
// to be redelivered once.
type Handler func(ctx context.Context, ev ReservationEvent) error

// Consumer reads reservation events from a durable queue, reconnecting with
// exponential backoff whenever the broker goes away.
type Consumer struct {
	URL        string
	Queue      string
	Prefetch   int
	MinBackoff time.Duration
	MaxBackoff time.Duration
	Handle     Handler
	Log        zerolog.Logger
}

// NewConsumer returns a consumer with the default prefetch (50) and backoff
// window (1s to 30s).
func NewConsumer(url, queue string, h Handler, log zerolog.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	return &Consumer{
		URL:        url,
		Queue:      queue,
		Prefetch:   50,
		MinBackoff: time.Second,
		MaxBackoff: 30 * time.Second,
		Handle:     h,
		Log:        log.With().Str("component", "consumer").Logger(),
	}
}

// Run consumes until ctx is canceled and then returns ctx.Err().
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial broker failed")
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = nextBackoff(backoff, c.MaxBackoff)
			continue
		}
		backoff = c.MinBackoff

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn().Err(err).Msg("consume loop ended, reconnecting")
		if !sleep(ctx, c.MinBackoff) {
			return ctx.Err()
		}
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(c.Prefetch, 0, false); err != nil {
		c.Log.Warn().Err(err).Msg("set qos failed")
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.Log.Info().Str("queue", c.Queue).Msg("consuming")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.handleDelivery(ctx, d)
		}
	}
}

// handleDelivery acks processed messages, drops malformed ones and gives a
// failed one a single redelivery.
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var ev ReservationEvent
	err := json.Unmarshal(d.Body, &ev)
	if err == nil {
		err = ev.Validate()
	}
	if err != nil {
		c.Log.Error().Err(err).Bytes("body", d.Body).Msg("dropping malformed event")
		_ = d.Nack(false, false)
		return
	}
	if err := c.Handle(ctx, ev); err != nil {
		c.Log.Error().Err(err).Int64("reservation_id", ev.ReservationID).Bool("redelivered", d.Redelivered).
			Msg("handle event failed")
		_ = d.Nack(false, !d.Redelivered)
		return
	}
	_ = d.Ack(false)
}

func nextBackoff(cur, ceiling time.Duration) time.Duration {
	cur *= 2
	if cur > ceiling {
		return ceiling
	}
	return cur
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
