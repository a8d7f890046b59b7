package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

const (
	dialTimeout = 2 * time.Second
	sendTimeout = 2 * time.Second

	// DefaultBufferSize is how many events may wait for the broker.
	DefaultBufferSize = 256
	// DefaultRetryAfter is how long the publisher stops dialing after a
	// failed attempt. Events arriving meanwhile are dropped.
	DefaultRetryAfter = 5 * time.Second
)

var (
	ErrBufferFull      = errors.New("event buffer full")
	ErrPublisherClosed = errors.New("publisher closed")
)

// sender delivers one event over an open broker channel.
type sender interface {
	send(ctx context.Context, ev ReservationEvent) error
	close()
}

type dialFunc func() (sender, error)

// Publisher sends reservation events to a durable queue. Publish only
// enqueues; a single goroutine owns the broker connection, dials it on
// demand and backs off after a failure, so requests never wait on RabbitMQ.
type Publisher struct {
	queue      string
	log        zerolog.Logger
	dial       dialFunc
	retryAfter time.Duration
	now        func() time.Time

	buf       chan ReservationEvent
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once

	// owned by run
	conn      sender
	downUntil time.Time
}

// NewPublisher returns a running publisher for url routing to queue.
func NewPublisher(url, queue string, log zerolog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	return newPublisher(func() (sender, error) { return dialAMQP(url, queue) },
		queue, log, DefaultBufferSize, DefaultRetryAfter, time.Now)
}

func newPublisher(dial dialFunc, queue string, log zerolog.Logger, size int, retryAfter time.Duration, now func() time.Time) *Publisher {
	p := &Publisher{
		queue:      queue,
		log:        log.With().Str("component", "publisher").Logger(),
		dial:       dial,
		retryAfter: retryAfter,
		now:        now,
		buf:        make(chan ReservationEvent, size),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish queues ev for delivery. It never blocks: a full buffer or a
// closed publisher is reported as an error.
func (p *Publisher) Publish(_ context.Context, ev ReservationEvent) error {
	select {
	case <-p.done:
		return ErrPublisherClosed
	default:
	}
	select {
	case p.buf <- ev:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events, delivers what is already queued while the
// broker is reachable, and releases the connection.
func (p *Publisher) Close() error {
	p.closeOnce.Do(func() { close(p.done) })
	<-p.stopped
	return nil
}

func (p *Publisher) run() {
	defer close(p.stopped)
	defer p.disconnect()

	for {
		select {
		case ev := <-p.buf:
			p.deliver(ev)
		case <-p.done:
			for {
				select {
				case ev := <-p.buf:
					p.deliver(ev)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) deliver(ev ReservationEvent) {
	l := p.log.With().Str("event", string(ev.Type)).Int64("reservation_id", ev.ReservationID).Logger()

	if p.conn == nil {
		if p.now().Before(p.downUntil) {
			l.Warn().Msg("broker unavailable, event dropped")
			return
		}
		conn, err := p.dial()
		if err != nil {
			p.downUntil = p.now().Add(p.retryAfter)
			l.Warn().Err(err).Dur("retry_after", p.retryAfter).Msg("connect to broker failed, event dropped")
			return
		}
		p.conn = conn
		p.log.Info().Str("queue", p.queue).Msg("connected to broker")
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := p.conn.send(ctx, ev); err != nil {
		p.disconnect()
		l.Warn().Err(err).Msg("publish failed, event dropped")
	}
}

func (p *Publisher) disconnect() {
	if p.conn != nil {
		p.conn.close()
		p.conn = nil
	}
}

// amqpSender publishes persistent JSON messages on one channel.
type amqpSender struct {
	queue string
	conn  *amqp.Connection
	ch    *amqp.Channel
}

func dialAMQP(url, queue string) (sender, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(dialTimeout),
	})
	if err != nil {
		return nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare queue: %w", err)
	}
	return &amqpSender{queue: queue, conn: conn, ch: ch}, nil
}

func (s *amqpSender) send(ctx context.Context, ev ReservationEvent) error {
	if s.ch.IsClosed() {
		return amqp.ErrClosed
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = s.ch.PublishWithContext(ctx,
		"",      // default exchange
		s.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Type:         string(ev.Type),
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (s *amqpSender) close() {
	_ = s.ch.Close()
	_ = s.conn.Close()
}

// NopPublisher drops every event. It stands in when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReservationEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
