// Package amqp publishes committed domain events to a RabbitMQ topic exchange.
// The routing key of every message is the event name, e.g. "run.status_changed".
package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"campusdash/internal/core/domain/model/kernel"

	amqp "github.com/rabbitmq/amqp091-go"
)

const DefaultExchange = "campusdash.events"

// Envelope is the JSON body of every message.
type Envelope struct {
	Name       string             `json:"name"`
	OccurredAt time.Time          `json:"occurredAt"`
	Payload    kernel.DomainEvent `json:"payload"`
}

// Channel is the part of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	IsClosed() bool
	Close() error
}

// Dialer opens a channel to the broker.
type Dialer func() (Channel, func() error, error)

// URLDialer dials url and puts the channel in confirm mode.
func URLDialer(url string) Dialer {
	return func() (Channel, func() error, error) {
		conn, err := amqp.Dial(url)
		if err != nil {
			return nil, nil, err
		}
		ch, err := conn.Channel()
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		if err = ch.Confirm(false); err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return ch, conn.Close, nil
	}
}

// Publisher implements ports.EventPublisher. A closed channel is redialled on the next
// publish.
type Publisher struct {
	dial      Dialer
	exchange  string
	logger    *slog.Logger
	now       func() time.Time
	mu        sync.Mutex
	ch        Channel
	closeConn func() error
}

func NewPublisher(dial Dialer, exchange string, logger *slog.Logger) (*Publisher, error) {
	if dial == nil {
		return nil, errors.New("amqp dialer is required")
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Publisher{
		dial:     dial,
		exchange: exchange,
		logger:   logger.With("component", "amqp_publisher", "exchange", exchange),
		now:      func() time.Time { return time.Now().UTC() },
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.connectLocked(); err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	return p, nil
}

// Publish sends every event. It stops at the first failure.
func (p *Publisher) Publish(ctx context.Context, events ...kernel.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		p.logger.WarnContext(ctx, "channel closed, reconnecting")
		if err := p.connectLocked(); err != nil {
			return fmt.Errorf("reconnect to rabbitmq: %w", err)
		}
	}

	occurredAt := p.now()
	for _, event := range events {
		body, err := json.Marshal(Envelope{Name: event.EventName(), OccurredAt: occurredAt, Payload: event})
		if err != nil {
			return fmt.Errorf("encode %s: %w", event.EventName(), err)
		}

		err = p.ch.PublishWithContext(ctx, p.exchange, event.EventName(), false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    occurredAt,
			Type:         event.EventName(),
			Body:         body,
		})
		if err != nil {
			return fmt.Errorf("publish %s: %w", event.EventName(), err)
		}
	}

	p.logger.DebugContext(ctx, "published domain events", "count", len(events))
	return nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.ch != nil && !p.ch.IsClosed() {
		errs = append(errs, p.ch.Close())
	}
	if p.closeConn != nil {
		errs = append(errs, p.closeConn())
	}
	p.ch, p.closeConn = nil, nil
	return errors.Join(errs...)
}

func (p *Publisher) connectLocked() error {
	if p.closeConn != nil {
		_ = p.closeConn()
	}

	ch, closeConn, err := p.dial()
	if err != nil {
		return err
	}
	if err = ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		if closeConn != nil {
			_ = closeConn()
		}
		return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.ch, p.closeConn = ch, closeConn
	return nil
}
