// Package service holds what the ledger use cases share: running a command on
// the engine and, once it has committed, dropping cached listings and
// announcing the change on Kafka.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

type Engine interface {
	Execute(ctx context.Context, cmd command.Command) (command.Result, error)
	View(fn func(reg *ledger.Registry) error) error
}

type Cache interface {
	InvalidateFlights(ctx context.Context) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries uint64) error
}

type Dispatcher struct {
	engine   Engine
	cache    Cache
	producer Producer
	topic    string
	retries  uint64
	log      *logrus.Entry
	now      func() time.Time
}

type Option func(*Dispatcher)

func WithCache(c Cache) Option {
	return func(d *Dispatcher) {
		d.cache = c
	}
}

func WithProducer(p Producer, topic string) Option {
	return func(d *Dispatcher) {
		d.producer = p
		d.topic = topic
	}
}

// WithPublishRetries sets how many times a failed publish is retried before
// the event is given up on.
func WithPublishRetries(n uint64) Option {
	return func(d *Dispatcher) {
		d.retries = n
	}
}

func WithLogger(log *logrus.Entry) Option {
	return func(d *Dispatcher) {
		d.log = log
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(engine Engine, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		engine: engine,
		log:    logrus.NewEntry(logrus.StandardLogger()),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch executes cmd. After a commit the flight cache is invalidated and
// an event of the given type is published; failures there are logged and do
// not affect the result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd command.Command, eventType string) (command.Result, error) {
	res, err := d.engine.Execute(ctx, cmd)
	if err != nil {
		return res, err
	}

	if d.cache != nil {
		if err := d.cache.InvalidateFlights(ctx); err != nil {
			d.log.WithError(err).WithField("command", res.Command).Warn("failed to invalidate flights cache")
		}
	}
	if d.producer != nil && d.topic != "" {
		event := d.event(res, eventType)
		if err := d.producer.PublishWithRetry(ctx, d.topic, event.Key(), event, d.retries); err != nil {
			d.log.WithError(err).WithFields(logrus.Fields{
				"command":  res.Command,
				"event_id": event.ID.String(),
			}).Warn("failed to publish ledger event")
		}
	}
	return res, nil
}

func (d *Dispatcher) View(fn func(reg *ledger.Registry) error) error {
	return d.engine.View(fn)
}

func (d *Dispatcher) event(res command.Result, eventType string) kafka.LedgerEvent {
	event := kafka.LedgerEvent{
		ID:         uuid.New(),
		Type:       eventType,
		Command:    res.Command,
		BookingID:  res.BookingID,
		CustomerID: res.CustomerID,
		FlightID:   res.FlightID,
		Price:      res.Price,
		Fee:        res.Fee,
		Message:    res.Message,
		OccurredAt: d.now().UTC(),
	}
	if res.CustomerID != 0 {
		_ = d.engine.View(func(reg *ledger.Registry) error {
			if c, err := reg.CustomerByID(res.CustomerID); err == nil {
				event.Email = c.Email
			}
			return nil
		})
	}
	return event
}
