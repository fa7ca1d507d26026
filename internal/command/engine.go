package command

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/Domenick1991/flightledger/internal/command"

// Engine owns the registry and runs commands one at a time. Queries passed to
// View may run concurrently with each other but never with a command.
type Engine struct {
	mu      sync.RWMutex
	reg     *ledger.Registry
	store   Store
	log     *logrus.Entry
	tracer  trace.Tracer
	retries uint64
	hooks   []func(cmd string, s State)
}

type EngineOption func(*Engine)

func WithLogger(log *logrus.Entry) EngineOption {
	return func(e *Engine) {
		e.log = log
	}
}

// WithPersistRetries retries a failed store call with exponential backoff
// before the command is rolled back.
func WithPersistRetries(n uint64) EngineOption {
	return func(e *Engine) {
		e.retries = n
	}
}

func WithStateHook(hook func(cmd string, s State)) EngineOption {
	return func(e *Engine) {
		e.hooks = append(e.hooks, hook)
	}
}

func WithTracer(t trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = t
	}
}

func NewEngine(reg *ledger.Registry, store Store, opts ...EngineOption) *Engine {
	e := &Engine{
		reg:    reg,
		store:  store,
		log:    logrus.NewEntry(logrus.StandardLogger()),
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// View runs fn under the read lock. fn must not mutate the registry or keep
// references to it after returning.
func (e *Engine) View(fn func(reg *ledger.Registry) error) error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return fn(e.reg)
}

func (e *Engine) Execute(ctx context.Context, cmd Command) (res Result, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name := cmd.Name()
	ctx, span := e.tracer.Start(ctx, "command.execute "+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("ledger.command", name)),
	)
	defer span.End()

	log := e.log.WithField("command", name)
	log.Debug("dispatch")
	started := time.Now()
	e.transition(name, StatePending)

	snap := e.reg.Snapshot()
	rollback := func(kind, cause error) {
		if rerr := e.reg.Restore(snap); rerr != nil {
			log.WithError(rerr).Error("restore snapshot")
		}
		e.transition(name, StateRolledBack)
		res = Result{}
		err = &Error{Op: name, Kind: kind, Err: cause}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.WithError(cause).WithField("kind", kind.Error()).Warn("command rolled back")
	}

	defer func() {
		if r := recover(); r != nil {
			rollback(domain.ErrCommandFailed, fmt.Errorf("panic: %v", r))
		}
	}()

	e.transition(name, StateValidating)
	if verr := cmd.Validate(ctx, e.reg); verr != nil {
		rollback(domain.ErrCommandFailed, verr)
		return res, err
	}

	e.transition(name, StateMutating)
	res, aerr := cmd.Apply(ctx, e.reg)
	if aerr != nil {
		rollback(domain.ErrCommandFailed, aerr)
		return res, err
	}
	res.Command = name

	e.transition(name, StatePersisting)
	if perr := e.persist(ctx); perr != nil {
		rollback(domain.ErrPersistenceFailed, perr)
		return res, err
	}

	e.transition(name, StateCommitted)
	span.SetAttributes(
		attribute.Int64("ledger.booking_id", res.BookingID),
		attribute.Int64("ledger.flight_id", res.FlightID),
	)
	span.SetStatus(codes.Ok, "")
	log.WithFields(logrus.Fields{
		"flight_id":   res.FlightID,
		"customer_id": res.CustomerID,
		"booking_id":  res.BookingID,
		"duration":    time.Since(started),
	}).Info("command committed")
	return res, nil
}

func (e *Engine) persist(ctx context.Context) error {
	if e.retries == 0 {
		return e.store.Store(ctx, e.reg)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.retries), ctx)
	return backoff.Retry(func() error {
		return e.store.Store(ctx, e.reg)
	}, policy)
}

func (e *Engine) transition(cmd string, s State) {
	for _, hook := range e.hooks {
		hook(cmd, s)
	}
}
