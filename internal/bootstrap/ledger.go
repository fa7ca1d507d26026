package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightledger/api"
	"github.com/Domenick1991/flightledger/config"
	"github.com/Domenick1991/flightledger/internal/cache"
	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/pricing"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/Domenick1991/flightledger/internal/service/report"
)

// Ledger is a loaded registry behind an engine, with the use cases built on it.
type Ledger struct {
	Engine   *command.Engine
	Services api.Services

	closers []func() error
}

func (l *Ledger) Close() error {
	var errs []error
	for i := len(l.closers) - 1; i >= 0; i-- {
		errs = append(errs, l.closers[i]())
	}
	return errors.Join(errs...)
}

// NewLogger configures the standard logrus logger from cfg.
func NewLogger(cfg config.LogConfig) (*logrus.Entry, error) {
	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logrus.NewEntry(logger), nil
}

// OpenStore opens the store selected by cfg.Driver. The returned func
// releases it.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (command.Store, func() error, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return repository.NewMemoryStore(), func() error { return nil }, nil
	case config.DriverBolt:
		store, err := repository.NewBoltStore(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open bolt %s: %w", cfg.BoltPath, err)
		}
		return store, store.Close, nil
	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := repository.NewPGStore(pool)
		if err := store.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return store, func() error { pool.Close(); return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// NewPolicy returns the pricing policy named in cfg.
func NewPolicy(cfg config.PricingConfig) pricing.Policy {
	if cfg.Policy == config.PolicyDynamic {
		return &pricing.Dynamic{CapacityFactor: cfg.CapacityFactor, DateFactor: cfg.DateFactor}
	}
	var multipliers map[domain.SeatClass]float64
	if len(cfg.Multipliers) > 0 {
		multipliers = pricing.DefaultMultipliers()
		for name, m := range cfg.Multipliers {
			if class, err := domain.ParseSeatClass(name); err == nil {
				multipliers[class] = m
			}
		}
	}
	return pricing.NewSeatMultiplier(multipliers)
}

func NewFees(cfg config.PricingConfig) pricing.Fees {
	return pricing.Fees{Cancellation: cfg.CancellationFee, Rebooking: cfg.RebookingFee}
}

// NewLedger loads the ledger from the configured store and wires tracing and
// the optional Redis cache and Kafka producer into the services.
func NewLedger(ctx context.Context, cfg *config.Config, log *logrus.Entry) (*Ledger, error) {
	tp, stopTracing, err := NewTracerProvider(cfg.Tracing, os.Stderr)
	if err != nil {
		return nil, err
	}
	l := &Ledger{closers: []func() error{func() error { return stopTracing(context.Background()) }}}

	store, closeStore, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		l.Close()
		return nil, err
	}
	l.closers = append(l.closers, closeStore)

	reg, err := store.Load(ctx)
	if err != nil {
		l.Close()
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	log.WithFields(logrus.Fields{
		"driver":      cfg.Storage.Driver,
		"flights":     len(reg.AllFlights()),
		"customers":   len(reg.AllCustomers()),
		"system_date": reg.SystemDate().Format(domain.DateLayout),
	}).Info("ledger loaded")

	l.Engine = command.NewEngine(reg, store,
		command.WithLogger(log.WithField("component", "engine")),
		command.WithPersistRetries(cfg.Engine.PersistRetries),
		command.WithTracer(tp.Tracer(tracerName)),
	)

	dispatchOpts := []service.Option{service.WithLogger(log.WithField("component", "dispatcher"))}
	var flightOpts []flights.Option
	if cfg.Redis.Enabled() {
		redisCache := cache.NewRedisCache(cfg.Redis)
		l.closers = append(l.closers, redisCache.Close)
		dispatchOpts = append(dispatchOpts, service.WithCache(redisCache))
		flightOpts = append(flightOpts, flights.WithCache(redisCache))
	}
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka is unreachable, events may be lost")
		}
		l.closers = append(l.closers, producer.Close)
		dispatchOpts = append(dispatchOpts,
			service.WithProducer(producer, cfg.Kafka.NotificationsTopic),
			service.WithPublishRetries(cfg.Kafka.PublishRetries),
		)
	}

	d := service.NewDispatcher(l.Engine, dispatchOpts...)
	l.Services = api.Services{
		Flights:   flights.NewFlightService(d, flightOpts...),
		Customers: customers.NewCustomerService(d),
		Bookings: booking.NewBookingService(d,
			booking.WithPolicy(NewPolicy(cfg.Pricing)),
			booking.WithFees(NewFees(cfg.Pricing)),
		),
		Reports: report.NewReportService(d),
	}
	return l, nil
}
