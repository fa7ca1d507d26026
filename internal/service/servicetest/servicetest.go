// Package servicetest provides an in-memory ledger and testify mocks for the
// service and API tests.
package servicetest

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/repository"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/view"
)

// Today is the system date of every fixture ledger.
var Today = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetFlights(ctx context.Context, scope string) ([]view.Flight, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]view.Flight), args.Error(1)
}

func (m *MockCache) SetFlights(ctx context.Context, scope string, flights []view.Flight) error {
	args := m.Called(ctx, scope, flights)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries uint64) error {
	args := m.Called(ctx, topic, key, value, maxRetries)
	return args.Error(0)
}

type Ledger struct {
	Registry   *ledger.Registry
	Store      *repository.MemoryStore
	Engine     *command.Engine
	Dispatcher *service.Dispatcher
	LogHook    *test.Hook
}

// New builds a dispatcher over a real engine and an in-memory store.
func New(t *testing.T, opts ...service.Option) *Ledger {
	t.Helper()
	logger, hook := test.NewNullLogger()
	log := logrus.NewEntry(logger)

	reg := ledger.NewRegistry()
	reg.SetSystemDate(Today)
	store := repository.NewMemoryStore()
	engine := command.NewEngine(reg, store, command.WithLogger(log))

	opts = append([]service.Option{service.WithLogger(log)}, opts...)
	return &Ledger{
		Registry:   reg,
		Store:      store,
		Engine:     engine,
		Dispatcher: service.NewDispatcher(engine, opts...),
		LogHook:    hook,
	}
}

// AddFlight commits a flight departing daysAhead days after Today.
func (l *Ledger) AddFlight(t *testing.T, number string, daysAhead int, price float64, seats map[domain.SeatClass]int) int64 {
	t.Helper()
	res, err := l.Engine.Execute(context.Background(), command.NewAddFlight(command.AddFlightInput{
		FlightNumber:  number,
		Origin:        "London",
		Destination:   "New York",
		DepartureDate: Today.AddDate(0, 0, daysAhead),
		BasePrice:     price,
		Seats:         seats,
	}))
	require.NoError(t, err)
	return res.FlightID
}

func (l *Ledger) AddCustomer(t *testing.T, name string) int64 {
	t.Helper()
	res, err := l.Engine.Execute(context.Background(), command.NewAddCustomer(command.AddCustomerInput{
		Name:  name,
		Phone: "07000000000",
		Email: name + "@example.com",
	}))
	require.NoError(t, err)
	return res.CustomerID
}
