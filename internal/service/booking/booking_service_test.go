package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/pricing"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/service/servicetest"
)

var seats = map[domain.SeatClass]int{
	domain.SeatClassEconomy:  2,
	domain.SeatClassBusiness: 1,
	domain.SeatClassFirst:    1,
}

type fixture struct {
	ledger   *servicetest.Ledger
	producer *servicetest.MockProducer
	svc      *BookingService
	alice    int64
	bob      int64
	ba123    int64
	lh400    int64
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	producer := &servicetest.MockProducer{}
	l := servicetest.New(t, service.WithProducer(producer, "ledger.notifications"))
	f := &fixture{
		ledger:   l,
		producer: producer,
		svc:      NewBookingService(l.Dispatcher, opts...),
		alice:    l.AddCustomer(t, "alice"),
		bob:      l.AddCustomer(t, "bob"),
		ba123:    l.AddFlight(t, "BA123", 30, 200, seats),
		lh400:    l.AddFlight(t, "LH400", 40, 100, seats),
	}
	return f
}

func (f *fixture) expectEvent(eventType string) {
	f.producer.On("PublishWithRetry", mock.Anything, "ledger.notifications", mock.Anything, mock.MatchedBy(func(e kafka.LedgerEvent) bool {
		return e.Type == eventType
	}), mock.Anything).Return(nil).Once()
}

func TestBookingService_Add(t *testing.T) {
	f := newFixture(t)
	f.expectEvent(kafka.EventBookingCreated)

	res, err := f.svc.Add(context.Background(), command.AddBookingInput{
		CustomerID: f.alice,
		FlightID:   f.ba123,
		SeatClass:  domain.SeatClassFirst,
		FoodOption: domain.FoodBeef,
	})

	require.NoError(t, err)
	assert.Equal(t, 400.0, res.Price)
	b, err := f.svc.Get(context.Background(), res.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.FoodBeef, b.FoodOption)
	assert.Equal(t, "BA123", b.FlightNumber)
	assert.Equal(t, servicetest.Today, b.BookingDate)
	f.producer.AssertExpectations(t)
}

func TestBookingService_Add_CapacityExceeded(t *testing.T) {
	f := newFixture(t)
	f.expectEvent(kafka.EventBookingCreated)
	in := command.AddBookingInput{CustomerID: f.alice, FlightID: f.ba123, SeatClass: domain.SeatClassBusiness}

	_, err := f.svc.Add(context.Background(), in)
	require.NoError(t, err)
	in.CustomerID = f.bob
	_, err = f.svc.Add(context.Background(), in)

	assert.ErrorIs(t, err, domain.ErrCapacityExceeded)
	f.producer.AssertNumberOfCalls(t, "PublishWithRetry", 1)
}

func TestBookingService_Add_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	f.ledger.Store.FailWith(errors.New("disk full"))

	_, err := f.svc.Add(context.Background(), command.AddBookingInput{CustomerID: f.alice, FlightID: f.ba123})

	assert.ErrorIs(t, err, domain.ErrPersistenceFailed)
	assert.ErrorContains(t, err, "changes rolled back")
	list, err := f.svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	f.producer.AssertNotCalled(t, "PublishWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CancelAndEdit(t *testing.T) {
	f := newFixture(t)
	f.expectEvent(kafka.EventBookingCreated)
	f.expectEvent(kafka.EventBookingCreated)
	f.expectEvent(kafka.EventBookingCancelled)
	f.expectEvent(kafka.EventBookingRebooked)

	first, err := f.svc.Add(context.Background(), command.AddBookingInput{CustomerID: f.alice, FlightID: f.ba123})
	require.NoError(t, err)
	second, err := f.svc.Add(context.Background(), command.AddBookingInput{CustomerID: f.bob, FlightID: f.ba123})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), command.CancelBookingInput{CustomerID: f.alice, FlightID: f.ba123})
	require.NoError(t, err)
	assert.Equal(t, first.BookingID, cancelled.BookingID)
	assert.Equal(t, 50.0, cancelled.Fee)

	edited, err := f.svc.Edit(context.Background(), command.EditBookingInput{BookingID: second.BookingID, NewFlightID: f.lh400})
	require.NoError(t, err)
	assert.Equal(t, 30.0, edited.Fee)
	assert.Equal(t, 100.0, edited.Price)

	b, err := f.svc.Get(context.Background(), second.BookingID)
	require.NoError(t, err)
	assert.Equal(t, f.lh400, b.FlightID)
	_, err = f.svc.Get(context.Background(), first.BookingID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	f.producer.AssertExpectations(t)
}

func TestBookingService_List(t *testing.T) {
	f := newFixture(t)
	f.producer.On("PublishWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	_, err := f.svc.Add(ctx, command.AddBookingInput{CustomerID: f.alice, FlightID: f.ba123})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, command.AddBookingInput{CustomerID: f.alice, FlightID: f.lh400})
	require.NoError(t, err)
	_, err = f.ledger.Engine.Execute(ctx, &command.SetSystemDate{Date: servicetest.Today.AddDate(0, 0, 1)})
	require.NoError(t, err)
	_, err = f.svc.Add(ctx, command.AddBookingInput{CustomerID: f.bob, FlightID: f.ba123})
	require.NoError(t, err)

	all, err := f.svc.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byFlight, err := f.svc.List(ctx, Filter{FlightID: f.ba123})
	require.NoError(t, err)
	assert.Len(t, byFlight, 2)

	byCustomer, err := f.svc.List(ctx, Filter{CustomerID: f.alice})
	require.NoError(t, err)
	assert.Len(t, byCustomer, 2)

	byDate, err := f.svc.List(ctx, Filter{Date: servicetest.Today})
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	_, err = f.svc.List(ctx, Filter{FlightID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.List(ctx, Filter{CustomerID: 99})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_WithPolicyAndFees(t *testing.T) {
	f := newFixture(t,
		WithPolicy(&pricing.Dynamic{CapacityFactor: 0.5, DateFactor: 1}),
		WithFees(pricing.Fees{Cancellation: 10, Rebooking: 5}),
	)
	f.producer.On("PublishWithRetry", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := f.svc.Add(context.Background(), command.AddBookingInput{CustomerID: f.alice, FlightID: f.ba123})
	require.NoError(t, err)
	// empty flight, 30 days out: 200 + 0 + 1*30
	assert.Equal(t, 230.0, res.Price)

	res, err = f.svc.Cancel(context.Background(), command.CancelBookingInput{CustomerID: f.alice, FlightID: f.ba123})
	require.NoError(t, err)
	assert.Equal(t, 10.0, res.Fee)
}
