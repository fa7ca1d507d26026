package booking

import (
	"context"
	"time"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/pricing"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/view"
)

type BookingUseCase interface {
	Add(ctx context.Context, in command.AddBookingInput) (command.Result, error)
	Cancel(ctx context.Context, in command.CancelBookingInput) (command.Result, error)
	Edit(ctx context.Context, in command.EditBookingInput) (command.Result, error)
	List(ctx context.Context, filter Filter) ([]view.Booking, error)
	Get(ctx context.Context, id int64) (view.Booking, error)
}

// Filter narrows a booking listing. At most one field is expected to be set;
// a zero Filter lists every booking of the active customers.
type Filter struct {
	FlightID   int64
	CustomerID int64
	Date       time.Time
}

type BookingService struct {
	ledger *service.Dispatcher
	policy pricing.Policy
	fees   pricing.Fees
}

type Option func(*BookingService)

func WithPolicy(p pricing.Policy) Option {
	return func(s *BookingService) {
		s.policy = p
	}
}

func WithFees(f pricing.Fees) Option {
	return func(s *BookingService) {
		s.fees = f
	}
}

func NewBookingService(d *service.Dispatcher, opts ...Option) *BookingService {
	s := &BookingService{
		ledger: d,
		policy: pricing.NewSeatMultiplier(nil),
		fees:   pricing.DefaultFees(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *BookingService) Add(ctx context.Context, in command.AddBookingInput) (command.Result, error) {
	return s.ledger.Dispatch(ctx, command.NewAddBooking(in, s.policy), kafka.EventBookingCreated)
}

func (s *BookingService) Cancel(ctx context.Context, in command.CancelBookingInput) (command.Result, error) {
	return s.ledger.Dispatch(ctx, command.NewCancelBooking(in, s.fees), kafka.EventBookingCancelled)
}

func (s *BookingService) Edit(ctx context.Context, in command.EditBookingInput) (command.Result, error) {
	return s.ledger.Dispatch(ctx, command.NewEditBooking(in, s.policy, s.fees), kafka.EventBookingRebooked)
}

// List filters by flight, by customer, or by booking date. Unknown flight or
// customer ids are reported as domain.ErrNotFound.
func (s *BookingService) List(_ context.Context, filter Filter) ([]view.Booking, error) {
	var out []view.Booking
	err := s.ledger.View(func(reg *ledger.Registry) error {
		var bookings []*domain.Booking
		switch {
		case filter.CustomerID != 0:
			c, err := reg.CustomerByID(filter.CustomerID)
			if err != nil {
				return err
			}
			bookings = c.Bookings()
		case filter.FlightID != 0:
			if _, err := reg.FlightByID(filter.FlightID); err != nil {
				return err
			}
			for _, b := range reg.AllBookings() {
				if b.FlightID == filter.FlightID {
					bookings = append(bookings, b)
				}
			}
		case !filter.Date.IsZero():
			day := domain.Day(filter.Date)
			for _, b := range reg.AllBookings() {
				if domain.Day(b.BookingDate).Equal(day) {
					bookings = append(bookings, b)
				}
			}
		default:
			bookings = reg.AllBookings()
		}
		out = view.NewBookings(reg, bookings)
		return nil
	})
	return out, err
}

func (s *BookingService) Get(_ context.Context, id int64) (view.Booking, error) {
	var out view.Booking
	err := s.ledger.View(func(reg *ledger.Registry) error {
		b, err := reg.BookingByID(id)
		if err != nil {
			return err
		}
		out = view.NewBooking(reg, b)
		return nil
	})
	return out, err
}

var _ BookingUseCase = (*BookingService)(nil)
