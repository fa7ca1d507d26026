package flights

import (
	"context"
	"strings"
	"time"

	"github.com/Domenick1991/flightledger/internal/cache"
	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/view"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]view.Flight, error)
	Upcoming(ctx context.Context) ([]view.Flight, error)
	Search(ctx context.Context, filter SearchFilter) ([]view.Flight, error)
	Get(ctx context.Context, id int64) (view.Flight, error)
	Add(ctx context.Context, in command.AddFlightInput) (command.Result, error)
	Delete(ctx context.Context, id int64) (command.Result, error)
}

// FlightCache holds rendered flight listings. Invalidation happens in the
// dispatcher after every committed command.
type FlightCache interface {
	GetFlights(ctx context.Context, scope string) ([]view.Flight, error)
	SetFlights(ctx context.Context, scope string, flights []view.Flight) error
}

// SearchFilter selects active flights. Empty places and zero dates match
// everything; both date bounds are inclusive.
type SearchFilter struct {
	Origin      string
	Destination string
	From        time.Time
	To          time.Time
}

func (f SearchFilter) Match(flight *domain.Flight) bool {
	if f.Origin != "" && !strings.EqualFold(flight.Origin, f.Origin) {
		return false
	}
	if f.Destination != "" && !strings.EqualFold(flight.Destination, f.Destination) {
		return false
	}
	if !f.From.IsZero() && flight.DepartureDate.Before(domain.Day(f.From)) {
		return false
	}
	if !f.To.IsZero() && flight.DepartureDate.After(domain.Day(f.To)) {
		return false
	}
	return true
}

type FlightService struct {
	ledger *service.Dispatcher
	cache  FlightCache
}

type Option func(*FlightService)

func WithCache(c FlightCache) Option {
	return func(s *FlightService) {
		s.cache = c
	}
}

func NewFlightService(d *service.Dispatcher, opts ...Option) *FlightService {
	s := &FlightService{ledger: d}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the active flights, served from the cache when possible.
func (s *FlightService) List(ctx context.Context) ([]view.Flight, error) {
	return s.cached(ctx, cache.ScopeActive, (*ledger.Registry).ActiveFlights)
}

// Upcoming returns active flights departing after the system date.
func (s *FlightService) Upcoming(ctx context.Context) ([]view.Flight, error) {
	return s.cached(ctx, cache.ScopeUpcoming, (*ledger.Registry).UpcomingFlights)
}

// Search is never cached.
func (s *FlightService) Search(_ context.Context, filter SearchFilter) ([]view.Flight, error) {
	flights := make([]view.Flight, 0)
	err := s.ledger.View(func(reg *ledger.Registry) error {
		for _, f := range reg.ActiveFlights() {
			if filter.Match(f) {
				flights = append(flights, view.NewFlight(f))
			}
		}
		return nil
	})
	return flights, err
}

func (s *FlightService) Get(_ context.Context, id int64) (view.Flight, error) {
	var out view.Flight
	err := s.ledger.View(func(reg *ledger.Registry) error {
		f, err := reg.FlightByID(id)
		if err != nil {
			return err
		}
		out = view.NewFlightDetail(reg, f)
		return nil
	})
	return out, err
}

func (s *FlightService) Add(ctx context.Context, in command.AddFlightInput) (command.Result, error) {
	return s.ledger.Dispatch(ctx, command.NewAddFlight(in), kafka.EventFlightAdded)
}

func (s *FlightService) Delete(ctx context.Context, id int64) (command.Result, error) {
	return s.ledger.Dispatch(ctx, &command.DeleteFlight{FlightID: id}, kafka.EventFlightDeleted)
}

func (s *FlightService) cached(ctx context.Context, scope string, list func(*ledger.Registry) []*domain.Flight) ([]view.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx, scope); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights := make([]view.Flight, 0)
	_ = s.ledger.View(func(reg *ledger.Registry) error {
		for _, f := range list(reg) {
			flights = append(flights, view.NewFlight(f))
		}
		return nil
	})

	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, scope, flights)
	}
	return flights, nil
}

var _ FlightUseCase = (*FlightService)(nil)
