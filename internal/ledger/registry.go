// Package ledger holds the in-memory booking system aggregate: every flight and
// customer by identity, the id sequences, and the snapshots used to roll the
// aggregate back when a command fails.
//
// A Registry does no locking of its own. Callers serialize mutations (see
// command.Engine).
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
)

type Registry struct {
	flights    map[int64]*domain.Flight
	customers  map[int64]*domain.Customer
	systemDate time.Time

	flightIDs   Sequence
	customerIDs Sequence
	bookingIDs  Sequence
}

func NewRegistry() *Registry {
	return &Registry{
		flights:    make(map[int64]*domain.Flight),
		customers:  make(map[int64]*domain.Customer),
		systemDate: domain.Day(time.Now()),
	}
}

func (r *Registry) SystemDate() time.Time { return r.systemDate }

func (r *Registry) SetSystemDate(d time.Time) { r.systemDate = domain.Day(d) }

func (r *Registry) NextFlightID() int64   { return r.flightIDs.Next() }
func (r *Registry) NextCustomerID() int64 { return r.customerIDs.Next() }
func (r *Registry) NextBookingID() int64  { return r.bookingIDs.Next() }

// IDMarks are the last ids issued by each sequence. Storage keeps them so ids
// of entities no longer held, such as cancelled bookings, stay retired.
type IDMarks struct {
	Flight   int64 `json:"flight"`
	Customer int64 `json:"customer"`
	Booking  int64 `json:"booking"`
}

func (r *Registry) IDMarks() IDMarks {
	return IDMarks{
		Flight:   r.flightIDs.Last(),
		Customer: r.customerIDs.Last(),
		Booking:  r.bookingIDs.Last(),
	}
}

// ObserveIDs advances every sequence to at least the given marks.
func (r *Registry) ObserveIDs(m IDMarks) {
	r.flightIDs.Observe(m.Flight)
	r.customerIDs.Observe(m.Customer)
	r.bookingIDs.Observe(m.Booking)
}

// SeedIDs advances every sequence past the largest id currently held, so ids
// loaded from storage are never issued again.
func (r *Registry) SeedIDs() {
	for id := range r.flights {
		r.flightIDs.Observe(id)
	}
	for id, c := range r.customers {
		r.customerIDs.Observe(id)
		for _, b := range c.Bookings() {
			r.bookingIDs.Observe(b.ID)
		}
	}
}

func (r *Registry) AddFlight(f *domain.Flight) error {
	if _, ok := r.flights[f.ID]; ok {
		return fmt.Errorf("%w: flight %d already exists", domain.ErrDuplicateID, f.ID)
	}
	r.flights[f.ID] = f
	r.flightIDs.Observe(f.ID)
	return nil
}

func (r *Registry) AddCustomer(c *domain.Customer) error {
	if _, ok := r.customers[c.ID]; ok {
		return fmt.Errorf("%w: customer %d already exists", domain.ErrDuplicateID, c.ID)
	}
	r.customers[c.ID] = c
	r.customerIDs.Observe(c.ID)
	for _, b := range c.Bookings() {
		r.bookingIDs.Observe(b.ID)
	}
	return nil
}

// FlightByID resolves a flight, soft-deleted ones included.
func (r *Registry) FlightByID(id int64) (*domain.Flight, error) {
	f, ok := r.flights[id]
	if !ok {
		return nil, fmt.Errorf("%w: flight %d", domain.ErrNotFound, id)
	}
	return f, nil
}

// CustomerByID resolves a customer, soft-deleted ones included.
func (r *Registry) CustomerByID(id int64) (*domain.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, fmt.Errorf("%w: customer %d", domain.ErrNotFound, id)
	}
	return c, nil
}

func (r *Registry) ActiveFlights() []*domain.Flight {
	return r.filterFlights(func(f *domain.Flight) bool { return !f.Deleted })
}

func (r *Registry) AllFlights() []*domain.Flight {
	return r.filterFlights(func(*domain.Flight) bool { return true })
}

// UpcomingFlights lists active flights departing after the system date.
func (r *Registry) UpcomingFlights() []*domain.Flight {
	return r.filterFlights(func(f *domain.Flight) bool {
		return !f.Deleted && f.DepartureDate.After(r.systemDate)
	})
}

func (r *Registry) ActiveCustomers() []*domain.Customer {
	return r.filterCustomers(func(c *domain.Customer) bool { return !c.Deleted })
}

func (r *Registry) AllCustomers() []*domain.Customer {
	return r.filterCustomers(func(*domain.Customer) bool { return true })
}

// AllBookings walks the active customers on every call. Bookings of
// soft-deleted customers are not listed.
func (r *Registry) AllBookings() []*domain.Booking {
	var out []*domain.Booking
	for _, c := range r.ActiveCustomers() {
		out = append(out, c.Bookings()...)
	}
	return out
}

// BookingByID searches the bookings of every customer, deleted or not.
func (r *Registry) BookingByID(id int64) (*domain.Booking, error) {
	for _, c := range r.AllCustomers() {
		if b, ok := c.Booking(id); ok {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
}

func (r *Registry) filterFlights(keep func(*domain.Flight) bool) []*domain.Flight {
	out := make([]*domain.Flight, 0, len(r.flights))
	for _, f := range r.flights {
		if keep(f) {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) filterCustomers(keep func(*domain.Customer) bool) []*domain.Customer {
	out := make([]*domain.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
