package ledger

import (
	"errors"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
)

var ErrSnapshotConsumed = errors.New("snapshot already restored")

// Snapshot is a deep copy of a Registry taken before a command mutates it.
// Entity state (seat counters, passenger sets, booking fields) is copied, not
// shared, so restoring undoes in-place entity mutation as well.
type Snapshot struct {
	flights    map[int64]*domain.Flight
	customers  map[int64]*domain.Customer
	systemDate time.Time

	flightIDs   Sequence
	customerIDs Sequence
	bookingIDs  Sequence

	consumed bool
}

func (r *Registry) Snapshot() *Snapshot {
	s := &Snapshot{
		flights:     make(map[int64]*domain.Flight, len(r.flights)),
		customers:   make(map[int64]*domain.Customer, len(r.customers)),
		systemDate:  r.systemDate,
		flightIDs:   r.flightIDs,
		customerIDs: r.customerIDs,
		bookingIDs:  r.bookingIDs,
	}
	for id, f := range r.flights {
		s.flights[id] = f.Clone()
	}
	for id, c := range r.customers {
		s.customers[id] = c.Clone()
	}
	return s
}

// Restore puts the registry back to the snapshot's state. Entities that
// existed at snapshot time keep their pointer identity; entities added since
// are dropped. A snapshot can be restored only once.
func (r *Registry) Restore(s *Snapshot) error {
	if s.consumed {
		return ErrSnapshotConsumed
	}
	s.consumed = true

	liveBookings := make(map[int64]*domain.Booking)
	for _, c := range r.customers {
		for _, b := range c.Bookings() {
			liveBookings[b.ID] = b
		}
	}

	for id := range r.flights {
		if _, ok := s.flights[id]; !ok {
			delete(r.flights, id)
		}
	}
	for id, saved := range s.flights {
		if live, ok := r.flights[id]; ok {
			*live = *saved
			continue
		}
		r.flights[id] = saved
	}

	for id := range r.customers {
		if _, ok := s.customers[id]; !ok {
			delete(r.customers, id)
		}
	}
	for id, saved := range s.customers {
		bookings := saved.Bookings()
		for i, b := range bookings {
			if live, ok := liveBookings[b.ID]; ok {
				*live = *b
				bookings[i] = live
			}
		}
		saved.ReplaceBookings(bookings)
		if live, ok := r.customers[id]; ok {
			*live = *saved
			continue
		}
		r.customers[id] = saved
	}

	r.systemDate = s.systemDate
	r.flightIDs = s.flightIDs
	r.customerIDs = s.customerIDs
	r.bookingIDs = s.bookingIDs
	return nil
}
