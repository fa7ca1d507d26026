package domain

import (
	"fmt"
	"sort"
	"time"
)

// DateLayout is the calendar date format used for departure and booking dates.
const DateLayout = "2006-01-02"

type FlightParams struct {
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	BasePrice     float64
	Seats         map[SeatClass]int
}

// Flight owns the seat inventory of a single departure. Remaining seats per
// class only go down: removing a passenger does not credit the inventory.
type Flight struct {
	ID            int64
	FlightNumber  string
	Origin        string
	Destination   string
	DepartureDate time.Time
	BasePrice     float64
	Deleted       bool

	capacity   map[SeatClass]int
	remaining  map[SeatClass]int
	passengers map[int64]struct{}
}

func NewFlight(id int64, p FlightParams) (*Flight, error) {
	return RestoreFlight(id, p, p.Seats, false)
}

// RestoreFlight rebuilds a flight from persisted state, where remaining seats
// may already be below the configured capacity.
func RestoreFlight(id int64, p FlightParams, remaining map[SeatClass]int, deleted bool) (*Flight, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: flight id must be positive, got %d", ErrValidation, id)
	}
	if p.BasePrice < 0 {
		return nil, fmt.Errorf("%w: flight %d base price must not be negative", ErrValidation, id)
	}
	f := &Flight{
		ID:            id,
		FlightNumber:  p.FlightNumber,
		Origin:        p.Origin,
		Destination:   p.Destination,
		DepartureDate: truncateDay(p.DepartureDate),
		BasePrice:     p.BasePrice,
		Deleted:       deleted,
		capacity:      make(map[SeatClass]int, len(SeatClasses)),
		remaining:     make(map[SeatClass]int, len(SeatClasses)),
		passengers:    make(map[int64]struct{}),
	}
	for class, n := range p.Seats {
		if !class.Valid() {
			return nil, fmt.Errorf("%w: flight %d has unknown seat class %q", ErrValidation, id, class)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: flight %d %s capacity must not be negative", ErrValidation, id, class)
		}
		f.capacity[class] = n
	}
	for class, n := range remaining {
		if !class.Valid() {
			return nil, fmt.Errorf("%w: flight %d has unknown seat class %q", ErrValidation, id, class)
		}
		if n < 0 || n > f.capacity[class] {
			return nil, fmt.Errorf("%w: flight %d %s remaining seats %d out of range", ErrValidation, id, class, n)
		}
		f.remaining[class] = n
	}
	return f, nil
}

func (f *Flight) Params() FlightParams {
	seats := make(map[SeatClass]int, len(f.capacity))
	for class, n := range f.capacity {
		seats[class] = n
	}
	return FlightParams{
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureDate: f.DepartureDate,
		BasePrice:     f.BasePrice,
		Seats:         seats,
	}
}

func (f *Flight) Capacity(class SeatClass) int { return f.capacity[class] }

func (f *Flight) Remaining(class SeatClass) int { return f.remaining[class] }

// RemainingSeats returns a copy of the per-class remaining counters.
func (f *Flight) RemainingSeats() map[SeatClass]int {
	out := make(map[SeatClass]int, len(f.remaining))
	for class, n := range f.remaining {
		out[class] = n
	}
	return out
}

// TotalCapacity sums the configured capacity of all classes.
func (f *Flight) TotalCapacity() int {
	total := 0
	for _, n := range f.capacity {
		total += n
	}
	return total
}

func (f *Flight) IsFull(class SeatClass) bool {
	return f.remaining[class] <= 0
}

// AddPassenger takes one seat of the given class for the customer. A customer
// already on the flight still consumes a new seat.
func (f *Flight) AddPassenger(customerID int64, class SeatClass) error {
	if f.IsFull(class) {
		return fmt.Errorf("%w: no %s seats left on flight %d", ErrCapacityExceeded, class, f.ID)
	}
	f.remaining[class]--
	f.passengers[customerID] = struct{}{}
	return nil
}

// RemovePassenger detaches the customer from the flight. Seats are not returned
// to the inventory.
func (f *Flight) RemovePassenger(customerID int64) {
	delete(f.passengers, customerID)
}

// RestorePassenger re-attaches a passenger loaded from storage without touching
// the inventory.
func (f *Flight) RestorePassenger(customerID int64) {
	f.passengers[customerID] = struct{}{}
}

func (f *Flight) HasPassenger(customerID int64) bool {
	_, ok := f.passengers[customerID]
	return ok
}

func (f *Flight) PassengerCount() int { return len(f.passengers) }

// Passengers returns the passenger customer ids in ascending order.
func (f *Flight) Passengers() []int64 {
	ids := make([]int64, 0, len(f.passengers))
	for id := range f.passengers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *Flight) Clone() *Flight {
	c := *f
	c.capacity = make(map[SeatClass]int, len(f.capacity))
	for class, n := range f.capacity {
		c.capacity[class] = n
	}
	c.remaining = f.RemainingSeats()
	c.passengers = make(map[int64]struct{}, len(f.passengers))
	for id := range f.passengers {
		c.passengers[id] = struct{}{}
	}
	return &c
}

func (f *Flight) String() string {
	s := fmt.Sprintf("Flight #%d: %s from %s to %s on %s", f.ID, f.FlightNumber, f.Origin, f.Destination, f.DepartureDate.Format(DateLayout))
	for _, class := range SeatClasses {
		s += fmt.Sprintf(" | %s: %d", class, f.remaining[class])
	}
	s += fmt.Sprintf(" | BasePrice: $%.2f", f.BasePrice)
	if f.Deleted {
		s += " [DELETED]"
	}
	return s
}

func truncateDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Day normalizes t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time { return truncateDay(t) }
