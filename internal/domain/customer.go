package domain

import (
	"fmt"
	"time"
)

type Customer struct {
	ID      int64
	Name    string
	Phone   string
	Email   string
	Deleted bool

	bookings []*Booking
}

func NewCustomer(id int64, name, phone, email string) (*Customer, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: customer id must be positive, got %d", ErrValidation, id)
	}
	return &Customer{ID: id, Name: name, Phone: phone, Email: email}, nil
}

// Bookings returns the customer's bookings in the order they were made.
func (c *Customer) Bookings() []*Booking {
	out := make([]*Booking, len(c.bookings))
	copy(out, c.bookings)
	return out
}

func (c *Customer) AddBooking(b *Booking) error {
	for _, existing := range c.bookings {
		if existing.ID == b.ID {
			return fmt.Errorf("%w: booking %d already held by customer %d", ErrDuplicateID, b.ID, c.ID)
		}
	}
	c.bookings = append(c.bookings, b)
	return nil
}

// RemoveBooking drops a single booking by id and reports whether it was held.
func (c *Customer) RemoveBooking(bookingID int64) bool {
	for i, b := range c.bookings {
		if b.ID == bookingID {
			c.bookings = append(c.bookings[:i:i], c.bookings[i+1:]...)
			return true
		}
	}
	return false
}

// BookingOnFlight returns the earliest booking the customer holds on flightID.
func (c *Customer) BookingOnFlight(flightID int64) (*Booking, bool) {
	for _, b := range c.bookings {
		if b.FlightID == flightID {
			return b, true
		}
	}
	return nil, false
}

func (c *Customer) Booking(bookingID int64) (*Booking, bool) {
	for _, b := range c.bookings {
		if b.ID == bookingID {
			return b, true
		}
	}
	return nil, false
}

// Clone copies the customer together with its bookings.
func (c *Customer) Clone() *Customer {
	out := *c
	out.bookings = make([]*Booking, len(c.bookings))
	for i, b := range c.bookings {
		out.bookings[i] = b.Clone()
	}
	return &out
}

// ReplaceBookings swaps the booking list wholesale; used by rollback.
func (c *Customer) ReplaceBookings(bookings []*Booking) {
	c.bookings = bookings
}

func (c *Customer) String() string {
	return fmt.Sprintf("Customer #%d: %s - %s - %s", c.ID, c.Name, c.Phone, c.Email)
}

type Booking struct {
	ID          int64
	CustomerID  int64
	FlightID    int64
	BookingDate time.Time
	SeatClass   SeatClass
	FoodOption  FoodOption
	Price       float64
	Fee         float64
}

func (b *Booking) Clone() *Booking {
	c := *b
	return &c
}

func (b *Booking) String() string {
	return fmt.Sprintf("Booking #%d | Customer #%d | Flight #%d | %s | %s | Price: $%.2f | Fee: $%.2f",
		b.ID, b.CustomerID, b.FlightID, b.SeatClass, b.FoodOption, b.Price, b.Fee)
}
