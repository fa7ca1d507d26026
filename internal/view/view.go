// Package view holds the read models returned by queries. They are plain
// values detached from the registry, safe to cache, serialize and render
// after the engine lock is released.
package view

import (
	"math"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

type Flight struct {
	ID            int64                    `json:"id"`
	FlightNumber  string                   `json:"flight_number"`
	Origin        string                   `json:"origin"`
	Destination   string                   `json:"destination"`
	DepartureDate time.Time                `json:"departure_date"`
	BasePrice     float64                  `json:"base_price"`
	Capacity      map[domain.SeatClass]int `json:"capacity"`
	Remaining     map[domain.SeatClass]int `json:"remaining"`
	Passengers    []Passenger              `json:"passengers,omitempty"`
	Deleted       bool                     `json:"deleted"`
}

type Passenger struct {
	CustomerID int64  `json:"customer_id"`
	Name       string `json:"name"`
}

type Customer struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Phone    string    `json:"phone"`
	Email    string    `json:"email"`
	Deleted  bool      `json:"deleted"`
	Bookings []Booking `json:"bookings,omitempty"`
}

type Booking struct {
	ID           int64             `json:"id"`
	CustomerID   int64             `json:"customer_id"`
	FlightID     int64             `json:"flight_id"`
	FlightNumber string            `json:"flight_number,omitempty"`
	BookingDate  time.Time         `json:"booking_date"`
	SeatClass    domain.SeatClass  `json:"seat_class"`
	FoodOption   domain.FoodOption `json:"food_option"`
	Price        float64           `json:"price"`
	Fee          float64           `json:"fee"`
}

// Report is the admin summary over active flights, active customers and
// their bookings.
type Report struct {
	SystemDate      time.Time `json:"system_date"`
	ActiveFlights   int       `json:"active_flights"`
	ActiveCustomers int       `json:"active_customers"`
	Bookings        int       `json:"bookings"`
	TotalRevenue    float64   `json:"total_revenue"`
	MostBooked      *Flight   `json:"most_booked,omitempty"`
	MostBookedCount int       `json:"most_booked_passengers"`
}

// NewFlight builds a flight summary without the passenger list.
func NewFlight(f *domain.Flight) Flight {
	return Flight{
		ID:            f.ID,
		FlightNumber:  f.FlightNumber,
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureDate: f.DepartureDate,
		BasePrice:     f.BasePrice,
		Capacity:      f.Params().Seats,
		Remaining:     f.RemainingSeats(),
		Deleted:       f.Deleted,
	}
}

// NewFlightDetail adds the passengers, resolved to names through reg.
func NewFlightDetail(reg *ledger.Registry, f *domain.Flight) Flight {
	v := NewFlight(f)
	for _, id := range f.Passengers() {
		p := Passenger{CustomerID: id}
		if c, err := reg.CustomerByID(id); err == nil {
			p.Name = c.Name
		}
		v.Passengers = append(v.Passengers, p)
	}
	return v
}

func NewCustomer(c *domain.Customer) Customer {
	return Customer{
		ID:      c.ID,
		Name:    c.Name,
		Phone:   c.Phone,
		Email:   c.Email,
		Deleted: c.Deleted,
	}
}

// NewCustomerDetail adds the customer's bookings in booking order.
func NewCustomerDetail(reg *ledger.Registry, c *domain.Customer) Customer {
	v := NewCustomer(c)
	for _, b := range c.Bookings() {
		v.Bookings = append(v.Bookings, NewBooking(reg, b))
	}
	return v
}

func NewBooking(reg *ledger.Registry, b *domain.Booking) Booking {
	v := Booking{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		FlightID:    b.FlightID,
		BookingDate: b.BookingDate,
		SeatClass:   b.SeatClass,
		FoodOption:  b.FoodOption,
		Price:       b.Price,
		Fee:         b.Fee,
	}
	if f, err := reg.FlightByID(b.FlightID); err == nil {
		v.FlightNumber = f.FlightNumber
	}
	return v
}

func NewBookings(reg *ledger.Registry, bookings []*domain.Booking) []Booking {
	out := make([]Booking, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, NewBooking(reg, b))
	}
	return out
}

// NewReport sums price plus fee over every booking of active customers. The
// most booked flight is the active flight with the most passengers; ties go
// to the lowest id. Flights without passengers are never reported.
func NewReport(reg *ledger.Registry) Report {
	flights := reg.ActiveFlights()
	bookings := reg.AllBookings()
	r := Report{
		SystemDate:      reg.SystemDate(),
		ActiveFlights:   len(flights),
		ActiveCustomers: len(reg.ActiveCustomers()),
		Bookings:        len(bookings),
	}
	for _, b := range bookings {
		r.TotalRevenue += b.Price + b.Fee
	}
	r.TotalRevenue = math.Round(r.TotalRevenue*100) / 100
	for _, f := range flights {
		if n := f.PassengerCount(); n > r.MostBookedCount {
			v := NewFlight(f)
			r.MostBooked = &v
			r.MostBookedCount = n
		}
	}
	return r
}
