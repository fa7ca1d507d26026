// Package repository persists the whole ledger registry. Each store writes the
// complete dataset in one transaction so a failed write leaves the previous
// state intact.
package repository

import (
	"fmt"
	"sort"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

type FlightRecord struct {
	ID            int64                    `json:"id"`
	FlightNumber  string                   `json:"flight_number"`
	Origin        string                   `json:"origin"`
	Destination   string                   `json:"destination"`
	DepartureDate time.Time                `json:"departure_date"`
	BasePrice     float64                  `json:"base_price"`
	Capacity      map[domain.SeatClass]int `json:"capacity"`
	Remaining     map[domain.SeatClass]int `json:"remaining"`
	Passengers    []int64                  `json:"passengers"`
	Deleted       bool                     `json:"deleted"`
}

type CustomerRecord struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Deleted bool   `json:"deleted"`
}

type BookingRecord struct {
	ID          int64             `json:"id"`
	CustomerID  int64             `json:"customer_id"`
	FlightID    int64             `json:"flight_id"`
	BookingDate time.Time         `json:"booking_date"`
	SeatClass   domain.SeatClass  `json:"seat_class"`
	FoodOption  domain.FoodOption `json:"food_option"`
	Price       float64           `json:"price"`
	Fee         float64           `json:"fee"`
}

// Dataset is the storage form of a registry.
type Dataset struct {
	SystemDate time.Time
	LastIDs    ledger.IDMarks
	Flights    []FlightRecord
	Customers  []CustomerRecord
	Bookings   []BookingRecord
}

// NewDataset flattens the registry, deleted entities included.
func NewDataset(reg *ledger.Registry) Dataset {
	d := Dataset{SystemDate: reg.SystemDate(), LastIDs: reg.IDMarks()}
	for _, f := range reg.AllFlights() {
		d.Flights = append(d.Flights, FlightRecord{
			ID:            f.ID,
			FlightNumber:  f.FlightNumber,
			Origin:        f.Origin,
			Destination:   f.Destination,
			DepartureDate: f.DepartureDate,
			BasePrice:     f.BasePrice,
			Capacity:      f.Params().Seats,
			Remaining:     f.RemainingSeats(),
			Passengers:    f.Passengers(),
			Deleted:       f.Deleted,
		})
	}
	for _, c := range reg.AllCustomers() {
		d.Customers = append(d.Customers, CustomerRecord{
			ID:      c.ID,
			Name:    c.Name,
			Phone:   c.Phone,
			Email:   c.Email,
			Deleted: c.Deleted,
		})
		for _, b := range c.Bookings() {
			d.Bookings = append(d.Bookings, BookingRecord{
				ID:          b.ID,
				CustomerID:  b.CustomerID,
				FlightID:    b.FlightID,
				BookingDate: b.BookingDate,
				SeatClass:   b.SeatClass,
				FoodOption:  b.FoodOption,
				Price:       b.Price,
				Fee:         b.Fee,
			})
		}
	}
	return d
}

// Registry rebuilds a registry from the dataset. Bookings are attached to their
// customers in id order and the id sequences are seeded past both the largest
// loaded id and the stored marks.
func (d Dataset) Registry() (*ledger.Registry, error) {
	reg := ledger.NewRegistry()
	if !d.SystemDate.IsZero() {
		reg.SetSystemDate(d.SystemDate)
	}

	for _, r := range d.Flights {
		f, err := domain.RestoreFlight(r.ID, domain.FlightParams{
			FlightNumber:  r.FlightNumber,
			Origin:        r.Origin,
			Destination:   r.Destination,
			DepartureDate: r.DepartureDate,
			BasePrice:     r.BasePrice,
			Seats:         r.Capacity,
		}, r.Remaining, r.Deleted)
		if err != nil {
			return nil, fmt.Errorf("load flight %d: %w", r.ID, err)
		}
		for _, id := range r.Passengers {
			f.RestorePassenger(id)
		}
		if err := reg.AddFlight(f); err != nil {
			return nil, err
		}
	}

	for _, r := range d.Customers {
		c, err := domain.NewCustomer(r.ID, r.Name, r.Phone, r.Email)
		if err != nil {
			return nil, fmt.Errorf("load customer %d: %w", r.ID, err)
		}
		c.Deleted = r.Deleted
		if err := reg.AddCustomer(c); err != nil {
			return nil, err
		}
	}

	bookings := make([]BookingRecord, len(d.Bookings))
	copy(bookings, d.Bookings)
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	for _, r := range bookings {
		c, err := reg.CustomerByID(r.CustomerID)
		if err != nil {
			return nil, fmt.Errorf("load booking %d: %w", r.ID, err)
		}
		if _, err := reg.FlightByID(r.FlightID); err != nil {
			return nil, fmt.Errorf("load booking %d: %w", r.ID, err)
		}
		if err := c.AddBooking(&domain.Booking{
			ID:          r.ID,
			CustomerID:  r.CustomerID,
			FlightID:    r.FlightID,
			BookingDate: r.BookingDate,
			SeatClass:   r.SeatClass,
			FoodOption:  r.FoodOption,
			Price:       r.Price,
			Fee:         r.Fee,
		}); err != nil {
			return nil, fmt.Errorf("load booking %d: %w", r.ID, err)
		}
	}

	reg.SeedIDs()
	reg.ObserveIDs(d.LastIDs)
	return reg, nil
}
