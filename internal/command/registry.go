package command

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

type AddFlightInput struct {
	FlightNumber  string                   `validate:"required"`
	Origin        string                   `validate:"required"`
	Destination   string                   `validate:"required"`
	DepartureDate time.Time                `validate:"required"`
	BasePrice     float64                  `validate:"gte=0"`
	Seats         map[domain.SeatClass]int `validate:"required,min=1,dive,keys,oneof=ECONOMY BUSINESS FIRST,endkeys,gte=0"`
}

// AddFlight creates a flight with the next free flight id.
type AddFlight struct {
	in AddFlightInput
}

func NewAddFlight(in AddFlightInput) *AddFlight {
	return &AddFlight{in: in}
}

func (c *AddFlight) Name() string { return "addflight" }

func (c *AddFlight) Validate(_ context.Context, _ *ledger.Registry) error {
	return validateInput(c.Name(), c.in)
}

func (c *AddFlight) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	f, err := domain.NewFlight(reg.NextFlightID(), domain.FlightParams{
		FlightNumber:  c.in.FlightNumber,
		Origin:        c.in.Origin,
		Destination:   c.in.Destination,
		DepartureDate: c.in.DepartureDate,
		BasePrice:     c.in.BasePrice,
		Seats:         c.in.Seats,
	})
	if err != nil {
		return Result{}, err
	}
	if err := reg.AddFlight(f); err != nil {
		return Result{}, err
	}
	return Result{
		FlightID: f.ID,
		Price:    f.BasePrice,
		Message:  fmt.Sprintf("Flight #%d added: %s", f.ID, f.FlightNumber),
	}, nil
}

type AddCustomerInput struct {
	Name  string `validate:"required"`
	Phone string `validate:"required"`
	Email string `validate:"required,email"`
}

type AddCustomer struct {
	in AddCustomerInput
}

func NewAddCustomer(in AddCustomerInput) *AddCustomer {
	return &AddCustomer{in: in}
}

func (c *AddCustomer) Name() string { return "addcustomer" }

func (c *AddCustomer) Validate(_ context.Context, _ *ledger.Registry) error {
	return validateInput(c.Name(), c.in)
}

func (c *AddCustomer) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	customer, err := domain.NewCustomer(reg.NextCustomerID(), c.in.Name, c.in.Phone, c.in.Email)
	if err != nil {
		return Result{}, err
	}
	if err := reg.AddCustomer(customer); err != nil {
		return Result{}, err
	}
	return Result{
		CustomerID: customer.ID,
		Message:    fmt.Sprintf("Customer #%d added: %s", customer.ID, customer.Name),
	}, nil
}

// DeleteFlight soft-deletes a flight. Its bookings are kept.
type DeleteFlight struct {
	FlightID int64
}

func (c *DeleteFlight) Name() string { return "deleteflight" }

func (c *DeleteFlight) Validate(_ context.Context, reg *ledger.Registry) error {
	_, err := reg.FlightByID(c.FlightID)
	return err
}

func (c *DeleteFlight) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	f, err := reg.FlightByID(c.FlightID)
	if err != nil {
		return Result{}, err
	}
	f.Deleted = true
	return Result{FlightID: f.ID, Message: fmt.Sprintf("Flight #%d marked as deleted.", f.ID)}, nil
}

// DeleteCustomer soft-deletes a customer. The customer stays resolvable by id
// but drops out of listings and of AllBookings.
type DeleteCustomer struct {
	CustomerID int64
}

func (c *DeleteCustomer) Name() string { return "deletecustomer" }

func (c *DeleteCustomer) Validate(_ context.Context, reg *ledger.Registry) error {
	_, err := reg.CustomerByID(c.CustomerID)
	return err
}

func (c *DeleteCustomer) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	customer, err := reg.CustomerByID(c.CustomerID)
	if err != nil {
		return Result{}, err
	}
	customer.Deleted = true
	return Result{CustomerID: customer.ID, Message: fmt.Sprintf("Customer #%d marked as deleted.", customer.ID)}, nil
}

// SetSystemDate moves the ledger's notion of "today", which drives upcoming
// flight listings, booking dates and dynamic pricing.
type SetSystemDate struct {
	Date time.Time
}

func (c *SetSystemDate) Name() string { return "setdate" }

func (c *SetSystemDate) Validate(_ context.Context, _ *ledger.Registry) error {
	if c.Date.IsZero() {
		return fmt.Errorf("%w: setdate: date is required", domain.ErrValidation)
	}
	return nil
}

func (c *SetSystemDate) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	reg.SetSystemDate(c.Date)
	return Result{Message: "System date set to " + reg.SystemDate().Format(domain.DateLayout)}, nil
}

var (
	_ Command = (*AddFlight)(nil)
	_ Command = (*AddCustomer)(nil)
	_ Command = (*DeleteFlight)(nil)
	_ Command = (*DeleteCustomer)(nil)
	_ Command = (*SetSystemDate)(nil)
)
