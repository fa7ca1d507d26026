package command

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/pricing"
)

type AddBookingInput struct {
	CustomerID int64             `validate:"gt=0"`
	FlightID   int64             `validate:"gt=0"`
	SeatClass  domain.SeatClass  `validate:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
	FoodOption domain.FoodOption `validate:"omitempty,oneof=NO_MEAL VEGETARIAN CHICKEN BEEF"`
}

// AddBooking books one seat for a customer. Seat class defaults to economy and
// food option to no meal.
type AddBooking struct {
	in     AddBookingInput
	policy pricing.Policy
}

func NewAddBooking(in AddBookingInput, policy pricing.Policy) *AddBooking {
	if in.SeatClass == "" {
		in.SeatClass = domain.SeatClassEconomy
	}
	if in.FoodOption == "" {
		in.FoodOption = domain.FoodNoMeal
	}
	return &AddBooking{in: in, policy: policy}
}

func (c *AddBooking) Name() string { return "addbooking" }

func (c *AddBooking) Validate(_ context.Context, reg *ledger.Registry) error {
	if err := validateInput(c.Name(), c.in); err != nil {
		return err
	}
	customer, flight, err := c.resolve(reg)
	if err != nil {
		return err
	}
	if flight.IsFull(c.in.SeatClass) {
		return fmt.Errorf("%w: no %s seats left on flight %d for customer %d",
			domain.ErrCapacityExceeded, c.in.SeatClass, flight.ID, customer.ID)
	}
	_, err = c.policy.Quote(flight, c.in.SeatClass, reg.SystemDate())
	return err
}

func (c *AddBooking) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	customer, flight, err := c.resolve(reg)
	if err != nil {
		return Result{}, err
	}
	price, err := c.policy.Quote(flight, c.in.SeatClass, reg.SystemDate())
	if err != nil {
		return Result{}, err
	}

	b := &domain.Booking{
		ID:          reg.NextBookingID(),
		CustomerID:  customer.ID,
		FlightID:    flight.ID,
		BookingDate: reg.SystemDate(),
		SeatClass:   c.in.SeatClass,
		FoodOption:  c.in.FoodOption,
		Price:       price,
	}
	if err := customer.AddBooking(b); err != nil {
		return Result{}, err
	}
	if err := flight.AddPassenger(customer.ID, b.SeatClass); err != nil {
		return Result{}, err
	}

	return Result{
		FlightID:   flight.ID,
		CustomerID: customer.ID,
		BookingID:  b.ID,
		Price:      price,
		Message: fmt.Sprintf("Booking #%d added for customer #%d on flight #%d with seat=%s, food=%s, price=$%.2f",
			b.ID, customer.ID, flight.ID, b.SeatClass, b.FoodOption, price),
	}, nil
}

func (c *AddBooking) resolve(reg *ledger.Registry) (*domain.Customer, *domain.Flight, error) {
	customer, err := reg.CustomerByID(c.in.CustomerID)
	if err != nil {
		return nil, nil, err
	}
	if customer.Deleted {
		return nil, nil, fmt.Errorf("%w: customer %d is deleted", domain.ErrNotFound, customer.ID)
	}
	flight, err := reg.FlightByID(c.in.FlightID)
	if err != nil {
		return nil, nil, err
	}
	if flight.Deleted {
		return nil, nil, fmt.Errorf("%w: flight %d is deleted", domain.ErrNotFound, flight.ID)
	}
	return customer, flight, nil
}

type CancelBookingInput struct {
	CustomerID int64 `validate:"gt=0"`
	FlightID   int64 `validate:"gt=0"`
}

// CancelBooking cancels the customer's earliest booking on a flight and
// charges the cancellation fee. The seat is not returned to the inventory.
type CancelBooking struct {
	in   CancelBookingInput
	fees pricing.Fees
}

func NewCancelBooking(in CancelBookingInput, fees pricing.Fees) *CancelBooking {
	return &CancelBooking{in: in, fees: fees}
}

func (c *CancelBooking) Name() string { return "cancelbooking" }

func (c *CancelBooking) Validate(_ context.Context, reg *ledger.Registry) error {
	if err := validateInput(c.Name(), c.in); err != nil {
		return err
	}
	_, _, _, err := c.resolve(reg)
	return err
}

func (c *CancelBooking) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	customer, flight, b, err := c.resolve(reg)
	if err != nil {
		return Result{}, err
	}

	b.Fee = c.fees.Cancellation
	customer.RemoveBooking(b.ID)
	if _, stillBooked := customer.BookingOnFlight(flight.ID); !stillBooked {
		flight.RemovePassenger(customer.ID)
	}

	return Result{
		FlightID:   flight.ID,
		CustomerID: customer.ID,
		BookingID:  b.ID,
		Price:      b.Price,
		Fee:        b.Fee,
		Message: fmt.Sprintf("Booking #%d cancelled for customer #%d on flight #%d. Cancellation fee of $%.2f applied.",
			b.ID, customer.ID, flight.ID, b.Fee),
	}, nil
}

func (c *CancelBooking) resolve(reg *ledger.Registry) (*domain.Customer, *domain.Flight, *domain.Booking, error) {
	customer, err := reg.CustomerByID(c.in.CustomerID)
	if err != nil {
		return nil, nil, nil, err
	}
	flight, err := reg.FlightByID(c.in.FlightID)
	if err != nil {
		return nil, nil, nil, err
	}
	b, ok := customer.BookingOnFlight(flight.ID)
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: no booking for customer %d on flight %d",
			domain.ErrNotFound, customer.ID, flight.ID)
	}
	return customer, flight, b, nil
}

type EditBookingInput struct {
	BookingID   int64            `validate:"gt=0"`
	NewFlightID int64            `validate:"gt=0"`
	SeatClass   domain.SeatClass `validate:"omitempty,oneof=ECONOMY BUSINESS FIRST"`
}

// EditBooking moves a booking to another flight, optionally changing its seat
// class, re-quotes the price and charges the rebooking fee.
type EditBooking struct {
	in     EditBookingInput
	policy pricing.Policy
	fees   pricing.Fees
}

func NewEditBooking(in EditBookingInput, policy pricing.Policy, fees pricing.Fees) *EditBooking {
	return &EditBooking{in: in, policy: policy, fees: fees}
}

func (c *EditBooking) Name() string { return "editbooking" }

func (c *EditBooking) Validate(_ context.Context, reg *ledger.Registry) error {
	if err := validateInput(c.Name(), c.in); err != nil {
		return err
	}
	b, newFlight, class, err := c.resolve(reg)
	if err != nil {
		return err
	}
	if newFlight.IsFull(class) {
		return fmt.Errorf("%w: cannot move booking %d, no %s seats left on flight %d",
			domain.ErrCapacityExceeded, b.ID, class, newFlight.ID)
	}
	_, err = c.policy.Quote(newFlight, class, reg.SystemDate())
	return err
}

func (c *EditBooking) Apply(_ context.Context, reg *ledger.Registry) (Result, error) {
	b, newFlight, class, err := c.resolve(reg)
	if err != nil {
		return Result{}, err
	}
	oldFlight, err := reg.FlightByID(b.FlightID)
	if err != nil {
		return Result{}, err
	}
	customer, err := reg.CustomerByID(b.CustomerID)
	if err != nil {
		return Result{}, err
	}
	price, err := c.policy.Quote(newFlight, class, reg.SystemDate())
	if err != nil {
		return Result{}, err
	}

	if !holdsOtherBooking(customer, oldFlight.ID, b.ID) {
		oldFlight.RemovePassenger(customer.ID)
	}
	if err := newFlight.AddPassenger(customer.ID, class); err != nil {
		return Result{}, err
	}
	oldFlightID := b.FlightID
	b.FlightID = newFlight.ID
	b.SeatClass = class
	b.Price = price
	b.Fee = c.fees.Rebooking

	return Result{
		FlightID:   newFlight.ID,
		CustomerID: customer.ID,
		BookingID:  b.ID,
		Price:      price,
		Fee:        b.Fee,
		Message: fmt.Sprintf("Booking #%d moved from flight #%d to flight #%d (%s), price=$%.2f. Rebooking fee of $%.2f applied.",
			b.ID, oldFlightID, newFlight.ID, class, price, b.Fee),
	}, nil
}

func (c *EditBooking) resolve(reg *ledger.Registry) (*domain.Booking, *domain.Flight, domain.SeatClass, error) {
	b, err := reg.BookingByID(c.in.BookingID)
	if err != nil {
		return nil, nil, "", err
	}
	newFlight, err := reg.FlightByID(c.in.NewFlightID)
	if err != nil {
		return nil, nil, "", err
	}
	if newFlight.Deleted {
		return nil, nil, "", fmt.Errorf("%w: flight %d is deleted", domain.ErrNotFound, newFlight.ID)
	}
	class := c.in.SeatClass
	if class == "" {
		class = b.SeatClass
	}
	return b, newFlight, class, nil
}

func holdsOtherBooking(c *domain.Customer, flightID, exceptBookingID int64) bool {
	for _, b := range c.Bookings() {
		if b.FlightID == flightID && b.ID != exceptBookingID {
			return true
		}
	}
	return false
}

var (
	_ Command = (*AddBooking)(nil)
	_ Command = (*CancelBooking)(nil)
	_ Command = (*EditBooking)(nil)
)
