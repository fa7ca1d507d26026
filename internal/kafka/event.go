package kafka

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingRebooked  = "booking_rebooked"
	EventFlightAdded      = "flight_added"
	EventFlightDeleted    = "flight_deleted"
	EventCustomerAdded    = "customer_added"
	EventCustomerDeleted  = "customer_deleted"
	EventSystemDateSet    = "system_date_set"
)

// LedgerEvent announces a committed command. It is published after the
// registry is persisted and is never part of the command's transaction.
type LedgerEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       string    `json:"type"`
	Command    string    `json:"command"`
	BookingID  int64     `json:"booking_id,omitempty"`
	CustomerID int64     `json:"customer_id,omitempty"`
	FlightID   int64     `json:"flight_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Price      float64   `json:"price"`
	Fee        float64   `json:"fee"`
	Message    string    `json:"message"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Key partitions events of one customer together, falling back to the event id.
func (e LedgerEvent) Key() string {
	if e.CustomerID != 0 {
		return "customer-" + strconv.FormatInt(e.CustomerID, 10)
	}
	return e.ID.String()
}

// Notifiable reports whether the customer should get an e-mail for the event.
func (e LedgerEvent) Notifiable() bool {
	if e.Email == "" {
		return false
	}
	switch e.Type {
	case EventBookingCreated, EventBookingCancelled, EventBookingRebooked:
		return true
	}
	return false
}
