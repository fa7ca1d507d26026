package ledger

import (
	"testing"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RestoreUndoesEntityMutation(t *testing.T) {
	reg := NewRegistry()
	f := newFlight(t, reg.NextFlightID(), time.Now())
	require.NoError(t, reg.AddFlight(f))
	c := newCustomer(t, reg.NextCustomerID())
	existing := &domain.Booking{ID: reg.NextBookingID(), CustomerID: c.ID, FlightID: f.ID, SeatClass: domain.SeatClassEconomy, Price: 100}
	require.NoError(t, c.AddBooking(existing))
	require.NoError(t, reg.AddCustomer(c))
	date := reg.SystemDate()

	snap := reg.Snapshot()

	require.NoError(t, f.AddPassenger(c.ID, domain.SeatClassBusiness))
	existing.Fee = 50
	existing.FlightID = 99
	require.NoError(t, c.AddBooking(&domain.Booking{ID: reg.NextBookingID(), CustomerID: c.ID, FlightID: f.ID}))
	c.Deleted = true
	extra := newFlight(t, reg.NextFlightID(), time.Now())
	require.NoError(t, reg.AddFlight(extra))
	reg.SetSystemDate(date.AddDate(1, 0, 0))

	require.NoError(t, reg.Restore(snap))

	assert.Equal(t, 1, f.Remaining(domain.SeatClassBusiness))
	assert.False(t, f.HasPassenger(c.ID))
	assert.False(t, c.Deleted)
	require.Len(t, c.Bookings(), 1)
	assert.Same(t, existing, c.Bookings()[0])
	assert.Equal(t, 0.0, existing.Fee)
	assert.Equal(t, f.ID, existing.FlightID)
	_, err := reg.FlightByID(extra.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, date, reg.SystemDate())
	assert.Equal(t, int64(2), reg.NextFlightID())
	assert.Equal(t, int64(2), reg.NextBookingID())
}

func TestSnapshot_RestoresRemovedBooking(t *testing.T) {
	reg := NewRegistry()
	c := newCustomer(t, 1)
	b := &domain.Booking{ID: 1, CustomerID: 1, FlightID: 1}
	require.NoError(t, c.AddBooking(b))
	require.NoError(t, reg.AddCustomer(c))

	snap := reg.Snapshot()
	require.True(t, c.RemoveBooking(1))
	require.NoError(t, reg.Restore(snap))

	got, err := reg.BookingByID(1)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestSnapshot_ConsumedOnce(t *testing.T) {
	reg := NewRegistry()
	snap := reg.Snapshot()

	require.NoError(t, reg.Restore(snap))
	assert.ErrorIs(t, reg.Restore(snap), ErrSnapshotConsumed)
}

func TestSnapshot_IsolatedFromLaterMutation(t *testing.T) {
	reg := NewRegistry()
	f := newFlight(t, 1, time.Now())
	require.NoError(t, reg.AddFlight(f))

	snap := reg.Snapshot()
	require.NoError(t, f.AddPassenger(1, domain.SeatClassEconomy))
	require.NoError(t, f.AddPassenger(2, domain.SeatClassEconomy))
	require.NoError(t, reg.Restore(snap))

	assert.Equal(t, 2, f.Remaining(domain.SeatClassEconomy))
	assert.Equal(t, 0, f.PassengerCount())
}
