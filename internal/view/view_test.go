package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
)

func seed(t *testing.T) *ledger.Registry {
	t.Helper()
	reg := ledger.NewRegistry()
	for i, n := range []string{"BA123", "LH400", "AF001"} {
		f, err := domain.NewFlight(int64(i+1), domain.FlightParams{
			FlightNumber:  n,
			Origin:        "A",
			Destination:   "B",
			DepartureDate: time.Date(2030, 5, 10+i, 0, 0, 0, 0, time.UTC),
			BasePrice:     100,
			Seats:         map[domain.SeatClass]int{domain.SeatClassEconomy: 5},
		})
		require.NoError(t, err)
		require.NoError(t, reg.AddFlight(f))
	}
	for i, n := range []string{"alice", "bob"} {
		c, err := domain.NewCustomer(int64(i+1), n, "1", n+"@example.com")
		require.NoError(t, err)
		require.NoError(t, reg.AddCustomer(c))
	}
	return reg
}

func book(t *testing.T, reg *ledger.Registry, id, customerID, flightID int64, price, fee float64) {
	t.Helper()
	c, err := reg.CustomerByID(customerID)
	require.NoError(t, err)
	f, err := reg.FlightByID(flightID)
	require.NoError(t, err)
	require.NoError(t, f.AddPassenger(customerID, domain.SeatClassEconomy))
	require.NoError(t, c.AddBooking(&domain.Booking{ID: id, CustomerID: customerID, FlightID: flightID, SeatClass: domain.SeatClassEconomy, Price: price, Fee: fee}))
}

func TestNewReport(t *testing.T) {
	reg := seed(t)
	book(t, reg, 1, 1, 2, 100, 0)
	book(t, reg, 2, 2, 2, 150.5, 30)
	book(t, reg, 3, 1, 3, 200, 0)

	r := NewReport(reg)

	assert.Equal(t, 3, r.ActiveFlights)
	assert.Equal(t, 2, r.ActiveCustomers)
	assert.Equal(t, 3, r.Bookings)
	assert.Equal(t, 480.5, r.TotalRevenue)
	require.NotNil(t, r.MostBooked)
	assert.Equal(t, "LH400", r.MostBooked.FlightNumber)
	assert.Equal(t, 2, r.MostBookedCount)
}

func TestNewReport_SkipsDeletedCustomers(t *testing.T) {
	reg := seed(t)
	book(t, reg, 1, 1, 1, 100, 0)
	book(t, reg, 2, 2, 1, 100, 0)
	bob, err := reg.CustomerByID(2)
	require.NoError(t, err)
	bob.Deleted = true

	r := NewReport(reg)

	assert.Equal(t, 1, r.ActiveCustomers)
	assert.Equal(t, 1, r.Bookings)
	assert.Equal(t, 100.0, r.TotalRevenue)
}

func TestNewReport_NoPassengers(t *testing.T) {
	r := NewReport(seed(t))

	assert.Nil(t, r.MostBooked)
	assert.Zero(t, r.TotalRevenue)
}

func TestNewFlightDetail(t *testing.T) {
	reg := seed(t)
	book(t, reg, 1, 2, 1, 100, 0)
	book(t, reg, 2, 1, 1, 100, 0)
	f, err := reg.FlightByID(1)
	require.NoError(t, err)

	v := NewFlightDetail(reg, f)

	assert.Equal(t, []Passenger{{CustomerID: 1, Name: "alice"}, {CustomerID: 2, Name: "bob"}}, v.Passengers)
	assert.Equal(t, 3, v.Remaining[domain.SeatClassEconomy])
	assert.Equal(t, 5, v.Capacity[domain.SeatClassEconomy])
}

func TestNewCustomerDetail(t *testing.T) {
	reg := seed(t)
	book(t, reg, 1, 1, 3, 100, 0)
	book(t, reg, 2, 1, 1, 120, 0)
	c, err := reg.CustomerByID(1)
	require.NoError(t, err)

	v := NewCustomerDetail(reg, c)

	require.Len(t, v.Bookings, 2)
	assert.Equal(t, "AF001", v.Bookings[0].FlightNumber)
	assert.Equal(t, int64(2), v.Bookings[1].ID)
}
