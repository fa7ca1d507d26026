package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/Domenick1991/flightledger/internal/service/report"
	"github.com/Domenick1991/flightledger/internal/service/servicetest"
	"github.com/Domenick1991/flightledger/internal/view"
)

func newTestRouter(t *testing.T) (*gin.Engine, *servicetest.Ledger) {
	gin.SetMode(gin.TestMode)
	l := servicetest.New(t)
	router := NewRouter(Services{
		Flights:   flights.NewFlightService(l.Dispatcher),
		Customers: customers.NewCustomerService(l.Dispatcher),
		Bookings:  booking.NewBookingService(l.Dispatcher),
		Reports:   report.NewReportService(l.Dispatcher),
	}, "swagger")
	return router, l
}

func do(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_BookingLifecycle(t *testing.T) {
	router, l := newTestRouter(t)
	flightID := l.AddFlight(t, "BA117", 10, 100, map[domain.SeatClass]int{domain.SeatClassEconomy: 1, domain.SeatClassBusiness: 1})
	otherID := l.AddFlight(t, "BA118", 12, 200, map[domain.SeatClass]int{domain.SeatClassEconomy: 5})

	w := do(router, http.MethodPost, "/api/v1/customers", `{"name":"Ann","phone":"0700","email":"ann@example.com"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created command.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(router, http.MethodPost, "/api/v1/bookings",
		`{"customer_id":`+itoa(created.CustomerID)+`,"flight_id":`+itoa(flightID)+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var booked command.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &booked))
	assert.Equal(t, 100.0, booked.Price)

	// economy on BA117 is now full
	w = do(router, http.MethodPost, "/api/v1/bookings",
		`{"customer_id":`+itoa(created.CustomerID)+`,"flight_id":`+itoa(flightID)+`}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(router, http.MethodPut, "/api/v1/bookings/"+itoa(booked.BookingID), `{"new_flight_id":`+itoa(otherID)+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/bookings?flight_id="+itoa(otherID), "")
	require.Equal(t, http.StatusOK, w.Code)
	var listed []view.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, booked.BookingID, listed[0].ID)

	w = do(router, http.MethodPost, "/api/v1/bookings/cancellations",
		`{"customer_id":`+itoa(created.CustomerID)+`,"flight_id":`+itoa(otherID)+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/admin/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rep view.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	assert.Equal(t, 2, rep.ActiveFlights)
	assert.Equal(t, 1, rep.ActiveCustomers)
	assert.Equal(t, 0, rep.Bookings)
}

func TestRouter_SystemDate(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/admin/system-date", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"date":"2030-01-01"}`, w.Body.String())

	w = do(router, http.MethodPut, "/api/v1/admin/system-date", `{"date":"2030-06-15"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/admin/system-date", "")
	assert.JSONEq(t, `{"date":"2030-06-15"}`, w.Body.String())

	w = do(router, http.MethodPut, "/api/v1/admin/system-date", `{"date":"15/06/2030"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_DeletedCustomerCannotBook(t *testing.T) {
	router, l := newTestRouter(t)
	flightID := l.AddFlight(t, "BA117", 10, 100, map[domain.SeatClass]int{domain.SeatClassEconomy: 3})
	customerID := l.AddCustomer(t, "bob")

	w := do(router, http.MethodDelete, "/api/v1/customers/"+itoa(customerID), "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodPost, "/api/v1/bookings", `{"customer_id":`+itoa(customerID)+`,"flight_id":`+itoa(flightID)+`}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/v1/customers", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRouter_SearchFlights(t *testing.T) {
	router, l := newTestRouter(t)
	l.AddFlight(t, "BA117", 10, 100, map[domain.SeatClass]int{domain.SeatClassEconomy: 1})
	l.AddFlight(t, "BA118", 12, 200, map[domain.SeatClass]int{domain.SeatClassEconomy: 1})

	w := do(router, http.MethodGet, "/api/v1/flights?destination=new%20york&from=2030-01-13&to=2030-01-13", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var found []view.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "BA118", found[0].FlightNumber)
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SwaggerDocument(t *testing.T) {
	router, _ := newTestRouter(t)

	w := do(router, http.MethodGet, "/swagger/ledger.swagger.json", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"basePath": "/api/v1"`)
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
