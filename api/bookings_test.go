package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/view"
)

// MockBookingUseCase is a mock implementation of booking.BookingUseCase
type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Add(ctx context.Context, in command.AddBookingInput) (command.Result, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(command.Result), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, in command.CancelBookingInput) (command.Result, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(command.Result), args.Error(1)
}

func (m *MockBookingUseCase) Edit(ctx context.Context, in command.EditBookingInput) (command.Result, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(command.Result), args.Error(1)
}

func (m *MockBookingUseCase) List(ctx context.Context, filter booking.Filter) ([]view.Booking, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]view.Booking), args.Error(1)
}

func (m *MockBookingUseCase) Get(ctx context.Context, id int64) (view.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(view.Booking), args.Error(1)
}

func jsonContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestBookingHandler_create(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPost, "/bookings", `{"customer_id":1,"flight_id":2,"seat_class":"business","food_option":"Vegetarian"}`)

	want := command.AddBookingInput{
		CustomerID: 1,
		FlightID:   2,
		SeatClass:  domain.SeatClassBusiness,
		FoodOption: domain.FoodVegetarian,
	}
	mockService.On("Add", mock.Anything, want).Return(command.Result{Command: "addbooking", BookingID: 5, Price: 150}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var res command.Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, int64(5), res.BookingID)
	assert.Equal(t, 150.0, res.Price)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_Defaults(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPost, "/bookings", `{"customer_id":1,"flight_id":2}`)

	mockService.On("Add", mock.Anything, command.AddBookingInput{CustomerID: 1, FlightID: 2}).
		Return(command.Result{Command: "addbooking", BookingID: 1}, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_create_BadSeatClass(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPost, "/bookings", `{"customer_id":1,"flight_id":2,"seat_class":"premium"}`)

	handler.create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
}

func TestBookingHandler_create_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"full", domain.ErrCapacityExceeded, http.StatusConflict},
		{"missing flight", fmt.Errorf("flight 2: %w", domain.ErrNotFound), http.StatusNotFound},
		{"past flight", domain.ErrPastFlight, http.StatusUnprocessableEntity},
		{"store down", domain.ErrPersistenceFailed, http.StatusServiceUnavailable},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := jsonContext(http.MethodPost, "/bookings", `{"customer_id":1,"flight_id":2}`)
			mockService.On("Add", mock.Anything, mock.Anything).Return(command.Result{}, tt.err)

			handler.create(c)

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestBookingHandler_list_Filters(t *testing.T) {
	date := time.Date(2030, 3, 4, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		query  string
		filter booking.Filter
	}{
		{"all", "", booking.Filter{}},
		{"by flight", "?flight_id=3", booking.Filter{FlightID: 3}},
		{"by customer", "?customer_id=4", booking.Filter{CustomerID: 4}},
		{"by date", "?date=2030-03-04", booking.Filter{Date: date}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockBookingUseCase{}
			handler := NewBookingHandler(mockService)
			c, w := jsonContext(http.MethodGet, "/bookings"+tt.query, "")
			mockService.On("List", mock.Anything, tt.filter).Return([]view.Booking{{ID: 1}}, nil)

			handler.list(c)

			assert.Equal(t, http.StatusOK, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestBookingHandler_list_BadDate(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodGet, "/bookings?date=04/03/2030", "")

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "YYYY-MM-DD")
}

func TestBookingHandler_cancel(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPost, "/bookings/cancellations", `{"customer_id":1,"flight_id":2}`)

	mockService.On("Cancel", mock.Anything, command.CancelBookingInput{CustomerID: 1, FlightID: 2}).
		Return(command.Result{Command: "cancelbooking", Fee: 50}, nil)

	handler.cancel(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"fee":50`)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_cancel_MissingFields(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPost, "/bookings/cancellations", `{"customer_id":1}`)

	handler.cancel(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything)
}

func TestBookingHandler_edit(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodPut, "/bookings/7", `{"new_flight_id":9,"seat_class":"FIRST"}`)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	mockService.On("Edit", mock.Anything, command.EditBookingInput{BookingID: 7, NewFlightID: 9, SeatClass: domain.SeatClassFirst}).
		Return(command.Result{Command: "editbooking", BookingID: 7, Fee: 30}, nil)

	handler.edit(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestBookingHandler_get_InvalidID(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodGet, "/bookings/abc", "")
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.get(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestBookingHandler_get_NotFound(t *testing.T) {
	mockService := &MockBookingUseCase{}
	handler := NewBookingHandler(mockService)
	c, w := jsonContext(http.MethodGet, "/bookings/7", "")
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	mockService.On("Get", mock.Anything, int64(7)).Return(view.Booking{}, domain.ErrNotFound)

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockService.AssertExpectations(t)
}
