package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type createBookingRequest struct {
	CustomerID int64  `json:"customer_id" binding:"required,gt=0"`
	FlightID   int64  `json:"flight_id" binding:"required,gt=0"`
	SeatClass  string `json:"seat_class"`
	FoodOption string `json:"food_option"`
}

type cancelBookingRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required,gt=0"`
	FlightID   int64 `json:"flight_id" binding:"required,gt=0"`
}

type editBookingRequest struct {
	NewFlightID int64  `json:"new_flight_id" binding:"required,gt=0"`
	SeatClass   string `json:"seat_class"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PUT("/:id", h.edit)
	router.POST("/cancellations", h.cancel)
}

// list accepts one of ?flight_id=, ?customer_id= or ?date=YYYY-MM-DD.
func (h *BookingHandler) list(c *gin.Context) {
	var filter booking.Filter
	var err error
	if v := c.Query("flight_id"); v != "" {
		if filter.FlightID, err = strconv.ParseInt(v, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight_id"})
			return
		}
	}
	if v := c.Query("customer_id"); v != "" {
		if filter.CustomerID, err = strconv.ParseInt(v, 10, 64); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid customer_id"})
			return
		}
	}
	if v := c.Query("date"); v != "" {
		if filter.Date, err = time.Parse(domain.DateLayout, v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, use YYYY-MM-DD"})
			return
		}
	}

	bookings, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := command.AddBookingInput{CustomerID: req.CustomerID, FlightID: req.FlightID}
	if req.SeatClass != "" {
		class, err := domain.ParseSeatClass(req.SeatClass)
		if err != nil {
			writeError(c, err)
			return
		}
		in.SeatClass = class
	}
	if req.FoodOption != "" {
		food, err := domain.ParseFoodOption(req.FoodOption)
		if err != nil {
			writeError(c, err)
			return
		}
		in.FoodOption = food
	}

	res, err := h.service.Add(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.service.Cancel(c.Request.Context(), command.CancelBookingInput{
		CustomerID: req.CustomerID,
		FlightID:   req.FlightID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *BookingHandler) edit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req editBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := command.EditBookingInput{BookingID: id, NewFlightID: req.NewFlightID}
	if req.SeatClass != "" {
		class, err := domain.ParseSeatClass(req.SeatClass)
		if err != nil {
			writeError(c, err)
			return
		}
		in.SeatClass = class
	}

	res, err := h.service.Edit(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
