package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/flights"
)

type FlightHandler struct {
	service flights.FlightUseCase
}

type createFlightRequest struct {
	FlightNumber  string         `json:"flight_number" binding:"required"`
	Origin        string         `json:"origin" binding:"required"`
	Destination   string         `json:"destination" binding:"required"`
	DepartureDate string         `json:"departure_date" binding:"required"`
	BasePrice     float64        `json:"base_price" binding:"gte=0"`
	Seats         map[string]int `json:"seats" binding:"required"`
}

func NewFlightHandler(service flights.FlightUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.DELETE("/:id", h.delete)
}

// list serves active flights, or only upcoming ones with ?upcoming=true. Any of
// origin, destination, from or to turns it into a search.
func (h *FlightHandler) list(c *gin.Context) {
	if filter, ok, err := searchFilter(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	} else if ok {
		found, err := h.service.Search(c.Request.Context(), filter)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, found)
		return
	}

	list := h.service.List
	if c.Query("upcoming") == "true" {
		list = h.service.Upcoming
	}
	listed, err := list(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, listed)
}

func searchFilter(c *gin.Context) (flights.SearchFilter, bool, error) {
	filter := flights.SearchFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	for _, bound := range []struct {
		name string
		dst  *time.Time
	}{{"from", &filter.From}, {"to", &filter.To}} {
		raw := c.Query(bound.name)
		if raw == "" {
			continue
		}
		d, err := time.Parse(domain.DateLayout, raw)
		if err != nil {
			return filter, false, fmt.Errorf("invalid %s, use YYYY-MM-DD", bound.name)
		}
		*bound.dst = d
	}
	ok := filter.Origin != "" || filter.Destination != "" || !filter.From.IsZero() || !filter.To.IsZero()
	return filter, ok, nil
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	flight, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req createFlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	departure, err := time.Parse(domain.DateLayout, req.DepartureDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid departure_date, use YYYY-MM-DD"})
		return
	}
	seats := make(map[domain.SeatClass]int, len(req.Seats))
	for name, n := range req.Seats {
		class, err := domain.ParseSeatClass(name)
		if err != nil {
			writeError(c, err)
			return
		}
		seats[class] = n
	}

	res, err := h.service.Add(c.Request.Context(), command.AddFlightInput{
		FlightNumber:  req.FlightNumber,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: departure,
		BasePrice:     req.BasePrice,
		Seats:         seats,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
