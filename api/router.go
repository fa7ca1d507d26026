package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/customers"
	"github.com/Domenick1991/flightledger/internal/service/flights"
	"github.com/Domenick1991/flightledger/internal/service/report"
)

// Services groups the use cases served over HTTP.
type Services struct {
	Flights   flights.FlightUseCase
	Customers customers.CustomerUseCase
	Bookings  booking.BookingUseCase
	Reports   report.ReportUseCase
}

// NewRouter mounts the ledger endpoints under /api/v1. When swaggerDir is set
// the OpenAPI document in it is served at /swagger/ and rendered at /docs/.
func NewRouter(svc Services, swaggerDir string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	NewFlightHandler(svc.Flights).Register(v1.Group("/flights"))
	NewCustomerHandler(svc.Customers).Register(v1.Group("/customers"))
	NewBookingHandler(svc.Bookings).Register(v1.Group("/bookings"))
	NewAdminHandler(svc.Reports).Register(v1.Group("/admin"))

	if swaggerDir != "" {
		router.Static("/swagger", swaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/ledger.swagger.json"),
		)))
	}

	return router
}
