// Package pricing quotes booking prices and the flat fees charged when a
// booking is cancelled or moved to another flight.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/Domenick1991/flightledger/internal/domain"
)

const (
	DefaultCancellationFee = 50.0
	DefaultRebookingFee    = 30.0
)

// Policy computes the price of one seat of the given class on a flight.
type Policy interface {
	Quote(flight *domain.Flight, class domain.SeatClass, systemDate time.Time) (float64, error)
}

type Fees struct {
	Cancellation float64
	Rebooking    float64
}

func DefaultFees() Fees {
	return Fees{Cancellation: DefaultCancellationFee, Rebooking: DefaultRebookingFee}
}

// DefaultMultipliers maps each seat class to its factor over the base price.
func DefaultMultipliers() map[domain.SeatClass]float64 {
	return map[domain.SeatClass]float64{
		domain.SeatClassEconomy:  1.0,
		domain.SeatClassBusiness: 1.5,
		domain.SeatClassFirst:    2.0,
	}
}

// SeatMultiplier is the canonical policy: base price times a per-class factor.
type SeatMultiplier struct {
	Multipliers map[domain.SeatClass]float64
}

func NewSeatMultiplier(multipliers map[domain.SeatClass]float64) *SeatMultiplier {
	if len(multipliers) == 0 {
		multipliers = DefaultMultipliers()
	}
	return &SeatMultiplier{Multipliers: multipliers}
}

func (p *SeatMultiplier) Quote(flight *domain.Flight, class domain.SeatClass, _ time.Time) (float64, error) {
	m, ok := p.Multipliers[class]
	if !ok {
		return 0, fmt.Errorf("%w: no price multiplier for seat class %q", domain.ErrValidation, class)
	}
	return round(flight.BasePrice * m), nil
}

// Dynamic prices by load and by the number of days left before departure.
// Flights that already departed cannot be priced.
type Dynamic struct {
	CapacityFactor float64
	DateFactor     float64
}

func (p *Dynamic) Quote(flight *domain.Flight, class domain.SeatClass, systemDate time.Time) (float64, error) {
	today := domain.Day(systemDate)
	if flight.DepartureDate.Before(today) {
		return 0, fmt.Errorf("%w: flight %d departed on %s, system date is %s",
			domain.ErrPastFlight, flight.ID, flight.DepartureDate.Format(domain.DateLayout), today.Format(domain.DateLayout))
	}
	loadRatio := 0.0
	if total := flight.TotalCapacity(); total > 0 {
		loadRatio = float64(flight.PassengerCount()) / float64(total)
	}
	days := math.Floor(flight.DepartureDate.Sub(today).Hours() / 24)
	price := flight.BasePrice + p.CapacityFactor*loadRatio*flight.BasePrice + p.DateFactor*days
	return round(math.Max(price, 0)), nil
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}

var (
	_ Policy = (*SeatMultiplier)(nil)
	_ Policy = (*Dynamic)(nil)
)
