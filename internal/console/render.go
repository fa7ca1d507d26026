package console

import (
	"fmt"
	"strings"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/view"
)

func formatFlight(f view.Flight) string {
	s := fmt.Sprintf("Flight #%d - %s - %s to %s on %s - $%.2f", f.ID, f.FlightNumber, f.Origin, f.Destination,
		f.DepartureDate.Format(domain.DateLayout), f.BasePrice)
	if f.Deleted {
		s += " [deleted]"
	}
	return s
}

func formatSeats(f view.Flight) string {
	var parts []string
	for _, class := range domain.SeatClasses {
		if capacity, ok := f.Capacity[class]; ok {
			parts = append(parts, fmt.Sprintf("%s %d/%d", class, f.Remaining[class], capacity))
		}
	}
	return strings.Join(parts, ", ")
}

func formatFlightDetail(f view.Flight) string {
	var b strings.Builder
	fmt.Fprintln(&b, formatFlight(f))
	fmt.Fprintf(&b, "Seats remaining: %s\n", formatSeats(f))
	fmt.Fprintf(&b, "Passengers (%d):\n", len(f.Passengers))
	for _, p := range f.Passengers {
		fmt.Fprintf(&b, "  * Customer #%d - %s\n", p.CustomerID, p.Name)
	}
	return b.String()
}

func formatCustomer(c view.Customer) string {
	s := fmt.Sprintf("Customer #%d - %s - %s - %s", c.ID, c.Name, c.Phone, c.Email)
	if c.Deleted {
		s += " [deleted]"
	}
	return s
}

func formatCustomerDetail(c view.Customer) string {
	var b strings.Builder
	fmt.Fprintln(&b, formatCustomer(c))
	fmt.Fprintf(&b, "Bookings (%d):\n", len(c.Bookings))
	for _, bk := range c.Bookings {
		fmt.Fprintf(&b, "  * %s\n", formatBooking(bk))
	}
	return b.String()
}

func formatBooking(b view.Booking) string {
	s := fmt.Sprintf("Booking #%d - customer #%d - flight #%d %s - booked %s - %s, %s - $%.2f",
		b.ID, b.CustomerID, b.FlightID, b.FlightNumber, b.BookingDate.Format(domain.DateLayout),
		b.SeatClass, b.FoodOption, b.Price)
	if b.Fee > 0 {
		s += fmt.Sprintf(" (fee $%.2f)", b.Fee)
	}
	return s
}

func formatReport(r view.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "System date: %s\n", r.SystemDate.Format(domain.DateLayout))
	fmt.Fprintf(&b, "Active flights: %d\n", r.ActiveFlights)
	fmt.Fprintf(&b, "Active customers: %d\n", r.ActiveCustomers)
	fmt.Fprintf(&b, "Bookings: %d\n", r.Bookings)
	fmt.Fprintf(&b, "Total revenue: $%.2f\n", r.TotalRevenue)
	if r.MostBooked != nil {
		fmt.Fprintf(&b, "Most booked flight: %s (%d passengers)\n", formatFlight(*r.MostBooked), r.MostBookedCount)
	} else {
		fmt.Fprintln(&b, "Most booked flight: none")
	}
	return b.String()
}
