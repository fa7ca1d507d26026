// Package console is the interactive line interface to the ledger. Each line
// is one command; input is parsed and checked here before any use case runs.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightledger/api"
	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/service/booking"
	"github.com/Domenick1991/flightledger/internal/service/flights"
)

// ErrExit is returned by Exec for the exit command.
var ErrExit = errors.New("exit")

// UsageError reports a malformed command line.
type UsageError struct {
	Usage string
}

func (e *UsageError) Error() string { return e.Usage }

func usage(format string, args ...any) error {
	return &UsageError{Usage: fmt.Sprintf(format, args...)}
}

type Console struct {
	svc api.Services
	out io.Writer
	log *logrus.Entry
}

func New(svc api.Services, out io.Writer, log *logrus.Entry) *Console {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Console{svc: svc, out: out, log: log.WithField("component", "console")}
}

// Run reads commands from in until exit, end of input or ctx is done.
// Command errors are printed and do not stop the loop.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(c.out, "Welcome to the Flight Booking System!")
	fmt.Fprintln(c.out, "Type 'help' to see the list of available commands.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return nil
		}

		err := c.Exec(ctx, scanner.Text())
		switch {
		case errors.Is(err, ErrExit):
			fmt.Fprintln(c.out, "Goodbye!")
			return nil
		case err != nil:
			c.log.WithError(err).Debug("command failed")
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	}
}

// Exec parses and runs a single command line.
func (c *Console) Exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "help":
		c.help()
		return nil
	case "exit", "quit":
		return ErrExit
	case "listflights":
		return c.listFlights(ctx, args)
	case "searchflights":
		return c.searchFlights(ctx, args)
	case "listcustomers":
		return c.listCustomers(ctx)
	case "addflight":
		return c.addFlight(ctx, args)
	case "addcustomer":
		return c.addCustomer(ctx, args)
	case "showflight":
		return c.showFlight(ctx, args)
	case "showcustomer":
		return c.showCustomer(ctx, args)
	case "deleteflight":
		return c.deleteFlight(ctx, args)
	case "deletecustomer":
		return c.deleteCustomer(ctx, args)
	case "addbooking":
		return c.addBooking(ctx, args)
	case "cancelbooking":
		return c.cancelBooking(ctx, args)
	case "editbooking":
		return c.editBooking(ctx, args)
	case "listbookings":
		return c.listBookings(ctx, args)
	case "report":
		return c.report(ctx)
	case "setdate":
		return c.setDate(ctx, args)
	}
	return fmt.Errorf("unknown command: %s", name)
}

func (c *Console) listFlights(ctx context.Context, args []string) error {
	list := c.svc.Flights.List
	if len(args) > 0 && strings.EqualFold(args[0], "upcoming") {
		list = c.svc.Flights.Upcoming
	}
	listed, err := list(ctx)
	if err != nil {
		return err
	}
	for _, f := range listed {
		fmt.Fprintln(c.out, formatFlight(f))
	}
	fmt.Fprintf(c.out, "%d flight(s)\n", len(listed))
	return nil
}

const searchFlightsUsage = "Usage: searchflights [origin] [destination] [from date] [to date] (use - for any)"

func (c *Console) searchFlights(ctx context.Context, args []string) error {
	if len(args) == 0 || len(args) > 4 {
		return usage(searchFlightsUsage)
	}
	crit := make([]string, 4)
	for i, arg := range args {
		if arg != "-" {
			crit[i] = arg
		}
	}
	filter := flights.SearchFilter{Origin: crit[0], Destination: crit[1]}
	var err error
	if crit[2] != "" {
		if filter.From, err = parseDate(crit[2]); err != nil {
			return err
		}
	}
	if crit[3] != "" {
		if filter.To, err = parseDate(crit[3]); err != nil {
			return err
		}
	}

	found, err := c.svc.Flights.Search(ctx, filter)
	if err != nil {
		return err
	}
	for _, f := range found {
		fmt.Fprintln(c.out, formatFlight(f))
	}
	fmt.Fprintf(c.out, "%d flight(s)\n", len(found))
	return nil
}

func (c *Console) listCustomers(ctx context.Context) error {
	customers, err := c.svc.Customers.List(ctx)
	if err != nil {
		return err
	}
	for _, cu := range customers {
		fmt.Fprintln(c.out, formatCustomer(cu))
	}
	fmt.Fprintf(c.out, "%d customer(s)\n", len(customers))
	return nil
}

const addFlightUsage = "Usage: addflight [flightNumber] [origin] [destination] [date] [price] [class=seats]..."

func (c *Console) addFlight(ctx context.Context, args []string) error {
	if len(args) < 6 {
		return usage(addFlightUsage)
	}
	date, err := parseDate(args[3])
	if err != nil {
		return err
	}
	price, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		return usage("Invalid price %q. %s", args[4], addFlightUsage)
	}
	seats := make(map[domain.SeatClass]int)
	for _, arg := range args[5:] {
		name, count, ok := strings.Cut(arg, "=")
		if !ok {
			return usage(addFlightUsage)
		}
		class, err := domain.ParseSeatClass(name)
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return usage("Invalid seat count %q for %s.", count, class)
		}
		seats[class] = n
	}

	res, err := c.svc.Flights.Add(ctx, command.AddFlightInput{
		FlightNumber:  args[0],
		Origin:        args[1],
		Destination:   args[2],
		DepartureDate: date,
		BasePrice:     price,
		Seats:         seats,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) addCustomer(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("Usage: addcustomer [name] [phone] [email]")
	}
	res, err := c.svc.Customers.Add(ctx, command.AddCustomerInput{Name: args[0], Phone: args[1], Email: args[2]})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) showFlight(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, 1, "Usage: showflight [flight id]")
	if err != nil {
		return err
	}
	f, err := c.svc.Flights.Get(ctx, ids[0])
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, formatFlightDetail(f))
	return nil
}

func (c *Console) showCustomer(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, 1, "Usage: showcustomer [customer id]")
	if err != nil {
		return err
	}
	cu, err := c.svc.Customers.Get(ctx, ids[0])
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, formatCustomerDetail(cu))
	return nil
}

func (c *Console) deleteFlight(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, 1, "Usage: deleteflight [flight id]")
	if err != nil {
		return err
	}
	res, err := c.svc.Flights.Delete(ctx, ids[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) deleteCustomer(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, 1, "Usage: deletecustomer [customer id]")
	if err != nil {
		return err
	}
	res, err := c.svc.Customers.Delete(ctx, ids[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

const addBookingUsage = "Usage: addbooking [customer id] [flight id] [seat class] [food option]"

func (c *Console) addBooking(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 4 {
		return usage(addBookingUsage)
	}
	ids, err := parseIDs(args[:2], 2, addBookingUsage)
	if err != nil {
		return err
	}
	in := command.AddBookingInput{CustomerID: ids[0], FlightID: ids[1]}
	if len(args) > 2 {
		if in.SeatClass, err = domain.ParseSeatClass(args[2]); err != nil {
			return err
		}
	}
	if len(args) > 3 {
		if in.FoodOption, err = domain.ParseFoodOption(args[3]); err != nil {
			return err
		}
	}

	res, err := c.svc.Bookings.Add(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) cancelBooking(ctx context.Context, args []string) error {
	ids, err := parseIDs(args, 2, "Usage: cancelbooking [customer id] [flight id]")
	if err != nil {
		return err
	}
	res, err := c.svc.Bookings.Cancel(ctx, command.CancelBookingInput{CustomerID: ids[0], FlightID: ids[1]})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

const editBookingUsage = "Usage: editbooking [booking id] [new flight id] [seat class]"

func (c *Console) editBooking(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return usage(editBookingUsage)
	}
	ids, err := parseIDs(args[:2], 2, editBookingUsage)
	if err != nil {
		return err
	}
	in := command.EditBookingInput{BookingID: ids[0], NewFlightID: ids[1]}
	if len(args) > 2 {
		if in.SeatClass, err = domain.ParseSeatClass(args[2]); err != nil {
			return err
		}
	}

	res, err := c.svc.Bookings.Edit(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) listBookings(ctx context.Context, args []string) error {
	var filter booking.Filter
	if len(args) > 0 {
		sub := strings.ToLower(args[0])
		switch sub {
		case "flight":
			ids, err := parseIDs(args[1:], 1, "Usage: listbookings flight [flight id]")
			if err != nil {
				return err
			}
			filter.FlightID = ids[0]
		case "customer":
			ids, err := parseIDs(args[1:], 1, "Usage: listbookings customer [customer id]")
			if err != nil {
				return err
			}
			filter.CustomerID = ids[0]
		case "date":
			if len(args) != 2 {
				return usage("Usage: listbookings date [YYYY-MM-DD]")
			}
			d, err := parseDate(args[1])
			if err != nil {
				return err
			}
			filter.Date = d
		default:
			return usage("Unknown listbookings subcommand: %s", sub)
		}
	}

	bookings, err := c.svc.Bookings.List(ctx, filter)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		fmt.Fprintln(c.out, formatBooking(b))
	}
	fmt.Fprintf(c.out, "%d booking(s)\n", len(bookings))
	return nil
}

func (c *Console) report(ctx context.Context) error {
	r, err := c.svc.Reports.Report(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, formatReport(r))
	return nil
}

func (c *Console) setDate(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("Usage: setdate [YYYY-MM-DD]")
	}
	d, err := parseDate(args[0])
	if err != nil {
		return err
	}
	res, err := c.svc.Reports.SetSystemDate(ctx, d)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, res.Message)
	return nil
}

func (c *Console) help() {
	fmt.Fprint(c.out, `Available commands:
listflights [upcoming]                    print all (or upcoming) flights
searchflights [origin] [destination] [from] [to]
                                          search flights, - matches any
listcustomers                             print all customers
addflight [flightNumber] [origin] [destination] [date] [price] [class=seats]...
                                          e.g. economy=100 business=20 first=5
addcustomer [name] [phone] [email]
showflight [flight id]                    show flight details
showcustomer [customer id]                show customer details
deleteflight [flight id]                  remove a flight
deletecustomer [customer id]              remove a customer
addbooking [customer id] [flight id] [seat class] [food option]
                                          add a new booking
cancelbooking [customer id] [flight id]   cancel a booking
editbooking [booking id] [new flight id] [seat class]
                                          move a booking to another flight
listbookings                              list all bookings
   listbookings flight [flight id]        list bookings for a flight
   listbookings date [yyyy-mm-dd]         list bookings by booking date
   listbookings customer [cust id]        list bookings for a particular customer
report                                    print the admin report
setdate [yyyy-mm-dd]                      set the system date
help                                      prints this help message
exit                                      exits the program
`)
}

func parseIDs(args []string, n int, usageText string) ([]int64, error) {
	if len(args) != n {
		return nil, &UsageError{Usage: usageText}
	}
	ids := make([]int64, n)
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, &UsageError{Usage: usageText}
		}
		ids[i] = id
	}
	return ids, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, usage("Invalid date format. Use YYYY-MM-DD.")
	}
	return d, nil
}
