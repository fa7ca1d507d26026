package customers

import (
	"context"

	"github.com/Domenick1991/flightledger/internal/command"
	"github.com/Domenick1991/flightledger/internal/kafka"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/Domenick1991/flightledger/internal/service"
	"github.com/Domenick1991/flightledger/internal/view"
)

type CustomerUseCase interface {
	List(ctx context.Context) ([]view.Customer, error)
	Get(ctx context.Context, id int64) (view.Customer, error)
	Add(ctx context.Context, in command.AddCustomerInput) (command.Result, error)
	Delete(ctx context.Context, id int64) (command.Result, error)
}

type CustomerService struct {
	ledger *service.Dispatcher
}

func NewCustomerService(d *service.Dispatcher) *CustomerService {
	return &CustomerService{ledger: d}
}

// List returns active customers without their bookings.
func (s *CustomerService) List(_ context.Context) ([]view.Customer, error) {
	out := make([]view.Customer, 0)
	err := s.ledger.View(func(reg *ledger.Registry) error {
		for _, c := range reg.ActiveCustomers() {
			out = append(out, view.NewCustomer(c))
		}
		return nil
	})
	return out, err
}

// Get resolves deleted customers too, so their history stays inspectable.
func (s *CustomerService) Get(_ context.Context, id int64) (view.Customer, error) {
	var out view.Customer
	err := s.ledger.View(func(reg *ledger.Registry) error {
		c, err := reg.CustomerByID(id)
		if err != nil {
			return err
		}
		out = view.NewCustomerDetail(reg, c)
		return nil
	})
	return out, err
}

func (s *CustomerService) Add(ctx context.Context, in command.AddCustomerInput) (command.Result, error) {
	return s.ledger.Dispatch(ctx, command.NewAddCustomer(in), kafka.EventCustomerAdded)
}

func (s *CustomerService) Delete(ctx context.Context, id int64) (command.Result, error) {
	return s.ledger.Dispatch(ctx, &command.DeleteCustomer{CustomerID: id}, kafka.EventCustomerDeleted)
}

var _ CustomerUseCase = (*CustomerService)(nil)
