// Package command implements the mutating operations of the booking ledger.
//
// Every command runs through Engine.Execute, which snapshots the registry,
// validates, mutates, persists, and restores the snapshot on any failure.
// Observers see either the state before the command or the fully committed
// state after it.
package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightledger/internal/domain"
	"github.com/Domenick1991/flightledger/internal/ledger"
	"github.com/go-playground/validator/v10"
)

// Command is one unit of work against the registry. Validate must not mutate.
type Command interface {
	Name() string
	Validate(ctx context.Context, reg *ledger.Registry) error
	Apply(ctx context.Context, reg *ledger.Registry) (Result, error)
}

// Store persists the whole registry. It is implemented by the repository
// package.
type Store interface {
	Load(ctx context.Context) (*ledger.Registry, error)
	Store(ctx context.Context, reg *ledger.Registry) error
}

// Result is the confirmation of a committed command.
type Result struct {
	Command    string  `json:"command"`
	FlightID   int64   `json:"flight_id,omitempty"`
	CustomerID int64   `json:"customer_id,omitempty"`
	BookingID  int64   `json:"booking_id,omitempty"`
	Price      float64 `json:"price"`
	Fee        float64 `json:"fee"`
	Message    string  `json:"message"`
}

type State int

const (
	StatePending State = iota
	StateValidating
	StateMutating
	StatePersisting
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateValidating:
		return "validating"
	case StateMutating:
		return "mutating"
	case StatePersisting:
		return "persisting"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Error is returned by Engine.Execute for every failed command. Kind is
// domain.ErrPersistenceFailed or domain.ErrCommandFailed; Err is the cause.
// errors.Is matches both.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if errors.Is(e.Kind, domain.ErrPersistenceFailed) {
		return fmt.Sprintf("%s: %v, changes rolled back: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() []error { return []error{e.Kind, e.Err} }

var validate = validator.New(validator.WithRequiredStructEnabled())

func validateInput(op string, in any) error {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s: field %s failed %q", domain.ErrValidation, op, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, op, err)
	}
	return nil
}
