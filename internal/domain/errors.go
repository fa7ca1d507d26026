package domain

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrCapacityExceeded  = errors.New("capacity exceeded")
	ErrPastFlight        = errors.New("flight departs before system date")
	ErrValidation        = errors.New("validation error")
	ErrPersistenceFailed = errors.New("persistence failed")
	ErrCommandFailed     = errors.New("command failed")
)
