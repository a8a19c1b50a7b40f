package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique constraint would be violated.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalid marks input rejected by a service. Wrap it with the reason.
	ErrInvalid = errors.New("invalid input")
	// ErrInsufficientStock is returned when an order asks for more units than are left.
	ErrInsufficientStock = errors.New("insufficient stock")
)
