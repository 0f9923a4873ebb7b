// Package repository defines error types that are reused across multiple
// repositories. Handlers use errors.Is / errors.As on these values to pick
// the HTTP status of a failed request.
package repository

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrCustomerNotFound is returned when no customer matches a lookup.
var ErrCustomerNotFound = errors.New("customer not found")

// ErrReservationNotFound is returned when no reservation matches a lookup.
var ErrReservationNotFound = errors.New("reservation not found")

// NotFoundError reports a missing row by id.  It unwraps to the sentinel
// for its kind so callers may use either errors.Is or errors.As.
type NotFoundError struct {
	Kind string // "customer" or "reservation"
	ID   uint64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No such %s: %d", e.Kind, e.ID)
}

// StatusCode is the HTTP status an API layer should answer with.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "reservation":
		return ErrReservationNotFound
	default:
		return ErrCustomerNotFound
	}
}
