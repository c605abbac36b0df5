// Package errs holds the domain errors shared by the desk API layers.
package errs

import "errors"

var (
	ErrWorkstationNotFound = errors.New("workstation not found")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrUserNotFound        = errors.New("user not found")

	ErrDuplicateInventory = errors.New("a workstation with this inventory number already exists")
	ErrActiveTickets      = errors.New("workstation has active tickets")
	ErrInvalidTransition  = errors.New("invalid ticket status transition")
	ErrValidation         = errors.New("validation failed")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("admin rights required")
)
