// Package store persists desk data for the API: users, workstations and
// tickets. Postgres (gorm) backs production; Memory backs tests and the
// DESK_STORE=memory development mode.
package store

import (
	"context"

	"github.com/psds-microservice/arm-service-desk/internal/model"
)

// Store is the persistence contract of the desk services. Create methods
// assign the server-side identifier. Not-found lookups return the matching
// errs sentinel.
type Store interface {
	GetUser(ctx context.Context, username string) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *model.User) error

	ListWorkstations(ctx context.Context) ([]model.Workstation, error)
	GetWorkstation(ctx context.Context, id string) (*model.Workstation, error)
	// InventoryTaken reports whether another workstation than exceptID uses
	// the inventory number.
	InventoryTaken(ctx context.Context, inventoryNumber, exceptID string) (bool, error)
	CreateWorkstation(ctx context.Context, w *model.Workstation) error
	SaveWorkstation(ctx context.Context, w *model.Workstation) error
	DeleteWorkstation(ctx context.Context, id string) error

	// ListTickets returns every ticket when createdBy is empty, otherwise
	// only that user's tickets.
	ListTickets(ctx context.Context, createdBy string) ([]model.Ticket, error)
	GetTicket(ctx context.Context, id string) (*model.Ticket, error)
	CreateTicket(ctx context.Context, t *model.Ticket) error
	SaveTicket(ctx context.Context, t *model.Ticket) error
	CountActiveTickets(ctx context.Context, armID string) (int64, error)
}

// Identifier formats shared by both implementations.
const (
	workstationIDFormat = "ARM-%03d"
	ticketIDFormat      = "TICKET-%s-%03d"
	ticketIDDate        = "20060102"
)
