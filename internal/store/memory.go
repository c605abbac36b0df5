package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/model"
)

type Memory struct {
	mu           sync.RWMutex
	users        map[string]model.User
	workstations map[string]model.Workstation
	tickets      map[string]model.Ticket
	armSeq       int
	ticketSeq    int
}

func NewMemory() *Memory {
	return &Memory{
		users:        make(map[string]model.User),
		workstations: make(map[string]model.Workstation),
		tickets:      make(map[string]model.Ticket),
	}
}

func (m *Memory) GetUser(_ context.Context, username string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return &u, nil
}

func (m *Memory) CountUsers(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

func (m *Memory) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = *u
	return nil
}

func (m *Memory) ListWorkstations(context.Context) ([]model.Workstation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Workstation, 0, len(m.workstations))
	for _, w := range m.workstations {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetWorkstation(_ context.Context, id string) (*model.Workstation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.workstations[id]
	if !ok {
		return nil, errs.ErrWorkstationNotFound
	}
	return &w, nil
}

func (m *Memory) InventoryTaken(_ context.Context, inventoryNumber, exceptID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inventoryTaken(inventoryNumber, exceptID), nil
}

// inventoryTaken must be called with m.mu held.
func (m *Memory) inventoryTaken(inventoryNumber, exceptID string) bool {
	for id, w := range m.workstations {
		if id != exceptID && w.InventoryNumber == inventoryNumber {
			return true
		}
	}
	return false
}

// CreateWorkstation rejects a taken inventory number under the same lock as
// the insert, like the unique index does in Postgres.
func (m *Memory) CreateWorkstation(_ context.Context, w *model.Workstation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inventoryTaken(w.InventoryNumber, "") {
		return errs.ErrDuplicateInventory
	}
	m.armSeq++
	w.ID = fmt.Sprintf(workstationIDFormat, m.armSeq)
	m.workstations[w.ID] = *w
	return nil
}

func (m *Memory) SaveWorkstation(_ context.Context, w *model.Workstation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workstations[w.ID]; !ok {
		return errs.ErrWorkstationNotFound
	}
	if m.inventoryTaken(w.InventoryNumber, w.ID) {
		return errs.ErrDuplicateInventory
	}
	m.workstations[w.ID] = *w
	return nil
}

func (m *Memory) DeleteWorkstation(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workstations[id]; !ok {
		return errs.ErrWorkstationNotFound
	}
	delete(m.workstations, id)
	return nil
}

func (m *Memory) ListTickets(_ context.Context, createdBy string) ([]model.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		if createdBy == "" || t.CreatedBy == createdBy {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt.Time) {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *Memory) GetTicket(_ context.Context, id string) (*model.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tickets[id]
	if !ok {
		return nil, errs.ErrTicketNotFound
	}
	return &t, nil
}

func (m *Memory) CreateTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ticketSeq++
	t.ID = fmt.Sprintf(ticketIDFormat, t.CreatedAt.Format(ticketIDDate), m.ticketSeq)
	m.tickets[t.ID] = *t
	return nil
}

func (m *Memory) SaveTicket(_ context.Context, t *model.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tickets[t.ID]; !ok {
		return errs.ErrTicketNotFound
	}
	m.tickets[t.ID] = *t
	return nil
}

func (m *Memory) CountActiveTickets(_ context.Context, armID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, t := range m.tickets {
		if t.ArmID == armID && t.Status.Active() {
			n++
		}
	}
	return n, nil
}
