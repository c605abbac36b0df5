package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/errs"
	"github.com/psds-microservice/arm-service-desk/internal/kafka"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/store"
)

// DeskServicer is the workstation and ticket API consumed by the handlers.
type DeskServicer interface {
	ListWorkstations(ctx context.Context) ([]model.Workstation, error)
	GetWorkstation(ctx context.Context, id string) (*model.Workstation, error)
	CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*model.Workstation, error)
	UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*model.Workstation, error)
	DeleteWorkstation(ctx context.Context, id string) error

	ListTickets(ctx context.Context, who model.Identity) ([]model.Ticket, error)
	CreateTicket(ctx context.Context, who model.Identity, in model.TicketInput) (*model.Ticket, error)
	UpdateTicketStatus(ctx context.Context, who model.Identity, id string, status model.TicketStatus) (*model.Ticket, error)

	Stats(ctx context.Context, who model.Identity) (model.Stats, error)
}

type DeskService struct {
	store  store.Store
	events kafka.DeskEventProducer
	now    func() time.Time
}

// NewDeskService wires the desk rules over a store. events may be nil.
func NewDeskService(s store.Store, events kafka.DeskEventProducer) *DeskService {
	return &DeskService{store: s, events: events, now: time.Now}
}

func (s *DeskService) ListWorkstations(ctx context.Context) ([]model.Workstation, error) {
	return s.store.ListWorkstations(ctx)
}

func (s *DeskService) GetWorkstation(ctx context.Context, id string) (*model.Workstation, error) {
	return s.store.GetWorkstation(ctx, id)
}

func (s *DeskService) CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*model.Workstation, error) {
	in.InventoryNumber = strings.TrimSpace(in.InventoryNumber)
	in.Name = strings.TrimSpace(in.Name)
	if in.InventoryNumber == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: inventory_number and name are required", errs.ErrValidation)
	}
	taken, err := s.store.InventoryTaken(ctx, in.InventoryNumber, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.ErrDuplicateInventory
	}
	now := model.At(s.now().UTC())
	w := &model.Workstation{
		InventoryNumber: in.InventoryNumber,
		Name:            in.Name,
		Location:        in.Location,
		User:            in.User,
		Department:      in.Department,
		Status:          model.WorkstationOperational,
		Characteristics: in.Characteristics,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.CreateWorkstation(ctx, w); err != nil {
		return nil, err
	}
	s.publish(kafka.EventWorkstationCreated, workstationPayload(w))
	return w, nil
}

func (s *DeskService) UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*model.Workstation, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no changes", errs.ErrValidation)
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown workstation status %q", errs.ErrValidation, *patch.Status)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", errs.ErrValidation)
	}
	cur, err := s.store.GetWorkstation(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.InventoryNumber != nil {
		inv := strings.TrimSpace(*patch.InventoryNumber)
		if inv == "" {
			return nil, fmt.Errorf("%w: inventory_number must not be empty", errs.ErrValidation)
		}
		patch.InventoryNumber = &inv
		taken, err := s.store.InventoryTaken(ctx, inv, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, errs.ErrDuplicateInventory
		}
	}
	next := patch.Apply(*cur)
	next.UpdatedAt = model.At(s.now().UTC())
	if err := s.store.SaveWorkstation(ctx, &next); err != nil {
		return nil, err
	}
	s.publish(kafka.EventWorkstationUpdated, workstationPayload(&next))
	return &next, nil
}

// DeleteWorkstation refuses while the workstation has new or in-progress
// tickets.
func (s *DeskService) DeleteWorkstation(ctx context.Context, id string) error {
	if _, err := s.store.GetWorkstation(ctx, id); err != nil {
		return err
	}
	active, err := s.store.CountActiveTickets(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return fmt.Errorf("%w (%d)", errs.ErrActiveTickets, active)
	}
	if err := s.store.DeleteWorkstation(ctx, id); err != nil {
		return err
	}
	s.publish(kafka.EventWorkstationDeleted, map[string]interface{}{"arm_id": id})
	return nil
}

// ListTickets returns every ticket to admins and only their own tickets to
// everyone else.
func (s *DeskService) ListTickets(ctx context.Context, who model.Identity) ([]model.Ticket, error) {
	if who.IsAdmin {
		return s.store.ListTickets(ctx, "")
	}
	return s.store.ListTickets(ctx, who.Username)
}

func (s *DeskService) CreateTicket(ctx context.Context, who model.Identity, in model.TicketInput) (*model.Ticket, error) {
	if !in.ProblemType.Valid() {
		return nil, fmt.Errorf("%w: unknown problem type %q", errs.ErrValidation, in.ProblemType)
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("%w: unknown priority %q", errs.ErrValidation, in.Priority)
	}
	if _, err := s.store.GetWorkstation(ctx, in.ArmID); err != nil {
		return nil, err
	}
	now := model.At(s.now().UTC())
	t := &model.Ticket{
		ArmID:       in.ArmID,
		ProblemType: in.ProblemType,
		Priority:    in.Priority,
		Status:      model.TicketStatusNew,
		Description: in.Description,
		CreatedBy:   who.Username,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateTicket(ctx, t); err != nil {
		return nil, err
	}
	s.publish(kafka.EventTicketCreated, ticketPayload(t))
	return t, nil
}

// UpdateTicketStatus moves a ticket forward along new -> in_progress ->
// resolved. Backward and same-status moves are rejected.
func (s *DeskService) UpdateTicketStatus(ctx context.Context, who model.Identity, id string, status model.TicketStatus) (*model.Ticket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown ticket status %q", errs.ErrValidation, status)
	}
	t, err := s.store.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !t.Status.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", errs.ErrInvalidTransition, t.Status, status)
	}
	t.Status = status
	t.UpdatedBy = who.Username
	t.UpdatedAt = model.At(s.now().UTC())
	if err := s.store.SaveTicket(ctx, t); err != nil {
		return nil, err
	}
	s.publish(kafka.EventTicketStatus, ticketPayload(t))
	return t, nil
}

func (s *DeskService) Stats(ctx context.Context, who model.Identity) (model.Stats, error) {
	var st model.Stats
	if !who.IsAdmin {
		mine, err := s.store.ListTickets(ctx, who.Username)
		if err != nil {
			return st, err
		}
		st.MyTickets = len(mine)
		for _, t := range mine {
			switch t.Status {
			case model.TicketStatusNew:
				st.MyNewTickets++
			case model.TicketStatusInProgress:
				st.MyInProgressTickets++
			case model.TicketStatusResolved:
				st.MyResolvedTickets++
			}
		}
		return st, nil
	}

	arms, err := s.store.ListWorkstations(ctx)
	if err != nil {
		return st, err
	}
	tickets, err := s.store.ListTickets(ctx, "")
	if err != nil {
		return st, err
	}
	st.TotalArms = len(arms)
	for _, w := range arms {
		if w.Status == model.WorkstationOperational {
			st.OperationalArms++
		}
	}
	st.TotalTickets = len(tickets)
	for _, t := range tickets {
		switch t.Status {
		case model.TicketStatusNew:
			st.NewTickets++
		case model.TicketStatusInProgress:
			st.InProgressTickets++
		case model.TicketStatusResolved:
			st.ResolvedTickets++
		}
	}
	return st, nil
}

// publish is fire-and-forget: the event must go out even if the request is
// cancelled, but with its own timeout.
func (s *DeskService) publish(event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.events.Produce(ctx, event, payload)
	}()
}

func workstationPayload(w *model.Workstation) map[string]interface{} {
	return map[string]interface{}{
		"arm_id":           w.ID,
		"inventory_number": w.InventoryNumber,
		"name":             w.Name,
		"status":           string(w.Status),
	}
}

func ticketPayload(t *model.Ticket) map[string]interface{} {
	return map[string]interface{}{
		"ticket_id":  t.ID,
		"arm_id":     t.ArmID,
		"priority":   string(t.Priority),
		"status":     string(t.Status),
		"created_by": t.CreatedBy,
		"updated_by": t.UpdatedBy,
	}
}
