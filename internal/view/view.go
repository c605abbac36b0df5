// Package view derives what the current user sees from the session and the
// cached data. Everything here is a pure function of its inputs.
package view

import (
	"fmt"
	"strings"

	"github.com/psds-microservice/arm-service-desk/internal/cache"
	"github.com/psds-microservice/arm-service-desk/internal/model"
)

type Tab string

const (
	TabTickets Tab = "tickets"
	TabArms    Tab = "arms"
	TabAdmin   Tab = "admin"
)

type WorkstationRow struct {
	model.Workstation `yaml:",inline"`

	StatusLabel string `json:"status_label" yaml:"status_label"`
}

type TicketRow struct {
	model.Ticket `yaml:",inline"`

	// Workstation is the workstation name, or the raw ArmID when it is not
	// in the cache.
	Workstation   string `json:"workstation" yaml:"workstation"`
	StatusLabel   string `json:"status_label" yaml:"status_label"`
	PriorityLabel string `json:"priority_label" yaml:"priority_label"`
	ProblemLabel  string `json:"problem_label" yaml:"problem_label"`
	// NextStatus is the admin's forward action, empty once resolved.
	NextStatus model.TicketStatus `json:"next_status,omitempty" yaml:"next_status,omitempty"`
}

// Option is one entry of the workstation picker used when filing a ticket.
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

type Model struct {
	LoggedIn     bool             `json:"logged_in" yaml:"logged_in"`
	User         string           `json:"user,omitempty" yaml:"user,omitempty"`
	Heading      string           `json:"heading,omitempty" yaml:"heading,omitempty"`
	IsAdmin      bool             `json:"is_admin" yaml:"is_admin"`
	Tabs         []Tab            `json:"tabs" yaml:"tabs"`
	Workstations []WorkstationRow `json:"workstations" yaml:"workstations"`
	Options      []Option         `json:"options" yaml:"options"`
	Tickets      []TicketRow      `json:"tickets" yaml:"tickets"`
	Stats        *model.Stats     `json:"stats,omitempty" yaml:"stats,omitempty"`
}

// Composer renders with a fixed label table.
type Composer struct {
	Labels Labels
}

// Compose renders with the English labels.
func Compose(sess *model.Session, snap cache.Snapshot, query string) Model {
	return Composer{Labels: LocaleEN}.Compose(sess, snap, query)
}

// Compose builds the render model. An invalid session yields an empty,
// logged-out model.
func (c Composer) Compose(sess *model.Session, snap cache.Snapshot, query string) Model {
	if !sess.Valid() {
		return Model{}
	}
	id := *sess.Identity
	m := Model{
		LoggedIn: true,
		User:     id.Username,
		Heading:  id.Username,
		IsAdmin:  id.IsAdmin,
		Tabs:     []Tab{TabTickets, TabArms},
	}
	if id.IsAdmin {
		m.Heading = fmt.Sprintf("%s (%s)", id.Username, c.Labels.Admin)
		m.Tabs = append(m.Tabs, TabAdmin)
		m.Stats = snap.Stats
	}

	for _, w := range FilterWorkstations(snap.Workstations, query) {
		m.Workstations = append(m.Workstations, WorkstationRow{
			Workstation: w,
			StatusLabel: c.Labels.WorkstationStatusLabel(w.Status),
		})
	}
	names := make(map[string]string, len(snap.Workstations))
	for _, w := range snap.Workstations {
		names[w.ID] = w.Name
		m.Options = append(m.Options, Option{
			ID:    w.ID,
			Title: fmt.Sprintf("%s (%s) - %s", w.Name, w.Location, w.User),
		})
	}
	for _, t := range VisibleTickets(id, snap.Tickets) {
		row := TicketRow{
			Ticket:        t,
			Workstation:   t.ArmID,
			StatusLabel:   c.Labels.TicketStatusLabel(t.Status),
			PriorityLabel: c.Labels.PriorityLabel(t.Priority),
			ProblemLabel:  c.Labels.ProblemTypeLabel(t.ProblemType),
		}
		if name, ok := names[t.ArmID]; ok {
			row.Workstation = name
		}
		if id.IsAdmin {
			row.NextStatus = nextStatus(t.Status)
		}
		m.Tickets = append(m.Tickets, row)
	}
	return m
}

// VisibleTickets is every ticket for admins and the user's own tickets
// otherwise.
func VisibleTickets(id model.Identity, tickets []model.Ticket) []model.Ticket {
	out := make([]model.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if id.IsAdmin || t.CreatedBy == id.Username {
			out = append(out, t)
		}
	}
	return out
}

// FilterWorkstations matches query case-insensitively as a substring of the
// name, location, user or department. An empty query matches everything.
func FilterWorkstations(list []model.Workstation, query string) []model.Workstation {
	q := strings.ToLower(query)
	out := make([]model.Workstation, 0, len(list))
	for _, w := range list {
		if q == "" || matches(w, q) {
			out = append(out, w)
		}
	}
	return out
}

func matches(w model.Workstation, q string) bool {
	for _, f := range []string{w.Name, w.Location, w.User, w.Department} {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func nextStatus(s model.TicketStatus) model.TicketStatus {
	switch s {
	case model.TicketStatusNew:
		return model.TicketStatusInProgress
	case model.TicketStatusInProgress:
		return model.TicketStatusResolved
	}
	return ""
}
