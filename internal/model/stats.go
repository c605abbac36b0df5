package model

// Stats is computed by the API on every request. Admins receive the global
// counters; other users receive the My* counters for their own tickets.
type Stats struct {
	TotalArms         int `json:"total_arms" yaml:"total_arms"`
	OperationalArms   int `json:"operational_arms" yaml:"operational_arms"`
	TotalTickets      int `json:"total_tickets" yaml:"total_tickets"`
	NewTickets        int `json:"new_tickets" yaml:"new_tickets"`
	InProgressTickets int `json:"in_progress_tickets" yaml:"in_progress_tickets"`
	ResolvedTickets   int `json:"resolved_tickets" yaml:"resolved_tickets"`

	MyTickets           int `json:"my_tickets,omitempty" yaml:"my_tickets,omitempty"`
	MyNewTickets        int `json:"my_new_tickets,omitempty" yaml:"my_new_tickets,omitempty"`
	MyInProgressTickets int `json:"my_in_progress_tickets,omitempty" yaml:"my_in_progress_tickets,omitempty"`
	MyResolvedTickets   int `json:"my_resolved_tickets,omitempty" yaml:"my_resolved_tickets,omitempty"`
}

// UserStats is the /stats body for non-admin callers: only their own
// counters, zeros included.
type UserStats struct {
	MyTickets           int `json:"my_tickets" yaml:"my_tickets"`
	MyNewTickets        int `json:"my_new_tickets" yaml:"my_new_tickets"`
	MyInProgressTickets int `json:"my_in_progress_tickets" yaml:"my_in_progress_tickets"`
	MyResolvedTickets   int `json:"my_resolved_tickets" yaml:"my_resolved_tickets"`
}

func (s Stats) Mine() UserStats {
	return UserStats{
		MyTickets:           s.MyTickets,
		MyNewTickets:        s.MyNewTickets,
		MyInProgressTickets: s.MyInProgressTickets,
		MyResolvedTickets:   s.MyResolvedTickets,
	}
}
