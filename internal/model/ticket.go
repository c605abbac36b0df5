package model

type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "new"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Rank orders statuses along the lifecycle; unknown statuses rank -1.
func (s TicketStatus) Rank() int {
	switch s {
	case TicketStatusNew:
		return 0
	case TicketStatusInProgress:
		return 1
	case TicketStatusResolved:
		return 2
	}
	return -1
}

func (s TicketStatus) Valid() bool { return s.Rank() >= 0 }

// Active reports whether the ticket still needs work.
func (s TicketStatus) Active() bool {
	return s == TicketStatusNew || s == TicketStatusInProgress
}

// CanTransition reports whether a ticket may move from s to next. Only
// forward moves are allowed.
func (s TicketStatus) CanTransition(next TicketStatus) bool {
	return s.Valid() && next.Valid() && next.Rank() > s.Rank()
}

type ProblemType string

const (
	ProblemHardware ProblemType = "hardware"
	ProblemSoftware ProblemType = "software"
	ProblemNetwork  ProblemType = "network"
	ProblemOther    ProblemType = "other"
)

func (p ProblemType) Valid() bool {
	switch p {
	case ProblemHardware, ProblemSoftware, ProblemNetwork, ProblemOther:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Ticket is a maintenance request filed against one workstation. ArmID is a
// reference only; the workstation may since have been removed.
type Ticket struct {
	ID          string       `json:"id" yaml:"id"`
	ArmID       string       `json:"arm_id" yaml:"arm_id"`
	ProblemType ProblemType  `json:"problem_type" yaml:"problem_type"`
	Priority    Priority     `json:"priority" yaml:"priority"`
	Status      TicketStatus `json:"status" yaml:"status"`
	Description string       `json:"description" yaml:"description"`
	CreatedBy   string       `json:"created_by" yaml:"created_by"`
	UpdatedBy   string       `json:"updated_by,omitempty" yaml:"updated_by,omitempty"`

	CreatedAt Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt Timestamp `json:"updated_at" yaml:"updated_at"`
}

// TicketInput is the body of POST /tickets.
type TicketInput struct {
	ArmID       string      `json:"arm_id" binding:"required"`
	ProblemType ProblemType `json:"problem_type" binding:"required"`
	Priority    Priority    `json:"priority" binding:"required"`
	Description string      `json:"description"`
}
