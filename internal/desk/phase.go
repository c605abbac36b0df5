package desk

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity Severity
	Message  string
}

// Phase is the state of the mutation in flight, PhaseIdle when none is.
func (d *Desk) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// begin moves Idle -> Submitting; false if a mutation is already running.
func (d *Desk) begin() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.phase != PhaseIdle {
		return false
	}
	d.phase = PhaseSubmitting
	return true
}

func (d *Desk) setPhase(p Phase) {
	d.mu.Lock()
	d.phase = p
	d.mu.Unlock()
}

// Notifications delivers user-facing messages. Nobody has to read it: when
// the buffer is full the oldest undelivered message is dropped.
func (d *Desk) Notifications() <-chan Notification {
	return d.notes
}

func (d *Desk) notify(sev Severity, msg string) {
	n := Notification{Severity: sev, Message: msg}
	for {
		select {
		case d.notes <- n:
			return
		default:
		}
		select {
		case <-d.notes:
		default:
		}
	}
}
