// Package desk is the client application state: one logged-in session, its
// cached data, and the mutations that change it. Every mutation follows
// the same path: submit one request, and on success reload every cached
// collection the change can touch.
package desk

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/psds-microservice/arm-service-desk/internal/cache"
	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/view"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotLoggedIn is returned for a desk built without a valid session.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrBusy is returned when a mutation is already being submitted.
	ErrBusy = errors.New("another change is being submitted")
	// ErrReloadFailed wraps the reload error after a mutation the server
	// accepted. The mutation is not retried.
	ErrReloadFailed = errors.New("change saved but reload failed")
)

// Gateway is the part of *gateway.Client the desk uses.
type Gateway interface {
	ListWorkstations(ctx context.Context) ([]model.Workstation, error)
	ListTickets(ctx context.Context) ([]model.Ticket, error)
	FetchStats(ctx context.Context) (*model.Stats, error)
	CreateTicket(ctx context.Context, in model.TicketInput) (*gateway.TicketResult, error)
	CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*gateway.WorkstationResult, error)
	UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*gateway.WorkstationResult, error)
	DeleteWorkstation(ctx context.Context, id string) (string, error)
	UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*gateway.TicketResult, error)
}

type Desk struct {
	gw       Gateway
	cache    *cache.Cache
	session  *model.Session
	composer view.Composer
	notes    chan Notification
	log      zerolog.Logger

	mu    sync.Mutex
	phase Phase
}

type Option func(*Desk)

func WithCache(c *cache.Cache) Option {
	return func(d *Desk) { d.cache = c }
}

func WithLogger(log zerolog.Logger) Option {
	return func(d *Desk) { d.log = log }
}

func WithLabels(l view.Labels) Option {
	return func(d *Desk) { d.composer = view.Composer{Labels: l} }
}

// WithNotificationBuffer sets how many undelivered notifications are kept.
func WithNotificationBuffer(n int) Option {
	return func(d *Desk) {
		if n < 1 {
			n = 1
		}
		d.notes = make(chan Notification, n)
	}
}

func New(gw Gateway, sess *model.Session, opts ...Option) *Desk {
	d := &Desk{
		gw:       gw,
		cache:    cache.New(),
		session:  sess,
		composer: view.Composer{Labels: view.LocaleEN},
		notes:    make(chan Notification, 16),
		log:      zerolog.Nop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

func (d *Desk) Session() *model.Session { return d.session }
func (d *Desk) Cache() *cache.Cache     { return d.cache }

// View composes the render model from the current cache contents.
func (d *Desk) View(query string) view.Model {
	return d.composer.Compose(d.session, d.cache.Snapshot(), query)
}

// Load fetches workstations and tickets concurrently and returns once both
// are cached. Admin sessions also load stats.
func (d *Desk) Load(ctx context.Context) error {
	if !d.session.Valid() {
		return ErrNotLoggedIn
	}
	cols := []cache.Collection{cache.Workstations, cache.Tickets, cache.Stats}
	if err := d.reload(ctx, cols); err != nil {
		d.notify(SeverityError, gateway.Message(err))
		return err
	}
	return nil
}

// RefreshStats fetches stats regardless of role; standard users get their
// own counters.
func (d *Desk) RefreshStats(ctx context.Context) (*model.Stats, error) {
	if !d.session.Valid() {
		return nil, ErrNotLoggedIn
	}
	if err := d.reloadOne(ctx, cache.Stats); err != nil {
		return nil, err
	}
	return d.cache.Stats(), nil
}

func (d *Desk) CreateTicket(ctx context.Context, in model.TicketInput) (*model.Ticket, error) {
	var out *model.Ticket
	err := d.mutate(ctx, "ticket created", []cache.Collection{cache.Tickets}, func(ctx context.Context) (string, error) {
		res, err := d.gw.CreateTicket(ctx, in)
		if err != nil {
			return "", err
		}
		out = res.Ticket
		return res.Message, nil
	})
	return out, err
}

func (d *Desk) CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*model.Workstation, error) {
	var out *model.Workstation
	err := d.mutate(ctx, "workstation created", []cache.Collection{cache.Workstations, cache.Stats}, func(ctx context.Context) (string, error) {
		res, err := d.gw.CreateWorkstation(ctx, in)
		if err != nil {
			return "", err
		}
		out = res.Arm
		return res.Message, nil
	})
	return out, err
}

func (d *Desk) UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*model.Workstation, error) {
	var out *model.Workstation
	err := d.mutate(ctx, "workstation updated", []cache.Collection{cache.Workstations, cache.Stats}, func(ctx context.Context) (string, error) {
		res, err := d.gw.UpdateWorkstation(ctx, id, patch)
		if err != nil {
			return "", err
		}
		out = res.Arm
		return res.Message, nil
	})
	return out, err
}

func (d *Desk) DeleteWorkstation(ctx context.Context, id string) error {
	return d.mutate(ctx, "workstation deleted", []cache.Collection{cache.Workstations, cache.Stats}, func(ctx context.Context) (string, error) {
		return d.gw.DeleteWorkstation(ctx, id)
	})
}

func (d *Desk) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*model.Ticket, error) {
	var out *model.Ticket
	err := d.mutate(ctx, "ticket status updated", []cache.Collection{cache.Tickets, cache.Stats}, func(ctx context.Context) (string, error) {
		res, err := d.gw.UpdateTicketStatus(ctx, id, status)
		if err != nil {
			return "", err
		}
		out = res.Ticket
		return res.Message, nil
	})
	return out, err
}

// mutate runs Idle -> Submitting -> Succeeded|Failed -> Idle. A failed
// submit leaves the cache untouched and returns the gateway error as is.
func (d *Desk) mutate(ctx context.Context, done string, reloads []cache.Collection, submit func(context.Context) (string, error)) error {
	if !d.session.Valid() {
		return ErrNotLoggedIn
	}
	if !d.begin() {
		return ErrBusy
	}
	defer d.setPhase(PhaseIdle)

	msg, err := submit(ctx)
	if err != nil {
		d.setPhase(PhaseFailed)
		d.log.Debug().Err(err).Msg("mutation rejected")
		d.notify(SeverityError, gateway.Message(err))
		return err
	}
	d.setPhase(PhaseSucceeded)
	if msg == "" {
		msg = done
	}
	d.notify(SeverityInfo, msg)

	if err := d.reload(ctx, reloads); err != nil {
		d.log.Warn().Err(err).Msg("reload after mutation failed")
		d.notify(SeverityWarning, fmt.Sprintf("%s: %s", ErrReloadFailed, gateway.Message(err)))
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return nil
}

// reload refreshes cols concurrently. Stats are skipped for non-admins.
func (d *Desk) reload(ctx context.Context, cols []cache.Collection) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, col := range cols {
		if col == cache.Stats && !d.session.IsAdmin() {
			continue
		}
		g.Go(func() error { return d.reloadOne(gctx, col) })
	}
	return g.Wait()
}

func (d *Desk) reloadOne(ctx context.Context, col cache.Collection) error {
	seq := d.cache.Begin(col)
	var applied bool
	switch col {
	case cache.Workstations:
		list, err := d.gw.ListWorkstations(ctx)
		if err != nil {
			return err
		}
		applied = d.cache.ReplaceWorkstations(seq, list)
	case cache.Tickets:
		list, err := d.gw.ListTickets(ctx)
		if err != nil {
			return err
		}
		applied = d.cache.ReplaceTickets(seq, list)
	case cache.Stats:
		st, err := d.gw.FetchStats(ctx)
		if err != nil {
			return err
		}
		if st == nil {
			st = &model.Stats{}
		}
		applied = d.cache.ReplaceStats(seq, *st)
	default:
		return fmt.Errorf("unknown collection %v", col)
	}
	if !applied {
		d.log.Debug().Stringer("collection", col).Uint64("seq", seq).Msg("stale reload discarded")
	}
	return nil
}
