package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/psds-microservice/arm-service-desk/internal/desk"
	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/session"
	"github.com/psds-microservice/arm-service-desk/internal/view"
)

// client is what every desk command needs: the persisted session and a
// gateway to the API.
type client struct {
	sessions *session.Store
	gw       *gateway.Client
	closeKV  func() error
}

func openClient() (*client, error) {
	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	var (
		kv      session.KV
		closeKV = func() error { return nil }
	)
	if opts.ephemeral {
		kv = session.NewMemoryKV()
	} else {
		s, err := session.OpenSQLiteKV(cfg.Client.StatePath)
		if err != nil {
			return nil, err
		}
		kv, closeKV = s, s.Close
	}
	gw := gateway.NewClient(cfg.Client.APIURL,
		gateway.WithTimeout(cfg.Client.Timeout),
		gateway.WithLogger(log),
	)
	return &client{sessions: session.NewStore(kv, gw), gw: gw, closeKV: closeKV}, nil
}

func (c *client) Close() {
	if err := c.closeKV(); err != nil {
		log.Warn().Err(err).Msg("close state db")
	}
}

// restore returns the saved session. With --ephemeral nothing survives
// between runs, so the command logs in with ARM_DESK_USERNAME and
// ARM_DESK_PASSWORD instead.
func (c *client) restore(ctx context.Context) (*model.Session, error) {
	if opts.ephemeral && cfg.Client.Username != "" {
		return c.sessions.Establish(ctx, cfg.Client.Username, cfg.Client.Password)
	}
	return c.sessions.Restore(ctx)
}

func notLoggedIn() error {
	if opts.ephemeral {
		return errors.New("not logged in: --ephemeral needs ARM_DESK_USERNAME and ARM_DESK_PASSWORD")
	}
	return errors.New("not logged in: run `arm-desk login <username>`")
}

// openDesk restores the session and loads the initial data.
func (c *client) openDesk(ctx context.Context) (*desk.Desk, error) {
	sess, err := c.restore(ctx)
	if errors.Is(err, session.ErrNoSession) {
		return nil, notLoggedIn()
	}
	if err != nil {
		return nil, err
	}
	c.gw.SetCredentials(func() string { return sess.Credential })

	d := desk.New(c.gw, sess,
		desk.WithLogger(log),
		desk.WithLabels(view.ForLocale(cfg.Client.Locale)),
	)
	if err := d.Load(ctx); err != nil {
		drainNotifications(d, io.Discard)
		if gateway.IsAPIError(err, http.StatusUnauthorized) {
			return nil, fmt.Errorf("session expired (%s): run `arm-desk login %s`", gateway.Message(err), sess.Identity.Username)
		}
		return nil, errors.New(gateway.Message(err))
	}
	return d, nil
}

// withDesk runs fn against a loaded desk and prints its notifications.
func withDesk(ctx context.Context, fn func(d *desk.Desk) error) error {
	c, err := openClient()
	if err != nil {
		return err
	}
	defer c.Close()
	d, err := c.openDesk(ctx)
	if err != nil {
		return err
	}
	err = fn(d)
	drainNotifications(d, stderr)
	if err != nil {
		var apiErr *gateway.ApiError
		var netErr *gateway.NetworkError
		if errors.As(err, &apiErr) || errors.As(err, &netErr) {
			// already shown as a notification
			return errors.New(gateway.Message(err))
		}
	}
	return err
}

func drainNotifications(d *desk.Desk, w io.Writer) {
	for {
		select {
		case n := <-d.Notifications():
			fmt.Fprintf(w, "%s: %s\n", n.Severity, n.Message)
		default:
			return
		}
	}
}
