// Package gateway is the only place the desk client talks to the API.
// Every call issues exactly one request: no retries, no coalescing.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/rs/zerolog"
)

// CredentialSource returns the token to attach, or "" when logged out.
type CredentialSource func() string

type Client struct {
	baseURL    string
	httpClient *http.Client
	credential CredentialSource
	timeout    time.Duration
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithCredentials(src CredentialSource) Option {
	return func(c *Client) { c.credential = src }
}

// WithTimeout bounds each request; zero leaves only the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// http://localhost:8000/api.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		credential: func() string { return "" },
		log:        zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetCredentials swaps the token source, e.g. after a login.
func (c *Client) SetCredentials(src CredentialSource) {
	c.credential = src
}

// WorkstationResult is the envelope of workstation mutations.
type WorkstationResult struct {
	Message string             `json:"message"`
	Arm     *model.Workstation `json:"arm"`
}

// TicketResult is the envelope of ticket mutations.
type TicketResult struct {
	Message string        `json:"message"`
	Ticket  *model.Ticket `json:"ticket"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusRequest struct {
	Status model.TicketStatus `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*model.LoginResult, error) {
	var res model.LoginResult
	err := c.do(ctx, "login", http.MethodPost, "/login", false,
		loginRequest{Username: username, Password: password}, &res, "login failed")
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListWorkstations(ctx context.Context) ([]model.Workstation, error) {
	var out []model.Workstation
	if err := c.do(ctx, "list workstations", http.MethodGet, "/arms", true, nil, &out, "failed to load workstations"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetWorkstation(ctx context.Context, id string) (*model.Workstation, error) {
	var w model.Workstation
	if err := c.do(ctx, "get workstation", http.MethodGet, "/arms/"+url.PathEscape(id), true, nil, &w, "failed to load workstation"); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) ListTickets(ctx context.Context) ([]model.Ticket, error) {
	var out []model.Ticket
	if err := c.do(ctx, "list tickets", http.MethodGet, "/tickets", true, nil, &out, "failed to load tickets"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTicket(ctx context.Context, in model.TicketInput) (*TicketResult, error) {
	var res TicketResult
	if err := c.do(ctx, "create ticket", http.MethodPost, "/tickets", true, in, &res, "failed to create ticket"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) CreateWorkstation(ctx context.Context, in model.WorkstationInput) (*WorkstationResult, error) {
	var res WorkstationResult
	if err := c.do(ctx, "create workstation", http.MethodPost, "/admin/arms", true, in, &res, "failed to add workstation"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) UpdateWorkstation(ctx context.Context, id string, patch model.WorkstationPatch) (*WorkstationResult, error) {
	var res WorkstationResult
	if err := c.do(ctx, "update workstation", http.MethodPut, "/admin/arms/"+url.PathEscape(id), true, patch, &res, "failed to update workstation"); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteWorkstation returns the server's confirmation message.
func (c *Client) DeleteWorkstation(ctx context.Context, id string) (string, error) {
	var res messageResponse
	if err := c.do(ctx, "delete workstation", http.MethodDelete, "/admin/arms/"+url.PathEscape(id), true, nil, &res, "failed to delete workstation"); err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) UpdateTicketStatus(ctx context.Context, id string, status model.TicketStatus) (*TicketResult, error) {
	var res TicketResult
	if err := c.do(ctx, "update ticket status", http.MethodPut, "/admin/tickets/"+url.PathEscape(id), true, statusRequest{Status: status}, &res, "failed to update ticket"); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) FetchStats(ctx context.Context) (*model.Stats, error) {
	var st model.Stats
	if err := c.do(ctx, "fetch stats", http.MethodGet, "/stats", true, nil, &st, "failed to load stats"); err != nil {
		return nil, err
	}
	return &st, nil
}

// do sends one request and decodes a 2xx body into out. fallback is the
// ApiError message when the server gives no detail.
func (c *Client) do(ctx context.Context, op, method, path string, authed bool, in, out any, fallback string) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal: %w", op, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		if token := c.credential(); token != "" {
			req.Header.Set("Authorization", token)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Str("op", op).Err(err).Msg("gateway request failed")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	c.log.Debug().Str("op", op).Str("method", method).Str("path", path).
		Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Msg("gateway request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ApiError{Status: resp.StatusCode, Message: errorMessage(raw, fallback)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// errorMessage picks the server's detail (or error) string. Validation
// errors may carry detail as a list of objects with a msg field.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return fallback
	}
	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(body.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}
