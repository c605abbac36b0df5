package gateway_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/gateway"
	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, c *gateway.Client, user, pass string) {
	t.Helper()
	res, err := c.Login(context.Background(), user, pass)
	require.NoError(t, err)
	token := res.Token
	c.SetCredentials(func() string { return token })
}

func TestClientAgainstAPI(t *testing.T) {
	ts := testserver.New(t)
	ctx := context.Background()

	admin := gateway.NewClient(ts.APIURL())
	login(t, admin, "admin", "admin123")

	created, err := admin.CreateWorkstation(ctx, model.WorkstationInput{
		InventoryNumber: "INV-7", Name: "Reception",
		Characteristics: model.Characteristics{CPU: "i3"},
	})
	require.NoError(t, err)
	assert.Equal(t, "workstation created", created.Message)
	require.NotNil(t, created.Arm)
	assert.Equal(t, "ARM-001", created.Arm.ID)

	got, err := admin.GetWorkstation(ctx, created.Arm.ID)
	require.NoError(t, err)
	assert.Equal(t, "i3", got.Characteristics.CPU)

	ram := model.Characteristics{RAM: "8GB"}
	updated, err := admin.UpdateWorkstation(ctx, created.Arm.ID, model.WorkstationPatch{Characteristics: &ram})
	require.NoError(t, err)
	assert.Equal(t, "i3", updated.Arm.Characteristics.CPU)
	assert.Equal(t, "8GB", updated.Arm.Characteristics.RAM)

	user := gateway.NewClient(ts.APIURL())
	login(t, user, "user", "user123")
	tk, err := user.CreateTicket(ctx, model.TicketInput{
		ArmID: created.Arm.ID, ProblemType: model.ProblemNetwork, Priority: model.PriorityLow,
	})
	require.NoError(t, err)
	assert.Equal(t, model.TicketStatusNew, tk.Ticket.Status)

	_, err = user.UpdateTicketStatus(ctx, tk.Ticket.ID, model.TicketStatusResolved)
	require.True(t, gateway.IsAPIError(err, http.StatusForbidden))
	assert.Equal(t, "admin rights required", gateway.Message(err))

	res, err := admin.UpdateTicketStatus(ctx, tk.Ticket.ID, model.TicketStatusResolved)
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Ticket.UpdatedBy)

	st, err := admin.FetchStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, st.ResolvedTickets)

	mine, err := user.FetchStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.MyTickets)

	msg, err := admin.DeleteWorkstation(ctx, created.Arm.ID)
	require.NoError(t, err)
	assert.Equal(t, "workstation deleted", msg)

	arms, err := admin.ListWorkstations(ctx)
	require.NoError(t, err)
	assert.Empty(t, arms)
	tickets, err := admin.ListTickets(ctx)
	require.NoError(t, err)
	assert.Len(t, tickets, 1)
}

func TestLoginFailureCarriesDetail(t *testing.T) {
	ts := testserver.New(t)
	c := gateway.NewClient(ts.APIURL())

	_, err := c.Login(context.Background(), "user", "wrong")
	var apiErr *gateway.ApiError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
}

func TestCredentialHeader(t *testing.T) {
	var seen atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := gateway.NewClient(srv.URL, gateway.WithCredentials(func() string { return "tok-1" }))
	_, err := c.ListTickets(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", seen.Load())
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"detail string", http.StatusBadRequest, `{"detail":"workstation has active tickets (2)"}`, "workstation has active tickets (2)"},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"bad value"}]}`, "field required; bad value"},
		{"error field", http.StatusBadGateway, `{"error":"upstream down"}`, "upstream down"},
		{"no body", http.StatusInternalServerError, ``, "failed to delete workstation"},
		{"html body", http.StatusBadGateway, `<html>bad gateway</html>`, "failed to delete workstation"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := gateway.NewClient(srv.URL).DeleteWorkstation(context.Background(), "ARM-001")
			var apiErr *gateway.ApiError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.want, apiErr.Message)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := gateway.NewClient(url).ListWorkstations(context.Background())
	var netErr *gateway.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, "list workstations", netErr.Op)
	assert.Equal(t, gateway.ConnectionFailed, gateway.Message(err))
	assert.False(t, gateway.IsAPIError(err))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := gateway.NewClient(srv.URL, gateway.WithTimeout(50*time.Millisecond))
	_, err := c.FetchStats(context.Background())
	var netErr *gateway.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestOneRequestPerCall(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := gateway.NewClient(srv.URL).ListWorkstations(context.Background())
	require.Error(t, err)
	assert.EqualValues(t, 1, hits.Load())
}

// Bodies in the shape the Python backend writes: isoformat() timestamps
// without a zone and the user-only stats counters.
const (
	isoArmsBody = `[{"id":"ARM-001","inventory_number":"INV-0001","name":"Reception PC",
"location":"Room 101","user":"Ivanov","department":"Front office","status":"operational",
"characteristics":{"cpu":"Intel i5","ram":"8GB"},
"created_at":"2024-05-01T10:11:12.123456","updated_at":"2024-05-01T10:11:12"}]`
	isoTicketsBody = `[{"id":"TICKET-20240501-001","arm_id":"ARM-001","problem_type":"hardware",
"priority":"high","description":"no signal","status":"new","created_by":"user",
"created_at":"2024-05-01T10:15:00.000001","updated_at":"2024-05-01T10:15:00.000001"}]`
	userStatsBody = `{"my_tickets":0,"my_new_tickets":0,"my_in_progress_tickets":0,"my_resolved_tickets":0}`
)

func TestDecodesZonelessTimestamps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/arms":
			_, _ = w.Write([]byte(isoArmsBody))
		case "/tickets":
			_, _ = w.Write([]byte(isoTicketsBody))
		case "/stats":
			_, _ = w.Write([]byte(userStatsBody))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	ctx := context.Background()
	c := gateway.NewClient(srv.URL, gateway.WithCredentials(func() string { return "tok" }))

	arms, err := c.ListWorkstations(ctx)
	require.NoError(t, err)
	require.Len(t, arms, 1)
	assert.Equal(t, "Intel i5", arms[0].Characteristics.CPU)
	assert.True(t, arms[0].CreatedAt.Equal(time.Date(2024, 5, 1, 10, 11, 12, 123456000, time.UTC)))
	assert.True(t, arms[0].UpdatedAt.Equal(time.Date(2024, 5, 1, 10, 11, 12, 0, time.UTC)))

	tickets, err := c.ListTickets(ctx)
	require.NoError(t, err)
	require.Len(t, tickets, 1)
	assert.Equal(t, model.TicketStatusNew, tickets[0].Status)
	assert.Equal(t, 2024, tickets[0].CreatedAt.Year())

	st, err := c.FetchStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Stats{}, *st)
}
