package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/psds-microservice/arm-service-desk/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cli struct {
	t    *testing.T
	base []string
}

func newCLI(t *testing.T) *cli {
	ts := testserver.New(t)
	dir := t.TempDir()
	return &cli{
		t:    t,
		base: []string{"--api-url", ts.APIURL(), "--state", filepath.Join(dir, "state.db"), "-o", "json"},
	}
}

func (c *cli) run(args ...string) (string, error) {
	c.t.Helper()
	var out, errOut bytes.Buffer
	oldOut, oldErr := stdout, stderr
	stdout, stderr = &out, &errOut
	defer func() { stdout, stderr = oldOut, oldErr }()

	rootCmd.SetArgs(append(append([]string{}, c.base...), args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) login(user, password string) {
	c.t.Helper()
	pwFile := filepath.Join(c.t.TempDir(), "pw")
	require.NoError(c.t, os.WriteFile(pwFile, []byte(password+"\n"), 0o600))
	_, err := c.run("login", user, "--password-file", pwFile)
	require.NoError(c.t, err)
}

func TestCLISessionLifecycle(t *testing.T) {
	c := newCLI(t)

	_, err := c.run("whoami")
	require.EqualError(t, err, "not logged in")

	c.login("admin", "admin123")
	out, err := c.run("whoami")
	require.NoError(t, err)
	var id model.Identity
	require.NoError(t, json.Unmarshal([]byte(out), &id))
	assert.Equal(t, model.Identity{Username: "admin", IsAdmin: true}, id)

	_, err = c.run("logout")
	require.NoError(t, err)
	_, err = c.run("arms", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")
}

func TestCLIWrongPassword(t *testing.T) {
	c := newCLI(t)
	pwFile := filepath.Join(t.TempDir(), "pw")
	require.NoError(t, os.WriteFile(pwFile, []byte("nope"), 0o600))

	_, err := c.run("login", "admin", "--password-file", pwFile)
	require.EqualError(t, err, "invalid credentials")
}

func TestCLIDeskFlow(t *testing.T) {
	c := newCLI(t)
	c.login("admin", "admin123")

	out, err := c.run("arms", "add", "--inventory", "INV-1", "--name", "Front desk", "--location", "Hall", "--cpu", "i5")
	require.NoError(t, err)
	var w model.Workstation
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	assert.Equal(t, "ARM-001", w.ID)
	assert.Equal(t, "i5", w.Characteristics.CPU)

	out, err = c.run("arms", "update", "ARM-001", "--ram", "16GB")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	assert.Equal(t, "i5", w.Characteristics.CPU)
	assert.Equal(t, "16GB", w.Characteristics.RAM)

	out, err = c.run("tickets", "create", "--arm", "ARM-001", "--type", "hardware", "--priority", "high", "-d", "disk full")
	require.NoError(t, err)
	var tickets []model.Ticket
	require.NoError(t, json.Unmarshal([]byte(out), &tickets))
	require.Len(t, tickets, 1)
	assert.Equal(t, model.TicketStatusNew, tickets[0].Status)
	assert.Equal(t, "admin", tickets[0].CreatedBy)

	_, err = c.run("arms", "delete", "ARM-001")
	require.EqualError(t, err, "workstation has active tickets (1)")

	_, err = c.run("tickets", "status", tickets[0].ID, "resolved")
	require.NoError(t, err)
	_, err = c.run("tickets", "status", tickets[0].ID, "new")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ticket status transition")

	out, err = c.run("stats")
	require.NoError(t, err)
	var st model.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 1, st.TotalArms)
	assert.Equal(t, 1, st.ResolvedTickets)

	_, err = c.run("arms", "delete", "ARM-001")
	require.NoError(t, err)
}

func TestCLIStandardUser(t *testing.T) {
	c := newCLI(t)
	c.login("user", "user123")

	_, err := c.run("arms", "add", "--inventory", "INV-9", "--name", "PC")
	require.EqualError(t, err, "admin rights required")

	out, err := c.run("stats")
	require.NoError(t, err)
	var st model.Stats
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Zero(t, st.TotalArms)
	assert.Zero(t, st.MyTickets)
}

func TestCLIRejectsUnknownOutput(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("whoami", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown --output")
}

func TestCLIEphemeralSignsInFromEnvironment(t *testing.T) {
	c := newCLI(t)
	t.Cleanup(func() { opts.ephemeral = false })
	t.Setenv("ARM_DESK_USERNAME", "")

	_, err := c.run("--ephemeral", "arms", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARM_DESK_USERNAME")

	t.Setenv("ARM_DESK_USERNAME", "admin")
	t.Setenv("ARM_DESK_PASSWORD", "admin123")

	out, err := c.run("--ephemeral", "arms", "add", "--inventory", "INV-E", "--name", "Kiosk")
	require.NoError(t, err)
	var w model.Workstation
	require.NoError(t, json.Unmarshal([]byte(out), &w))
	assert.Equal(t, "ARM-001", w.ID)

	out, err = c.run("--ephemeral", "whoami")
	require.NoError(t, err)
	var id model.Identity
	require.NoError(t, json.Unmarshal([]byte(out), &id))
	assert.Equal(t, "admin", id.Username)

	// nothing was written to the state file
	opts.ephemeral = false
	_, err = c.run("whoami")
	require.EqualError(t, err, "not logged in")
}
