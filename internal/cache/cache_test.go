package cache

import (
	"sync"
	"testing"

	"github.com/psds-microservice/arm-service-desk/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaleReloadIsDiscarded(t *testing.T) {
	c := New()
	older := c.Begin(Workstations)
	newer := c.Begin(Workstations)

	require.True(t, c.ReplaceWorkstations(newer, []model.Workstation{{ID: "ARM-002"}}))
	assert.False(t, c.ReplaceWorkstations(older, []model.Workstation{{ID: "ARM-001"}}))

	list := c.Workstations()
	require.Len(t, list, 1)
	assert.Equal(t, "ARM-002", list[0].ID)
}

func TestSequencesArePerCollection(t *testing.T) {
	c := New()
	ws := c.Begin(Workstations)
	c.Begin(Tickets)
	c.Begin(Tickets)

	assert.True(t, c.ReplaceWorkstations(ws, nil))
	assert.True(t, c.ReplaceStats(c.Begin(Stats), model.Stats{TotalArms: 3}))
	assert.Equal(t, 3, c.Stats().TotalArms)
}

func TestReplaceCopiesInput(t *testing.T) {
	c := New()
	in := []model.Ticket{{ID: "TICKET-1", Status: model.TicketStatusNew}}
	c.ReplaceTickets(c.Begin(Tickets), in)
	in[0].Status = model.TicketStatusResolved

	out := c.Tickets()
	assert.Equal(t, model.TicketStatusNew, out[0].Status)
	out[0].ID = "changed"
	assert.Equal(t, "TICKET-1", c.Tickets()[0].ID)
}

func TestFindWorkstation(t *testing.T) {
	c := New()
	c.ReplaceWorkstations(c.Begin(Workstations), []model.Workstation{{ID: "ARM-001", Name: "PC"}})

	w, ok := c.FindWorkstation("ARM-001")
	require.True(t, ok)
	assert.Equal(t, "PC", w.Name)

	_, ok = c.FindWorkstation("ARM-404")
	assert.False(t, ok)
}

func TestStatsNilUntilLoaded(t *testing.T) {
	c := New()
	assert.Nil(t, c.Stats())
	assert.Nil(t, c.Snapshot().Stats)
}

func TestConcurrentReloadsKeepNewest(t *testing.T) {
	c := New()
	seqs := make([]uint64, 50)
	for i := range seqs {
		seqs[i] = c.Begin(Tickets)
	}
	var wg sync.WaitGroup
	for i := len(seqs) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c.ReplaceTickets(seqs[i], []model.Ticket{{ID: string(rune('a' + i%26))}})
		}(i)
	}
	wg.Wait()

	last := seqs[len(seqs)-1]
	assert.False(t, c.ReplaceTickets(last-1, nil))
	assert.Equal(t, string(rune('a'+(len(seqs)-1)%26)), c.Tickets()[0].ID)
}
