// Package cache holds the client's last full snapshot of workstations,
// tickets and stats. Collections are only ever replaced whole.
//
// Reloads may overlap. Each one takes a sequence number from Begin before
// fetching and hands it back on Replace*; a completion older than the last
// applied one for that collection is dropped.
package cache

import (
	"slices"
	"sync"

	"github.com/psds-microservice/arm-service-desk/internal/model"
)

type Collection int

const (
	Workstations Collection = iota
	Tickets
	Stats
	numCollections
)

func (c Collection) String() string {
	switch c {
	case Workstations:
		return "workstations"
	case Tickets:
		return "tickets"
	case Stats:
		return "stats"
	}
	return "unknown"
}

// Snapshot is a consistent copy of the cache contents.
type Snapshot struct {
	Workstations []model.Workstation
	Tickets      []model.Ticket
	Stats        *model.Stats
}

type Cache struct {
	mu           sync.RWMutex
	next         [numCollections]uint64
	applied      [numCollections]uint64
	workstations []model.Workstation
	tickets      []model.Ticket
	stats        *model.Stats
}

func New() *Cache {
	return &Cache{}
}

// Begin reserves the sequence number for a reload of c.
func (c *Cache) Begin(col Collection) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.next[col]++
	return c.next[col]
}

// accept must be called with mu held.
func (c *Cache) accept(col Collection, seq uint64) bool {
	if seq < c.applied[col] {
		return false
	}
	c.applied[col] = seq
	return true
}

// ReplaceWorkstations installs list unless a newer reload already landed.
func (c *Cache) ReplaceWorkstations(seq uint64, list []model.Workstation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(Workstations, seq) {
		return false
	}
	c.workstations = slices.Clone(list)
	return true
}

func (c *Cache) ReplaceTickets(seq uint64, list []model.Ticket) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(Tickets, seq) {
		return false
	}
	c.tickets = slices.Clone(list)
	return true
}

func (c *Cache) ReplaceStats(seq uint64, st model.Stats) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accept(Stats, seq) {
		return false
	}
	c.stats = &st
	return true
}

func (c *Cache) FindWorkstation(id string) (model.Workstation, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, w := range c.workstations {
		if w.ID == id {
			return w, true
		}
	}
	return model.Workstation{}, false
}

func (c *Cache) Workstations() []model.Workstation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.workstations)
}

func (c *Cache) Tickets() []model.Ticket {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.tickets)
}

// Stats returns nil until stats have been loaded.
func (c *Cache) Stats() *model.Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.stats == nil {
		return nil
	}
	st := *c.stats
	return &st
}

func (c *Cache) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := Snapshot{
		Workstations: slices.Clone(c.workstations),
		Tickets:      slices.Clone(c.tickets),
	}
	if c.stats != nil {
		st := *c.stats
		s.Stats = &st
	}
	return s
}
