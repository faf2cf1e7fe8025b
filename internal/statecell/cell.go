// Package statecell provides the single-slot snapshot holder shared between a
// node's control loop (writer) and its socket server (readers).
package statecell

import (
	"sync"

	"codeberg.org/voss/hydractl/internal/status"
)

// Cell holds the most recent snapshot for one telemetry category.
// Last write wins; no history is retained. Safe for one writer and any number
// of readers. Readers receive a copy, so a held snapshot can never be torn by
// a later write.
type Cell struct {
	mu    sync.RWMutex
	snap  status.Snapshot
	ready bool
}

// New returns an empty cell. Read reports absent until the first Write.
func New() *Cell {
	return &Cell{}
}

// Write atomically replaces the held snapshot.
func (c *Cell) Write(snap status.Snapshot) {
	copied := snap.Clone()

	c.mu.Lock()
	c.snap = copied
	c.ready = true
	c.mu.Unlock()
}

// Read returns a copy of the current snapshot, or ok=false if the cell has
// never been written.
func (c *Cell) Read() (status.Snapshot, bool) {
	c.mu.RLock()
	snap, ready := c.snap, c.ready
	c.mu.RUnlock()

	if !ready {
		return nil, false
	}

	return snap.Clone(), true
}
