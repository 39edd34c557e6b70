// Package state holds the latest tick's observable data for the
// control surface and the viewer. One writer (the tick loop), many
// readers.
package state

import (
	"sync"
	"time"

	"bomberbot/pkg/core"
)

// Snapshot is the read view handed to the HTTP layer. Slices and maps
// inside are owned by the cache after Set and must not be mutated by
// readers.
type Snapshot struct {
	State       *core.GameState
	FetchedAt   time.Time
	Commands    []core.MoveCommand
	Notes       map[string]string
	DangerCells []core.Pos
	MoveResp    map[string]any
	LastErr     string
	TickMS      int64
}

// Cache is the shared slot between the runner and its observers.
type Cache struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewCache() *Cache { return &Cache{} }

// SetState records a freshly fetched arena snapshot.
func (c *Cache) SetState(st *core.GameState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.State = st
	c.snap.FetchedAt = time.Now()
}

// SetDecision records the outcome of one decision pass.
func (c *Cache) SetDecision(cmds []core.MoveCommand, notes map[string]string, dangerCells []core.Pos, tickMS int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.Commands = cmds
	c.snap.Notes = notes
	c.snap.DangerCells = dangerCells
	c.snap.TickMS = tickMS
}

// SetMoveResp records the arbiter's answer to the last move post.
func (c *Cache) SetMoveResp(resp map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.MoveResp = resp
}

// SetError records the last tick error; empty clears it.
func (c *Cache) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap.LastErr = msg
}

// Get returns the current snapshot view.
func (c *Cache) Get() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Age returns how long ago the arena snapshot was fetched, or a
// negative duration when none was fetched yet.
func (c *Cache) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snap.FetchedAt.IsZero() {
		return -1
	}
	return time.Since(c.snap.FetchedAt)
}
