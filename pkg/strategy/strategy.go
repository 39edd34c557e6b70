// Package strategy defines the per-unit decision contract and the
// policies implementing it. A strategy proposes; the engine validates,
// clips and arbitrates. Any memory a strategy keeps is private to one
// (unit, strategy) binding and survives across ticks.
package strategy

import (
	"sort"

	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
)

// UnitPlan is a strategy's proposal for one unit: the cells to walk,
// in order, each 4-adjacent to the previous (the first adjacent to the
// unit's current cell), and the subset of those cells where a bomb is
// dropped. Plans may be speculative; validation narrows them.
type UnitPlan struct {
	Path  []core.Pos
	Bombs []core.Pos
	Note  string
}

// Context is the read-only per-tick view handed to every strategy.
// It is built once by the engine and must never be mutated; strategies
// needing a variant of a set copy it first.
type Context struct {
	State  *core.GameState
	Width  int
	Height int

	Walls     map[core.Pos]bool
	Obstacles map[core.Pos]bool
	Bombs     []core.Bomb
	BombCells map[core.Pos]bool

	// Danger is the earliest-detonation map for the snapshot's armed
	// bombs.
	Danger *danger.Map

	// MobCells holds positions of armed mobs only; a mob still inside
	// its telegraph window is not a hazard this tick.
	MobCells map[core.Pos]bool

	Passability core.Passability
	MaxPath     int
}

// BlockedFor returns the cells impassable to a unit with the context's
// passability modifiers. The returned set is freshly allocated.
func (c *Context) BlockedFor() map[core.Pos]bool {
	blocked := make(map[core.Pos]bool, len(c.Walls)+len(c.Obstacles)+len(c.BombCells))
	if !c.Passability.CanPassWalls {
		for p := range c.Walls {
			blocked[p] = true
		}
	}
	if !c.Passability.CanPassObstacles {
		for p := range c.Obstacles {
			blocked[p] = true
		}
	}
	if !c.Passability.CanPassBombs {
		for p := range c.BombCells {
			blocked[p] = true
		}
	}
	return blocked
}

// Allies returns the living units other than id.
func (c *Context) Allies(id string) []core.Unit {
	var out []core.Unit
	for _, u := range c.State.Units {
		if u.Alive && u.ID != id {
			out = append(out, u)
		}
	}
	return out
}

// ArmedMobs returns the mobs that are currently dangerous.
func (c *Context) ArmedMobs() []core.Mob {
	var out []core.Mob
	for _, m := range c.State.Mobs {
		if m.Armed() {
			out = append(out, m)
		}
	}
	return out
}

// Strategy is the single decision contract: given a unit and the tick
// context, propose a plan or nil for "no proposal". Implementations
// must not touch shared state; returning nil is always acceptable.
type Strategy interface {
	ID() string
	DecideForUnit(unit core.Unit, ctx *Context) *UnitPlan
}

// Factory builds a fresh strategy instance. The engine creates one
// instance per (unit, strategy) binding, lazily.
type Factory func() Strategy

// Registry maps strategy ids to factories. The set is closed and
// registered in NewRegistry; there is no reflection or discovery.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with every built-in strategy.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(IdleID, func() Strategy { return &Idle{} })
	r.Register(RandomWalkID, func() Strategy { return &RandomWalk{} })
	r.Register(FarmObstaclesID, func() Strategy { return NewFarmObstacles() })
	r.Register(EvadeBombMobsID, func() Strategy { return NewEvadeBombMobs() })
	r.Register(SafeBomberID, func() Strategy { return NewSafeBomber() })
	return r
}

// Register adds or replaces a factory.
func (r *Registry) Register(id string, f Factory) {
	r.factories[id] = f
}

// Create instantiates the strategy with the given id.
func (r *Registry) Create(id string) (Strategy, bool) {
	f, ok := r.factories[id]
	if !ok {
		return nil, false
	}
	return f(), true
}

// Has reports whether id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.factories[id]
	return ok
}

// IDs lists registered strategy ids in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
