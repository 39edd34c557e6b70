// Package danger models when and where scheduled explosions will land.
//
// All timer comparisons in the planner go through this package so that
// the safety margin is applied in exactly one place.
package danger

import (
	"sort"

	"bomberbot/pkg/core"
)

// SafeMargin is the slack, in seconds, required between a cell's
// scheduled detonation and the moment a unit plans to have left it.
// Plans that are only correct at infinite timing precision are not
// plans; every safety comparison adds this margin.
const SafeMargin = 0.15

// StableWindow is how long, in seconds, a cell must stay clear of
// detonations to count as "stably safe" (a valid escape destination
// rather than a cell that merely survives the next step).
const StableWindow = 2.0

// DefaultTimerThreshold is the fuse cutoff for treating a bomb as an
// active threat. Bombs above it still stop blast rays but do not mark
// cells dangerous yet; they will be re-evaluated on later ticks.
const DefaultTimerThreshold = 2.5

// Blast computes the cells a bomb at origin with the given range will
// hit. The origin is always included. Each cardinal ray extends up to
// rng cells and terminates on the first wall, obstacle or stopper cell
// (typically another bomb); that blocking cell is included, cells past
// it are not. Leaving the grid terminates a ray without inclusion.
func Blast(origin core.Pos, rng, w, h int, walls, obstacles, stoppers map[core.Pos]bool) map[core.Pos]bool {
	out := make(map[core.Pos]bool, 4*rng+1)
	if origin.In(w, h) {
		out[origin] = true
	}
	for _, d := range core.Directions4 {
		for i := 1; i <= rng; i++ {
			p := core.Pos{X: origin.X + d.X*i, Y: origin.Y + d.Y*i}
			if !p.In(w, h) {
				break
			}
			out[p] = true
			if walls[p] || obstacles[p] || stoppers[p] {
				break
			}
		}
	}
	return out
}

// CanHitInCross reports whether a bomb placed at from would reach
// target: same row or column, within range, with no ray-stopping cell
// strictly between them. The target cell itself may be a stopper (an
// obstacle or a mob standing on it still gets hit).
func CanHitInCross(from, target core.Pos, rng, w, h int, walls, obstacles, stoppers map[core.Pos]bool) bool {
	if from == target {
		return true
	}
	if from.X != target.X && from.Y != target.Y {
		return false
	}
	if core.Manhattan(from, target) > rng {
		return false
	}
	d := core.Pos{X: sign(target.X - from.X), Y: sign(target.Y - from.Y)}
	p := from
	for {
		p = p.Add(d)
		if !p.In(w, h) {
			return false
		}
		if p == target {
			return true
		}
		if walls[p] || obstacles[p] || stoppers[p] {
			return false
		}
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Map records, per cell, the earliest time in seconds at which a
// scheduled explosion reaches it. A cell absent from the map has no
// known detonation. Maps are built once per tick and never mutated;
// hypothetical bombs are layered on with WithBomb.
type Map struct {
	earliest map[core.Pos]float64
}

// BuildMap aggregates all armed bombs into a Map. Bombs with timer at
// or below threshold contribute danger; every bomb position acts as a
// blast stopper regardless of its timer. Per cell the recorded value
// is the minimum timer among covering bombs.
func BuildMap(bombs []core.Bomb, threshold float64, w, h int, walls, obstacles map[core.Pos]bool) *Map {
	stoppers := core.BombCells(bombs)
	m := &Map{earliest: make(map[core.Pos]float64)}
	for _, b := range bombs {
		if b.Timer > threshold {
			continue
		}
		for p := range Blast(b.Pos, b.Range, w, h, walls, obstacles, stoppers) {
			if t, ok := m.earliest[p]; !ok || b.Timer < t {
				m.earliest[p] = b.Timer
			}
		}
	}
	return m
}

// WithBomb returns a copy of m with an additional explosion at the
// given absolute time covering the given blast cells.
func (m *Map) WithBomb(blast map[core.Pos]bool, at float64) *Map {
	out := &Map{earliest: make(map[core.Pos]float64, len(m.earliest)+len(blast))}
	for p, t := range m.earliest {
		out.earliest[p] = t
	}
	for p := range blast {
		if t, ok := out.earliest[p]; !ok || at < t {
			out.earliest[p] = at
		}
	}
	return out
}

// EarliestAt returns the earliest scheduled detonation covering p.
func (m *Map) EarliestAt(p core.Pos) (float64, bool) {
	t, ok := m.earliest[p]
	return t, ok
}

// Dangerous reports whether any detonation is scheduled for p.
func (m *Map) Dangerous(p core.Pos) bool {
	_, ok := m.earliest[p]
	return ok
}

// SafeToStay reports whether a unit that leaves p no later than
// leaveTime (seconds from now) survives standing there. True when no
// detonation is scheduled or it fires strictly later than
// leaveTime+SafeMargin.
func (m *Map) SafeToStay(p core.Pos, leaveTime float64) bool {
	t, ok := m.earliest[p]
	if !ok {
		return true
	}
	return t > leaveTime+SafeMargin
}

// StablySafe reports whether p stays clear of detonations for at least
// StableWindow seconds after time t. Escape searches use it as their
// goal condition so a unit does not flee into the next blast.
func (m *Map) StablySafe(p core.Pos, t int) bool {
	et, ok := m.earliest[p]
	if !ok {
		return true
	}
	return et > float64(t)+StableWindow
}

// Len returns the number of threatened cells.
func (m *Map) Len() int {
	return len(m.earliest)
}

// Cells returns the threatened cells in deterministic order. Used by
// the status surface; planners query the map directly.
func (m *Map) Cells() []core.Pos {
	out := make([]core.Pos, 0, len(m.earliest))
	for p := range m.earliest {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}
