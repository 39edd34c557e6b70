package strategy

import (
	"fmt"

	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
	"bomberbot/pkg/nav"
)

// EvadeBombMobsID names the mob evade/counter strategy.
const EvadeBombMobsID = "evade_bomb_mobs"

// EvadeBombMobs handles armed mobs: when one is in reach it tries to
// place a bomb whose cross covers the mob's current cell and retreat;
// otherwise, when a mob is within the threat radius, it backs off to a
// cell keeping distance from every armed mob. Mob movement is not
// predicted; bombs target where the mob stands now.
type EvadeBombMobs struct {
	// ThreatDist is the Manhattan radius at which a mob forces a
	// retreat.
	ThreatDist int
}

func NewEvadeBombMobs() *EvadeBombMobs {
	return &EvadeBombMobs{ThreatDist: 2}
}

func (*EvadeBombMobs) ID() string { return EvadeBombMobsID }

func (s *EvadeBombMobs) DecideForUnit(unit core.Unit, ctx *Context) *UnitPlan {
	mobs := ctx.ArmedMobs()
	if len(mobs) == 0 {
		return nil
	}

	blocked := ctx.BlockedFor()

	// Standing on a mob cell is already a disaster; take the best
	// single step out.
	if ctx.MobCells[unit.Pos] {
		if step, ok := s.bestStepAway(unit.Pos, mobs, ctx, blocked); ok {
			return &UnitPlan{Path: []core.Pos{step}, Note: "panic-step"}
		}
		return nil
	}

	nearest := mobs[0]
	for _, m := range mobs[1:] {
		if core.Manhattan(unit.Pos, m.Pos) < core.Manhattan(unit.Pos, nearest.Pos) {
			nearest = m
		}
	}

	if unit.BombsAvailable > 0 {
		if plan := s.tryBombMob(unit, nearest, ctx, blocked); plan != nil {
			return plan
		}
	}

	if core.Manhattan(unit.Pos, nearest.Pos) <= s.ThreatDist {
		return s.escapeMobs(unit, mobs, ctx, blocked)
	}
	return nil
}

// tryBombMob looks for a firing cell whose blast cross reaches the mob
// and from which a retreat out of the combined danger exists. The hit
// check is a straight ray along the cross, not a search: blasts are
// axis-aligned, so anything off the mob's row and column is hopeless.
func (s *EvadeBombMobs) tryBombMob(unit core.Unit, mob core.Mob, ctx *Context, blocked map[core.Pos]bool) *UnitPlan {
	rng := ctx.Passability.BombRange
	if rng < 1 {
		rng = 1
	}

	firing := func(p core.Pos) bool {
		if blocked[p] || ctx.MobCells[p] {
			return false
		}
		return danger.CanHitInCross(p, mob.Pos, rng, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, ctx.BombCells)
	}

	approach := nav.FindNearest(unit.Pos, ctx.Width, ctx.Height, blocked, firing, 1500)
	if approach == nil {
		return nil
	}
	if len(approach) == 0 {
		// The current cell fires, but a bomb has to lie on the path.
		// Use an adjacent firing cell when one exists.
		approach = nil
		for _, nb := range unit.Pos.Neighbors4() {
			if nb.In(ctx.Width, ctx.Height) && firing(nb) {
				approach = []core.Pos{nb}
				break
			}
		}
		if approach == nil {
			return nil
		}
	}
	fire := approach[len(approach)-1]

	stoppers := make(map[core.Pos]bool, len(ctx.BombCells)+1)
	for p := range ctx.BombCells {
		stoppers[p] = true
	}
	stoppers[fire] = true
	blast := danger.Blast(fire, rng, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, stoppers)

	blockedAfter := make(map[core.Pos]bool, len(blocked)+1)
	for p := range blocked {
		blockedAfter[p] = true
	}
	blockedAfter[fire] = true

	clear := func(p core.Pos) bool {
		return !blast[p] && !ctx.Danger.Dangerous(p) && !ctx.MobCells[p]
	}
	escape := nav.FindNearest(fire, ctx.Width, ctx.Height, blockedAfter, clear, 3000)
	if escape == nil {
		return nil
	}

	full := append(append([]core.Pos{}, approach...), escape...)
	if len(full) > ctx.MaxPath {
		full = full[:ctx.MaxPath]
	}
	if !containsPos(full, fire) {
		return nil
	}
	return &UnitPlan{
		Path:  full,
		Bombs: []core.Pos{fire},
		Note:  fmt.Sprintf("bomb-mob %s@%s", mob.Type, mob.Pos),
	}
}

// escapeMobs retreats to the nearest cell that keeps every armed mob
// outside the threat radius, falling back to the single best step.
func (s *EvadeBombMobs) escapeMobs(unit core.Unit, mobs []core.Mob, ctx *Context, blocked map[core.Pos]bool) *UnitPlan {
	safe := func(p core.Pos) bool {
		if ctx.MobCells[p] || ctx.Danger.Dangerous(p) {
			return false
		}
		return minMobDist(p, mobs) > s.ThreatDist
	}
	path := nav.FindNearest(unit.Pos, ctx.Width, ctx.Height, blocked, safe, 4000)
	if path == nil || len(path) == 0 {
		if step, ok := s.bestStepAway(unit.Pos, mobs, ctx, blocked); ok {
			return &UnitPlan{Path: []core.Pos{step}, Note: "evade-step"}
		}
		return nil
	}
	if len(path) > ctx.MaxPath {
		path = path[:ctx.MaxPath]
	}
	return &UnitPlan{Path: path, Note: "evade"}
}

func (s *EvadeBombMobs) bestStepAway(pos core.Pos, mobs []core.Mob, ctx *Context, blocked map[core.Pos]bool) (core.Pos, bool) {
	var best core.Pos
	bestScore := -1 << 30
	found := false
	for _, nb := range pos.Neighbors4() {
		if !nb.In(ctx.Width, ctx.Height) || blocked[nb] {
			continue
		}
		if ctx.Danger.Dangerous(nb) {
			continue
		}
		score := minMobDist(nb, mobs)
		if ctx.MobCells[nb] {
			score -= 1000
		}
		if score > bestScore {
			best, bestScore, found = nb, score, true
		}
	}
	return best, found
}

func minMobDist(p core.Pos, mobs []core.Mob) int {
	min := 1 << 30
	for _, m := range mobs {
		if d := core.Manhattan(p, m.Pos); d < min {
			min = d
		}
	}
	return min
}
