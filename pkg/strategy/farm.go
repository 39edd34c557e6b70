package strategy

import (
	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
	"bomberbot/pkg/nav"
)

// FarmObstaclesID names the obstacle-farming strategy.
const FarmObstaclesID = "farm_obstacles"

const farmSearchBudget = 5000

// FarmObstacles walks to the nearest free cell adjacent to a
// destructible obstacle, drops a bomb there and retreats to a cell at
// least two steps away and outside the hypothetical blast. A bomb is
// proposed only together with a verified retreat; when no retreat
// exists the whole plan is withheld.
type FarmObstacles struct{}

func NewFarmObstacles() *FarmObstacles { return &FarmObstacles{} }

func (FarmObstacles) ID() string { return FarmObstaclesID }

func (s *FarmObstacles) DecideForUnit(unit core.Unit, ctx *Context) *UnitPlan {
	if unit.BombsAvailable <= 0 || len(ctx.Obstacles) == 0 {
		return nil
	}

	blocked := ctx.BlockedFor()
	for p := range ctx.MobCells {
		blocked[p] = true
	}

	placeable := func(p core.Pos) bool {
		if blocked[p] {
			return false
		}
		for _, nb := range p.Neighbors4() {
			if ctx.Obstacles[nb] {
				return true
			}
		}
		return false
	}

	approach := nav.FindNearest(unit.Pos, ctx.Width, ctx.Height, blocked, placeable, farmSearchBudget)
	if approach == nil {
		return nil
	}
	if len(approach) == 0 {
		// Already standing on a placement cell. A bomb can only be
		// dropped on a path cell, so shift one step to an adjacent
		// placement cell instead.
		approach = nil
		for _, nb := range unit.Pos.Neighbors4() {
			if nb.In(ctx.Width, ctx.Height) && placeable(nb) {
				approach = []core.Pos{nb}
				break
			}
		}
		if approach == nil {
			return nil
		}
	}
	place := approach[len(approach)-1]

	rng := ctx.Passability.BombRange
	if rng < 1 {
		rng = 1
	}
	stoppers := make(map[core.Pos]bool, len(ctx.BombCells)+1)
	for p := range ctx.BombCells {
		stoppers[p] = true
	}
	stoppers[place] = true
	blast := danger.Blast(place, rng, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, stoppers)

	blockedAfter := make(map[core.Pos]bool, len(blocked)+1)
	for p := range blocked {
		blockedAfter[p] = true
	}
	blockedAfter[place] = true

	retreat := func(p core.Pos) bool {
		return !blast[p] && !ctx.Danger.Dangerous(p) && core.Manhattan(p, place) >= 2
	}
	escape := nav.FindNearest(place, ctx.Width, ctx.Height, blockedAfter, retreat, farmSearchBudget)
	if escape == nil {
		return nil
	}

	full := append(append([]core.Pos{}, approach...), escape...)
	if len(full) > ctx.MaxPath {
		full = full[:ctx.MaxPath]
	}
	if !containsPos(full, place) {
		return nil
	}
	return &UnitPlan{Path: full, Bombs: []core.Pos{place}, Note: "farm"}
}

func containsPos(ps []core.Pos, p core.Pos) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}
