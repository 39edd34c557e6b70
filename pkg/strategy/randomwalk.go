package strategy

import "bomberbot/pkg/core"

// RandomWalkID names the scatter strategy.
const RandomWalkID = "random_walk"

// RandomWalk takes one pseudo-random safe step per tick. The choice is
// hashed from the unit id and its position rather than drawn from an
// RNG, so a repeated decision pass over the same snapshot stays
// deterministic while different units still fan out.
type RandomWalk struct{}

func (RandomWalk) ID() string { return RandomWalkID }

func (RandomWalk) DecideForUnit(unit core.Unit, ctx *Context) *UnitPlan {
	blocked := ctx.BlockedFor()

	var options []core.Pos
	for _, nb := range unit.Pos.Neighbors4() {
		if !nb.In(ctx.Width, ctx.Height) || blocked[nb] || ctx.MobCells[nb] {
			continue
		}
		if !ctx.Danger.SafeToStay(nb, 2.0) {
			continue
		}
		options = append(options, nb)
	}
	if len(options) == 0 {
		return nil
	}

	best := options[0]
	bestHash := cellHash(unit.ID, best)
	for _, p := range options[1:] {
		if h := cellHash(unit.ID, p); h < bestHash {
			best, bestHash = p, h
		}
	}
	return &UnitPlan{Path: []core.Pos{best}, Note: "random_walk"}
}
