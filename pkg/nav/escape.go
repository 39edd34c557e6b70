package nav

import (
	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
)

// timedState is a BFS node in (position, elapsed ticks) space.
type timedState struct {
	pos core.Pos
	t   int
}

// EscapePlan searches for a survivable path out of danger. The state
// space is (position, tick): a step from (p, t) to (n, t+1) is
// explored only when n is inside the grid, unblocked, and the unit can
// survive standing on n from t+1 until it moves again — that is,
// dm.SafeToStay(n, t+2) holds, with the package safety margin applied
// inside the danger map.
//
// goal decides when a state is good enough; the same primitive serves
// "reach this cell", "get outside this blast footprint" and "find a
// stably safe cell". The first state reached in BFS frontier order
// wins; among equal-length escapes no further cost is applied.
//
// Returns the steps to walk (excluding start). An empty non-nil slice
// means start already satisfies goal and survives staying put. nil
// means no survivable path exists within maxHorizon ticks — a normal
// outcome the caller must treat as "cannot safely act".
func EscapePlan(start core.Pos, startTime, w, h int, blocked map[core.Pos]bool, dm *danger.Map, goal func(core.Pos, int) bool, maxHorizon int) []core.Pos {
	if goal(start, startTime) && dm.SafeToStay(start, float64(startTime+1)) {
		return []core.Pos{}
	}

	startState := timedState{start, startTime}
	queue := []timedState{startState}
	prev := map[timedState]timedState{startState: startState}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.t >= startTime+maxHorizon {
			continue
		}
		// A state only expands if the unit survives occupying it for
		// the next whole tick.
		if !dm.SafeToStay(cur.pos, float64(cur.t+1)) {
			continue
		}
		for _, nb := range cur.pos.Neighbors4() {
			next := timedState{nb, cur.t + 1}
			if !nb.In(w, h) || blocked[nb] {
				continue
			}
			if _, seen := prev[next]; seen {
				continue
			}
			if !dm.SafeToStay(nb, float64(next.t+1)) {
				continue
			}
			prev[next] = cur
			if goal(nb, next.t) {
				return reconstructTimed(prev, startState, next)
			}
			queue = append(queue, next)
		}
	}
	return nil
}

func reconstructTimed(prev map[timedState]timedState, start, end timedState) []core.Pos {
	var rev []core.Pos
	for cur := end; cur != start; cur = prev[cur] {
		rev = append(rev, cur.pos)
	}
	path := make([]core.Pos, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}
