package strategy

import (
	"sort"

	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
	"bomberbot/pkg/nav"
)

// SafeBomberID names the composite default strategy.
const SafeBomberID = "safe_bomber"

const (
	// urgentLeave is the stay budget (seconds) below which the current
	// cell is abandoned before anything offensive is considered.
	urgentLeave = 1.0

	// stepLeave is the stay budget demanded of any cell the unit plans
	// to step onto: arrive at t+1, survive until t+2.
	stepLeave = 2.0

	escapeHorizon = 10
)

// SafeBomber is the composite policy: farm obstacles and counter-bomb
// armed mobs, but never place a bomb whose blast covers a living ally,
// never place one without a verified timed escape, avoid stepping back
// onto the previous cell when an alternative exists, and break
// objective ties by unit-id hash so several units spread over distinct
// targets.
//
// After committing to a bomb it keeps the remaining egress as a queue
// and continues it on later ticks instead of replanning, until the
// queue empties or its next step becomes blocked or unsafe.
type SafeBomber struct {
	egress  []core.Pos
	prevPos core.Pos
	hasPrev bool
}

func NewSafeBomber() *SafeBomber { return &SafeBomber{} }

func (*SafeBomber) ID() string { return SafeBomberID }

func (s *SafeBomber) DecideForUnit(unit core.Unit, ctx *Context) *UnitPlan {
	defer func() {
		s.prevPos = unit.Pos
		s.hasPrev = true
	}()

	blocked := ctx.BlockedFor()
	for p := range ctx.MobCells {
		blocked[p] = true
	}

	if plan := s.continueEgress(unit, ctx, blocked); plan != nil {
		return plan
	}

	// The current cell does not survive the next second: evacuate, and
	// nothing else matters.
	if !ctx.Danger.SafeToStay(unit.Pos, urgentLeave) {
		return s.escapeNow(unit, ctx, blocked, "escape-now")
	}

	if unit.BombsAvailable > 0 {
		if plan := s.tryBombAndCommit(unit, ctx, blocked); plan != nil {
			return plan
		}
	}

	// Threatened but not urgently: still move to a stably safe cell.
	if ctx.Danger.Dangerous(unit.Pos) {
		if plan := s.escapeNow(unit, ctx, blocked, "escape-danger"); plan != nil {
			return plan
		}
	}

	return s.approachObjective(unit, ctx, blocked)
}

// continueEgress resumes a committed escape queue. Cells already
// reached are dropped; the queue is abandoned when its next step is no
// longer adjacent, walkable or safe.
func (s *SafeBomber) continueEgress(unit core.Unit, ctx *Context, blocked map[core.Pos]bool) *UnitPlan {
	for len(s.egress) > 0 && s.egress[0] == unit.Pos {
		s.egress = s.egress[1:]
	}
	if len(s.egress) == 0 {
		s.egress = nil
		return nil
	}
	next := s.egress[0]
	if core.Manhattan(unit.Pos, next) != 1 || !next.In(ctx.Width, ctx.Height) ||
		blocked[next] || !ctx.Danger.SafeToStay(next, stepLeave) {
		s.egress = nil
		return nil
	}
	path := append([]core.Pos{}, s.egress...)
	if len(path) > ctx.MaxPath {
		path = path[:ctx.MaxPath]
	}
	return &UnitPlan{Path: path, Note: "egress"}
}

func (s *SafeBomber) escapeNow(unit core.Unit, ctx *Context, blocked map[core.Pos]bool, note string) *UnitPlan {
	goal := func(p core.Pos, t int) bool {
		return !ctx.MobCells[p] && ctx.Danger.StablySafe(p, t)
	}
	esc := nav.EscapePlan(unit.Pos, 0, ctx.Width, ctx.Height, blocked, ctx.Danger, goal, escapeHorizon)
	if len(esc) == 0 {
		return nil
	}
	if len(esc) > ctx.MaxPath {
		esc = esc[:ctx.MaxPath]
	}
	return &UnitPlan{Path: esc, Note: note}
}

// tryBombAndCommit evaluates the adjacent cells as bomb sites. A site
// is taken only when its blast has value, harms no ally, and a timed
// escape from it exists under the overlaid danger map. On success the
// escape tail is committed as the egress queue.
func (s *SafeBomber) tryBombAndCommit(unit core.Unit, ctx *Context, blocked map[core.Pos]bool) *UnitPlan {
	allies := ctx.Allies(unit.ID)
	bombTimer := ctx.Passability.BombTimer
	rng := ctx.Passability.BombRange
	if rng < 1 {
		rng = 1
	}

	type site struct {
		pos   core.Pos
		value bool
		back  bool
		hash  uint64
	}
	var sites []site
	for _, nb := range unit.Pos.Neighbors4() {
		if !nb.In(ctx.Width, ctx.Height) || blocked[nb] {
			continue
		}
		// Arriving at t=1, the unit must survive there until t=2.
		if !ctx.Danger.SafeToStay(nb, stepLeave) {
			continue
		}
		sites = append(sites, site{
			pos:   nb,
			value: s.bombHasValue(nb, rng, ctx),
			back:  s.hasPrev && nb == s.prevPos,
			hash:  cellHash(unit.ID, nb),
		})
	}
	sort.Slice(sites, func(i, j int) bool {
		if sites[i].value != sites[j].value {
			return sites[i].value
		}
		if sites[i].back != sites[j].back {
			return sites[j].back
		}
		return sites[i].hash < sites[j].hash
	})

	for _, c := range sites {
		if !c.value {
			break
		}
		stoppers := copySet(ctx.BombCells)
		stoppers[c.pos] = true
		blast := danger.Blast(c.pos, rng, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, stoppers)

		if anyAllyIn(blast, allies) {
			continue
		}

		// Step onto the site at t=1, place the bomb: it detonates at
		// 1 + fuse. The site becomes a blocked cell once occupied by
		// the bomb.
		overlay := ctx.Danger.WithBomb(blast, 1.0+bombTimer)
		blockedAfter := copySet(blocked)
		blockedAfter[c.pos] = true

		goal := func(p core.Pos, t int) bool {
			return !blast[p] && !ctx.MobCells[p] && overlay.StablySafe(p, t)
		}
		esc := nav.EscapePlan(c.pos, 1, ctx.Width, ctx.Height, blockedAfter, overlay, goal, int(bombTimer)+3)
		if len(esc) == 0 {
			continue
		}

		path := append([]core.Pos{c.pos}, esc...)
		if len(path) > ctx.MaxPath {
			path = path[:ctx.MaxPath]
		}
		s.egress = append([]core.Pos{}, esc...)
		return &UnitPlan{Path: path, Bombs: []core.Pos{c.pos}, Note: "bomb+egress"}
	}
	return nil
}

// bombHasValue reports whether a bomb at p would hit something worth
// hitting: a destructible obstacle, an armed mob or an enemy.
func (s *SafeBomber) bombHasValue(p core.Pos, rng int, ctx *Context) bool {
	stoppers := copySet(ctx.BombCells)
	stoppers[p] = true
	blast := danger.Blast(p, rng, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, stoppers)
	for cell := range blast {
		if ctx.Obstacles[cell] || ctx.MobCells[cell] {
			return true
		}
	}
	for _, e := range ctx.State.Enemies {
		if blast[e.Pos] {
			return true
		}
	}
	return false
}

// approachObjective walks toward the nearest placement cell when no
// bomb site is adjacent yet. Among equally near objectives the one
// with the lowest unit hash wins, which spreads units over distinct
// targets. The immediately previous cell is avoided unless it is the
// only way anywhere.
func (s *SafeBomber) approachObjective(unit core.Unit, ctx *Context, blocked map[core.Pos]bool) *UnitPlan {
	if unit.BombsAvailable <= 0 || len(ctx.Obstacles) == 0 {
		return nil
	}
	placeable := func(p core.Pos) bool {
		if blocked[p] || ctx.Danger.Dangerous(p) {
			return false
		}
		for _, nb := range p.Neighbors4() {
			if ctx.Obstacles[nb] {
				return true
			}
		}
		return false
	}

	path := s.nearestSpread(unit, ctx, blocked, placeable, true)
	if path == nil {
		path = s.nearestSpread(unit, ctx, blocked, placeable, false)
	}
	if len(path) == 0 {
		return nil
	}
	if len(path) > ctx.MaxPath {
		path = path[:ctx.MaxPath]
	}
	return &UnitPlan{Path: path, Note: "approach"}
}

// nearestSpread is a BFS that, within the nearest layer containing any
// matching cell, picks the match with the lowest unit hash rather than
// the first one discovered.
func (s *SafeBomber) nearestSpread(unit core.Unit, ctx *Context, blocked map[core.Pos]bool, pred func(core.Pos) bool, avoidPrev bool) []core.Pos {
	prev := map[core.Pos]core.Pos{unit.Pos: unit.Pos}
	frontier := []core.Pos{unit.Pos}
	expanded := 0

	for len(frontier) > 0 && expanded < farmSearchBudget {
		var next []core.Pos
		var matches []core.Pos
		for _, cur := range frontier {
			expanded++
			for _, nb := range cur.Neighbors4() {
				if !nb.In(ctx.Width, ctx.Height) || blocked[nb] {
					continue
				}
				if avoidPrev && s.hasPrev && cur == unit.Pos && nb == s.prevPos {
					continue
				}
				if _, seen := prev[nb]; seen {
					continue
				}
				prev[nb] = cur
				if pred(nb) {
					matches = append(matches, nb)
				} else {
					next = append(next, nb)
				}
			}
		}
		if len(matches) > 0 {
			best := matches[0]
			bestHash := cellHash(unit.ID, best)
			for _, m := range matches[1:] {
				if h := cellHash(unit.ID, m); h < bestHash {
					best, bestHash = m, h
				}
			}
			return reconstructFrom(prev, unit.Pos, best)
		}
		frontier = next
	}
	return nil
}

func reconstructFrom(prev map[core.Pos]core.Pos, start, end core.Pos) []core.Pos {
	var rev []core.Pos
	for cur := end; cur != start; cur = prev[cur] {
		rev = append(rev, cur)
	}
	out := make([]core.Pos, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		out = append(out, rev[i])
	}
	return out
}

func copySet(src map[core.Pos]bool) map[core.Pos]bool {
	out := make(map[core.Pos]bool, len(src)+1)
	for p := range src {
		out[p] = true
	}
	return out
}

func anyAllyIn(blast map[core.Pos]bool, allies []core.Unit) bool {
	for _, a := range allies {
		if blast[a.Pos] {
			return true
		}
	}
	return false
}
