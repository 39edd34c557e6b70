// Package engine orchestrates one decision pass per tick: it builds
// the danger model, consults each unit's bound strategy, validates and
// clips the proposals against the hard game rules, and arbitrates
// between units acting in the same tick.
package engine

import (
	"fmt"
	"log"
	"sort"

	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
	"bomberbot/pkg/strategy"
)

// AssignmentSource resolves which strategy id drives a unit. The
// persistent store lives outside the engine; this is its read surface.
type AssignmentSource interface {
	StrategyFor(unitID string) string
	Default() string
}

// Config tunes the decision pass.
type Config struct {
	// MaxPath is the arbiter's path length cap per command.
	MaxPath int

	// TimerThreshold is the fuse cutoff for the danger map.
	TimerThreshold float64
}

// DefaultConfig mirrors the arbiter's limits.
func DefaultConfig() Config {
	return Config{
		MaxPath:        30,
		TimerThreshold: danger.DefaultTimerThreshold,
	}
}

// Result is the outcome of one decision pass.
type Result struct {
	Commands []core.MoveCommand
	// DangerCells is the threatened-cell list of this tick's danger
	// map, exposed for the status surface.
	DangerCells []core.Pos
	// Notes maps unit id to the note of the plan that produced its
	// command.
	Notes map[string]string
}

type instanceKey struct {
	unitID     string
	strategyID string
}

// Engine owns the strategy instance cache. Instances are created
// lazily per (unit, strategy) binding and never shared, so strategy
// memory (egress queues, last positions) stays correctly scoped. The
// decision pass is single threaded and deterministic by construction:
// units are processed in stable id order and conflict arbitration
// consumes the claim sets strictly sequentially.
type Engine struct {
	registry  *strategy.Registry
	assign    AssignmentSource
	cfg       Config
	instances map[instanceKey]strategy.Strategy
}

func New(registry *strategy.Registry, assign AssignmentSource, cfg Config) *Engine {
	if cfg.MaxPath <= 0 {
		cfg.MaxPath = 30
	}
	if cfg.TimerThreshold <= 0 {
		cfg.TimerThreshold = danger.DefaultTimerThreshold
	}
	return &Engine{
		registry:  registry,
		assign:    assign,
		cfg:       cfg,
		instances: make(map[instanceKey]strategy.Strategy),
	}
}

// Decide runs one full decision pass over the snapshot. Emitted
// commands follow the single-step discipline: each path is clipped to
// the unit's next step, and the same-tick reservation sets guarantee
// no two units claim one cell and no unit steps into a blast reserved
// by a bomb another unit just planned.
func (e *Engine) Decide(state *core.GameState, pass core.Passability) Result {
	w, h := state.Width(), state.Height()
	walls := core.SetOf(state.Arena.Walls)
	obstacles := core.SetOf(state.Arena.Obstacles)
	bombCells := core.BombCells(state.Arena.Bombs)
	dm := danger.BuildMap(state.Arena.Bombs, e.cfg.TimerThreshold, w, h, walls, obstacles)

	mobCells := make(map[core.Pos]bool)
	for _, m := range state.Mobs {
		if m.Armed() {
			mobCells[m.Pos] = true
		}
	}

	ctx := &strategy.Context{
		State:       state,
		Width:       w,
		Height:      h,
		Walls:       walls,
		Obstacles:   obstacles,
		Bombs:       state.Arena.Bombs,
		BombCells:   bombCells,
		Danger:      dm,
		MobCells:    mobCells,
		Passability: pass,
		MaxPath:     e.cfg.MaxPath,
	}

	// Stable unit order, never snapshot iteration order.
	units := make([]core.Unit, 0, len(state.Units))
	for _, u := range state.Units {
		if u.Alive && u.CanMove {
			units = append(units, u)
		}
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })

	// occupied holds current cells of units that have not received a
	// movement command yet this tick; claimed holds next-step cells
	// already handed out; reservedBlast holds footprints of bombs
	// planned earlier in this same pass.
	occupied := make(map[core.Pos]string, len(state.Units))
	for _, u := range state.Units {
		if u.Alive {
			occupied[u.Pos] = u.ID
		}
	}
	claimed := make(map[core.Pos]bool)
	reservedBlast := make(map[core.Pos]bool)

	res := Result{
		DangerCells: dm.Cells(),
		Notes:       make(map[string]string),
	}

	for _, unit := range units {
		plan := e.decideOne(unit, ctx)
		if plan == nil {
			continue
		}

		plan = validateAndClip(unit, plan, ctx)
		if plan == nil {
			continue
		}

		step := plan.Path[0]
		if claimed[step] || reservedBlast[step] {
			continue
		}
		if owner, ok := occupied[step]; ok && owner != unit.ID {
			continue
		}

		cmd := core.MoveCommand{ID: unit.ID, Path: []core.Pos{step}}
		for _, b := range plan.Bombs {
			if b == step {
				cmd.Bombs = append(cmd.Bombs, b)
				break
			}
		}

		if len(cmd.Bombs) > 0 {
			rng := pass.BombRange
			if rng < 1 {
				rng = core.DefaultBombRange
			}
			stoppers := make(map[core.Pos]bool, len(bombCells)+1)
			for p := range bombCells {
				stoppers[p] = true
			}
			stoppers[step] = true
			for p := range danger.Blast(step, rng, w, h, walls, obstacles, stoppers) {
				reservedBlast[p] = true
			}
		}

		claimed[step] = true
		delete(occupied, unit.Pos)
		res.Commands = append(res.Commands, cmd)
		res.Notes[unit.ID] = plan.Note
	}

	return res
}

// decideOne resolves the unit's strategy binding, fetches or creates
// the instance, and calls it. A panicking strategy costs the unit its
// command for this tick, never the process.
func (e *Engine) decideOne(unit core.Unit, ctx *strategy.Context) (plan *strategy.UnitPlan) {
	sid := e.assign.StrategyFor(unit.ID)
	if !e.registry.Has(sid) {
		sid = e.assign.Default()
	}
	key := instanceKey{unitID: unit.ID, strategyID: sid}
	inst, ok := e.instances[key]
	if !ok {
		inst, ok = e.registry.Create(sid)
		if !ok {
			log.Printf("[engine] unit %s: unknown strategy %q, skipping", unit.ID, sid)
			return nil
		}
		e.instances[key] = inst
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[engine] unit %s: strategy %q panicked: %v", unit.ID, sid, r)
			plan = nil
		}
	}()
	return inst.DecideForUnit(unit, ctx)
}

// validateAndClip narrows a proposal to its longest legal prefix:
// path capped at MaxPath, bomb drops restricted to path cells and the
// unit's inventory, one bomb per cell, every step 4-adjacent to its
// predecessor and not blocked (honoring passability). Violations are
// expected, not errors; the plan is truncated at the first one. An
// empty result means no command.
func validateAndClip(unit core.Unit, plan *strategy.UnitPlan, ctx *strategy.Context) *strategy.UnitPlan {
	path := plan.Path
	if len(path) > ctx.MaxPath {
		path = path[:ctx.MaxPath]
	}

	blocked := ctx.BlockedFor()
	valid := make([]core.Pos, 0, len(path))
	cur := unit.Pos
	for _, step := range path {
		if core.Manhattan(cur, step) != 1 || !step.In(ctx.Width, ctx.Height) || blocked[step] {
			break
		}
		valid = append(valid, step)
		cur = step
	}
	if len(valid) == 0 {
		return nil
	}

	validSet := core.SetOf(valid)
	seen := make(map[core.Pos]bool, len(plan.Bombs))
	var bombs []core.Pos
	for _, b := range plan.Bombs {
		if len(bombs) >= unit.BombsAvailable {
			break
		}
		if !validSet[b] || seen[b] {
			continue
		}
		seen[b] = true
		bombs = append(bombs, b)
	}

	return &strategy.UnitPlan{Path: valid, Bombs: bombs, Note: plan.Note}
}

// String implements a compact debug form used in logs.
func (c Config) String() string {
	return fmt.Sprintf("engine{max_path=%d threshold=%.2fs}", c.MaxPath, c.TimerThreshold)
}
