package engine_test

import (
	"reflect"
	"testing"

	"bomberbot/pkg/core"
	"bomberbot/pkg/engine"
	"bomberbot/pkg/strategy"
)

func p(x, y int) core.Pos { return core.Pos{X: x, Y: y} }

func unit(id string, pos core.Pos, bombs int) core.Unit {
	return core.Unit{ID: id, Pos: pos, Alive: true, CanMove: true, BombsAvailable: bombs}
}

type stubAssign struct {
	def string
}

func (s stubAssign) StrategyFor(string) string { return s.def }
func (s stubAssign) Default() string           { return s.def }

// scripted returns a fixed plan per unit id, for driving the engine's
// validation and arbitration directly.
type scripted struct {
	plans map[string]*strategy.UnitPlan
}

func (s *scripted) ID() string { return "scripted" }

func (s *scripted) DecideForUnit(u core.Unit, _ *strategy.Context) *strategy.UnitPlan {
	return s.plans[u.ID]
}

func scriptedEngine(plans map[string]*strategy.UnitPlan) *engine.Engine {
	r := strategy.NewRegistry()
	r.Register("scripted", func() strategy.Strategy { return &scripted{plans: plans} })
	return engine.New(r, stubAssign{def: "scripted"}, engine.DefaultConfig())
}

func TestSingleStepEmission(t *testing.T) {
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 1), 1)},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 1), p(3, 1), p(4, 1)}},
	})

	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(res.Commands))
	}
	cmd := res.Commands[0]
	if len(cmd.Path) != 1 || cmd.Path[0] != p(2, 1) {
		t.Fatalf("command path %v, want the single next step (2,1)", cmd.Path)
	}
}

func TestValidationClipsIllegalPlans(t *testing.T) {
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 1), 1), unit("b", p(5, 5), 0)},
		Arena:   core.Arena{Walls: []core.Pos{p(7, 5)}},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		// Teleport after the first step; the bomb sits past the break
		// and must be dropped with it.
		"a": {Path: []core.Pos{p(2, 1), p(6, 6)}, Bombs: []core.Pos{p(6, 6)}},
		// Legal walk but no bombs in inventory.
		"b": {Path: []core.Pos{p(6, 5)}, Bombs: []core.Pos{p(6, 5)}},
	})

	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 2 {
		t.Fatalf("got %d commands, want 2", len(res.Commands))
	}
	for _, cmd := range res.Commands {
		if len(cmd.Bombs) != 0 {
			t.Fatalf("unit %s kept an illegal bomb: %v", cmd.ID, cmd.Bombs)
		}
	}
}

func TestFirstStepIntoWallDropsCommand(t *testing.T) {
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 1), 0)},
		Arena:   core.Arena{Walls: []core.Pos{p(2, 1)}},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 1)}},
	})
	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 0 {
		t.Fatalf("command issued into a wall: %v", res.Commands)
	}
}

func TestSameCellConflictResolvedOnce(t *testing.T) {
	// Both units are one step from the same free cell; exactly one may
	// take it this tick.
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 2), 1), unit("b", p(3, 2), 1)},
		Arena:   core.Arena{Obstacles: []core.Pos{p(2, 3)}},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 2)}},
		"b": {Path: []core.Pos{p(2, 2)}},
	})

	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 1 {
		t.Fatalf("got %d commands, want exactly 1", len(res.Commands))
	}
	if res.Commands[0].ID != "a" {
		t.Fatalf("winner %s, want the lower unit id", res.Commands[0].ID)
	}
}

func TestReservedBlastBlocksLaterUnit(t *testing.T) {
	// Unit a steps onto (2,2) and drops a bomb there; unit b must not
	// be allowed to step into that bomb's row this same tick.
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 2), 1), unit("b", p(4, 3), 0)},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 2)}, Bombs: []core.Pos{p(2, 2)}},
		"b": {Path: []core.Pos{p(4, 2)}},
	})

	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(res.Commands))
	}
	cmd := res.Commands[0]
	if cmd.ID != "a" || len(cmd.Bombs) != 1 || cmd.Bombs[0] != p(2, 2) {
		t.Fatalf("unexpected surviving command %+v", cmd)
	}
}

func TestOccupiedCellNotClaimed(t *testing.T) {
	// b has not moved yet when a is processed; a must not be sent into
	// b's current cell.
	st := &core.GameState{
		MapSize: p(9, 9),
		Units:   []core.Unit{unit("a", p(1, 2), 0), unit("b", p(2, 2), 0)},
	}
	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 2)}},
	})
	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 0 {
		t.Fatalf("unit sent into an occupied cell: %v", res.Commands)
	}
}

func TestDeadAndFrozenUnitsSkipped(t *testing.T) {
	dead := unit("a", p(1, 1), 0)
	dead.Alive = false
	frozen := unit("b", p(3, 3), 0)
	frozen.CanMove = false
	st := &core.GameState{MapSize: p(9, 9), Units: []core.Unit{dead, frozen}}

	eng := scriptedEngine(map[string]*strategy.UnitPlan{
		"a": {Path: []core.Pos{p(2, 1)}},
		"b": {Path: []core.Pos{p(4, 3)}},
	})
	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 0 {
		t.Fatalf("dead or frozen unit commanded: %v", res.Commands)
	}
}

func TestDecideIsDeterministic(t *testing.T) {
	st := &core.GameState{
		MapSize: p(11, 11),
		Units:   []core.Unit{unit("u1", p(1, 1), 1), unit("u2", p(9, 9), 1)},
		Arena: core.Arena{
			Obstacles: []core.Pos{p(4, 1), p(6, 9), p(5, 5)},
			Bombs:     []core.Bomb{{Pos: p(1, 5), Range: 2, Timer: 2.0}},
		},
	}
	mk := func() *engine.Engine {
		return engine.New(strategy.NewRegistry(), stubAssign{def: strategy.SafeBomberID}, engine.DefaultConfig())
	}

	first := mk().Decide(st, core.DefaultPassability())
	second := mk().Decide(st, core.DefaultPassability())
	if !reflect.DeepEqual(first.Commands, second.Commands) {
		t.Fatalf("same snapshot, different commands:\n%v\n%v", first.Commands, second.Commands)
	}
	if !reflect.DeepEqual(first.DangerCells, second.DangerCells) {
		t.Fatal("danger cell order not deterministic")
	}
}

func TestPanickingStrategyIsContained(t *testing.T) {
	r := strategy.NewRegistry()
	r.Register("scripted", func() strategy.Strategy {
		return &panicky{}
	})
	eng := engine.New(r, stubAssign{def: "scripted"}, engine.DefaultConfig())

	st := &core.GameState{MapSize: p(5, 5), Units: []core.Unit{unit("a", p(1, 1), 0)}}
	res := eng.Decide(st, core.DefaultPassability())
	if len(res.Commands) != 0 {
		t.Fatalf("panicking strategy produced commands: %v", res.Commands)
	}
}

type panicky struct{}

func (panicky) ID() string { return "scripted" }

func (panicky) DecideForUnit(core.Unit, *strategy.Context) *strategy.UnitPlan {
	panic("boom")
}
