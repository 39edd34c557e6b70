package strategy

import (
	"testing"

	"bomberbot/pkg/core"
	"bomberbot/pkg/danger"
)

func TestFarmPlansBombWithRetreat(t *testing.T) {
	st := &core.GameState{
		MapSize: p(7, 7),
		Units:   []core.Unit{unit("a", p(1, 1), 1)},
		Arena:   core.Arena{Obstacles: []core.Pos{p(4, 1)}},
	}
	ctx := buildCtx(st)
	s := NewFarmObstacles()

	plan := s.DecideForUnit(st.Units[0], ctx)
	if plan == nil {
		t.Fatal("farm produced no plan")
	}
	if len(plan.Bombs) != 1 {
		t.Fatalf("farm planned %d bombs, want 1", len(plan.Bombs))
	}
	place := plan.Bombs[0]

	if !containsPos(plan.Path, place) {
		t.Fatalf("bomb cell %s not on path %v", place, plan.Path)
	}
	adjacent := false
	for _, nb := range place.Neighbors4() {
		if ctx.Obstacles[nb] {
			adjacent = true
		}
	}
	if !adjacent {
		t.Fatalf("bomb cell %s not adjacent to any obstacle", place)
	}

	// The path must be a legal walk from the unit's cell.
	cur := st.Units[0].Pos
	for _, step := range plan.Path {
		if core.Manhattan(cur, step) != 1 {
			t.Fatalf("non-adjacent step %s -> %s", cur, step)
		}
		if ctx.Obstacles[step] || ctx.Walls[step] {
			t.Fatalf("path crosses obstruction %s", step)
		}
		cur = step
	}

	// The final cell must be outside the planned bomb's own blast and
	// at least two steps away from it.
	stoppers := map[core.Pos]bool{place: true}
	blast := danger.Blast(place, ctx.Passability.BombRange, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, stoppers)
	end := plan.Path[len(plan.Path)-1]
	if blast[end] {
		t.Fatalf("retreat ends inside own blast at %s", end)
	}
	if core.Manhattan(end, place) < 2 {
		t.Fatalf("retreat ends %s, too close to bomb at %s", end, place)
	}
}

func TestFarmWithoutEscapeProposesNothing(t *testing.T) {
	// A 3x1 corridor: the only placement cell's blast covers the whole
	// corridor, so no retreat exists and the bomb must be withheld.
	st := &core.GameState{
		MapSize: p(3, 1),
		Units:   []core.Unit{unit("a", p(0, 0), 1)},
		Arena:   core.Arena{Obstacles: []core.Pos{p(2, 0)}},
	}
	s := NewFarmObstacles()
	if plan := s.DecideForUnit(st.Units[0], buildCtx(st)); plan != nil {
		t.Fatalf("escape-less bomb proposed: %v", plan)
	}
}

func TestFarmZeroPassabilityFloorsBombRange(t *testing.T) {
	st := &core.GameState{
		MapSize: p(7, 7),
		Units:   []core.Unit{unit("a", p(1, 1), 1)},
		Arena:   core.Arena{Obstacles: []core.Pos{p(4, 1)}},
	}
	ctx := buildCtx(st)
	ctx.Passability = core.Passability{} // no modifiers, zero bomb params
	s := NewFarmObstacles()

	plan := s.DecideForUnit(st.Units[0], ctx)
	if plan == nil || len(plan.Bombs) != 1 {
		t.Fatalf("zero passability broke farming: %v", plan)
	}
	place := plan.Bombs[0]
	end := plan.Path[len(plan.Path)-1]
	blast := danger.Blast(place, 1, ctx.Width, ctx.Height, ctx.Walls, ctx.Obstacles, map[core.Pos]bool{place: true})
	if blast[end] {
		t.Fatalf("retreat ends inside the floored range-1 blast at %s", end)
	}
	if len(blast) < 2 {
		t.Fatalf("hypothetical blast collapsed to %d cells", len(blast))
	}
}

func TestFarmNeedsBombAndObstacles(t *testing.T) {
	st := &core.GameState{
		MapSize: p(5, 5),
		Units:   []core.Unit{unit("a", p(1, 1), 0)},
		Arena:   core.Arena{Obstacles: []core.Pos{p(3, 3)}},
	}
	s := NewFarmObstacles()
	if plan := s.DecideForUnit(st.Units[0], buildCtx(st)); plan != nil {
		t.Fatal("plan proposed without bombs in inventory")
	}
	st.Units[0].BombsAvailable = 1
	st.Arena.Obstacles = nil
	if plan := s.DecideForUnit(st.Units[0], buildCtx(st)); plan != nil {
		t.Fatal("plan proposed without obstacles on the board")
	}
}
