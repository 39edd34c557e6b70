package nav

import (
	"testing"

	"bomberbot/pkg/core"
)

func p(x, y int) core.Pos { return core.Pos{X: x, Y: y} }

func TestShortestPathAroundWall(t *testing.T) {
	// Vertical wall at x=2, gap at (2,0).
	blocked := map[core.Pos]bool{
		p(2, 1): true, p(2, 2): true, p(2, 3): true, p(2, 4): true,
	}
	path := ShortestPath(p(0, 2), p(4, 2), 5, 5, blocked, -1)
	if path == nil {
		t.Fatal("no path found")
	}
	if path[len(path)-1] != p(4, 2) {
		t.Fatalf("path ends at %s, want (4,2)", path[len(path)-1])
	}
	cur := p(0, 2)
	for _, step := range path {
		if core.Manhattan(cur, step) != 1 {
			t.Fatalf("non-adjacent step %s -> %s", cur, step)
		}
		if blocked[step] {
			t.Fatalf("path crosses blocked cell %s", step)
		}
		cur = step
	}
	// Forced detour through the gap: 4 straight + 4 around.
	if len(path) != 8 {
		t.Fatalf("path length %d, want 8", len(path))
	}
}

func TestShortestPathBlockedGoal(t *testing.T) {
	blocked := map[core.Pos]bool{p(3, 3): true}
	if path := ShortestPath(p(0, 0), p(3, 3), 5, 5, blocked, -1); path != nil {
		t.Fatalf("blocked goal returned path %v", path)
	}
	if path := ShortestPath(p(0, 0), p(9, 9), 5, 5, nil, -1); path != nil {
		t.Fatalf("out-of-bounds goal returned path %v", path)
	}
}

func TestShortestPathAlreadyThere(t *testing.T) {
	path := ShortestPath(p(2, 2), p(2, 2), 5, 5, nil, -1)
	if path == nil || len(path) != 0 {
		t.Fatalf("start==goal must be empty non-nil, got %v", path)
	}
}

func TestShortestPathTruncation(t *testing.T) {
	path := ShortestPath(p(0, 0), p(4, 0), 5, 5, nil, 2)
	if len(path) != 2 {
		t.Fatalf("truncated path length %d, want 2", len(path))
	}
}

func TestFindNearest(t *testing.T) {
	pred := func(c core.Pos) bool { return c.X >= 3 }
	path := FindNearest(p(0, 0), 5, 5, nil, pred, 1000)
	if path == nil {
		t.Fatal("no match found")
	}
	if got := path[len(path)-1]; !pred(got) {
		t.Fatalf("endpoint %s does not satisfy pred", got)
	}
	if len(path) != 3 {
		t.Fatalf("path length %d, want 3", len(path))
	}
}

func TestFindNearestStartSatisfies(t *testing.T) {
	path := FindNearest(p(4, 4), 5, 5, nil, func(core.Pos) bool { return true }, 100)
	if path == nil || len(path) != 0 {
		t.Fatalf("start-satisfies must be empty non-nil, got %v", path)
	}
}

func TestFindNearestBudgetExhausted(t *testing.T) {
	never := func(core.Pos) bool { return false }
	if path := FindNearest(p(0, 0), 50, 50, nil, never, 10); path != nil {
		t.Fatalf("exhausted budget returned %v", path)
	}
}
