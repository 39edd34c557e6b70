// Package nav provides grid pathfinding: plain BFS for routing on a
// safe board, and a time-aware variant that treats "this cell becomes
// lethal at time T" as a moving wall.
package nav

import "bomberbot/pkg/core"

// ShortestPath runs a plain BFS from start to goal, ignoring time.
// It returns the steps to walk, excluding start, truncated to maxLen,
// or nil when goal is blocked, out of bounds or unreachable. An empty
// non-nil slice means start == goal.
func ShortestPath(start, goal core.Pos, w, h int, blocked map[core.Pos]bool, maxLen int) []core.Pos {
	if !goal.In(w, h) || blocked[goal] {
		return nil
	}
	if start == goal {
		return []core.Pos{}
	}

	queue := []core.Pos{start}
	prev := map[core.Pos]core.Pos{start: start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, nb := range cur.Neighbors4() {
			if !nb.In(w, h) || blocked[nb] {
				continue
			}
			if _, seen := prev[nb]; seen {
				continue
			}
			prev[nb] = cur
			if nb == goal {
				return truncate(reconstruct(prev, start, nb), maxLen)
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

// FindNearest runs a BFS from start to the nearest cell satisfying
// pred, expanding at most maxExpand nodes. It returns the steps
// excluding start, nil when nothing qualifies, and an empty non-nil
// slice when start itself satisfies pred.
func FindNearest(start core.Pos, w, h int, blocked map[core.Pos]bool, pred func(core.Pos) bool, maxExpand int) []core.Pos {
	if pred(start) {
		return []core.Pos{}
	}

	queue := []core.Pos{start}
	prev := map[core.Pos]core.Pos{start: start}
	expanded := 0

	for len(queue) > 0 && expanded < maxExpand {
		cur := queue[0]
		queue = queue[1:]
		expanded++
		for _, nb := range cur.Neighbors4() {
			if !nb.In(w, h) || blocked[nb] {
				continue
			}
			if _, seen := prev[nb]; seen {
				continue
			}
			prev[nb] = cur
			if pred(nb) {
				return reconstruct(prev, start, nb)
			}
			queue = append(queue, nb)
		}
	}
	return nil
}

func reconstruct(prev map[core.Pos]core.Pos, start, end core.Pos) []core.Pos {
	var rev []core.Pos
	for cur := end; cur != start; cur = prev[cur] {
		rev = append(rev, cur)
	}
	path := make([]core.Pos, 0, len(rev))
	for i := len(rev) - 1; i >= 0; i-- {
		path = append(path, rev[i])
	}
	return path
}

func truncate(path []core.Pos, maxLen int) []core.Pos {
	if maxLen >= 0 && len(path) > maxLen {
		return path[:maxLen]
	}
	return path
}
