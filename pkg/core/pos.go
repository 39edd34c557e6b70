package core

import (
	"encoding/json"
	"fmt"
)

// Pos is a cell on the arena grid. The arbiter encodes positions as
// two-element [x, y] arrays, so Pos carries custom JSON marshalling.
// It is a value type: comparable, hashable, never mutated in place.
type Pos struct {
	X int
	Y int
}

func (p Pos) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func (p *Pos) UnmarshalJSON(data []byte) error {
	var xy [2]int
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("pos: %w", err)
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// In reports whether p lies inside a w by h grid.
func (p Pos) In(w, h int) bool {
	return p.X >= 0 && p.X < w && p.Y >= 0 && p.Y < h
}

// Neighbors4 returns the four cardinal neighbors of p, bounds unchecked.
func (p Pos) Neighbors4() [4]Pos {
	return [4]Pos{
		{p.X + 1, p.Y},
		{p.X - 1, p.Y},
		{p.X, p.Y + 1},
		{p.X, p.Y - 1},
	}
}

// Directions4 lists the cardinal unit offsets in a fixed order. Blast
// rays and searches iterate it so results are reproducible.
var Directions4 = [4]Pos{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// Add returns p shifted by d.
func (p Pos) Add(d Pos) Pos {
	return Pos{p.X + d.X, p.Y + d.Y}
}

// Manhattan returns the L1 distance between a and b.
func Manhattan(a, b Pos) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
