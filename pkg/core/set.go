package core

// SetOf builds a lookup set from a slice of positions.
func SetOf(ps []Pos) map[Pos]bool {
	set := make(map[Pos]bool, len(ps))
	for _, p := range ps {
		set[p] = true
	}
	return set
}

// BombCells extracts the occupied cells of a bomb list.
func BombCells(bombs []Bomb) map[Pos]bool {
	set := make(map[Pos]bool, len(bombs))
	for _, b := range bombs {
		set[b.Pos] = true
	}
	return set
}
