package core

// MoveCommand is the finalized instruction for one unit for one tick:
// an ordered path of adjacent cells plus the subset of those cells
// where a bomb is dropped.
type MoveCommand struct {
	ID    string `json:"id"`
	Path  []Pos  `json:"path"`
	Bombs []Pos  `json:"bombs"`
}

// MovePayload is the body of POST /move.
type MovePayload struct {
	Bombers []MoveCommand `json:"bombers"`
}

// Passability describes the movement and loadout modifiers currently
// active for the player, derived from purchased boosters. The danger
// model and plan validation consult it; a zero value means no
// modifiers and default bomb parameters.
type Passability struct {
	CanPassWalls     bool
	CanPassObstacles bool
	CanPassBombs     bool

	// Parameters of bombs the player places, used when reasoning
	// about hypothetical bombs.
	BombRange int
	BombTimer float64
}

// DefaultPassability is the loadout before any booster purchases.
func DefaultPassability() Passability {
	return Passability{
		BombRange: DefaultBombRange,
		BombTimer: DefaultBombTimer,
	}
}
