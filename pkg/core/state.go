package core

import (
	"encoding/json"
	"fmt"
)

// Unit is one controllable bomber, exactly as reported by the arbiter.
// Units are reconstructed from every snapshot; only the ID survives
// across ticks (it keys the strategy binding).
type Unit struct {
	ID             string `json:"id"`
	Pos            Pos    `json:"pos"`
	Alive          bool   `json:"alive"`
	CanMove        bool   `json:"can_move"`
	BombsAvailable int    `json:"bombs_available"`
	Armor          int    `json:"armor"`
	Tier           string `json:"tier,omitempty"`
	SafeTime       int    `json:"safe_time,omitempty"`
}

// Mob is a hostile NPC. It is dangerous ("armed") only once its
// telegraph countdown has elapsed, i.e. SafeTime <= 0.
type Mob struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Pos      Pos    `json:"pos"`
	SafeTime int    `json:"safe_time"`
}

// Armed reports whether the mob is currently lethal to touch.
func (m Mob) Armed() bool {
	return m.SafeTime <= 0
}

// Enemy is an opposing player's unit. Only the position matters to the
// planner; enemies are treated as static hazards for the current tick.
type Enemy struct {
	Pos Pos `json:"pos"`
}

// Bomb is an armed bomb on the field. Timer is seconds until
// detonation; Range is how many cells the blast travels per direction.
//
// The arbiter has encoded bombs both as objects and as bare [x, y]
// pairs, so unmarshalling accepts either, falling back to default
// range/timer for the bare form.
type Bomb struct {
	Pos   Pos     `json:"pos"`
	Range int     `json:"range"`
	Timer float64 `json:"timer"`
}

// Defaults assumed when the snapshot omits bomb parameters.
const (
	DefaultBombRange = 3
	DefaultBombTimer = 3.0
)

func (b *Bomb) UnmarshalJSON(data []byte) error {
	type wireBomb struct {
		Pos   Pos     `json:"pos"`
		Range int     `json:"range"`
		Timer float64 `json:"timer"`
	}
	var w wireBomb
	if err := json.Unmarshal(data, &w); err == nil {
		b.Pos, b.Range, b.Timer = w.Pos, w.Range, w.Timer
		if b.Range <= 0 {
			b.Range = DefaultBombRange
		}
		if b.Timer <= 0 {
			b.Timer = DefaultBombTimer
		}
		return nil
	}
	var p Pos
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("bomb: %w", err)
	}
	b.Pos, b.Range, b.Timer = p, DefaultBombRange, DefaultBombTimer
	return nil
}

// Arena holds the static obstructions of the current snapshot. Walls
// are indestructible; obstacles stop blasts but are destroyed by them.
type Arena struct {
	Walls     []Pos  `json:"walls"`
	Obstacles []Pos  `json:"obstacles"`
	Bombs     []Bomb `json:"bombs"`
}

// GameState is one full arena snapshot. Everything here is rebuilt
// from scratch each tick and must be treated as immutable by planners.
type GameState struct {
	Player   string  `json:"player"`
	Round    string  `json:"round"`
	MapSize  Pos     `json:"map_size"`
	Units    []Unit  `json:"bombers"`
	Arena    Arena   `json:"arena"`
	Enemies  []Enemy `json:"enemies"`
	Mobs     []Mob   `json:"mobs"`
	RawScore int     `json:"raw_score"`
	Code     int     `json:"code"`
	Errors   []any   `json:"errors"`
}

// ParseState decodes an arena snapshot. A decode failure means the
// whole tick is unusable; callers keep the previous snapshot.
func ParseState(data []byte) (*GameState, error) {
	var st GameState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parse arena snapshot: %w", err)
	}
	if st.MapSize.X <= 0 || st.MapSize.Y <= 0 {
		return nil, fmt.Errorf("parse arena snapshot: bad map_size %v", st.MapSize)
	}
	return &st, nil
}

// Width and Height of the arena grid.
func (s *GameState) Width() int  { return s.MapSize.X }
func (s *GameState) Height() int { return s.MapSize.Y }

// AliveUnits returns the player's living units.
func (s *GameState) AliveUnits() []Unit {
	out := make([]Unit, 0, len(s.Units))
	for _, u := range s.Units {
		if u.Alive {
			out = append(out, u)
		}
	}
	return out
}
