// Package booster handles the upgrade shop: parsing the arbiter's
// booster endpoint, deriving the squad's current movement modifiers,
// and picking which upgrade to buy next.
package booster

import "bomberbot/pkg/core"

// State is the squad-wide upgrade state as the arbiter reports it.
// BombDelay is milliseconds of fuse.
type State struct {
	Points          int  `json:"points"`
	Bombs           int  `json:"bombs"`
	BombDelay       int  `json:"bomb_delay"`
	BombRange       int  `json:"bomb_range"`
	Speed           int  `json:"speed"`
	View            int  `json:"view"`
	Armor           int  `json:"armor"`
	CanPassBombs    bool `json:"can_pass_bombs"`
	CanPassObstacle bool `json:"can_pass_obstacles"`
	CanPassWalls    bool `json:"can_pass_walls"`
}

// Offer is one purchasable upgrade.
type Offer struct {
	Type string `json:"type"`
	Cost int    `json:"cost"`
}

// Payload is the booster endpoint's response body.
type Payload struct {
	State     State   `json:"state"`
	Available []Offer `json:"available"`
}

// Passability converts the shop state into the planner's movement and
// bomb parameters. A zero state yields the defaults.
func (s State) Passability() core.Passability {
	p := core.DefaultPassability()
	p.CanPassWalls = s.CanPassWalls
	p.CanPassObstacles = s.CanPassObstacle
	p.CanPassBombs = s.CanPassBombs
	if s.BombRange > 0 {
		p.BombRange = s.BombRange
	}
	if s.BombDelay > 0 {
		p.BombTimer = float64(s.BombDelay) / 1000.0
	}
	return p
}

// Mode selects the purchase policy.
type Mode string

const (
	// ModeOff buys nothing.
	ModeOff Mode = "off"
	// ModeSafe buys survivability first (armor, speed), then utility.
	ModeSafe Mode = "safe"
	// ModeGreedy buys damage output first (range, bombs, delay).
	ModeGreedy Mode = "greedy"
)

// Config tunes the picker.
type Config struct {
	Mode Mode
	// Reserve is how many points to keep unspent.
	Reserve int
}

// minBombDelayMS is the floor below which shortening the fuse starts
// killing our own escape plans.
const minBombDelayMS = 3000

// prefSafe and prefGreedy order upgrade types by desirability per mode.
var (
	prefSafe   = []string{"armor", "speed", "bomb_range", "bombs", "view", "bomb_delay"}
	prefGreedy = []string{"bomb_range", "bombs", "bomb_delay", "speed", "armor", "view"}
)

// Choose picks at most one offer to buy this round, or nil. The picker
// is greedy: first affordable offer in preference order, honoring the
// point reserve and the fuse floor.
func Choose(p *Payload, cfg Config) *Offer {
	if p == nil || cfg.Mode == ModeOff || cfg.Mode == "" {
		return nil
	}
	pref := prefSafe
	if cfg.Mode == ModeGreedy {
		pref = prefGreedy
	}

	budget := p.State.Points - cfg.Reserve
	byType := make(map[string]Offer, len(p.Available))
	for _, o := range p.Available {
		// Keep the cheapest offer per type.
		if cur, ok := byType[o.Type]; !ok || o.Cost < cur.Cost {
			byType[o.Type] = o
		}
	}

	for _, t := range pref {
		o, ok := byType[t]
		if !ok || o.Cost > budget {
			continue
		}
		if t == "bomb_delay" && p.State.BombDelay > 0 && p.State.BombDelay <= minBombDelayMS {
			continue
		}
		chosen := o
		return &chosen
	}
	return nil
}
