package booster

import "testing"

func offers(o ...Offer) []Offer { return o }

func TestChooseRespectsModeAndReserve(t *testing.T) {
	p := &Payload{
		State: State{Points: 100, BombDelay: 5000},
		Available: offers(
			Offer{Type: "armor", Cost: 60},
			Offer{Type: "bomb_range", Cost: 50},
		),
	}

	got := Choose(p, Config{Mode: ModeSafe})
	if got == nil || got.Type != "armor" {
		t.Fatalf("safe mode chose %+v, want armor", got)
	}
	got = Choose(p, Config{Mode: ModeGreedy})
	if got == nil || got.Type != "bomb_range" {
		t.Fatalf("greedy mode chose %+v, want bomb_range", got)
	}

	// Reserve shrinks the budget; only the cheaper offer fits.
	got = Choose(p, Config{Mode: ModeSafe, Reserve: 45})
	if got == nil || got.Type != "bomb_range" {
		t.Fatalf("reserved safe mode chose %+v, want bomb_range", got)
	}
	if got = Choose(p, Config{Mode: ModeSafe, Reserve: 100}); got != nil {
		t.Fatalf("fully reserved budget still bought %+v", got)
	}
	if got = Choose(p, Config{Mode: ModeOff}); got != nil {
		t.Fatalf("off mode bought %+v", got)
	}
}

func TestChooseKeepsFuseAboveFloor(t *testing.T) {
	p := &Payload{
		State:     State{Points: 100, BombDelay: 3000},
		Available: offers(Offer{Type: "bomb_delay", Cost: 10}),
	}
	if got := Choose(p, Config{Mode: ModeGreedy}); got != nil {
		t.Fatalf("fuse already at floor, still bought %+v", got)
	}

	p.State.BombDelay = 4000
	if got := Choose(p, Config{Mode: ModeGreedy}); got == nil || got.Type != "bomb_delay" {
		t.Fatalf("fuse above floor not bought: %+v", got)
	}
}

func TestStatePassability(t *testing.T) {
	s := State{BombRange: 5, BombDelay: 4000, CanPassBombs: true}
	p := s.Passability()
	if p.BombRange != 5 {
		t.Fatalf("bomb range %d, want 5", p.BombRange)
	}
	if p.BombTimer != 4.0 {
		t.Fatalf("bomb timer %v, want 4.0", p.BombTimer)
	}
	if !p.CanPassBombs || p.CanPassWalls || p.CanPassObstacles {
		t.Fatalf("passability flags wrong: %+v", p)
	}

	// Zero state keeps defaults.
	d := State{}.Passability()
	if d.BombRange <= 0 || d.BombTimer <= 0 {
		t.Fatalf("zero state lost defaults: %+v", d)
	}
}
