// Package runner drives the tick loop: fetch the arena, decide, submit
// the move, occasionally poll the upgrade shop. One goroutine, stopped
// through context cancellation.
package runner

import (
	"context"
	"log"
	"sync"
	"time"

	"bomberbot/internal/booster"
	"bomberbot/internal/client"
	"bomberbot/internal/state"
	"bomberbot/pkg/core"
	"bomberbot/pkg/engine"
)

// Control is the operator's live handle on the loop: pause/resume and
// the tick period. Read every iteration, mutated from the control
// surface.
type Control struct {
	mu      sync.Mutex
	paused  bool
	tickSec float64
}

func NewControl(tickSec float64) *Control {
	if tickSec < 0.2 {
		tickSec = 0.2
	}
	return &Control{tickSec: tickSec}
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

func (c *Control) SetPaused(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = p
}

func (c *Control) TickSec() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickSec
}

// SetTickSec updates the loop period, floored at 0.2s.
func (c *Control) SetTickSec(s float64) {
	if s < 0.2 {
		s = 0.2
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickSec = s
}

// Config holds the runner's knobs that do not change at runtime.
type Config struct {
	Booster booster.Config
	// BoosterEvery is the shop poll period in ticks; 0 disables.
	BoosterEvery int
	Quiet        bool
}

// Runner owns one bot process's game loop.
type Runner struct {
	api     *client.Client
	eng     *engine.Engine
	cache   *state.Cache
	control *Control
	cfg     Config

	pass core.Passability
	tick uint64
}

func New(api *client.Client, eng *engine.Engine, cache *state.Cache, control *Control, cfg Config) *Runner {
	return &Runner{
		api:     api,
		eng:     eng,
		cache:   cache,
		control: control,
		cfg:     cfg,
		pass:    core.DefaultPassability(),
	}
}

// Run loops until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	for {
		period := time.Duration(r.control.TickSec() * float64(time.Second))
		start := time.Now()

		if !r.control.Paused() {
			r.step(ctx)
		}

		elapsed := time.Since(start)
		wait := period - elapsed
		if wait < 0 {
			wait = 0
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// step runs one full tick. Errors are logged and cached, never fatal;
// the next tick retries from a fresh snapshot.
func (r *Runner) step(ctx context.Context) {
	r.tick++

	st, err := r.api.GetArena(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("[arena] fetch failed: %v", err)
		r.cache.SetError(err.Error())
		return
	}
	r.cache.SetState(st)

	if r.cfg.BoosterEvery > 0 && r.cfg.Booster.Mode != booster.ModeOff &&
		(r.tick-1)%uint64(r.cfg.BoosterEvery) == 0 {
		r.pollBooster(ctx)
	}

	t0 := time.Now()
	res := r.eng.Decide(st, r.pass)
	decideMS := time.Since(t0).Milliseconds()
	r.cache.SetDecision(res.Commands, res.Notes, res.DangerCells, decideMS)

	if len(res.Commands) == 0 {
		r.cache.SetError("")
		return
	}
	if !r.cfg.Quiet {
		for _, cmd := range res.Commands {
			log.Printf("[move] %s -> %v bombs=%v (%s)", cmd.ID, cmd.Path, cmd.Bombs, res.Notes[cmd.ID])
		}
	}

	resp, err := r.api.SendMove(ctx, res.Commands)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("[move] submit failed: %v", err)
		r.cache.SetError(err.Error())
		return
	}
	r.cache.SetMoveResp(resp)
	r.cache.SetError("")
}

// pollBooster fetches the shop, derives passability from its state,
// and buys at most one upgrade per poll.
func (r *Runner) pollBooster(ctx context.Context) {
	var p booster.Payload
	if err := r.api.Get(ctx, "booster", &p); err != nil {
		log.Printf("[booster] fetch failed: %v", err)
		return
	}
	r.pass = p.State.Passability()

	offer := booster.Choose(&p, r.cfg.Booster)
	if offer == nil {
		return
	}
	body := map[string]string{"type": offer.Type}
	if err := r.api.Post(ctx, "booster", body, nil); err != nil {
		log.Printf("[booster] buy %s failed: %v", offer.Type, err)
		return
	}
	log.Printf("[booster] bought %s for %d", offer.Type, offer.Cost)
}
