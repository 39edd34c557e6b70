// Command bot runs the decision loop against the arbiter and serves
// the local control surface.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bomberbot/internal/assign"
	"bomberbot/internal/booster"
	"bomberbot/internal/client"
	"bomberbot/internal/config"
	"bomberbot/internal/control"
	"bomberbot/internal/runner"
	"bomberbot/internal/state"
	"bomberbot/pkg/engine"
	"bomberbot/pkg/strategy"
)

func main() {
	var (
		configPath = flag.String("config", "bot.yaml", "path to YAML config")
		baseURL    = flag.String("url", "", "arbiter API root (overrides config)")
		token      = flag.String("token", "", "auth token (overrides config)")
		tickSec    = flag.Float64("tick", 0, "tick period in seconds (overrides config)")
		ctlAddr    = flag.String("addr", "", "control listen address (overrides config)")
		defStrat   = flag.String("strategy", "", "default strategy (overrides config)")
		mintToken  = flag.Bool("operator-token", false, "print an operator token for the control API and exit")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *token != "" {
		cfg.Token = *token
	}
	if env := os.Getenv("BOT_TOKEN"); cfg.Token == "" && env != "" {
		cfg.Token = env
	}
	if *tickSec > 0 {
		cfg.TickSec = *tickSec
	}
	if *ctlAddr != "" {
		cfg.ControlAddr = *ctlAddr
	}
	if *defStrat != "" {
		cfg.DefaultStrategy = *defStrat
	}

	if *mintToken {
		if cfg.ControlSecret == "" {
			log.Fatal("operator-token: control_secret is not configured")
		}
		tok, err := control.NewOperatorToken(cfg.ControlSecret, "cli")
		if err != nil {
			log.Fatalf("operator-token: %v", err)
		}
		fmt.Println(tok)
		return
	}

	if cfg.Token == "" {
		log.Fatal("no auth token: set token in config, -token, or BOT_TOKEN")
	}

	registry := strategy.NewRegistry()
	if !registry.Has(cfg.DefaultStrategy) {
		log.Fatalf("unknown default strategy %q (have %v)", cfg.DefaultStrategy, registry.IDs())
	}

	store, err := assign.New(cfg.AssignmentsPath, cfg.DefaultStrategy)
	if err != nil {
		log.Fatalf("assignments: %v", err)
	}

	api := client.New(cfg.BaseURL, cfg.Token, cfg.MaxRPS)
	eng := engine.New(registry, store, engine.Config{
		MaxPath:        cfg.MaxPath,
		TimerThreshold: cfg.TimerThreshold,
	})
	cache := state.NewCache()
	loopCtl := runner.NewControl(cfg.TickSec)

	run := runner.New(api, eng, cache, loopCtl, runner.Config{
		Booster: booster.Config{
			Mode:    booster.Mode(cfg.BoosterMode),
			Reserve: cfg.BoosterReserve,
		},
		BoosterEvery: cfg.BoosterEvery,
		Quiet:        cfg.Quiet,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ControlAddr != "" {
		srv := control.NewServer(cache, loopCtl, store, registry, cfg.ControlSecret)
		go func() {
			if err := srv.ListenAndServe(cfg.ControlAddr); err != nil && err != http.ErrServerClosed {
				log.Printf("[control] server stopped: %v", err)
			}
		}()
	}

	log.Printf("[bot] arbiter=%s default=%s tick=%.1fs", cfg.BaseURL, cfg.DefaultStrategy, cfg.TickSec)
	run.Run(ctx)
	log.Print("[bot] shutting down")
}
