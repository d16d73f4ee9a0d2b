// Command pantheon runs the deity world simulation: ten columnar systems
// ticked in lockstep, persisted to SQLite, observable over HTTP and a live
// websocket feed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/talgya/pantheon/internal/api"
	"github.com/talgya/pantheon/internal/config"
	"github.com/talgya/pantheon/internal/engine"
	"github.com/talgya/pantheon/internal/persistence"
	"github.com/talgya/pantheon/internal/worldgen"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	// Human-readable logs on a terminal, JSON when piped to a collector.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("pantheon — columnar deity simulation",
		"seed", cfg.Seed,
		"factions", cfg.Factions,
		"units", cfg.Units,
		"cells", cfg.Cells,
	)

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		os.MkdirAll(dir, 0755)
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or Generate World State ─────────────────────────────────
	world := engine.NewWorld(cfg)
	restored, err := db.LoadWorldState(world)
	if err != nil {
		slog.Error("failed to restore world state", "error", err)
		os.Exit(1)
	}
	if restored {
		slog.Info("world state restored",
			"tick", world.CurrentTick(),
			"sim_time", engine.SimTime(world.CurrentTick()),
		)
	} else {
		slog.Info("no saved state found, generating new world", "seed", cfg.Seed)
		worldgen.Seed(world)
		if err := db.SaveWorldState(world); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := engine.NewEngine(millis(cfg.TickMillis))
	eng.Tick = world.CurrentTick()
	eng.Bind(world)

	hub := api.NewHub()
	go hub.Run()

	// Layer the live feed and the daily autosave over the world callbacks.
	eng.OnHour = func(tick uint64) {
		world.TickHour(tick)
		hub.Broadcast(api.TickFrame{
			Tick:    tick,
			SimTime: engine.SimTime(tick),
			Stats:   world.Stats,
		})
	}
	eng.OnDay = func(tick uint64) {
		world.TickDay(tick)
		if err := db.SaveWorldState(world); err != nil {
			slog.Error("daily save failed", "error", err)
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	adminKey := os.Getenv("PANTHEON_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("PANTHEON_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		World:    world,
		Eng:      eng,
		DB:       db,
		Hub:      hub,
		Port:     cfg.APIPort,
		AdminKey: adminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("\nPantheon is alive: %d factions, %d units, %d cells.\n",
		cfg.Factions, cfg.Units, cfg.Cells)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.APIPort)
	if restored {
		fmt.Printf("Resuming from tick %d (%s)\n", world.CurrentTick(), engine.SimTime(world.CurrentTick()))
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	eng.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	if err := db.SaveWorldState(world); err != nil {
		slog.Error("final save failed", "error", err)
	}
	slog.Info("goodbye", "tick", world.CurrentTick())
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
