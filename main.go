package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridfire/agent"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/game"
	"github.com/pthm-cable/gridfire/level"
	"github.com/pthm-cable/gridfire/renderer"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelPath := flag.String("level", "", "Path to a level YAML file (empty = built-in level)")
	generate := flag.Bool("generate", false, "Generate an arena from the config's arena section instead of loading a level")
	headless := flag.Bool("headless", false, "Run without graphics, driven by the autopilot")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int64("max-ticks", 0, "Stop after N ticks (0 = until the encounter ends)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Fixed simulation ticks per frame in windowed mode (1 = real time)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	load := func() (*level.Level, error) {
		switch {
		case *generate:
			return level.Generate(cfg.Arena, rngSeed)
		case *levelPath != "":
			return level.Load(*levelPath)
		}
		return level.Default()
	}
	lvl, err := load()
	if err != nil {
		slog.Error("failed to load level", "error", err)
		os.Exit(1)
	}

	opts := game.Options{
		Config:         cfg,
		Level:          lvl,
		Seed:           rngSeed,
		Logger:         logger,
		LogStats:       *logStats,
		OutputDir:      *outputDir,
		StepsPerUpdate: *stepsPerUpdate,
	}

	if *headless {
		if err := runHeadless(opts, *maxTicks); err != nil {
			slog.Error("headless run failed", "error", err)
			os.Exit(1)
		}
		return
	}
	if err := runWindowed(opts, *maxTicks); err != nil {
		slog.Error("windowed run failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless plays one encounter with the autopilot.
func runHeadless(opts game.Options, maxTicks int64) error {
	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"level", opts.Level.Name,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	res := agent.Play(g, agent.NewBot(opts.Seed), maxTicks)
	g.LogState()
	slog.Info("encounter finished",
		"ticks", res.Ticks,
		"time", res.Time,
		"kills", res.Kills,
		"hostiles_left", res.HostilesLeft,
		"player_health", res.PlayerHealth,
		"player_dead", res.PlayerDead,
	)
	return nil
}

// runWindowed opens a raylib window and lets the keyboard drive the player.
func runWindowed(opts game.Options, maxTicks int64) error {
	sc := opts.Config.Screen
	rl.InitWindow(int32(sc.Width), int32(sc.Height), "Gridfire")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(sc.TargetFPS))

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer func() { g.Close() }()

	screen := renderer.NewScreen(sc)
	controls := renderer.NewControls()

	for !rl.WindowShouldClose() {
		dt := float64(rl.GetFrameTime())
		g.RecordFrame()

		if renderer.Restart() {
			g.Close()
			if g, err = game.New(opts); err != nil {
				return err
			}
		}

		in := controls.Poll(dt)
		if opts.StepsPerUpdate > 1 {
			g.Advance(in)
		} else {
			g.Step(dt, in)
		}
		screen.Observe(g, g.DrainEvents())
		screen.Draw(g, controls.Weapon, dt)

		if maxTicks > 0 && g.Tick() >= maxTicks {
			break
		}
	}
	return nil
}
