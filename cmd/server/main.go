package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/zeusync/arenabot/internal/agent"
	"github.com/zeusync/arenabot/internal/config"
	"github.com/zeusync/arenabot/internal/core/observability/log"
	"github.com/zeusync/arenabot/internal/core/physics"
	"github.com/zeusync/arenabot/internal/core/situation"
	"github.com/zeusync/arenabot/internal/injector"
	"github.com/zeusync/arenabot/internal/server"
)

var (
	configPath = flag.String("config", "", "Path to a .toml or .yaml config file")
	selfPlay   = flag.Duration("selfplay", 0, "Simulate a kickoff for this long against the configured tree and exit")
	checkTree  = flag.Bool("check", false, "Build the configured tree, print it and exit")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error loading config:", err)
			os.Exit(1)
		}
	}

	app, cleanup, err := injector.InitializeApp(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error starting server:", err)
		os.Exit(1)
	}
	defer cleanup()
	logger := app.Logger
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch {
	case *checkTree:
		err = printTree(app.Trees)
	case *selfPlay > 0:
		err = runSelfPlay(ctx, app, *selfPlay)
	default:
		err = app.Server.Run(ctx)
	}
	if err != nil {
		logger.Error("exiting", log.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func printTree(trees server.TreeProvider) error {
	tree, err := trees.NewTree()
	if err != nil {
		return err
	}
	fmt.Print(tree.String())
	return nil
}

func runSelfPlay(ctx context.Context, app *injector.App, d time.Duration) error {
	tree, err := app.Trees.NewTree()
	if err != nil {
		return err
	}
	logger := app.Logger
	bot := agent.New("selfplay", tree, logger)
	start := &situation.Situation{
		Me: situation.Car{
			Body: physics.RigidBody{
				Position: mgl64.Vec3{0, -4608, situation.CarGroundOffset},
				Rotation: mgl64.Vec3{0, math.Pi / 2, 0},
			},
			Boost: 33,
		},
		Enemy: situation.Car{
			Body: physics.RigidBody{
				Position: mgl64.Vec3{0, 4608, situation.CarGroundOffset},
				Rotation: mgl64.Vec3{0, -math.Pi / 2, 0},
			},
			Boost: 33,
		},
		Ball:    physics.RigidBody{Position: mgl64.Vec3{0, 0, physics.BallRadius}, AffectedByGravity: true},
		Kickoff: true,
	}

	const dt = 1.0 / 120
	ticks := int(d.Seconds() / dt)
	end, err := agent.SelfPlay(ctx, bot, start, app.Resolver.Predictor, dt, ticks)
	if err != nil {
		return err
	}
	logger.Info("self play finished",
		log.Float64("game_time", end.GameTime),
		log.Any("car", end.Me.Body.Position),
		log.Float64("boost", end.Me.Boost),
		log.Int("decisions", len(bot.Memory().History())),
	)
	return nil
}
