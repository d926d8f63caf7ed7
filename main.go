package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/pthm-cable/wturb/config"
	"github.com/pthm-cable/wturb/scene"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	steps := flag.Int("steps", 0, "Number of steps to run (0 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	numSteps := cfg.Scene.Steps
	if *steps > 0 {
		numSteps = *steps
	}

	sim, err := scene.New(cfg, scene.Options{
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to build scene", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("starting simulation", "steps", numSteps)
	runErr := sim.Run(ctx, numSteps)
	closeErr := sim.Close()

	switch {
	case errors.Is(runErr, context.Canceled):
		slog.Info("interrupted", "step", sim.StepCount())
	case runErr != nil:
		slog.Error("simulation failed", "error", runErr)
		os.Exit(1)
	default:
		slog.Info("simulation finished", "step", sim.StepCount(), "perf", sim.Perf())
	}
	if closeErr != nil {
		slog.Error("failed to close output", "error", closeErr)
		os.Exit(1)
	}
}
