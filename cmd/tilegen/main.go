// Tile generator: builds the wavelet noise tile for a seed, saves it to the
// tile cache file and reports its channel statistics.
//
// Usage: go run ./cmd/tilegen -out noise.wntl [-seed N] [-verify] [-stats stats.csv]
package main

import (
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/pthm-cable/wturb/noise"
	"github.com/pthm-cable/wturb/telemetry"
)

func main() {
	out := flag.String("out", "", "Tile file to write or verify (required)")
	seed := flag.Int64("seed", -1, "Tile seed (negative = first automatic seed)")
	verify := flag.Bool("verify", false, "Check an existing file against a fresh tile instead of writing")
	statsPath := flag.String("stats", "", "Write per-channel statistics as CSV")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if *out == "" {
		slog.Error("-out is required")
		os.Exit(1)
	}

	reg := noise.NewTileRegistry(noise.RegistryOptions{})
	if *seed < 0 {
		*seed = reg.NextSeed()
	}

	start := time.Now()
	h, err := reg.Acquire(*seed, false)
	if err != nil {
		slog.Error("failed to generate tile", "error", err)
		os.Exit(1)
	}
	defer h.Release()
	tile := h.Tile()
	slog.Info("tile generated", "seed", *seed, "elapsed_ms", time.Since(start).Milliseconds())

	if *verify {
		if err := verifyFile(*out, tile); err != nil {
			slog.Error("verification failed", "path", *out, "error", err)
			os.Exit(1)
		}
		slog.Info("tile file matches", "path", *out)
	} else {
		if err := noise.SaveTileFile(*out, tile); err != nil {
			slog.Error("failed to save tile", "error", err)
			os.Exit(1)
		}
		slog.Info("tile saved", "path", *out)
	}

	stats := noise.ComputeTileStats(tile)
	for _, s := range stats {
		slog.Info("channel", "stats", s)
	}
	if *statsPath != "" {
		if err := telemetry.WriteTileStatsFile(*statsPath, stats); err != nil {
			slog.Error("failed to write stats", "error", err)
			os.Exit(1)
		}
	}
}

var errTileMismatch = errors.New("tile data differs from a fresh tile")

// verifyFile loads path and compares it cell by cell with want.
func verifyFile(path string, want *noise.Tile) error {
	got, err := noise.LoadTileFile(path)
	if err != nil {
		return err
	}
	a, b := got.Data(), want.Data()
	if len(a) != len(b) {
		return errTileMismatch
	}
	for i := range a {
		if a[i] != b[i] {
			slog.Warn("first mismatch", "index", i, "file", a[i], "fresh", b[i])
			return errTileMismatch
		}
	}
	return nil
}
