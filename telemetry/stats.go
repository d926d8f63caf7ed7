package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of steps.
type WindowStats struct {
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTime         float64 `csv:"sim_time"`

	// Particle counts at window end
	Particles int `csv:"particles"`
	InBounds  int `csv:"in_bounds"`

	// Events during window
	Removed    int `csv:"removed"`
	Tex0Resets int `csv:"tex0_resets"`
	Tex1Resets int `csv:"tex1_resets"`

	// Cross-fade weight averaged over the window
	AlphaMean float64 `csv:"alpha_mean"`

	// Synthesized speed distribution (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"` // max over the whole window

	// Turbulence energy grid (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyMax  float64 `csv:"energy_max"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean and percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)

	// Sort for percentiles
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, p10, p50, p90
}

// ComputeGridStats returns the mean, population standard deviation and
// maximum of a grid's values.
func ComputeGridStats(data []float32) (mean, std, max float64) {
	if len(data) == 0 {
		return 0, 0, 0
	}
	values := make([]float64, len(data))
	max = float64(data[0])
	for i, v := range data {
		values[i] = float64(v)
		if values[i] > max {
			max = values[i]
		}
	}
	mean, std = stat.PopMeanStdDev(values, nil)
	return mean, std, max
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", s.WindowStartStep),
		slog.Int("window_end", s.WindowEndStep),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("particles", s.Particles),
		slog.Int("in_bounds", s.InBounds),
		slog.Int("removed", s.Removed),
		slog.Int("tex0_resets", s.Tex0Resets),
		slog.Int("tex1_resets", s.Tex1Resets),
		slog.Float64("alpha_mean", s.AlphaMean),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_p10", s.SpeedP10),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_max", s.EnergyMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTime,
		"particles", s.Particles,
		"in_bounds", s.InBounds,
		"removed", s.Removed,
		"tex0_resets", s.Tex0Resets,
		"tex1_resets", s.Tex1Resets,
		"alpha_mean", s.AlphaMean,
		"speed_mean", s.SpeedMean,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"energy_mean", s.EnergyMean,
		"energy_max", s.EnergyMax,
	)
}
