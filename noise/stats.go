package noise

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// TileStats summarises one tile channel.
type TileStats struct {
	Channel      int     `csv:"channel"`
	Mean         float64 `csv:"mean"`
	Variance     float64 `csv:"variance"`
	Min          float64 `csv:"min"`
	Max          float64 `csv:"max"`
	EvenVariance float64 `csv:"even_variance"` // samples with even x index
	OddVariance  float64 `csv:"odd_variance"`  // samples with odd x index
}

// ComputeTileStats returns statistics for every channel of t.
func ComputeTileStats(t *Tile) []TileStats {
	out := make([]TileStats, NoiseTileChannels)
	for c := 0; c < NoiseTileChannels; c++ {
		out[c] = channelStats(c, t.Channel(c))
	}
	return out
}

func channelStats(c int, data []float32) TileStats {
	all := make([]float64, len(data))
	even := make([]float64, 0, len(data)/2)
	odd := make([]float64, 0, len(data)/2)
	for i, v := range data {
		f := float64(v)
		all[i] = f
		if (i%NoiseTileSize)%2 == 0 {
			even = append(even, f)
		} else {
			odd = append(odd, f)
		}
	}

	mean, variance := stat.MeanVariance(all, nil)
	return TileStats{
		Channel:      c,
		Mean:         mean,
		Variance:     variance,
		Min:          floats.Min(all),
		Max:          floats.Max(all),
		EvenVariance: stat.Variance(even, nil),
		OddVariance:  stat.Variance(odd, nil),
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s TileStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("channel", s.Channel),
		slog.Float64("mean", s.Mean),
		slog.Float64("variance", s.Variance),
		slog.Float64("min", s.Min),
		slog.Float64("max", s.Max),
		slog.Float64("even_variance", s.EvenVariance),
		slog.Float64("odd_variance", s.OddVariance),
	)
}
