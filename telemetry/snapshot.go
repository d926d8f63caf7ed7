package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/wturb/systems"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the particle state at one step.
type Snapshot struct {
	Version  int   `json:"version"`
	RNGSeed  int64 `json:"rng_seed"`
	TileSeed int64 `json:"tile_seed"`

	GridSize [3]int `json:"grid_size"`

	Step    int        `json:"step"`
	SimTime float32    `json:"sim_time"`
	Inflow  [3]float32 `json:"inflow"`

	Particles []ParticleState `json:"particles"`
}

// ParticleState holds one particle.
type ParticleState struct {
	ID    uint32     `json:"id"`
	Pos   [3]float32 `json:"pos"`
	Vel   [3]float32 `json:"vel"`
	Tex0  [3]float32 `json:"tex0"`
	Tex1  [3]float32 `json:"tex1"`
	Color [3]float32 `json:"color"`
}

// NewParticleStates converts a particle listing to its JSON form.
func NewParticleStates(ps []systems.Particle) []ParticleState {
	out := make([]ParticleState, len(ps))
	for i, p := range ps {
		out[i] = ParticleState{
			ID:    p.Entity.ID(),
			Pos:   p.Pos,
			Vel:   p.Vel,
			Tex0:  p.Tex0,
			Tex1:  p.Tex1,
			Color: p.Color,
		}
	}
	return out
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("snapshot_%d.json", snapshot.Step))

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snapshot.Version)
	}

	return &snapshot, nil
}
