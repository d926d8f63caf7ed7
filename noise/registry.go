package noise

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// seedBase is where automatic field seeds start counting.
const seedBase = 13322223

// RegistryOptions configures tile persistence.
type RegistryOptions struct {
	// Path of the tile cache file. Empty disables load and save.
	Path string
	// SaveGenerated writes freshly generated tiles to Path even when the
	// acquiring field did not ask to load from file.
	SaveGenerated bool
}

// TileRegistry owns the noise tile for one simulation session. Every Field
// acquires the tile through the registry and releases it when done; the tile
// is dropped when the last holder releases it.
//
// Seed policy: the first acquisition decides the tile. Later acquisitions with
// a different seed reuse the resident tile and only log a warning.
type TileRegistry struct {
	opts RegistryOptions

	mu     sync.Mutex
	tile   *Tile
	loaded bool
	refs   atomic.Int32

	seeds atomic.Int64
}

// NewTileRegistry creates an empty registry.
func NewTileRegistry(opts RegistryOptions) *TileRegistry {
	r := &TileRegistry{opts: opts}
	r.seeds.Store(seedBase)
	return r
}

// TileHandle is one reference to the resident tile.
type TileHandle struct {
	reg  *TileRegistry
	tile *Tile
	once sync.Once
}

// Tile returns the referenced tile.
func (h *TileHandle) Tile() *Tile { return h.tile }

// Release drops this reference. Calling it more than once has no effect.
func (h *TileHandle) Release() {
	h.once.Do(h.reg.release)
}

// NextSeed hands out a fresh seed for fields constructed without a fixed one.
func (r *TileRegistry) NextSeed() int64 {
	return r.seeds.Add(1) - 1
}

// RefCount returns the number of live handles.
func (r *TileRegistry) RefCount() int {
	return int(r.refs.Load())
}

// Resident reports whether a tile is currently held.
func (r *TileRegistry) Resident() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tile != nil
}

// Acquire returns a handle to the resident tile, building it first if needed.
// When loadFromFile is set and the tile file exists it is loaded verbatim; a
// corrupt file is an error the caller must treat as fatal.
func (r *TileRegistry) Acquire(seed int64, loadFromFile bool) (*TileHandle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tile != nil {
		if !r.loaded && seed != r.tile.seed {
			slog.Warn("noise tile already resident, ignoring seed",
				"requested_seed", seed,
				"tile_seed", r.tile.seed,
			)
		}
		r.refs.Add(1)
		return &TileHandle{reg: r, tile: r.tile}, nil
	}

	tile, loaded, err := r.build(seed, loadFromFile)
	if err != nil {
		return nil, err
	}
	r.tile = tile
	r.loaded = loaded
	r.refs.Add(1)
	return &TileHandle{reg: r, tile: tile}, nil
}

// MustAcquire is like Acquire but panics on error.
func (r *TileRegistry) MustAcquire(seed int64, loadFromFile bool) *TileHandle {
	h, err := r.Acquire(seed, loadFromFile)
	if err != nil {
		panic(fmt.Sprintf("noise: failed to acquire tile: %v", err))
	}
	return h
}

func (r *TileRegistry) build(seed int64, loadFromFile bool) (*Tile, bool, error) {
	if loadFromFile && r.opts.Path != "" {
		tile, err := LoadTileFile(r.opts.Path)
		switch {
		case err == nil:
			tile.seed = seed
			slog.Info("noise tile loaded", "path", r.opts.Path)
			return tile, true, nil
		case !errors.Is(err, fs.ErrNotExist):
			return nil, false, fmt.Errorf("loading noise tile %s: %w", r.opts.Path, err)
		}
	}

	start := time.Now()
	tile, err := GenerateTile(seed)
	if err != nil {
		return nil, false, err
	}
	slog.Info("noise tile generated",
		"seed", seed,
		"size", NoiseTileSize,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if r.opts.Path != "" && (loadFromFile || r.opts.SaveGenerated) {
		if err := SaveTileFile(r.opts.Path, tile); err != nil {
			slog.Warn("noise tile save failed", "path", r.opts.Path, "error", err)
		} else {
			slog.Info("noise tile saved", "path", r.opts.Path)
		}
	}
	return tile, false, nil
}

func (r *TileRegistry) release() {
	if r.refs.Add(-1) != 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// An Acquire may have slipped in between the decrement and the lock.
	if r.refs.Load() == 0 {
		r.tile = nil
		r.loaded = false
	}
}
