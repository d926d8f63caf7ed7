package noise

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRegistrySharesFirstTile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavelet.tile")
	reg := NewTileRegistry(RegistryOptions{Path: path})

	h1, err := reg.Acquire(7, true)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("generated tile should be saved when loading was requested: %v", err)
	}

	h2, err := reg.Acquire(99, false)
	if err != nil {
		t.Fatal(err)
	}
	if h1.Tile() != h2.Tile() {
		t.Error("second acquisition should reuse the resident tile")
	}
	if h2.Tile().Seed() != 7 {
		t.Errorf("first seed should win, got %d", h2.Tile().Seed())
	}
	if reg.RefCount() != 2 {
		t.Errorf("expected 2 references, got %d", reg.RefCount())
	}

	h1.Release()
	h1.Release()
	if reg.RefCount() != 1 {
		t.Errorf("double release should be a no-op, refcount %d", reg.RefCount())
	}
	if !reg.Resident() {
		t.Error("tile dropped while a handle is still live")
	}

	h2.Release()
	if reg.Resident() {
		t.Error("tile should be dropped after the last release")
	}

	// Reacquiring with load enabled reads the saved file back unchanged.
	h3, err := reg.Acquire(1234, true)
	if err != nil {
		t.Fatal(err)
	}
	defer h3.Release()
	a, b := h1.Tile().Data(), h3.Tile().Data()
	for _, i := range []int{0, 1, 4097, tileCells + 17, tileLen - 1} {
		if a[i] != b[i] {
			t.Fatalf("loaded tile differs at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestRegistryNoSaveWithoutRequest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wavelet.tile")
	reg := NewTileRegistry(RegistryOptions{Path: path})

	h, err := reg.Acquire(3, false)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Release()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("tile should not be written unless requested, stat err %v", err)
	}
}

func TestRegistryCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tile")
	if err := os.WriteFile(path, []byte("WNTL garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := NewTileRegistry(RegistryOptions{Path: path})

	if _, err := reg.Acquire(1, true); err == nil {
		t.Fatal("expected an error for a corrupt tile file")
	}
	if reg.RefCount() != 0 || reg.Resident() {
		t.Error("failed acquisition must not leave a reference behind")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustAcquire should panic on a corrupt tile file")
		}
	}()
	reg.MustAcquire(1, true)
}

func TestRegistryNextSeed(t *testing.T) {
	reg := NewTileRegistry(RegistryOptions{})
	first := reg.NextSeed()
	if first != seedBase {
		t.Errorf("expected first seed %d, got %d", seedBase, first)
	}
	if next := reg.NextSeed(); next != first+1 {
		t.Errorf("expected seeds to increment, got %d after %d", next, first)
	}
}
