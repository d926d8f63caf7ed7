package noise

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// Tile file layout: a fixed header followed by the raw little-endian samples.
const (
	tileMagic    = "WNTL"
	tileVersion  = 1
	tileElemSize = 4 // float32
)

var (
	// ErrTileFormat marks a tile file that is not a complete, well-formed tile.
	ErrTileFormat = errors.New("noise: malformed tile file")
	// ErrPrecisionMismatch marks a tile file written with a different sample size.
	ErrPrecisionMismatch = errors.New("noise: tile file precision mismatch")
)

type tileHeader struct {
	Magic    [4]byte
	Version  uint16
	ElemSize uint16
	TileSize uint32
	Channels uint32
}

// WriteTile serialises t to w.
func WriteTile(w io.Writer, t *Tile) error {
	hdr := tileHeader{
		Version:  tileVersion,
		ElemSize: tileElemSize,
		TileSize: NoiseTileSize,
		Channels: NoiseTileChannels,
	}
	copy(hdr.Magic[:], tileMagic)

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("writing tile header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, t.data); err != nil {
		return fmt.Errorf("writing tile data: %w", err)
	}
	return bw.Flush()
}

// ReadTile deserialises a tile from r, validating the header and length.
func ReadTile(r io.Reader) (*Tile, error) {
	br := bufio.NewReader(r)

	var hdr tileHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrTileFormat, err)
	}
	if string(hdr.Magic[:]) != tileMagic || hdr.Version != tileVersion {
		return nil, fmt.Errorf("%w: bad magic or version %d", ErrTileFormat, hdr.Version)
	}
	if hdr.ElemSize != tileElemSize {
		return nil, fmt.Errorf("%w: file has %d-byte samples, want %d", ErrPrecisionMismatch, hdr.ElemSize, tileElemSize)
	}
	if hdr.TileSize != NoiseTileSize || hdr.Channels != NoiseTileChannels {
		return nil, fmt.Errorf("%w: dimensions %d^3 x %d", ErrTileFormat, hdr.TileSize, hdr.Channels)
	}

	data := make([]float32, tileLen)
	if err := binary.Read(br, binary.LittleEndian, data); err != nil {
		return nil, fmt.Errorf("%w: reading samples: %v", ErrTileFormat, err)
	}
	if _, err := br.ReadByte(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data", ErrTileFormat)
	}
	return &Tile{data: data}, nil
}

// SaveTileFile writes t to path.
func SaveTileFile(path string, t *Tile) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating tile file: %w", err)
	}
	if err := WriteTile(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadTileFile reads a tile from path.
func LoadTileFile(path string) (*Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening tile file: %w", err)
	}
	defer f.Close()
	return ReadTile(f)
}
