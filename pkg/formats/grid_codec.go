package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// DefaultGridFile is the well-known occupancy grid file name, relative to the
// working directory.
const DefaultGridFile = "collision_grid.bin"

// GridHeaderSize is the size of the fixed header preceding the cell bytes.
const GridHeaderSize = 28

// Occupancy grid format errors.
var (
	ErrTruncatedGridData = errors.New("truncated occupancy grid data")
	ErrGridIO            = errors.New("occupancy grid read failed")
)

// gridHeader mirrors the on-disk header field order.
type gridHeader struct {
	Width    uint32
	Height   uint32
	MinX     float32
	MaxX     float32
	MinY     float32
	MaxY     float32
	StepSize float32
}

// Encode serializes the grid into its binary record:
// a 28 byte little-endian header followed by one byte per cell, rows of x
// nested inside y.
func Encode(g *OccupancyGrid) []byte {
	buf := make([]byte, GridHeaderSize, GridHeaderSize+len(g.Cells))

	binary.LittleEndian.PutUint32(buf[0:], g.Width)
	binary.LittleEndian.PutUint32(buf[4:], g.Height)
	binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(g.MinX))
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.MaxX))
	binary.LittleEndian.PutUint32(buf[16:], math.Float32bits(g.MinY))
	binary.LittleEndian.PutUint32(buf[20:], math.Float32bits(g.MaxY))
	binary.LittleEndian.PutUint32(buf[24:], math.Float32bits(g.StepSize))

	for _, cell := range g.Cells {
		if cell {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

// WriteTo writes the encoded grid to w.
func (g *OccupancyGrid) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(Encode(g))
	return int64(n), err
}

// Decode parses an occupancy grid from raw bytes.
// Bounds and step are not checked against the declared dimensions; a corrupt
// but well-sized record decodes without error. Bytes past the last cell are ignored.
func Decode(data []byte) (*OccupancyGrid, error) {
	return Read(bytes.NewReader(data))
}

// Read parses an occupancy grid from r. Short input yields ErrTruncatedGridData;
// any other read failure is wrapped in ErrGridIO.
func Read(r io.Reader) (*OccupancyGrid, error) {
	var hdr gridHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, readError(err, "reading header")
	}

	cellCount := uint64(hdr.Width) * uint64(hdr.Height)
	if cellCount > math.MaxInt64 {
		return nil, fmt.Errorf("%w: %dx%d cells", ErrTruncatedGridData, hdr.Width, hdr.Height)
	}

	// Copy through a buffer so a lying header cannot force a huge allocation
	// before the data actually shows up.
	var cells bytes.Buffer
	n, err := io.CopyN(&cells, r, int64(cellCount))
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %d of %d cells", ErrTruncatedGridData, n, cellCount)
		}
		return nil, readError(err, "reading cells")
	}

	g := &OccupancyGrid{
		Width:    hdr.Width,
		Height:   hdr.Height,
		MinX:     hdr.MinX,
		MaxX:     hdr.MaxX,
		MinY:     hdr.MinY,
		MaxY:     hdr.MaxY,
		StepSize: hdr.StepSize,
		Cells:    make([]bool, cellCount),
	}
	for i, b := range cells.Bytes() {
		g.Cells[i] = b != 0
	}

	return g, nil
}

func readError(err error, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %s", ErrTruncatedGridData, what)
	}
	return fmt.Errorf("%w: %s: %w", ErrGridIO, what, err)
}

// ReadGridFile parses an occupancy grid file from disk.
func ReadGridFile(path string) (*OccupancyGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening grid file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// WriteGridFile writes the grid to path. The data goes to a temporary file in
// the same directory first and is renamed into place, so readers never see a
// partial grid.
func WriteGridFile(path string, g *OccupancyGrid) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating grid dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("creating temp grid file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := g.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing grid file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing grid file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming grid file: %w", err)
	}
	return nil
}
