// Package debug provides debug visualization utilities.
package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/Faultbox/liftarm/pkg/formats"
)

// Cell colors.
var (
	ObstructedColor = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	FreeColor       = color.RGBA{R: 40, G: 180, B: 60, A: 255}
	MarkerColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// RenderGrid draws each grid cell as a scale x scale block. Row 0 of the
// grid (minimum y) ends up at the bottom of the image.
func RenderGrid(grid *formats.OccupancyGrid, scale int) *image.RGBA {
	if scale < 1 {
		scale = 1
	}
	w, h := int(grid.Width), int(grid.Height)
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))

	for iy := 0; iy < h; iy++ {
		py := (h - 1 - iy) * scale // Flip Y
		for ix := 0; ix < w; ix++ {
			c := FreeColor
			if obstructed, _ := grid.Obstructed(ix, iy); obstructed {
				c = ObstructedColor
			}
			fillBlock(img, ix*scale, py, scale, c)
		}
	}
	return img
}

// MarkPoint paints the cell containing world position (x, y). It reports
// false when the position is outside the grid.
func MarkPoint(img *image.RGBA, grid *formats.OccupancyGrid, scale int, x, y float64) bool {
	if scale < 1 {
		scale = 1
	}
	ix, iy, ok := grid.CellIndex(x, y)
	if !ok {
		return false
	}
	fillBlock(img, ix*scale, (int(grid.Height)-1-iy)*scale, scale, MarkerColor)
	return true
}

func fillBlock(img *image.RGBA, x0, y0, size int, c color.RGBA) {
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

// SavePNG writes img to path, creating the parent directory if needed.
func SavePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
