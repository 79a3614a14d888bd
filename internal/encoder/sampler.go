package encoder

import (
	"fmt"
	"image"

	"github.com/jwulff/img2wled/internal/domain"
	"golang.org/x/image/draw"
)

// Sample scales img to the grid with nearest-neighbour sampling, so every
// grid cell takes the color of exactly one source pixel.
//
// The controller addresses its matrix line by line, so a grid row index
// runs along the image's x axis and a column index along its y axis: the
// image is scaled to rows pixels wide and cols pixels high, and controller
// pixel col*rows+row is image pixel (row, col). Transparent pixels become
// black.
func Sample(img image.Image, rows, cols int) (*domain.Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", rows, cols)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("cannot sample empty image")
	}

	scaled := image.NewNRGBA(image.Rect(0, 0, rows, cols))
	draw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)

	grid := domain.NewGrid(rows, cols)
	for col := 0; col < cols; col++ {
		for row := 0; row < rows; row++ {
			grid.Set(row, col, domain.RGBFromColor(scaled.NRGBAAt(row, col)))
		}
	}
	return grid, nil
}
