package domain

// DefaultGridSize is the default number of rows and columns.
const DefaultGridSize = 16

// Grid is a rows x cols matrix of pixels.
//
// Pixels are stored in controller order: column-major, so the pixel at
// (row, col) lives at index col*Rows + row. Sequence returns them in that
// order without copying the layout.
type Grid struct {
	Rows int
	Cols int
	// Pixels is a flat array of RGB values: [r0,g0,b0, r1,g1,b1, ...]
	Pixels []byte
}

// NewGrid creates a new grid filled with black (0, 0, 0).
func NewGrid(rows, cols int) *Grid {
	return &Grid{
		Rows:   rows,
		Cols:   cols,
		Pixels: make([]byte, rows*cols*BytesPerPixel),
	}
}

// NewGridWithColor creates a new grid filled with the specified color.
func NewGridWithColor(rows, cols int, color RGB) *Grid {
	g := NewGrid(rows, cols)
	g.Fill(color)
	return g
}

// Len returns the number of pixels in the grid.
func (g *Grid) Len() int {
	return g.Rows * g.Cols
}

// Index returns the controller pixel index of (row, col), or -1 if out of
// bounds.
func (g *Grid) Index(row, col int) int {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return -1
	}
	return col*g.Rows + row
}

// Set sets a single pixel. Out of bounds coordinates are silently ignored.
func (g *Grid) Set(row, col int, color RGB) {
	i := g.Index(row, col)
	if i < 0 {
		return
	}
	offset := i * BytesPerPixel
	g.Pixels[offset] = color.R
	g.Pixels[offset+1] = color.G
	g.Pixels[offset+2] = color.B
}

// At returns the color at (row, col), or nil if out of bounds.
func (g *Grid) At(row, col int) *RGB {
	i := g.Index(row, col)
	if i < 0 {
		return nil
	}
	c := g.pixel(i)
	return &c
}

func (g *Grid) pixel(i int) RGB {
	offset := i * BytesPerPixel
	return RGB{
		R: g.Pixels[offset],
		G: g.Pixels[offset+1],
		B: g.Pixels[offset+2],
	}
}

// Fill fills the entire grid with the specified color.
func (g *Grid) Fill(color RGB) {
	for i := 0; i < g.Len(); i++ {
		offset := i * BytesPerPixel
		g.Pixels[offset] = color.R
		g.Pixels[offset+1] = color.G
		g.Pixels[offset+2] = color.B
	}
}

// Sequence returns the grid linearized in controller order. Element i is the
// color of controller pixel i.
func (g *Grid) Sequence() []RGB {
	seq := make([]RGB, g.Len())
	for i := range seq {
		seq[i] = g.pixel(i)
	}
	return seq
}
