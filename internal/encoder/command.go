// Package encoder turns pixel grids into run-length commands and groups them
// into segments that fit a per-message data budget.
//
// A frame goes through three steps:
//
//	Sample: image -> *domain.Grid (nearest neighbour, controller order)
//	Encode: []domain.RGB -> []Command (runs of equal colors merged)
//	Chunk:  []Command -> Segments (cost of each segment <= budget)
package encoder

import (
	"fmt"

	"github.com/jwulff/img2wled/internal/domain"
)

// Data cost of each command kind, in wire items.
const (
	IndividualCost = 2
	RangeCost      = 3
)

// DefaultBudget is the default maximum data cost of one segment.
const DefaultBudget = 256

// Command is a single pixel update. It is either an Individual or a Range.
type Command interface {
	// Span returns the covered pixel indices as [start, end).
	Span() (start, end int)
	// RGB returns the color written to every covered pixel.
	RGB() domain.RGB
	// Cost returns the number of wire items the command occupies.
	Cost() int

	command()
}

// Individual sets exactly one pixel.
type Individual struct {
	Index int
	Color domain.RGB
}

var _ Command = Individual{}

func (c Individual) Span() (int, int) { return c.Index, c.Index + 1 }
func (c Individual) RGB() domain.RGB { return c.Color }
func (c Individual) Cost() int { return IndividualCost }
func (c Individual) String() string { return fmt.Sprintf("%d=%s", c.Index, c.Color.Hex()) }
func (Individual) command() {}

// Range sets every pixel in [Start, End) to one color. End-Start is at
// least 2; single pixels are always encoded as Individual.
type Range struct {
	Start int
	End   int
	Color domain.RGB
}

var _ Command = Range{}

func (c Range) Span() (int, int) { return c.Start, c.End }
func (c Range) RGB() domain.RGB { return c.Color }
func (c Range) Cost() int { return RangeCost }
func (c Range) String() string { return fmt.Sprintf("%d..%d=%s", c.Start, c.End, c.Color.Hex()) }
func (Range) command() {}

// Len returns the number of pixels a command covers.
func Len(c Command) int {
	start, end := c.Span()
	return end - start
}
