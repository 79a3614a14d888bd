// Package render drives images through the encoder and yields the wire
// records to send, one frame at a time.
package render

import (
	"fmt"
	"image"
	"iter"

	"github.com/jwulff/img2wled/internal/domain"
	"github.com/jwulff/img2wled/internal/encoder"
	"github.com/jwulff/img2wled/internal/wled"
)

// Source yields the frames of an image in order.
type Source interface {
	Frames() iter.Seq2[int, image.Image]
}

// Options are the parameters shared by every frame of a run.
type Options struct {
	Rows   int
	Cols   int
	Budget int
	State  wled.StateOptions
}

// DefaultOptions returns a 16x16 grid, the default budget and default
// display state.
func DefaultOptions() Options {
	return Options{
		Rows:   domain.DefaultGridSize,
		Cols:   domain.DefaultGridSize,
		Budget: encoder.DefaultBudget,
		State:  wled.DefaultStateOptions(),
	}
}

// Record is one state command plus where it came from.
type Record struct {
	Frame    int // index of the source frame
	Segment  int // index of the segment within its frame
	Commands encoder.Segment
	State    wled.StateCommand
}

// Records lazily yields the wire records for every frame of src, in frame
// order and segment order. Nothing is carried over between frames. Work is
// done only as records are pulled: breaking out of the loop stops decoding
// further frames.
//
// If a frame cannot be sampled, Records yields the error and stops.
func Records(src Source, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for n, frame := range src.Frames() {
			grid, err := encoder.Sample(frame, opts.Rows, opts.Cols)
			if err != nil {
				yield(Record{Frame: n}, fmt.Errorf("frame %d: %w", n, err))
				return
			}

			if !yieldGrid(yield, n, grid, opts) {
				return
			}
		}
	}
}

// GridRecords yields the records of a single, already sampled grid.
func GridRecords(grid *domain.Grid, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		yieldGrid(yield, 0, grid, opts)
	}
}

func yieldGrid(yield func(Record, error) bool, frame int, grid *domain.Grid, opts Options) bool {
	commands := encoder.Encode(grid.Sequence())

	i := 0
	for seg := range encoder.Chunk(commands, opts.Budget) {
		rec := Record{
			Frame:    frame,
			Segment:  i,
			Commands: seg,
			State:    wled.CreateStateCommand(seg, &opts.State),
		}
		if !yield(rec, nil) {
			return false
		}
		i++
	}
	return true
}
