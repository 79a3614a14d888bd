package encoder

import (
	"iter"
	"slices"
)

// Segment is a non-empty run of consecutive commands sent in one message.
type Segment []Command

// Start returns the first pixel index covered by the segment.
func (s Segment) Start() int {
	if len(s) == 0 {
		return 0
	}
	start, _ := s[0].Span()
	return start
}

// End returns the pixel index just past the segment.
func (s Segment) End() int {
	if len(s) == 0 {
		return 0
	}
	_, end := s[len(s)-1].Span()
	return end
}

// Cost returns the summed data cost of the segment's commands.
func (s Segment) Cost() int {
	var cost int
	for _, c := range s {
		cost += c.Cost()
	}
	return cost
}

// Chunk lazily groups commands into segments whose cost does not exceed
// budget. Commands are taken greedily in order; a command that would push the
// current segment over budget starts the next one. A command whose own cost
// exceeds budget is placed alone in its own segment.
//
// The yielded segments share the backing array of commands.
func Chunk(commands []Command, budget int) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		start, cost := 0, 0
		for i, c := range commands {
			if i > start && cost+c.Cost() > budget {
				if !yield(Segment(commands[start:i:i])) {
					return
				}
				start, cost = i, 0
			}
			cost += c.Cost()
		}
		if start < len(commands) {
			yield(Segment(commands[start:len(commands):len(commands)]))
		}
	}
}

// ChunkAll is Chunk collected into a slice.
func ChunkAll(commands []Command, budget int) []Segment {
	return slices.Collect(Chunk(commands, budget))
}
