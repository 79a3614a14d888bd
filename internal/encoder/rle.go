package encoder

import "github.com/jwulff/img2wled/internal/domain"

// Encode compresses a pixel sequence into commands. Each maximal run of equal
// colors becomes one command: an Individual for a run of one, a Range
// otherwise. The commands are contiguous, ordered, and cover every index of
// seq exactly once. An empty sequence yields no commands.
func Encode(seq []domain.RGB) []Command {
	var commands []Command

	for start := 0; start < len(seq); {
		color := seq[start]
		end := start + 1
		for end < len(seq) && seq[end].Equals(color) {
			end++
		}

		if end-start == 1 {
			commands = append(commands, Individual{Index: start, Color: color})
		} else {
			commands = append(commands, Range{Start: start, End: end, Color: color})
		}
		start = end
	}

	return commands
}

// Decode expands commands back into the pixel sequence they describe. Pixels
// not covered by any command are left black.
func Decode(commands []Command) []domain.RGB {
	n := 0
	for _, c := range commands {
		if _, end := c.Span(); end > n {
			n = end
		}
	}

	seq := make([]domain.RGB, n)
	for _, c := range commands {
		start, end := c.Span()
		for i := start; i < end; i++ {
			seq[i] = c.RGB()
		}
	}
	return seq
}
