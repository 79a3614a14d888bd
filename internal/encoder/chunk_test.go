package encoder

import (
	"math/rand/v2"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jwulff/img2wled/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkEmpty(t *testing.T) {
	assert.Empty(t, ChunkAll(nil, DefaultBudget))
}

func TestChunkFourDistinctPixels(t *testing.T) {
	grid := domain.NewGrid(2, 2)
	grid.Set(0, 0, red)
	grid.Set(1, 0, green)
	grid.Set(0, 1, blue)
	grid.Set(1, 1, white)

	commands := Encode(grid.Sequence())
	segments := ChunkAll(commands, DefaultBudget)

	require.Len(t, segments, 1)
	assert.Len(t, segments[0], 4)
	for _, c := range segments[0] {
		assert.IsType(t, Individual{}, c)
	}
	assert.Equal(t, 8, segments[0].Cost())
}

func TestChunkSolidGrid(t *testing.T) {
	commands := Encode(domain.NewGridWithColor(16, 16, red).Sequence())

	for _, budget := range []int{3, 4, 256, 1000} {
		segments := ChunkAll(commands, budget)
		require.Len(t, segments, 1, "budget %d", budget)
		assert.Equal(t, 0, segments[0].Start())
		assert.Equal(t, 256, segments[0].End())
	}
}

func TestChunkSplitsAtBudget(t *testing.T) {
	commands := Encode(distinctSequence(129))
	require.Len(t, commands, 129)

	segments := ChunkAll(commands, 256)

	require.Len(t, segments, 2)
	assert.Len(t, segments[0], 128)
	assert.Equal(t, 256, segments[0].Cost())
	assert.Len(t, segments[1], 1)
	assert.Equal(t, 128, segments[1].Start())
	assert.Equal(t, commands[128], segments[1][0])
}

func TestChunkOversizedCommand(t *testing.T) {
	commands := []Command{
		Range{Start: 0, End: 5, Color: red},
		Individual{Index: 5, Color: green},
		Range{Start: 6, End: 9, Color: blue},
	}

	segments := ChunkAll(commands, 2)

	require.Len(t, segments, 3)
	assert.Equal(t, Segment{commands[0]}, segments[0])
	assert.Equal(t, Segment{commands[1]}, segments[1])
	assert.Equal(t, Segment{commands[2]}, segments[2])
}

func TestChunkBudgetAndCoverage(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))

	for _, budget := range []int{1, 2, 3, 5, 16, 64, 256} {
		commands := Encode(randomSequence(rng, 1000, []domain.RGB{red, green, blue, white}))
		segments := ChunkAll(commands, budget)

		var joined []Command
		for _, seg := range segments {
			require.NotEmpty(t, seg)
			if len(seg) > 1 {
				assert.LessOrEqual(t, seg.Cost(), budget, "budget %d", budget)
			}
			joined = append(joined, seg...)
		}
		if diff := cmp.Diff(commands, joined); diff != "" {
			t.Fatalf("budget %d: concatenated segments differ (-want +got):\n%s", budget, diff)
		}
	}
}

func TestChunkIsGreedy(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	commands := Encode(randomSequence(rng, 400, []domain.RGB{red, green, blue}))
	segments := ChunkAll(commands, 32)

	for i := 0; i+1 < len(segments); i++ {
		next := segments[i+1][0]
		assert.Greater(t, segments[i].Cost()+next.Cost(), 32,
			"segment %d could have taken the next command", i)
	}
}

func TestChunkStopsEarly(t *testing.T) {
	commands := Encode(distinctSequence(300))

	var n int
	for range Chunk(commands, 10) {
		n++
		if n == 2 {
			break
		}
	}
	assert.Equal(t, 2, n)
}

func TestChunkSegmentsDoNotAlias(t *testing.T) {
	commands := Encode(distinctSequence(10))
	segments := ChunkAll(commands, 4)
	require.Len(t, segments, 5)

	first := segments[0]
	first = append(first, Individual{Index: 99, Color: red})
	assert.Equal(t, commands[2], segments[1][0], "appending to a segment must not clobber the next one")
	assert.Len(t, first, 3)
}

func TestSegmentEmptyBounds(t *testing.T) {
	var seg Segment
	assert.Equal(t, 0, seg.Start())
	assert.Equal(t, 0, seg.End())
	assert.Equal(t, 0, seg.Cost())
}
