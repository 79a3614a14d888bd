package render

import (
	"image"
	"image/color"
	"image/gif"
	"iter"
	"os"
	"path/filepath"
	"testing"

	"github.com/jwulff/img2wled/internal/domain"
	"github.com/jwulff/img2wled/internal/encoder"
	"github.com/jwulff/img2wled/internal/imagefile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameSource is a Source over in-memory frames that counts how many frames
// have been pulled.
type frameSource struct {
	frames []image.Image
	pulled int
}

func (s *frameSource) Frames() iter.Seq2[int, image.Image] {
	return func(yield func(int, image.Image) bool) {
		for i, f := range s.frames {
			s.pulled++
			if !yield(i, f) {
				return
			}
		}
	}
}

func solid(c color.Color, w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// noise returns an image where no two horizontally adjacent pixels match.
func noise(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 13), G: uint8(y * 7), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func collect(t *testing.T, seq iter.Seq2[Record, error]) []Record {
	t.Helper()

	var records []Record
	for rec, err := range seq {
		require.NoError(t, err)
		records = append(records, rec)
	}
	return records
}

func TestRecordsStaticImage(t *testing.T) {
	src := &frameSource{frames: []image.Image{solid(color.White, 32, 32)}}

	records := collect(t, Records(src, DefaultOptions()))

	require.Len(t, records, 1)
	assert.Equal(t, 0, records[0].Frame)
	assert.Equal(t, 0, records[0].Segment)
	assert.Equal(t,
		encoder.Segment{encoder.Range{Start: 0, End: 256, Color: domain.NewRGB(255, 255, 255)}},
		records[0].Commands)
	assert.Equal(t, []any{0, 0, 256, domain.NewRGB(255, 255, 255)}, records[0].State.Segment.Items)
	assert.True(t, records[0].State.On)
}

func TestRecordsFourDistinctPixels(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{G: 255, A: 255})
	img.Set(0, 1, color.NRGBA{B: 255, A: 255})
	img.Set(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	opts := DefaultOptions()
	opts.Rows, opts.Cols = 2, 2

	records := collect(t, Records(&frameSource{frames: []image.Image{img}}, opts))

	require.Len(t, records, 1)
	assert.Len(t, records[0].Commands, 4)
	assert.Len(t, records[0].State.Segment.Items, 9)
}

func TestRecordsSplitsLargeFrame(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 64

	records := collect(t, Records(&frameSource{frames: []image.Image{noise(16, 16)}}, opts))

	// 256 individual pixels at 2 items each, 32 per segment.
	require.Len(t, records, 8)
	next := 0
	for i, rec := range records {
		assert.Equal(t, i, rec.Segment)
		assert.LessOrEqual(t, rec.Commands.Cost(), 64)
		assert.Equal(t, next, rec.Commands.Start())
		assert.Equal(t, rec.Commands.Start(), rec.State.Segment.Items[0])
		next = rec.Commands.End()
	}
	assert.Equal(t, 256, next)
}

func TestRecordsAnimatedGIF(t *testing.T) {
	pal := color.Palette{
		color.RGBA{R: 255, A: 255},
		color.RGBA{G: 255, A: 255},
		color.RGBA{B: 255, A: 255},
	}
	var frames []*image.Paletted
	for i := range pal {
		p := image.NewPaletted(image.Rect(0, 0, 8, 8), pal)
		for j := range p.Pix {
			p.Pix[j] = uint8(i)
		}
		frames = append(frames, p)
	}

	path := filepath.Join(t.TempDir(), "anim.gif")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.EncodeAll(f, &gif.GIF{Image: frames, Delay: []int{5, 5, 5}}))
	require.NoError(t, f.Close())

	img, err := imagefile.Decode(path)
	require.NoError(t, err)

	records := collect(t, Records(img, DefaultOptions()))

	require.Len(t, records, 3)
	want := []domain.RGB{domain.NewRGB(255, 0, 0), domain.NewRGB(0, 255, 0), domain.NewRGB(0, 0, 255)}
	for i, rec := range records {
		assert.Equal(t, i, rec.Frame)
		assert.Equal(t, 0, rec.Segment)
		assert.Equal(t, encoder.Segment{encoder.Range{Start: 0, End: 256, Color: want[i]}}, rec.Commands)
	}
}

func TestRecordsFramesAreIndependent(t *testing.T) {
	opts := DefaultOptions()
	opts.Budget = 100

	src := &frameSource{frames: []image.Image{noise(16, 16), noise(16, 16)}}
	records := collect(t, Records(src, opts))

	var first, second []Record
	for _, rec := range records {
		if rec.Frame == 0 {
			first = append(first, rec)
		} else {
			second = append(second, rec)
		}
	}

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Commands, second[i].Commands)
		assert.Equal(t, first[i].State, second[i].State)
	}
}

func TestRecordsIsLazy(t *testing.T) {
	src := &frameSource{frames: []image.Image{solid(color.White, 4, 4), solid(color.Black, 4, 4), solid(color.White, 4, 4)}}

	for rec, err := range Records(src, DefaultOptions()) {
		require.NoError(t, err)
		assert.Equal(t, 0, rec.Frame)
		break
	}

	assert.Equal(t, 1, src.pulled)
}

func TestRecordsSampleError(t *testing.T) {
	src := &frameSource{frames: []image.Image{solid(color.White, 4, 4), image.NewNRGBA(image.Rectangle{})}}

	var (
		records []Record
		errs    []error
	)
	for rec, err := range Records(src, DefaultOptions()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}

	assert.Len(t, records, 1)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "frame 1")
}

func TestRecordsAppliesStateOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.State.Brightness = 10
	opts.State.Transition = 500
	opts.State.Frozen = true

	records := collect(t, Records(&frameSource{frames: []image.Image{solid(color.White, 4, 4)}}, opts))

	require.Len(t, records, 1)
	assert.Equal(t, 10, records[0].State.Brightness)
	assert.Equal(t, 500, records[0].State.Transition)
	assert.True(t, records[0].State.Segment.Frozen)
}

func TestGridRecords(t *testing.T) {
	grid := domain.NewGridWithColor(16, 16, domain.NewRGB(1, 2, 3))

	records := collect(t, GridRecords(grid, DefaultOptions()))

	require.Len(t, records, 1)
	assert.Equal(t, encoder.Segment{encoder.Range{Start: 0, End: 256, Color: domain.NewRGB(1, 2, 3)}}, records[0].Commands)
}
