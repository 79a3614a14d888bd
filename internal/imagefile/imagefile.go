// Package imagefile decodes image files into frame sequences.
//
// Static formats (png, jpeg, webp, bmp) yield one frame. Animated GIFs yield
// one fully composited frame per GIF frame, in order.
package imagefile

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"iter"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Image is a decoded image with one or more frames.
type Image struct {
	// Path is the file the image was decoded from, or a description for
	// generated images.
	Path   string
	Format string

	still image.Image
	anim  *gif.GIF
}

// DecodeError is returned when an image cannot be opened or decoded.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %q: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError checks if an error is a decode error.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}

// Decode opens and decodes the image at path.
func Decode(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer f.Close()

	img, err := DecodeReader(path, f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}

// DecodeReader decodes an image from r. name is only used for reporting.
func DecodeReader(name string, r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	if format == "gif" {
		anim, err := gif.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		if len(anim.Image) == 0 {
			return nil, fmt.Errorf("GIF contains no frames")
		}
		return &Image{Path: name, Format: format, anim: anim}, nil
	}

	still, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return &Image{Path: name, Format: format, still: still}, nil
}

// Solid returns a single-frame image of one color.
func Solid(name string, c color.Color, width, height int) *Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return &Image{Path: name, Format: "solid", still: img}
}

// FrameCount returns the number of frames.
func (i *Image) FrameCount() int {
	if i.anim != nil {
		return len(i.anim.Image)
	}
	return 1
}

// Animated reports whether the image has more than one frame.
func (i *Image) Animated() bool {
	return i.FrameCount() > 1
}

// Frames yields each frame with its index. For GIFs, frames are composited
// onto a canvas of the logical screen size honouring each frame's disposal
// method, so the yielded image is what a viewer would show. The yielded
// image is only valid until the next iteration.
func (i *Image) Frames() iter.Seq2[int, image.Image] {
	return func(yield func(int, image.Image) bool) {
		if i.anim == nil {
			yield(0, i.still)
			return
		}

		g := i.anim
		bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
		if bounds.Empty() {
			bounds = g.Image[0].Bounds()
		}
		canvas := image.NewRGBA(bounds)
		var saved *image.RGBA

		for n, frame := range g.Image {
			disposal := byte(gif.DisposalNone)
			if n < len(g.Disposal) {
				disposal = g.Disposal[n]
			}
			if disposal == gif.DisposalPrevious {
				saved = cloneRGBA(canvas)
			}

			draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)

			if !yield(n, canvas) {
				return
			}

			switch disposal {
			case gif.DisposalBackground:
				draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
			case gif.DisposalPrevious:
				canvas = saved
			}
		}
	}
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
