// Package sender runs a batch: it decodes each configured image, pulls its
// wire records one at a time and posts each to the controller before the
// next is built.
package sender

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"time"

	"github.com/jwulff/img2wled/internal/config"
	"github.com/jwulff/img2wled/internal/domain"
	"github.com/jwulff/img2wled/internal/imagefile"
	"github.com/jwulff/img2wled/internal/render"
	"github.com/jwulff/img2wled/internal/wled"
)

// ErrNothingSent is returned in loop mode when a full pass over the images
// could not decode any of them.
var ErrNothingSent = errors.New("no image could be decoded, stopping loop")

// Poster delivers state commands. *wled.Client implements it.
type Poster interface {
	SendState(ctx context.Context, cmd wled.StateCommand) error
	CurlCommand(cmd wled.StateCommand) (string, error)
	Endpoint() string
}

// Summary counts what a run did.
type Summary struct {
	Images   int // images whose records were all pulled
	Skipped  int // images that could not be decoded or sampled
	Records  int // records sent or printed
	Failures int // records the controller did not accept
}

// Sender processes the images of one run.
type Sender struct {
	cfg    config.Config
	poster Poster
	out    io.Writer
	logger *slog.Logger
	decode func(path string) (*imagefile.Image, error)
}

// New creates a Sender. In curl mode the commands are written to out and
// nothing is posted.
func New(cfg config.Config, poster Poster, out io.Writer, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		poster: poster,
		out:    out,
		logger: logger.With("component", "sender"),
		decode: imagefile.Decode,
	}
}

func (s *Sender) options() render.Options {
	return render.Options{
		Rows:   s.cfg.Rows,
		Cols:   s.cfg.Cols,
		Budget: s.cfg.Budget,
		State: wled.StateOptions{
			On:         true,
			Transition: s.cfg.TransitionMs,
			Brightness: s.cfg.Brightness,
			Frozen:     s.cfg.Frozen,
		},
	}
}

// Run processes every image in order, waiting the configured delay between
// images. With Loop set it starts over after the last image, waiting the
// delay at the wrap-around too, until ctx is cancelled.
//
// Decode and transport failures are logged and the run moves on. Run only
// returns an error for invalid input, when ctx is done, or with
// ErrNothingSent when a looping pass skipped every image.
func (s *Sender) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	solid, ok, err := s.cfg.SolidColor()
	if err != nil {
		return sum, err
	}
	if ok {
		grid := domain.NewGridWithColor(s.cfg.Rows, s.cfg.Cols, solid)
		s.logger.Info("sending test color", "color", solid.Hex())
		err := s.send(ctx, &sum, solid.Hex(), render.GridRecords(grid, s.options()))
		if err == nil {
			sum.Images++
		}
		return sum, err
	}

	if len(s.cfg.Images) == 0 {
		return sum, &config.InputError{Field: "filename", Reason: "required image file name"}
	}

	first := true
	for {
		sent := sum.Images
		for _, path := range s.cfg.Images {
			if !first {
				if err := sleep(ctx, s.cfg.Delay()); err != nil {
					return sum, err
				}
			}
			first = false

			if err := s.processImage(ctx, &sum, path); err != nil {
				return sum, err
			}
		}

		if !s.cfg.Loop {
			return sum, nil
		}
		if sum.Images == sent {
			return sum, ErrNothingSent
		}
	}
}

func (s *Sender) processImage(ctx context.Context, sum *Summary, path string) error {
	if path == "" {
		return &config.InputError{Field: "filename", Reason: "image file name is empty"}
	}

	img, err := s.decode(path)
	if err != nil {
		s.logger.Error("failed to decode image", "path", path, "error", err)
		sum.Skipped++
		return nil
	}

	s.logger.Info("sending image",
		"path", path,
		"format", img.Format,
		"animated", img.Animated(),
		"frames", img.FrameCount())

	err = s.send(ctx, sum, path, render.Records(img, s.options()))
	if err != nil && !imagefile.IsDecodeError(err) {
		return err
	}
	if err != nil {
		s.logger.Error("failed to sample image", "path", path, "error", err)
		sum.Skipped++
		return nil
	}

	sum.Images++
	return nil
}

// send pulls records one at a time and delivers each before building the
// next. A sampling error is returned as a DecodeError.
func (s *Sender) send(ctx context.Context, sum *Summary, path string, records iter.Seq2[render.Record, error]) error {
	for rec, err := range records {
		if err != nil {
			return &imagefile.DecodeError{Path: path, Err: err}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if s.cfg.Curl {
			line, err := s.poster.CurlCommand(rec.State)
			if err != nil {
				return fmt.Errorf("failed to build curl command: %w", err)
			}
			fmt.Fprintln(s.out, line)
			sum.Records++
			continue
		}

		if err := s.poster.SendState(ctx, rec.State); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logTransportError(path, rec, err)
			sum.Failures++
			continue
		}

		sum.Records++
		s.logger.Debug("sent segment",
			"path", path,
			"frame", rec.Frame,
			"segment", rec.Segment,
			"commands", len(rec.Commands),
			"cost", rec.Commands.Cost(),
		)
	}
	return nil
}

func (s *Sender) logTransportError(path string, rec render.Record, err error) {
	url := s.poster.Endpoint()
	var te *wled.TransportError
	if errors.As(err, &te) && te.URL != "" {
		url = te.URL
	}
	s.logger.Warn("failed to send segment",
		"path", path,
		"frame", rec.Frame,
		"segment", rec.Segment,
		"url", url,
		"error", err,
	)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
