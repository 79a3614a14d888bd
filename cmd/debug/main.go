package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/jwulff/img2wled/internal/domain"
	"github.com/jwulff/img2wled/internal/encoder"
	"github.com/jwulff/img2wled/internal/imagefile"
	"github.com/jwulff/img2wled/internal/render"
	"github.com/jwulff/img2wled/internal/wled"
	"github.com/spf13/pflag"
)

var (
	rows   = 16
	cols   = 16
	budget = encoder.DefaultBudget
	ip     = ""
	dump   = false
	solid  = ""
)

func init() {
	pflag.IntVarP(&rows, "rows", "r", rows, "row count")
	pflag.IntVarP(&cols, "cols", "c", cols, "column count")
	pflag.IntVar(&budget, "budget", budget, "maximum data items per request")
	pflag.StringVar(&ip, "ip", ip, "also send the first record to this controller")
	pflag.BoolVar(&dump, "dump", dump, "print the JSON of every record")
	pflag.StringVar(&solid, "test-color", solid, "use a solid #rgb or #rrggbb color instead of an image")
}

func main() {
	pflag.Parse()
	if pflag.NArg() < 1 && solid == "" {
		fmt.Println("Usage: debug [flags] <image>")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	img, err := load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Image:")
	fmt.Printf("  Format: %s\n", img.Format)
	fmt.Printf("  Frames: %d (animated: %t)\n", img.FrameCount(), img.Animated())
	fmt.Printf("  Grid: %dx%d (%d pixels)\n", rows, cols, rows*cols)
	fmt.Printf("  Budget: %d items\n", budget)
	fmt.Println()

	opts := render.DefaultOptions()
	opts.Rows = rows
	opts.Cols = cols
	opts.Budget = budget

	var first *wled.StateCommand
	records, bytes := 0, 0
	lastFrame := -1

	for rec, err := range render.Records(img, opts) {
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if first == nil {
			state := rec.State
			first = &state
		}

		if rec.Frame != lastFrame {
			fmt.Printf("Frame %d:\n", rec.Frame)
			lastFrame = rec.Frame
		}

		data, _ := json.Marshal(rec.State)
		records++
		bytes += len(data)

		start, end := rec.Commands.Start(), rec.Commands.End()
		fmt.Printf("  Segment %d: pixels %d..%d, %d commands, cost %d, %d bytes\n",
			rec.Segment, start, end, len(rec.Commands), rec.Commands.Cost(), len(data))

		// Check the wire form decodes back to the same commands.
		_, parsed, err := wled.ParseStateCommand(data)
		switch {
		case err != nil:
			fmt.Printf("    PARSE ERROR: %v\n", err)
		case len(parsed) != len(rec.Commands):
			fmt.Printf("    MISMATCH: parsed %d commands\n", len(parsed))
		}

		if dump {
			fmt.Printf("    %s\n", data)
		}
	}

	fmt.Println()
	fmt.Printf("Total: %d records, %d bytes\n", records, bytes)

	if ip == "" || first == nil {
		return
	}

	client := wled.NewClient(ip)
	fmt.Printf("\nSending first record to %s...\n", client.Endpoint())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.SendState(ctx, *first); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Sent.")
}

func load() (*imagefile.Image, error) {
	if solid == "" {
		return imagefile.Decode(pflag.Arg(0))
	}
	c, err := domain.ParseHexColor(solid)
	if err != nil {
		return nil, err
	}
	return imagefile.Solid(solid, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}, rows, cols), nil
}
