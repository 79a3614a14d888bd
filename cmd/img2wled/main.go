// Command img2wled sends images to a WLED LED matrix.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jwulff/img2wled/internal/config"
	"github.com/jwulff/img2wled/internal/sender"
	"github.com/jwulff/img2wled/internal/wled"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
)

const scanTimeout = 30 * time.Second

func main() {
	log.SetFlags(0)

	cfg, fs, err := config.Parse("img2wled", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	logHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05 PM",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n\nUsage: img2wled [flags] <image>...\n", err)
		fs.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, logger, cfg); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, logger *slog.Logger, cfg config.Config) error {
	if cfg.Scan {
		return scan(ctx)
	}

	client := wled.NewClient(cfg.Host)

	if !cfg.Curl {
		checkCtx, cancel := context.WithTimeout(ctx, wled.DefaultTimeout)
		reachable := client.IsReachable(checkCtx)
		cancel()

		if !reachable {
			logger.Warn(
				"controller is not answering, sending anyway",
				"url", client.Endpoint())
		}
	}

	s := sender.New(cfg, client, os.Stdout, logger)

	sum, err := s.Run(ctx)
	logger.Debug(
		"run finished",
		"images", sum.Images,
		"skipped", sum.Skipped,
		"records", sum.Records,
		"failures", sum.Failures)

	if err == nil && cfg.Watch {
		_, err = s.Watch(ctx)
	}

	if errors.Is(err, context.Canceled) {
		logger.Info("stopped")
		return nil
	}
	return err
}

func scan(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, scanTimeout)
	defer cancel()

	fmt.Fprintln(os.Stderr, "Scanning for WLED controllers on the local network...")

	devices, err := wled.ScanForDevices(ctx, func(current, total int) {
		pct := current * 100 / total
		bar := strings.Repeat("█", pct/5) + strings.Repeat("░", 20-pct/5)
		fmt.Fprintf(os.Stderr, "\r  [%s] %d%% (%d/%d)", bar, pct, current, total)
	})
	fmt.Fprintln(os.Stderr)

	if err != nil {
		return fmt.Errorf("failed to scan: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No WLED controllers found.")
		return nil
	}

	fmt.Printf("Found %d controller(s):\n", len(devices))
	for i, d := range devices {
		fmt.Printf("  %d. %s - %s (WLED %s, %d LEDs)\n", i+1, d.Name, d.IP, d.Version, d.LEDs)
	}
	fmt.Println()
	fmt.Printf("  img2wled --ip %s <image>\n", devices[0].IP)
	return nil
}
