package config

import "github.com/spf13/pflag"

// Parse builds the configuration from command-line arguments. Defaults are
// overlaid by the file given with --config, which is overlaid by any flag
// set explicitly. Positional arguments replace the file's image list.
//
// The returned FlagSet can be used to print usage.
func Parse(name string, args []string) (Config, *pflag.FlagSet, error) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SortFlags = false

	var configPath string
	fs.StringVar(&configPath, "config", "", "YAML config file")

	flagged := Default()
	fs.IntVarP(&flagged.Rows, "rows", "r", flagged.Rows, "row count")
	fs.IntVarP(&flagged.Cols, "cols", "c", flagged.Cols, "column count")
	fs.StringVar(&flagged.Host, "ip", flagged.Host, "controller address to send to (host or host:port)")
	fs.IntVarP(&flagged.Brightness, "brightness", "b", flagged.Brightness, "brightness (0-255)")
	fs.IntVarP(&flagged.TransitionMs, "transition", "t", flagged.TransitionMs, "transition time in milliseconds")
	fs.BoolVar(&flagged.Frozen, "frozen", flagged.Frozen, "freeze the segment's effect")
	fs.IntVar(&flagged.Budget, "budget", flagged.Budget, "maximum data items per request")
	fs.IntVarP(&flagged.DelayMs, "delay", "d", flagged.DelayMs, "delay between images in milliseconds")
	fs.BoolVarP(&flagged.Loop, "loop", "l", flagged.Loop, "loop over the images forever")
	fs.BoolVar(&flagged.Curl, "curl", flagged.Curl, "print curl commands instead of sending requests")
	fs.StringVar(&flagged.TestColor, "test-color", flagged.TestColor, "send a solid #rgb or #rrggbb color instead of images")
	fs.BoolVarP(&flagged.Watch, "watch", "w", flagged.Watch, "after sending, re-send images whenever their files change")
	fs.BoolVar(&flagged.Scan, "scan", flagged.Scan, "scan the local network for controllers and exit")
	fs.BoolVarP(&flagged.Verbose, "verbose", "v", flagged.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return Config{}, fs, err
	}

	cfg := Default()
	if configPath != "" {
		var err error
		if cfg, err = Load(configPath); err != nil {
			return Config{}, fs, err
		}
	}

	fs.Visit(func(f *pflag.Flag) {
		overlay(&cfg, flagged, f.Name)
	})

	if fs.NArg() > 0 {
		cfg.Images = fs.Args()
	}

	return cfg, fs, nil
}

func overlay(dst *Config, src Config, flag string) {
	switch flag {
	case "rows":
		dst.Rows = src.Rows
	case "cols":
		dst.Cols = src.Cols
	case "ip":
		dst.Host = src.Host
	case "brightness":
		dst.Brightness = src.Brightness
	case "transition":
		dst.TransitionMs = src.TransitionMs
	case "frozen":
		dst.Frozen = src.Frozen
	case "budget":
		dst.Budget = src.Budget
	case "delay":
		dst.DelayMs = src.DelayMs
	case "loop":
		dst.Loop = src.Loop
	case "curl":
		dst.Curl = src.Curl
	case "test-color":
		dst.TestColor = src.TestColor
	case "watch":
		dst.Watch = src.Watch
	case "scan":
		dst.Scan = src.Scan
	case "verbose":
		dst.Verbose = src.Verbose
	}
}
