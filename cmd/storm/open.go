package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1broseidon/storm"
	"github.com/1broseidon/storm/internal/config"
	"github.com/1broseidon/storm/internal/x11"
)

// eventLoop is the part of *storm.Window the drive loop needs.
type eventLoop interface {
	ShouldClose() bool
	Update()
}

func runOpen(args []string, stderr io.Writer) int {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	fs.SetOutput(stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/storm/config.yaml)")
	fs.String("title", config.DefaultTitle, "Window title")
	fs.Int("width", config.DefaultWidth, "Client width in pixels")
	fs.Int("height", config.DefaultHeight, "Client height in pixels")
	fs.String("display", "", "X11 display (default: $DISPLAY)")
	fs.Duration("poll-interval", config.DefaultPollInterval, "Sleep between event drains (0 = busy loop)")
	fs.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: storm open [options]")
		fmt.Fprintln(stderr, "")
		fmt.Fprintln(stderr, "Open a window and run until it is closed or the process is interrupted.")
		fmt.Fprintln(stderr, "Flags override values from the config file.")
		fmt.Fprintln(stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(stderr, "open takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	cfg := res.Config
	if err := applyFlagOverrides(cfg, fs); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := newLogger(stderr, cfg.SlogLevel())
	if res.File != "" {
		logger.Debug("configuration loaded", "file", res.File)
	}
	exportXAuthority(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := storm.New(cfg.Title, cfg.Width, cfg.Height,
		storm.WithDisplay(cfg.Display),
		storm.WithLogger(logger))
	if err != nil {
		var connErr *storm.ConnectionError
		if errors.As(err, &connErr) {
			logger.Error("windowing system unreachable",
				"backend", connErr.Backend,
				"display", connErr.Display,
				"error", connErr.Err)
		} else {
			logger.Error("failed to open window", "error", err)
		}
		return 1
	}
	defer w.Close()

	if drive(ctx, w, cfg.PollInterval) {
		logger.Info("window closed by user")
	} else {
		logger.Info("interrupted", "cause", context.Cause(ctx))
	}
	return 0
}

// drive runs Update until the window asks to close or ctx ends. It reports
// whether the window asked to close.
func drive(ctx context.Context, w eventLoop, interval time.Duration) bool {
	var timer *time.Timer
	if interval > 0 {
		timer = time.NewTimer(interval)
		defer timer.Stop()
	}

	for !w.ShouldClose() {
		w.Update()
		if w.ShouldClose() {
			break
		}
		if ctx.Err() != nil {
			return false
		}
		if timer == nil {
			continue
		}
		select {
		case <-ctx.Done():
			return false
		case <-timer.C:
			timer.Reset(interval)
		}
	}
	return true
}

// applyFlagOverrides copies explicitly set flags onto cfg.
func applyFlagOverrides(cfg *config.Config, fs *flag.FlagSet) error {
	var err error
	fs.Visit(func(f *flag.Flag) {
		if err != nil {
			return
		}
		getter, ok := f.Value.(flag.Getter)
		if !ok {
			return
		}
		switch f.Name {
		case "title":
			cfg.Title = getter.Get().(string)
		case "width":
			cfg.Width = getter.Get().(int)
		case "height":
			cfg.Height = getter.Get().(int)
		case "display":
			cfg.Display = getter.Get().(string)
		case "poll-interval":
			cfg.PollInterval = getter.Get().(time.Duration)
		case "log-level":
			level := getter.Get().(string)
			if _, perr := config.ParseLogLevel(level); perr != nil {
				err = fmt.Errorf("--log-level: %w", perr)
				return
			}
			cfg.LogLevel = level
		}
	})
	return err
}

// exportXAuthority sets XAUTHORITY for the X11 handshake when the
// environment does not already carry one.
func exportXAuthority(cfg *config.Config, logger *slog.Logger) {
	if os.Getenv("XAUTHORITY") != "" {
		return
	}
	xauth := x11.ResolveXAuthority(cfg.XAuthority)
	if xauth == "" {
		return
	}
	if err := os.Setenv("XAUTHORITY", xauth); err != nil {
		logger.Warn("failed to export XAUTHORITY", "path", xauth, "error", err)
		return
	}
	logger.Debug("exported XAUTHORITY", "path", xauth)
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}
