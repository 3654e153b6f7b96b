package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultTitle        = "storm"
	DefaultWidth        = 800
	DefaultHeight       = 600
	DefaultPollInterval = 16 * time.Millisecond
	DefaultLogLevel     = "info"

	// maxDimension mirrors the window size limit of the X11 core protocol.
	maxDimension = 0xFFFF
)

// Config is the effective configuration of the storm binary.
type Config struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`

	// Display selects the X11 display (e.g. ":1"). Empty uses $DISPLAY.
	Display string `yaml:"display,omitempty"`
	// XAuthority is exported as XAUTHORITY when the environment has none.
	XAuthority string `yaml:"xauthority,omitempty"`

	// PollInterval is the sleep between event drains; 0 polls continuously.
	PollInterval time.Duration `yaml:"poll_interval"`
	LogLevel     string        `yaml:"log_level"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Title:        DefaultTitle,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		PollInterval: DefaultPollInterval,
		LogLevel:     DefaultLogLevel,
	}
}

// ValidationError reports an invalid config value, optionally with the
// file position that set it.
type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Width <= 0 || c.Width > maxDimension {
		return &ValidationError{Path: "width", Err: fmt.Errorf("width must be between 1 and %d", maxDimension)}
	}
	if c.Height <= 0 || c.Height > maxDimension {
		return &ValidationError{Path: "height", Err: fmt.Errorf("height must be between 1 and %d", maxDimension)}
	}
	if strings.ContainsRune(c.Title, 0) {
		return &ValidationError{Path: "title", Err: fmt.Errorf("title must not contain NUL")}
	}
	if c.PollInterval < 0 {
		return &ValidationError{Path: "poll_interval", Err: fmt.Errorf("poll_interval must be >= 0")}
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return &ValidationError{Path: "log_level", Err: err}
	}
	return nil
}

// SlogLevel returns the configured level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	level, err := ParseLogLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel maps debug, info, warn and error (any case) to slog levels.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log_level must be one of: debug, info, warn, error")
}
