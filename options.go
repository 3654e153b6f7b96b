package storm

import (
	"log/slog"

	"github.com/1broseidon/storm/internal/platform"
)

// Option configures New.
type Option func(*options)

type options struct {
	display string
	logger  *slog.Logger
	backend platform.Backend
}

// WithDisplay selects the display to connect to. It is ignored by
// backends without a display concept.
func WithDisplay(display string) Option {
	return func(o *options) { o.display = display }
}

// WithLogger sets the logger used for lifecycle and teardown messages.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func withBackend(b platform.Backend) Option {
	return func(o *options) { o.backend = b }
}

func defaultOptions() options {
	return options{
		logger:  slog.New(slog.DiscardHandler),
		backend: platform.Default(),
	}
}
