package storm

import (
	"errors"

	"github.com/1broseidon/storm/internal/platform"
)

// ConnectionError is returned by New when the windowing system cannot be
// reached. It matches ErrConnection with errors.Is.
type ConnectionError = platform.ConnectionError

var (
	// ErrConnection matches every ConnectionError.
	ErrConnection = platform.ErrConnection
	// ErrUnsupported is wrapped by the ConnectionError returned on
	// platforms without a native backend.
	ErrUnsupported = platform.ErrUnsupported
	// ErrInvalidSize is returned by New for non-positive or oversized
	// dimensions.
	ErrInvalidSize = errors.New("invalid window size")
)
