package platform

import (
	"errors"
	"fmt"
)

// WindowID is a platform-neutral window identifier.
type WindowID uint64

// WindowConfig describes the top-level window a Connection should create.
type WindowConfig struct {
	Title  string
	Width  int
	Height int
}

// Backend opens connections to a native windowing system.
type Backend interface {
	Name() string
	// Connect opens a session with the windowing system. An empty display
	// selects the backend default.
	Connect(display string) (Connection, error)
}

// Connection is an open channel to the windowing system. It owns no
// windows; callers destroy windows before closing the connection.
type Connection interface {
	// CreateWindow creates, titles and maps a window with close
	// notification registered. On error nothing has been allocated.
	CreateWindow(cfg WindowConfig) (NativeWindow, error)
	Close() error
}

// NativeWindow is a single on-screen window.
type NativeWindow interface {
	ID() WindowID
	// Drain processes every queued event without blocking and reports
	// whether any of them was a close request.
	Drain() bool
	Destroy() error
}

var (
	// ErrConnection is matched by every ConnectionError.
	ErrConnection = errors.New("windowing system unreachable")
	// ErrUnsupported is returned by backends for platforms without a
	// native implementation.
	ErrUnsupported = errors.New("platform not supported")
)

// ConnectionError reports that a backend could not reach its windowing
// system.
type ConnectionError struct {
	Backend string
	Display string
	Err     error
}

func (e *ConnectionError) Error() string {
	target := e.Backend
	if e.Display != "" {
		target = fmt.Sprintf("%s display %q", e.Backend, e.Display)
	}
	if e.Err == nil {
		return fmt.Sprintf("failed to connect to %s", target)
	}
	return fmt.Sprintf("failed to connect to %s: %v", target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }
