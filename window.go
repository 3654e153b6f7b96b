// Package storm opens a single native window and reports when the user
// asks to close it.
//
// A Window is driven from one goroutine:
//
//	w, err := storm.New("storm", 800, 600)
//	if err != nil {
//		return err
//	}
//	defer w.Close()
//	for !w.ShouldClose() {
//		w.Update()
//	}
package storm

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/1broseidon/storm/internal/platform"
)

// MaxDimension is the largest accepted width or height. X11 carries window
// sizes as 16-bit values.
const MaxDimension = 0xFFFF

// Window is one native top-level window and the connection that owns it.
//
// New locks the calling goroutine to its OS thread until Close, since
// native event queues are bound to the thread that created the window.
type Window struct {
	backend string
	conn    platform.Connection
	native  platform.NativeWindow
	logger  *slog.Logger

	closeRequested bool
}

// New connects to the windowing system and shows a window of the given
// client size. On failure nothing is left allocated; an unreachable
// windowing system yields a *ConnectionError.
func New(title string, width, height int, opts ...Option) (*Window, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	runtime.LockOSThread()
	ok := false
	defer func() {
		if !ok {
			runtime.UnlockOSThread()
		}
	}()

	conn, err := o.backend.Connect(o.display)
	if err != nil {
		return nil, err
	}
	defer func() {
		if !ok {
			if cerr := conn.Close(); cerr != nil {
				o.logger.Warn("failed to close connection after window creation failure",
					"backend", o.backend.Name(),
					"error", cerr)
			}
		}
	}()

	native, err := conn.CreateWindow(platform.WindowConfig{
		Title:  title,
		Width:  width,
		Height: height,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s window: %w", o.backend.Name(), err)
	}

	ok = true
	w := &Window{
		backend: o.backend.Name(),
		conn:    conn,
		native:  native,
		logger:  o.logger,
	}
	w.logger.Info("window created",
		"backend", w.backend,
		"window_id", uint64(native.ID()),
		"title", title,
		"width", width,
		"height", height)
	return w, nil
}

// Update processes every queued event without waiting for new ones. It is
// a no-op after Close.
func (w *Window) Update() {
	if w == nil || w.native == nil {
		return
	}
	if w.native.Drain() && !w.closeRequested {
		w.closeRequested = true
		w.logger.Debug("close requested",
			"backend", w.backend,
			"window_id", uint64(w.native.ID()))
	}
}

// ShouldClose reports whether a close request has been seen by Update.
// Once true it stays true.
func (w *Window) ShouldClose() bool {
	return w != nil && w.closeRequested
}

// ID returns the native window identifier, or 0 after Close.
func (w *Window) ID() uint64 {
	if w == nil || w.native == nil {
		return 0
	}
	return uint64(w.native.ID())
}

// Close destroys the window and then its connection. Teardown failures are
// logged, not returned, and repeated calls do nothing.
func (w *Window) Close() error {
	if w == nil || (w.native == nil && w.conn == nil) {
		return nil
	}

	if w.native != nil {
		id := uint64(w.native.ID())
		if err := w.native.Destroy(); err != nil {
			w.logger.Warn("failed to destroy window",
				"backend", w.backend,
				"window_id", id,
				"error", err)
		}
		w.native = nil
	}
	if w.conn != nil {
		if err := w.conn.Close(); err != nil {
			w.logger.Warn("failed to close connection",
				"backend", w.backend,
				"error", err)
		}
		w.conn = nil
	}

	runtime.UnlockOSThread()
	w.logger.Debug("window closed", "backend", w.backend)
	return nil
}
