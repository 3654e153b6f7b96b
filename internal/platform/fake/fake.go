// Package fake provides an in-memory platform backend. It records every
// native call in order and lets tests inject events into a window's queue.
package fake

import (
	"errors"
	"fmt"
	"sync"

	"github.com/1broseidon/storm/internal/platform"
)

// Recorded call names.
const (
	CallConnect         = "connect"
	CallCreateWindow    = "create-window"
	CallDrain           = "drain"
	CallDestroyWindow   = "destroy-window"
	CallCloseConnection = "close-connection"
)

// EventKind is the type of a queued fake event.
type EventKind int

const (
	EventExpose EventKind = iota
	EventKeyPress
	EventClose
)

// ErrUnreachable is the default connect error for an unreachable backend.
var ErrUnreachable = errors.New("fake display unreachable")

// Backend is a platform.Backend whose behaviour is set by its fields.
type Backend struct {
	// Unreachable makes Connect fail with a ConnectionError.
	Unreachable bool
	// CreateErr makes CreateWindow fail after the connection opened.
	CreateErr error
	// DestroyErr and CloseErr are returned from teardown calls.
	DestroyErr error
	CloseErr   error

	mu      sync.Mutex
	calls   []string
	windows []*Window
	nextID  platform.WindowID
	open    int
}

var _ platform.Backend = (*Backend)(nil)

// Name implements platform.Backend.
func (b *Backend) Name() string { return "fake" }

// Connect implements platform.Backend.
func (b *Backend) Connect(display string) (platform.Connection, error) {
	b.record(CallConnect)
	if b.Unreachable {
		return nil, &platform.ConnectionError{Backend: b.Name(), Display: display, Err: ErrUnreachable}
	}
	b.mu.Lock()
	b.open++
	b.mu.Unlock()
	return &Connection{backend: b}, nil
}

// Calls returns the recorded call names in order.
func (b *Backend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// Count returns how many times call was recorded.
func (b *Backend) Count(call string) int {
	n := 0
	for _, c := range b.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Windows returns every window created so far.
func (b *Backend) Windows() []*Window {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*Window(nil), b.windows...)
}

// LastWindow returns the most recently created window, or nil.
func (b *Backend) LastWindow() *Window {
	ws := b.Windows()
	if len(ws) == 0 {
		return nil
	}
	return ws[len(ws)-1]
}

// Live reports how many connections and windows are still allocated.
func (b *Backend) Live() (connections, windows int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range b.windows {
		if !w.destroyed {
			windows++
		}
	}
	return b.open, windows
}

func (b *Backend) record(call string) {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	b.mu.Unlock()
}

// Connection is a fake open session.
type Connection struct {
	backend *Backend
	closed  bool
}

// CreateWindow implements platform.Connection.
func (c *Connection) CreateWindow(cfg platform.WindowConfig) (platform.NativeWindow, error) {
	b := c.backend
	b.record(CallCreateWindow)
	if c.closed {
		return nil, fmt.Errorf("fake connection is closed")
	}
	if b.CreateErr != nil {
		return nil, b.CreateErr
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	w := &Window{backend: b, id: b.nextID, Config: cfg, Visible: true}
	b.windows = append(b.windows, w)
	return w, nil
}

// Close implements platform.Connection.
func (c *Connection) Close() error {
	b := c.backend
	b.record(CallCloseConnection)
	if c.closed {
		return nil
	}
	c.closed = true
	b.mu.Lock()
	b.open--
	b.mu.Unlock()
	return b.CloseErr
}

// Window is a fake native window with an injectable event queue.
type Window struct {
	Config  platform.WindowConfig
	Visible bool

	backend   *Backend
	id        platform.WindowID
	queue     []EventKind
	processed int
	destroyed bool
}

// Post queues events to be seen by the next Drain.
func (w *Window) Post(events ...EventKind) {
	w.backend.mu.Lock()
	w.queue = append(w.queue, events...)
	w.backend.mu.Unlock()
}

// RequestClose queues a close-notification event.
func (w *Window) RequestClose() { w.Post(EventClose) }

// Processed returns how many events have been drained.
func (w *Window) Processed() int {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	return w.processed
}

// Pending returns how many events are queued.
func (w *Window) Pending() int {
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	return len(w.queue)
}

// ID implements platform.NativeWindow.
func (w *Window) ID() platform.WindowID { return w.id }

// Drain implements platform.NativeWindow.
func (w *Window) Drain() bool {
	w.backend.record(CallDrain)
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()

	closed := false
	for _, ev := range w.queue {
		if ev == EventClose {
			closed = true
		}
	}
	w.processed += len(w.queue)
	w.queue = nil
	return closed
}

// Destroy implements platform.NativeWindow.
func (w *Window) Destroy() error {
	w.backend.record(CallDestroyWindow)
	w.backend.mu.Lock()
	defer w.backend.mu.Unlock()
	w.destroyed = true
	w.Visible = false
	return w.backend.DestroyErr
}
