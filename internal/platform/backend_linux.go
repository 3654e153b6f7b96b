//go:build linux

package platform

import (
	"fmt"

	"github.com/1broseidon/storm/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

// LinuxBackend opens X11 connections.
type LinuxBackend struct{}

var _ Backend = LinuxBackend{}

// Default returns the backend for the build target.
func Default() Backend { return LinuxBackend{} }

// Name implements Backend.
func (LinuxBackend) Name() string { return "x11" }

// Connect opens an X11 display connection. The display is resolved from
// the argument, $DISPLAY, then local server sockets.
func (b LinuxBackend) Connect(display string) (Connection, error) {
	resolved := x11.ResolveDisplay(display)
	conn, err := x11.NewConnection(resolved)
	if err != nil {
		return nil, &ConnectionError{Backend: b.Name(), Display: resolved, Err: err}
	}
	return &linuxConnection{conn: conn}, nil
}

type linuxConnection struct {
	conn *x11.Connection
}

func (c *linuxConnection) CreateWindow(cfg WindowConfig) (NativeWindow, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("x11 connection is closed")
	}
	wid, err := c.conn.CreateWindow(cfg.Title, cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}
	return &linuxWindow{conn: c.conn, id: wid}, nil
}

func (c *linuxConnection) Close() error {
	if c.conn == nil {
		return nil
	}
	c.conn.Close()
	c.conn = nil
	return nil
}

type linuxWindow struct {
	conn *x11.Connection
	id   xproto.Window
}

func (w *linuxWindow) ID() WindowID { return WindowID(w.id) }

func (w *linuxWindow) Drain() bool {
	if w.id == 0 {
		return false
	}
	return w.conn.DrainEvents(w.id).CloseRequested
}

func (w *linuxWindow) Destroy() error {
	if w.id == 0 {
		return nil
	}
	err := w.conn.DestroyWindow(w.id)
	w.id = 0
	return err
}
