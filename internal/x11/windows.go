package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
)

// MaxDimension is the largest width or height the core protocol can carry.
const MaxDimension = 0xFFFF

// windowEventMask is the set of events selected on every created window.
// Only client messages and destroy notifications affect close state.
const windowEventMask = xproto.EventMaskExposure |
	xproto.EventMaskKeyPress |
	xproto.EventMaskStructureNotify

// CreateWindow creates a top-level window centered on the monitor under the
// pointer, titles it, advertises WM_DELETE_WINDOW and maps it. If any step
// fails the window is destroyed before returning.
func (c *Connection) CreateWindow(title string, width, height int) (xproto.Window, error) {
	if width <= 0 || height <= 0 || width > MaxDimension || height > MaxDimension {
		return 0, fmt.Errorf("invalid window size %dx%d", width, height)
	}

	conn := c.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate window id: %w", err)
	}

	x, y := c.initialPosition(width, height)
	screen := c.XUtil.Screen()
	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.Root,
		int16(x), int16(y),
		uint16(width), uint16(height),
		1,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwEventMask,
		[]uint32{screen.WhitePixel, windowEventMask},
	).Check()
	if err != nil {
		return 0, fmt.Errorf("failed to create window: %w", err)
	}

	if err := c.decorate(wid, title, x, y, width, height); err != nil {
		c.DestroyWindow(wid)
		return 0, err
	}

	if err := xproto.MapWindowChecked(conn, wid).Check(); err != nil {
		c.DestroyWindow(wid)
		return 0, fmt.Errorf("failed to map window: %w", err)
	}
	if err := c.Sync(); err != nil {
		c.DestroyWindow(wid)
		return 0, fmt.Errorf("failed to sync after map: %w", err)
	}

	return wid, nil
}

// decorate sets the ICCCM and EWMH properties a window manager reads before
// the window is mapped.
func (c *Connection) decorate(wid xproto.Window, title string, x, y, width, height int) error {
	if err := icccm.WmNameSet(c.XUtil, wid, title); err != nil {
		return fmt.Errorf("failed to set WM_NAME: %w", err)
	}
	// _NET_WM_NAME carries UTF-8; WM_NAME is Latin-1 and may mangle titles.
	if err := ewmh.WmNameSet(c.XUtil, wid, title); err != nil {
		return fmt.Errorf("failed to set _NET_WM_NAME: %w", err)
	}
	if err := icccm.WmProtocolsSet(c.XUtil, wid, []string{"WM_DELETE_WINDOW"}); err != nil {
		return fmt.Errorf("failed to set WM_PROTOCOLS: %w", err)
	}
	if err := ewmh.WmPidSet(c.XUtil, wid, uint(os.Getpid())); err != nil {
		return fmt.Errorf("failed to set _NET_WM_PID: %w", err)
	}
	// Window managers ignore the CreateWindow origin unless hinted.
	hints := &icccm.NormalHints{
		Flags:  icccm.SizeHintPPosition | icccm.SizeHintPSize,
		X:      x,
		Y:      y,
		Width:  uint(width),
		Height: uint(height),
	}
	if err := icccm.WmNormalHintsSet(c.XUtil, wid, hints); err != nil {
		return fmt.Errorf("failed to set WM_NORMAL_HINTS: %w", err)
	}
	return nil
}

// DestroyWindow destroys a window and waits for the server to acknowledge it.
func (c *Connection) DestroyWindow(wid xproto.Window) error {
	if c == nil || c.XUtil == nil || wid == 0 {
		return nil
	}
	return xproto.DestroyWindowChecked(c.XUtil.Conn(), wid).Check()
}

// SendDeleteRequest asks the owner of wid to close it by sending the
// WM_DELETE_WINDOW protocol message a window manager sends when the user
// clicks the close button.
func (c *Connection) SendDeleteRequest(wid xproto.Window) error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wid,
		Type:   c.wmProtocols,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(c.wmDeleteWindow), uint32(xproto.TimeCurrentTime), 0, 0, 0,
		}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		wid,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}
