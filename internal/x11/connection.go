package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil   *xgbutil.XUtil
	Root    xproto.Window
	Display string

	wmProtocols    xproto.Atom
	wmDeleteWindow xproto.Atom
}

// NewConnection establishes a connection to the X11 server named by display.
// An empty display falls back to $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	c := &Connection{
		XUtil:   xu,
		Root:    xu.RootWin(),
		Display: display,
	}
	if err := c.internProtocolAtoms(); err != nil {
		xu.Conn().Close()
		return nil, err
	}
	return c, nil
}

// internProtocolAtoms caches the atoms needed to recognise
// WM_DELETE_WINDOW client messages.
func (c *Connection) internProtocolAtoms() error {
	var err error
	if c.wmProtocols, err = xprop.Atm(c.XUtil, "WM_PROTOCOLS"); err != nil {
		return err
	}
	if c.wmDeleteWindow, err = xprop.Atm(c.XUtil, "WM_DELETE_WINDOW"); err != nil {
		return err
	}
	return nil
}

// Sync blocks until the server has processed every request sent so far.
func (c *Connection) Sync() error {
	_, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	return err
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c == nil || c.XUtil == nil {
		return
	}
	c.XUtil.Conn().Close()
	c.XUtil = nil
}
