package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// DrainStats summarises one pass over the event queue.
type DrainStats struct {
	Events         int
	Errors         int
	CloseRequested bool
}

// DrainEvents reads every event already queued on the connection without
// waiting for new ones. A WM_DELETE_WINDOW client message or a
// DestroyNotify for wid marks the pass as a close request.
func (c *Connection) DrainEvents(wid xproto.Window) DrainStats {
	var stats DrainStats
	if c == nil || c.XUtil == nil {
		return stats
	}

	conn := c.XUtil.Conn()
	for {
		ev, xerr := conn.PollForEvent()
		if ev == nil && xerr == nil {
			return stats
		}
		if xerr != nil {
			stats.Errors++
			continue
		}
		stats.Events++
		if c.isCloseEvent(ev, wid) {
			stats.CloseRequested = true
		}
	}
}

func (c *Connection) isCloseEvent(ev xgb.Event, wid xproto.Window) bool {
	switch e := ev.(type) {
	case xproto.ClientMessageEvent:
		if e.Window != wid || e.Type != c.wmProtocols || e.Format != 32 {
			return false
		}
		return len(e.Data.Data32) > 0 && xproto.Atom(e.Data.Data32[0]) == c.wmDeleteWindow
	case xproto.DestroyNotifyEvent:
		return e.Window == wid
	}
	return false
}
