//go:build linux

package input

import (
	"fmt"
	"os"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const netActiveWindow = "_NET_ACTIVE_WINDOW"

// x11Focus reads and requests the EWMH active window
type x11Focus struct {
	mu   sync.Mutex
	conn *xgb.Conn
	root xproto.Window
	atom xproto.Atom
}

func openX11Focus() (*x11Focus, error) {
	if os.Getenv("DISPLAY") == "" {
		return nil, ErrNoForeground
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root

	reply, err := xproto.InternAtom(conn, true, uint16(len(netActiveWindow)), netActiveWindow).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("intern %s: %w", netActiveWindow, err)
	}
	if reply.Atom == xproto.AtomNone {
		conn.Close()
		return nil, ErrNoForeground
	}
	return &x11Focus{conn: conn, root: root, atom: reply.Atom}, nil
}

func (f *x11Focus) activeWindow() (Window, error) {
	reply, err := xproto.GetProperty(f.conn, false, f.root, f.atom, xproto.AtomWindow, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", netActiveWindow, err)
	}
	if reply.ValueLen == 0 || len(reply.Value) < 4 {
		return 0, nil
	}
	return Window(xgb.Get32(reply.Value)), nil
}

func (f *x11Focus) active() (Window, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activeWindow()
}

// activate sends a _NET_ACTIVE_WINDOW client message to the root window,
// source indication 2 (pager) so window managers honour it.
func (f *x11Focus) activate(w Window) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: xproto.Window(w),
		Type:   f.atom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{2, xproto.TimeCurrentTime, 0, 0, 0}),
	}
	mask := uint32(xproto.EventMaskSubstructureNotify | xproto.EventMaskSubstructureRedirect)
	if err := xproto.SendEventChecked(f.conn, false, f.root, mask, string(ev.Bytes())).Check(); err != nil {
		return fmt.Errorf("activate window %#x: %w", uintptr(w), err)
	}
	return nil
}

func (f *x11Focus) close() {
	f.conn.Close()
}
