//go:build windows

package platform

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	windowClassName = "StormWindowClass"

	wsOverlappedWindow = 0x00CF0000
	wsVisible          = 0x10000000
	csHRedraw          = 0x0002
	csVRedraw          = 0x0001

	wmDestroy = 0x0002
	wmClose   = 0x0010
	wmQuit    = 0x0012

	pmRemove  = 0x0001
	swShow    = 5
	idcArrow  = 32512
	cwDefault = -0x80000000

	errorClassAlreadyExists = syscall.Errno(1410)
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procAdjustWindowRectEx = user32.NewProc("AdjustWindowRectEx")
	procCreateWindowExW    = user32.NewProc("CreateWindowExW")
	procDefWindowProcW     = user32.NewProc("DefWindowProcW")
	procDestroyWindow      = user32.NewProc("DestroyWindow")
	procDispatchMessageW   = user32.NewProc("DispatchMessageW")
	procIsWindow           = user32.NewProc("IsWindow")
	procLoadCursorW        = user32.NewProc("LoadCursorW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostQuitMessage    = user32.NewProc("PostQuitMessage")
	procRegisterClassExW   = user32.NewProc("RegisterClassExW")
	procShowWindow         = user32.NewProc("ShowWindow")
	procTranslateMessage   = user32.NewProc("TranslateMessage")
	procUpdateWindow       = user32.NewProc("UpdateWindow")
)

var (
	classMu         sync.Mutex
	classRegistered bool
	windowProcPtr   = windows.NewCallback(windowProc)

	// Windows being destroyed by Destroy. Their WM_DESTROY must not post
	// WM_QUIT to the owning thread.
	tearingDown sync.Map
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type rect struct {
	Left, Top, Right, Bottom int32
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    windows.HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// WindowsBackend uses the Win32 user32 API. The process module handle
// stands in for the connection.
type WindowsBackend struct{}

var _ Backend = WindowsBackend{}

// Default returns the backend for the build target.
func Default() Backend { return WindowsBackend{} }

// Name implements Backend.
func (WindowsBackend) Name() string { return "win32" }

// Connect resolves the module handle windows are registered against. The
// display argument is ignored.
func (b WindowsBackend) Connect(display string) (Connection, error) {
	if err := user32.Load(); err != nil {
		return nil, &ConnectionError{Backend: b.Name(), Err: err}
	}
	var instance windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &instance); err != nil {
		return nil, &ConnectionError{Backend: b.Name(), Err: err}
	}
	return &windowsConnection{instance: instance}, nil
}

type windowsConnection struct {
	instance windows.Handle
}

func (c *windowsConnection) CreateWindow(cfg WindowConfig) (NativeWindow, error) {
	if c.instance == 0 {
		return nil, fmt.Errorf("win32 connection is closed")
	}
	if err := registerWindowClass(c.instance); err != nil {
		return nil, err
	}

	className, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return nil, err
	}
	title, err := windows.UTF16PtrFromString(cfg.Title)
	if err != nil {
		return nil, fmt.Errorf("invalid window title: %w", err)
	}

	// Grow the outer rectangle so the client area matches the request.
	r := rect{Right: int32(cfg.Width), Bottom: int32(cfg.Height)}
	style := uintptr(wsOverlappedWindow | wsVisible)
	procAdjustWindowRectEx.Call(uintptr(unsafe.Pointer(&r)), style, 0, 0)

	useDefault := int32(cwDefault)
	hwnd, _, callErr := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		style,
		uintptr(useDefault), uintptr(useDefault),
		uintptr(r.Right-r.Left), uintptr(r.Bottom-r.Top),
		0, 0,
		uintptr(c.instance),
		0,
	)
	if hwnd == 0 {
		return nil, fmt.Errorf("CreateWindowExW failed: %w", callErr)
	}

	procShowWindow.Call(hwnd, swShow)
	procUpdateWindow.Call(hwnd)
	return &windowsWindow{hwnd: windows.HWND(hwnd)}, nil
}

func (c *windowsConnection) Close() error {
	c.instance = 0
	return nil
}

func registerWindowClass(instance windows.Handle) error {
	classMu.Lock()
	defer classMu.Unlock()
	if classRegistered {
		return nil
	}

	className, err := windows.UTF16PtrFromString(windowClassName)
	if err != nil {
		return err
	}
	cursor, _, _ := procLoadCursorW.Call(0, idcArrow)
	wc := wndClassEx{
		Style:     csHRedraw | csVRedraw,
		WndProc:   windowProcPtr,
		Instance:  instance,
		Cursor:    windows.Handle(cursor),
		ClassName: className,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))

	atom, _, callErr := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))
	if atom == 0 && !errors.Is(callErr, errorClassAlreadyExists) {
		return fmt.Errorf("RegisterClassExW failed: %w", callErr)
	}
	classRegistered = true
	return nil
}

func windowProc(hwnd, message, wParam, lParam uintptr) uintptr {
	switch uint32(message) {
	case wmClose:
		procDestroyWindow.Call(hwnd)
		return 0
	case wmDestroy:
		if _, ok := tearingDown.Load(hwnd); !ok {
			procPostQuitMessage.Call(0)
		}
		return 0
	}
	r, _, _ := procDefWindowProcW.Call(hwnd, message, wParam, lParam)
	return r
}

type windowsWindow struct {
	hwnd windows.HWND
}

func (w *windowsWindow) ID() WindowID { return WindowID(w.hwnd) }

// Drain pumps the thread message queue. WM_QUIT is posted by the window
// procedure once the user's WM_CLOSE has destroyed the window.
func (w *windowsWindow) Drain() bool {
	var (
		m      msg
		closed bool
	)
	for {
		r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if r == 0 {
			return closed
		}
		if m.Message == wmQuit {
			closed = true
			continue
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
}

func (w *windowsWindow) Destroy() error {
	if w.hwnd == 0 {
		return nil
	}
	hwnd := uintptr(w.hwnd)
	w.hwnd = 0

	if alive, _, _ := procIsWindow.Call(hwnd); alive == 0 {
		return nil
	}
	tearingDown.Store(hwnd, struct{}{})
	defer tearingDown.Delete(hwnd)
	if r, _, callErr := procDestroyWindow.Call(hwnd); r == 0 {
		return fmt.Errorf("DestroyWindow failed: %w", callErr)
	}
	return nil
}
