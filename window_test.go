package storm

import (
	"bytes"
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/1broseidon/storm/internal/platform/fake"
)

func newFakeWindow(t *testing.T, b *fake.Backend) *Window {
	t.Helper()
	w, err := New("t", 640, 480, withBackend(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

func TestNew_ValidSizesStartOpen(t *testing.T) {
	sizes := [][2]int{{1, 1}, {640, 480}, {800, 600}, {MaxDimension, MaxDimension}}
	for _, size := range sizes {
		b := &fake.Backend{}
		w, err := New("storm", size[0], size[1], withBackend(b))
		if err != nil {
			t.Fatalf("New(%dx%d): %v", size[0], size[1], err)
		}
		if w.ShouldClose() {
			t.Fatalf("New(%dx%d): ShouldClose true before any Update", size[0], size[1])
		}

		native := b.LastWindow()
		if native == nil || !native.Visible {
			t.Fatalf("New(%dx%d): expected a visible native window", size[0], size[1])
		}
		if native.Config.Title != "storm" || native.Config.Width != size[0] || native.Config.Height != size[1] {
			t.Fatalf("unexpected window config %+v", native.Config)
		}
		w.Close()
	}
}

func TestNew_InvalidSize(t *testing.T) {
	sizes := [][2]int{{0, 480}, {640, 0}, {-1, 480}, {640, -5}, {MaxDimension + 1, 480}}
	for _, size := range sizes {
		b := &fake.Backend{}
		_, err := New("t", size[0], size[1], withBackend(b))
		if !errors.Is(err, ErrInvalidSize) {
			t.Fatalf("New(%dx%d): expected ErrInvalidSize, got %v", size[0], size[1], err)
		}
		if calls := b.Calls(); len(calls) != 0 {
			t.Fatalf("New(%dx%d): backend touched: %v", size[0], size[1], calls)
		}
	}
}

func TestUpdate_WithoutCloseEventStaysOpen(t *testing.T) {
	b := &fake.Backend{}
	w := newFakeWindow(t, b)
	native := b.LastWindow()

	for i := 0; i < 5; i++ {
		w.Update()
		if w.ShouldClose() {
			t.Fatalf("ShouldClose true after %d empty updates", i+1)
		}
	}

	native.Post(fake.EventExpose, fake.EventKeyPress, fake.EventExpose)
	w.Update()
	if w.ShouldClose() {
		t.Fatalf("ShouldClose true after non-close events")
	}
	if native.Processed() != 3 || native.Pending() != 0 {
		t.Fatalf("expected all queued events drained, processed=%d pending=%d", native.Processed(), native.Pending())
	}
}

func TestUpdate_CloseIsMonotonic(t *testing.T) {
	b := &fake.Backend{}
	w := newFakeWindow(t, b)
	native := b.LastWindow()

	native.Post(fake.EventExpose, fake.EventClose, fake.EventKeyPress)
	w.Update()
	if !w.ShouldClose() {
		t.Fatalf("expected ShouldClose after close event")
	}

	for i := 0; i < 3; i++ {
		w.Update()
		if !w.ShouldClose() {
			t.Fatalf("ShouldClose reverted to false on update %d", i+1)
		}
	}

	native.Post(fake.EventExpose)
	w.Update()
	if !w.ShouldClose() {
		t.Fatalf("ShouldClose reverted after later events")
	}
}

func TestUpdate_SecondCallWithoutEventsIsNoop(t *testing.T) {
	b := &fake.Backend{}
	w := newFakeWindow(t, b)
	native := b.LastWindow()

	native.Post(fake.EventKeyPress)
	w.Update()
	before, processed := w.ShouldClose(), native.Processed()

	w.Update()
	if w.ShouldClose() != before || native.Processed() != processed {
		t.Fatalf("second update changed state: close %v->%v processed %d->%d",
			before, w.ShouldClose(), processed, native.Processed())
	}
}

func TestEndToEnd_CloseRequest(t *testing.T) {
	b := &fake.Backend{}
	w, err := New("t", 640, 480, withBackend(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	if w.ShouldClose() {
		t.Fatalf("ShouldClose true right after New")
	}

	b.LastWindow().RequestClose()
	w.Update()
	if !w.ShouldClose() {
		t.Fatalf("ShouldClose false after close event and Update")
	}
	w.Update()
	if !w.ShouldClose() {
		t.Fatalf("ShouldClose false after second Update")
	}
}

func TestEndToEnd_UnreachableBackend(t *testing.T) {
	b := &fake.Backend{Unreachable: true}
	w, err := New("t", 640, 480, withBackend(b), WithDisplay(":42"))
	if w != nil {
		t.Fatalf("expected nil window on failure")
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected *ConnectionError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("expected errors.Is(err, ErrConnection)")
	}
	if connErr.Display != ":42" {
		t.Fatalf("expected display :42 in error, got %q", connErr.Display)
	}

	if n := b.Count(fake.CallDestroyWindow); n != 0 {
		t.Fatalf("destroy-window called %d times", n)
	}
	if n := b.Count(fake.CallCreateWindow); n != 0 {
		t.Fatalf("create-window called %d times", n)
	}
	if conns, wins := b.Live(); conns != 0 || wins != 0 {
		t.Fatalf("leaked resources: connections=%d windows=%d", conns, wins)
	}
}

func TestNew_CreateFailureReleasesConnection(t *testing.T) {
	createErr := errors.New("BadAlloc")
	b := &fake.Backend{CreateErr: createErr}

	_, err := New("t", 640, 480, withBackend(b))
	if !errors.Is(err, createErr) {
		t.Fatalf("expected create error, got %v", err)
	}
	if errors.Is(err, ErrConnection) {
		t.Fatalf("window creation failure reported as connection error")
	}

	want := []string{fake.CallConnect, fake.CallCreateWindow, fake.CallCloseConnection}
	if got := b.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if conns, wins := b.Live(); conns != 0 || wins != 0 {
		t.Fatalf("leaked resources: connections=%d windows=%d", conns, wins)
	}
}

func TestClose_ReleasesWindowBeforeConnection(t *testing.T) {
	b := &fake.Backend{}
	w, err := New("t", 640, 480, withBackend(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.Update()
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	want := []string{
		fake.CallConnect,
		fake.CallCreateWindow,
		fake.CallDrain,
		fake.CallDestroyWindow,
		fake.CallCloseConnection,
	}
	if got := b.Calls(); !reflect.DeepEqual(got, want) {
		t.Fatalf("calls = %v, want %v", got, want)
	}
	if conns, wins := b.Live(); conns != 0 || wins != 0 {
		t.Fatalf("leaked resources: connections=%d windows=%d", conns, wins)
	}
}

func TestClose_IdempotentAndSilencesTeardownErrors(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	b := &fake.Backend{
		DestroyErr: errors.New("BadWindow"),
		CloseErr:   errors.New("broken pipe"),
	}

	w, err := New("t", 640, 480, withBackend(b), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close returned %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close returned %v", err)
	}

	if n := b.Count(fake.CallDestroyWindow); n != 1 {
		t.Fatalf("destroy-window called %d times", n)
	}
	if n := b.Count(fake.CallCloseConnection); n != 1 {
		t.Fatalf("close-connection called %d times", n)
	}
	out := logs.String()
	if !strings.Contains(out, "failed to destroy window") || !strings.Contains(out, "failed to close connection") {
		t.Fatalf("expected teardown warnings in log, got:\n%s", out)
	}
}

func TestWindow_UseAfterClose(t *testing.T) {
	b := &fake.Backend{}
	w, err := New("t", 640, 480, withBackend(b))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b.LastWindow().RequestClose()
	w.Update()
	w.Close()

	w.Update()
	if !w.ShouldClose() {
		t.Fatalf("close state lost after Close")
	}
	if w.ID() != 0 {
		t.Fatalf("ID after Close = %d, want 0", w.ID())
	}
	if n := b.Count(fake.CallDrain); n != 1 {
		t.Fatalf("drain after Close reached backend: %d drains", n)
	}

	var nilWindow *Window
	nilWindow.Update()
	if nilWindow.ShouldClose() {
		t.Fatalf("nil window reports close")
	}
	if err := nilWindow.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}
}

func TestNew_LogsCreation(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	w, err := New("hello", 320, 200, withBackend(&fake.Backend{}), WithLogger(logger))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()

	out := logs.String()
	for _, want := range []string{"window created", "backend=fake", "title=hello", "width=320", "height=200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
	if w.ID() == 0 {
		t.Fatalf("expected non-zero window id")
	}
}
