package x11

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stubEnv(t *testing.T, env map[string]string) {
	t.Helper()
	orig := getenvFn
	getenvFn = func(key string) string { return env[key] }
	t.Cleanup(func() { getenvFn = orig })
}

func TestResolveDisplay_PrefersExplicit(t *testing.T) {
	stubEnv(t, map[string]string{"DISPLAY": ":7"})

	if got := ResolveDisplay(" :1 "); got != ":1" {
		t.Fatalf("ResolveDisplay = %q, want %q", got, ":1")
	}
}

func TestResolveDisplay_FallsBackToEnv(t *testing.T) {
	stubEnv(t, map[string]string{"DISPLAY": ":7"})

	if got := ResolveDisplay(""); got != ":7" {
		t.Fatalf("ResolveDisplay = %q, want %q", got, ":7")
	}
}

func TestResolveDisplay_FallsBackToSockets(t *testing.T) {
	stubEnv(t, nil)

	dir := t.TempDir()
	for _, name := range []string{"X0", "X10", "X2", "Xfoo", "other"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	origReadDir := readDirFn
	readDirFn = func(string) ([]os.DirEntry, error) { return os.ReadDir(dir) }
	t.Cleanup(func() { readDirFn = origReadDir })

	if got := ResolveDisplay(""); got != ":10" {
		t.Fatalf("ResolveDisplay = %q, want %q", got, ":10")
	}
}

func TestResolveDisplay_NothingFound(t *testing.T) {
	stubEnv(t, nil)
	origReadDir := readDirFn
	readDirFn = func(string) ([]os.DirEntry, error) { return nil, errors.New("no such directory") }
	t.Cleanup(func() { readDirFn = origReadDir })

	if got := ResolveDisplay(""); got != "" {
		t.Fatalf("ResolveDisplay = %q, want empty", got)
	}
}

func TestResolveXAuthority(t *testing.T) {
	home := t.TempDir()
	origHome := userHomeDirFn
	userHomeDirFn = func() (string, error) { return home, nil }
	t.Cleanup(func() { userHomeDirFn = origHome })

	stubEnv(t, map[string]string{"XAUTHORITY": "/tmp/from-env"})
	if got := ResolveXAuthority("/tmp/explicit"); got != "/tmp/explicit" {
		t.Fatalf("explicit: got %q", got)
	}
	if got := ResolveXAuthority(""); got != "/tmp/from-env" {
		t.Fatalf("env: got %q", got)
	}

	stubEnv(t, nil)
	if got := ResolveXAuthority(""); got != "" {
		t.Fatalf("missing home file: got %q, want empty", got)
	}

	xauth := filepath.Join(home, ".Xauthority")
	if err := os.WriteFile(xauth, []byte("cookie"), 0600); err != nil {
		t.Fatalf("write xauthority: %v", err)
	}
	if got := ResolveXAuthority(""); got != xauth {
		t.Fatalf("home fallback: got %q, want %q", got, xauth)
	}
}
