package x11

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SocketDir is where local X servers place their unix sockets.
const SocketDir = "/tmp/.X11-unix"

var (
	getenvFn      = os.Getenv
	readDirFn     = os.ReadDir
	statFn        = os.Stat
	userHomeDirFn = os.UserHomeDir
)

// ResolveDisplay picks the display to connect to: the explicit value, then
// $DISPLAY, then the highest-numbered local server socket. It returns ""
// when nothing is found.
func ResolveDisplay(explicit string) string {
	if d := strings.TrimSpace(explicit); d != "" {
		return d
	}
	if d := strings.TrimSpace(getenvFn("DISPLAY")); d != "" {
		return d
	}
	return detectDisplayFromSockets(SocketDir)
}

// ResolveXAuthority picks the authority file for the connection: the
// explicit value, then $XAUTHORITY, then ~/.Xauthority if it exists.
func ResolveXAuthority(explicit string) string {
	if x := strings.TrimSpace(explicit); x != "" {
		return x
	}
	if x := strings.TrimSpace(getenvFn("XAUTHORITY")); x != "" {
		return x
	}
	home, err := userHomeDirFn()
	if err != nil || home == "" {
		return ""
	}
	candidate := filepath.Join(home, ".Xauthority")
	if _, err := statFn(candidate); err == nil {
		return candidate
	}
	return ""
}

func detectDisplayFromSockets(dir string) string {
	entries, err := readDirFn(dir)
	if err != nil {
		return ""
	}

	var displays []int
	for _, entry := range entries {
		name := entry.Name()
		if len(name) < 2 || name[0] != 'X' {
			continue
		}
		n, err := strconv.Atoi(name[1:])
		if err != nil {
			continue
		}
		displays = append(displays, n)
	}

	if len(displays) == 0 {
		return ""
	}
	sort.Ints(displays)
	return fmt.Sprintf(":%d", displays[len(displays)-1])
}
