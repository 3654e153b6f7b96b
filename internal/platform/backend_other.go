//go:build !linux && !windows

package platform

import "runtime"

type unsupportedBackend struct{}

// Default returns the backend for the build target.
func Default() Backend { return unsupportedBackend{} }

func (unsupportedBackend) Name() string { return runtime.GOOS }

func (b unsupportedBackend) Connect(display string) (Connection, error) {
	return nil, &ConnectionError{Backend: b.Name(), Display: display, Err: ErrUnsupported}
}
