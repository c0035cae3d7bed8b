//go:build !linux

package widget

import (
	"fmt"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

// UART is the Linux serial widget. On other platforms SetupOutput
// always fails; use MockWidget for development and tests.
type UART struct {
	path string
}

// NewUART returns a UART widget stub for non-Linux platforms.
func NewUART(path string) *UART {
	return &UART{path: path}
}

// Path returns the device path.
func (u *UART) Path() string {
	return u.path
}

// IsOpen always reports false on non-Linux platforms.
func (u *UART) IsOpen() bool {
	return false
}

// SetupOutput always fails on non-Linux platforms.
func (u *UART) SetupOutput() error {
	return fmt.Errorf("UART output is only supported on Linux")
}

// SetBreak always fails on non-Linux platforms.
func (u *UART) SetBreak(bool) error {
	return ErrNotOpen
}

// Write always fails on non-Linux platforms.
func (u *UART) Write(*dmx.Buffer) error {
	return ErrNotOpen
}

// Close is a no-op on non-Linux platforms.
func (u *UART) Close() error {
	return nil
}

// Compile-time interface satisfaction check.
var _ Widget = (*UART)(nil)
