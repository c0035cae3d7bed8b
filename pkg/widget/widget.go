package widget

import (
	"errors"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

// Widget errors.
var (
	// ErrNotOpen indicates an operation on a widget whose port is not open.
	ErrNotOpen = errors.New("widget port not open")

	// ErrAlreadyOpen indicates SetupOutput on an already-open widget.
	ErrAlreadyOpen = errors.New("widget port already open")
)

// Widget is a serial device capable of carrying a DMX512 signal.
//
// Implementations must be safe for use from a single goroutine; the
// output thread takes exclusive ownership of the widget once started.
type Widget interface {
	// Path returns the device path (for logs and status output).
	Path() string

	// IsOpen reports whether the port is open and configured.
	IsOpen() bool

	// SetupOutput opens and configures the port for DMX output.
	SetupOutput() error

	// SetBreak asserts (true) or clears (false) the break condition on
	// the line. Clearing the break begins the mark-after-break.
	SetBreak(on bool) error

	// Write transmits the NULL start code followed by the buffer's
	// channel data.
	Write(buf *dmx.Buffer) error

	// Close releases the port. Close on a closed widget is a no-op.
	Close() error
}
