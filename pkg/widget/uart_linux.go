//go:build linux

package widget

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

// dmxBaudRate is the DMX512 line rate. It is not one of the standard
// termios B-constants, so the port is configured through termios2 with
// BOTHER.
const dmxBaudRate = 250000

// UART drives a DMX signal through a Linux serial device.
type UART struct {
	path string
	fd   int
	open bool

	// scratch holds start code + channel data between writes so the
	// per-frame path does not allocate.
	scratch [1 + dmx.UniverseSize]byte
}

// NewUART returns an unopened UART widget for the given device path
// (e.g. /dev/ttyAMA0). Call SetupOutput before use.
func NewUART(path string) *UART {
	return &UART{path: path, fd: -1}
}

// Path returns the device path.
func (u *UART) Path() string {
	return u.path
}

// IsOpen reports whether the port is open and configured.
func (u *UART) IsOpen() bool {
	return u.open
}

// SetupOutput opens the device and configures it for DMX output:
// 250 kbaud, 8 data bits, 2 stop bits, no parity.
func (u *UART) SetupOutput() error {
	if u.open {
		return ErrAlreadyOpen
	}

	fd, err := unix.Open(u.path, unix.O_RDWR|unix.O_NOCTTY, 0)
	if err != nil {
		return fmt.Errorf("open %s: %w", u.path, err)
	}

	tios, err := unix.IoctlGetTermios(fd, unix.TCGETS2)
	if err != nil {
		unix.Close(fd)
		return fmt.Errorf("TCGETS2 %s: %w", u.path, err)
	}

	tios.Iflag = 0
	tios.Oflag = 0
	tios.Lflag = 0
	tios.Cflag = unix.CS8 | unix.CSTOPB | unix.CLOCAL | unix.CREAD | unix.BOTHER
	tios.Ispeed = dmxBaudRate
	tios.Ospeed = dmxBaudRate

	if err := unix.IoctlSetTermios(fd, unix.TCSETS2, tios); err != nil {
		unix.Close(fd)
		return fmt.Errorf("TCSETS2 %s: %w", u.path, err)
	}

	u.fd = fd
	u.open = true
	return nil
}

// SetBreak asserts or clears the break condition via TIOCSBRK/TIOCCBRK.
func (u *UART) SetBreak(on bool) error {
	if !u.open {
		return ErrNotOpen
	}

	req := uint(unix.TIOCCBRK)
	if on {
		req = unix.TIOCSBRK
	}
	if err := unix.IoctlSetInt(u.fd, req, 0); err != nil {
		return fmt.Errorf("set break %v on %s: %w", on, u.path, err)
	}
	return nil
}

// Write transmits the NULL start code followed by the buffer's channel
// data, looping on short writes.
func (u *UART) Write(buf *dmx.Buffer) error {
	if !u.open {
		return ErrNotOpen
	}

	u.scratch[0] = dmx.StartCode
	n := copy(u.scratch[1:], buf.Bytes())
	frame := u.scratch[:1+n]

	for len(frame) > 0 {
		written, err := unix.Write(u.fd, frame)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("write %s: %w", u.path, err)
		}
		frame = frame[written:]
	}
	return nil
}

// Close releases the port.
func (u *UART) Close() error {
	if !u.open {
		return nil
	}
	u.open = false
	err := unix.Close(u.fd)
	u.fd = -1
	return err
}

// Compile-time interface satisfaction check.
var _ Widget = (*UART)(nil)
