// Package widget abstracts the serial hardware that carries the DMX
// signal.
//
// The Widget interface is the capability the output thread consumes:
// open and configure the port, assert and clear the break condition,
// and write raw frame bytes. The Linux implementation drives a UART
// directly through termios2 (for the non-standard 250 kbaud rate) and
// the TIOCSBRK/TIOCCBRK ioctls. Other platforms get a stub that fails
// at SetupOutput.
//
// MockWidget provides a scriptable in-memory implementation for tests.
package widget
