package dmx

import (
	"errors"
	"time"
)

// Buffer errors.
var (
	// ErrChannelRange indicates a channel index outside [0, UniverseSize).
	ErrChannelRange = errors.New("channel out of range")
)

// Protocol constants.
const (
	// UniverseSize is the maximum number of channels in one DMX universe.
	UniverseSize = 512

	// StartCode is the NULL start code transmitted before channel data.
	StartCode byte = 0x00
)

// Timing constants. ANSI E1.11 sets the minima; transmitters may hold
// the line longer than either minimum.
const (
	// MinBreakTime is the minimum break duration a transmitter may use.
	MinBreakTime = 88 * time.Microsecond

	// MinMarkAfterBreak is the minimum mark-after-break duration.
	MinMarkAfterBreak = 8 * time.Microsecond

	// MarkAfterBreakTime is the fixed mark-after-break the output thread
	// holds between clearing the break and writing data.
	MarkAfterBreakTime = 16 * time.Microsecond

	// DefaultBreakTime is the default break duration.
	DefaultBreakTime = 100 * time.Microsecond

	// DefaultFrameTime is the default minimum time between frame starts
	// (~44 frames per second).
	DefaultFrameTime = 22730 * time.Microsecond
)

// Buffer holds the channel levels for one DMX universe.
//
// Buffer is a value type: assignment copies the full channel array, and
// the output pipeline relies on that to exchange frames between
// goroutines without sharing backing storage.
type Buffer struct {
	data   [UniverseSize]byte
	length int
}

// NewBuffer returns a buffer initialized from values. Input beyond
// UniverseSize bytes is truncated.
func NewBuffer(values []byte) Buffer {
	var b Buffer
	b.SetData(values)
	return b
}

// SetData replaces the buffer contents with a copy of values,
// truncating at UniverseSize bytes.
func (b *Buffer) SetData(values []byte) {
	n := len(values)
	if n > UniverseSize {
		n = UniverseSize
	}
	copy(b.data[:n], values[:n])
	b.length = n
}

// SetChannel sets a single channel level, extending the buffer length
// to include it. Channels between the previous length and ch are left
// at their current values (zero unless previously set).
func (b *Buffer) SetChannel(ch int, value byte) error {
	if ch < 0 || ch >= UniverseSize {
		return ErrChannelRange
	}
	b.data[ch] = value
	if ch >= b.length {
		b.length = ch + 1
	}
	return nil
}

// Channel returns the level of a single channel. Channels beyond the
// buffer length read as zero.
func (b *Buffer) Channel(ch int) (byte, error) {
	if ch < 0 || ch >= UniverseSize {
		return 0, ErrChannelRange
	}
	if ch >= b.length {
		return 0, nil
	}
	return b.data[ch], nil
}

// Len returns the number of channels the buffer carries.
func (b *Buffer) Len() int {
	return b.length
}

// Bytes returns the valid channel data. The returned slice aliases the
// buffer's storage; callers must not retain it across a mutation.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.length]
}

// Blackout sets every channel in the full universe to zero and extends
// the length to UniverseSize.
func (b *Buffer) Blackout() {
	b.data = [UniverseSize]byte{}
	b.length = UniverseSize
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.data = [UniverseSize]byte{}
	b.length = 0
}
