// Package dmx provides the DMX512 data model shared by the output
// pipeline: the universe buffer, protocol constants, and timing
// defaults.
//
// A Buffer holds up to 512 channel levels plus a length. Buffers are
// value-copied at every hand-off boundary (Publish, pacer acquire), so
// two goroutines never read and write the same backing array.
//
// Timing constants follow ANSI E1.11: the break must be at least 88 µs
// and the mark-after-break at least 8 µs. Longer values are always
// legal, so the defaults carry some margin.
package dmx
