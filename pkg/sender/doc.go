// Package sender implements the continuous DMX512 output thread.
//
// A Sender owns one background goroutine that repeatedly generates the
// DMX framing sequence on a widget and paces successive frames to a
// configured floor:
//
//	┌──────────────┐
//	│  CHECK TERM  │──stop requested──▶ exit
//	└──────┬───────┘
//	       ▼
//	┌──────────────┐   copy latest published buffer
//	│   ACQUIRE    │
//	└──────┬───────┘
//	       ▼
//	┌──────────────┐   assert break, hold ~100 µs
//	│    BREAK     │──error──┐
//	└──────┬───────┘         │
//	       ▼                 │
//	┌──────────────┐         │ clear break, hold ~16 µs (MAB)
//	│     MAB      │──error──┤
//	└──────┬───────┘         │
//	       ▼                 │
//	┌──────────────┐         │ start code + channel data
//	│    WRITE     │──error──┤
//	└──────┬───────┘         │
//	       ▼                 ▼
//	┌──────────────────────────┐
//	│       FRAME SLEEP        │   pace to the frame-time floor
//	└──────────────────────────┘
//
// A failed step skips the rest of its cycle but never the frame sleep,
// and never stops the thread: widget errors are counted and flushed to
// the event logger once per report interval.
//
// # Sleep Granularity
//
// Before the first cycle the sender probes the platform's sleep
// primitive with a 1 ms request. If the observed elapsed time exceeds
// 3 ms the classification is BAD and the sender skips the explicit
// break/MAB holds, relying on the overhead of the surrounding calls
// instead. Oversleeping the break would be harmless (longer breaks are
// legal) but oversleeping the MAB at tens of milliseconds would starve
// the frame rate, so the probe gates both.
//
// # Frame Hand-off
//
// Publish copies the caller's buffer into a single published slot;
// every cycle copies that slot into the thread's working buffer. Only
// the latest published frame is ever transmitted - intermediate frames
// published between cycles are intentionally dropped.
package sender
