package log

import (
	"time"
)

// Event represents one output-pipeline log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SenderID uniquely identifies the sender instance (UUID).
	SenderID string `cbor:"2,keyasint"`

	// Device is the widget's device path.
	Device string `cbor:"3,keyasint,omitempty"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// Type-specific payload (one of these will be set).
	StateChange *StateChangeEvent `cbor:"5,keyasint,omitempty"` // Lifecycle transitions
	Report      *ReportEvent      `cbor:"6,keyasint,omitempty"` // Periodic counters
	Granularity *GranularityEvent `cbor:"7,keyasint,omitempty"` // Calibration result
	Error       *ErrorEventData   `cbor:"8,keyasint,omitempty"` // Widget errors
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryState indicates a sender lifecycle transition.
	CategoryState Category = 0
	// CategoryReport indicates a periodic throughput report.
	CategoryReport Category = 1
	// CategoryGranularity indicates the sleep-granularity classification.
	CategoryGranularity Category = 2
	// CategoryError indicates a widget error.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryState:
		return "STATE"
	case CategoryReport:
		return "REPORT"
	case CategoryGranularity:
		return "GRANULARITY"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures a sender lifecycle transition.
type StateChangeEvent struct {
	// From is the previous state name.
	From string `cbor:"1,keyasint"`

	// To is the new state name.
	To string `cbor:"2,keyasint"`
}

// ReportEvent captures the per-interval counters flushed by the output
// thread. Counters cover only the interval since the previous report.
type ReportEvent struct {
	// Frames is the number of completed output cycles.
	Frames int `cbor:"1,keyasint"`

	// BreakStartErrors counts failed break assertions.
	BreakStartErrors int `cbor:"2,keyasint"`

	// BreakStopErrors counts failed break clears.
	BreakStopErrors int `cbor:"3,keyasint"`

	// WriteErrors counts failed frame writes.
	WriteErrors int `cbor:"4,keyasint"`

	// IntervalMicros is the measured length of the report interval.
	IntervalMicros int64 `cbor:"5,keyasint"`
}

// GranularityEvent captures the one-shot sleep-granularity
// classification performed before the first output cycle.
type GranularityEvent struct {
	// Classification is "GOOD" or "BAD".
	Classification string `cbor:"1,keyasint"`

	// RequestedMicros is the probe sleep request (normally 1000).
	RequestedMicros int64 `cbor:"2,keyasint"`

	// ObservedMicros is the measured elapsed time of the probe sleep.
	ObservedMicros int64 `cbor:"3,keyasint"`
}

// ErrorEventData captures an error surfaced outside the periodic
// report, such as a failed widget setup.
type ErrorEventData struct {
	// Op names the failed operation ("setup", "close").
	Op string `cbor:"1,keyasint"`

	// Message is the error text.
	Message string `cbor:"2,keyasint"`
}
