package log

import (
	"github.com/rs/zerolog"
)

// ZerologAdapter writes output events to a zerolog.Logger.
type ZerologAdapter struct {
	logger *zerolog.Logger
}

// NewZerologAdapter creates a ZerologAdapter that writes to the given
// zerolog.Logger.
func NewZerologAdapter(logger *zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Log writes the event to the zerolog logger. Reports and state changes
// log at Info level, errors at Warn level.
func (a *ZerologAdapter) Log(event Event) {
	var e *zerolog.Event
	var msg string

	switch {
	case event.StateChange != nil:
		e = a.logger.Info().
			Str("from", event.StateChange.From).
			Str("to", event.StateChange.To)
		msg = "sender state change"
	case event.Report != nil:
		e = a.logger.Info().
			Int("frames", event.Report.Frames).
			Int("break_start_errors", event.Report.BreakStartErrors).
			Int("break_stop_errors", event.Report.BreakStopErrors).
			Int("write_errors", event.Report.WriteErrors).
			Int64("interval_us", event.Report.IntervalMicros)
		msg = "frame report"
	case event.Granularity != nil:
		e = a.logger.Info().
			Str("classification", event.Granularity.Classification).
			Int64("requested_us", event.Granularity.RequestedMicros).
			Int64("observed_us", event.Granularity.ObservedMicros)
		msg = "sleep granularity"
	case event.Error != nil:
		e = a.logger.Warn().
			Str("op", event.Error.Op).
			Str("error", event.Error.Message)
		msg = "widget error"
	default:
		e = a.logger.Info()
		msg = "dmx event"
	}

	e.Str("sender_id", event.SenderID).
		Str("category", event.Category.String())
	if event.Device != "" {
		e.Str("device", event.Device)
	}
	e.Msg(msg)
}

// Compile-time interface satisfaction check.
var _ Logger = (*ZerologAdapter)(nil)
