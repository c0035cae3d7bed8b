package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes output events to an slog.Logger.
// Useful for development when you want to see sender events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger. Reports and state changes
// log at Info level, errors at Warn level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("sender_id", event.SenderID),
		slog.String("category", event.Category.String()),
	}
	if event.Device != "" {
		attrs = append(attrs, slog.String("device", event.Device))
	}

	level := slog.LevelInfo
	msg := "dmx event"

	switch {
	case event.StateChange != nil:
		msg = "sender state change"
		attrs = append(attrs,
			slog.String("from", event.StateChange.From),
			slog.String("to", event.StateChange.To),
		)
	case event.Report != nil:
		msg = "frame report"
		attrs = append(attrs,
			slog.Int("frames", event.Report.Frames),
			slog.Int("break_start_errors", event.Report.BreakStartErrors),
			slog.Int("break_stop_errors", event.Report.BreakStopErrors),
			slog.Int("write_errors", event.Report.WriteErrors),
			slog.Int64("interval_us", event.Report.IntervalMicros),
		)
	case event.Granularity != nil:
		msg = "sleep granularity"
		attrs = append(attrs,
			slog.String("classification", event.Granularity.Classification),
			slog.Int64("requested_us", event.Granularity.RequestedMicros),
			slog.Int64("observed_us", event.Granularity.ObservedMicros),
		)
	case event.Error != nil:
		msg = "widget error"
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("op", event.Error.Op),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
