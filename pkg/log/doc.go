// Package log provides structured event logging for the DMX output
// pipeline.
//
// This package defines the Logger interface and Event types for
// capturing sender-level events: lifecycle state changes, the one-shot
// sleep-granularity classification, periodic throughput reports, and
// widget errors. It is separate from operational logging - the event
// stream is a complete machine-readable trace suitable for later
// analysis of output timing and error rates.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	cfg.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.EventLogger, _ = log.NewFileLogger("/var/log/dmx/output.dlog")
//
//	// Both: use MultiLogger
//	cfg.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Each event carries a category and one payload:
//   - State: sender lifecycle transitions (StateChangeEvent)
//   - Report: periodic frame/error counters (ReportEvent)
//   - Granularity: the sleep-granularity classification (GranularityEvent)
//   - Error: widget failures surfaced out-of-band (ErrorEventData)
//
// # File Format
//
// Log files use CBOR encoding with .dlog extension. The Reader type
// provides streaming decode with filtering.
package log
