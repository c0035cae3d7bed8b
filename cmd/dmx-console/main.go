// Command dmx-console drives a DMX universe interactively from a UART.
//
// Usage:
//
//	dmx-console -device /dev/ttyAMA0 [flags]
//
// Flags:
//
//	-device string        Serial device path (default "/dev/ttyAMA0")
//	-break duration       Break duration (default 100µs)
//	-frame-time duration  Minimum time between frames (default 22.73ms)
//	-log string           Write CBOR event log to this file
//	-mock                 Use an in-memory widget instead of hardware
//
// Interactive Commands:
//
//	set <channel> <value> - Set a channel level
//	get <channel>         - Show a channel level
//	full [channel]        - One channel (or everything) to 255
//	blackout              - All channels to zero
//	status                - Show sender counters
//	quit                  - Exit
package main

import (
	"flag"
	stdlog "log"

	"github.com/dmx-protocol/dmxuart-go/cmd/dmx-console/interactive"
	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/log"
	"github.com/dmx-protocol/dmxuart-go/pkg/sender"
	"github.com/dmx-protocol/dmxuart-go/pkg/widget"
)

func main() {
	var (
		devicePath = flag.String("device", "/dev/ttyAMA0", "serial device path")
		breakTime  = flag.Duration("break", dmx.DefaultBreakTime, "break duration")
		frameTime  = flag.Duration("frame-time", dmx.DefaultFrameTime, "minimum time between frames")
		logPath    = flag.String("log", "", "write CBOR event log to this file")
		useMock    = flag.Bool("mock", false, "use an in-memory widget instead of hardware")
	)
	flag.Parse()

	var w widget.Widget
	if *useMock {
		w = widget.NewMockWidget()
	} else {
		w = widget.NewUART(*devicePath)
	}

	config := sender.DefaultConfig()
	config.BreakTime = *breakTime
	config.FrameTime = *frameTime

	var fileLogger *log.FileLogger
	if *logPath != "" {
		var err error
		fileLogger, err = log.NewFileLogger(*logPath)
		if err != nil {
			stdlog.Fatalf("open event log: %v", err)
		}
		defer fileLogger.Close()
		config.EventLogger = fileLogger
	}

	s, err := sender.New(w, config)
	if err != nil {
		stdlog.Fatalf("create sender: %v", err)
	}

	console, err := interactive.New(s)
	if err != nil {
		stdlog.Fatalf("create console: %v", err)
	}

	if err := s.Start(); err != nil {
		stdlog.Fatalf("start sender: %v", err)
	}
	defer s.Stop()

	console.Run()
}
