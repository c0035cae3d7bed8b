// Command dmx-send plays a YAML scene file out of a UART as a
// continuous DMX512 signal.
//
// Usage:
//
//	dmx-send -device /dev/ttyAMA0 -scene show.yaml [flags]
//
// Flags:
//
//	-device string      Serial device path (default "/dev/ttyAMA0")
//	-scene string       Scene file to play (required)
//	-break duration     Break duration (default 100µs)
//	-frame-time duration  Minimum time between frames (default 22.73ms)
//	-log string         Write CBOR event log to this file
//	-log-format string  Console log format: text or json (default "text")
//	-quiet              Suppress console event output
//
// The scene keeps playing (looping if the file says so) until SIGINT
// or SIGTERM, then the sender is stopped cleanly.
package main

import (
	"context"
	"flag"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/log"
	"github.com/dmx-protocol/dmxuart-go/pkg/sender"
	"github.com/dmx-protocol/dmxuart-go/pkg/widget"
)

func main() {
	var (
		devicePath = flag.String("device", "/dev/ttyAMA0", "serial device path")
		scenePath  = flag.String("scene", "", "scene file to play")
		breakTime  = flag.Duration("break", dmx.DefaultBreakTime, "break duration")
		frameTime  = flag.Duration("frame-time", dmx.DefaultFrameTime, "minimum time between frames")
		logPath    = flag.String("log", "", "write CBOR event log to this file")
		logFormat  = flag.String("log-format", "text", "console log format: text or json")
		quiet      = flag.Bool("quiet", false, "suppress console event output")
	)
	flag.Parse()

	if *scenePath == "" {
		stdlog.Fatal("missing -scene")
	}

	scene, err := LoadScene(*scenePath)
	if err != nil {
		stdlog.Fatalf("load scene: %v", err)
	}

	logger, cleanup, err := buildLogger(*logPath, *logFormat, *quiet)
	if err != nil {
		stdlog.Fatalf("setup logging: %v", err)
	}
	defer cleanup()

	config := sender.DefaultConfig()
	config.BreakTime = *breakTime
	config.FrameTime = *frameTime
	config.EventLogger = logger

	s, err := sender.New(widget.NewUART(*devicePath), config)
	if err != nil {
		stdlog.Fatalf("create sender: %v", err)
	}

	if err := s.Start(); err != nil {
		stdlog.Fatalf("start sender: %v", err)
	}
	defer s.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := play(ctx, s, scene); err != nil {
		stdlog.Fatalf("play scene: %v", err)
	}
}

// fadeTick is the publish interval while a step fades in.
const fadeTick = 25 * time.Millisecond

// play publishes the scene's steps until the context is cancelled or a
// non-looping scene finishes.
func play(ctx context.Context, s *sender.Sender, scene *Scene) error {
	var buf dmx.Buffer
	for {
		for _, step := range scene.Steps {
			if step.Fade > 0 {
				if err := fade(ctx, s, &buf, step); err != nil {
					return err
				}
			} else if err := step.Apply(&buf); err != nil {
				return err
			}
			if err := s.Publish(&buf); err != nil {
				return err
			}

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Duration(step.Hold)):
			}
		}
		if !scene.Loop {
			return nil
		}
	}
}

// fade ramps the step's channels from their current levels to the
// step's levels, publishing an interpolated frame every fadeTick.
func fade(ctx context.Context, s *sender.Sender, buf *dmx.Buffer, step Step) error {
	ramps, err := step.Ramps(buf)
	if err != nil {
		return err
	}

	ticks := int(time.Duration(step.Fade) / fadeTick)
	if ticks < 1 {
		ticks = 1
	}
	for i := 1; i <= ticks; i++ {
		if err := ApplyRamps(buf, ramps, float64(i)/float64(ticks)); err != nil {
			return err
		}
		if err := s.Publish(buf); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(fadeTick):
		}
	}
	return nil
}

// buildLogger assembles the event logger from the flags: an optional
// CBOR file sink plus a console adapter.
func buildLogger(path, format string, quiet bool) (log.Logger, func(), error) {
	var loggers []log.Logger
	cleanup := func() {}

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, nil, err
		}
		loggers = append(loggers, fl)
		cleanup = func() { fl.Close() }
	}

	if !quiet {
		switch format {
		case "json":
			zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
			loggers = append(loggers, log.NewZerologAdapter(&zl))
		default:
			loggers = append(loggers, log.NewSlogAdapter(slog.Default()))
		}
	}

	if len(loggers) == 0 {
		return log.NoopLogger{}, cleanup, nil
	}
	return log.NewMultiLogger(loggers...), cleanup, nil
}
