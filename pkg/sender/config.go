package sender

import (
	"fmt"
	"time"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/log"
)

// Pacing constants.
const (
	// DefaultReportInterval is the default interval between counter
	// flushes to the event logger.
	DefaultReportInterval = 1 * time.Second

	// granularityProbe is the sleep request used to probe the
	// platform's sleep primitive.
	granularityProbe = 1 * time.Millisecond

	// granularityThreshold classifies the sleep primitive as BAD when
	// the probe oversleeps past it.
	granularityThreshold = 3 * time.Millisecond
)

// Config configures a Sender.
type Config struct {
	// BreakTime is the duration the break condition is held.
	BreakTime time.Duration

	// FrameTime is the minimum time between the starts of successive
	// frames. The thread sleeps this long after every cycle.
	FrameTime time.Duration

	// ReportInterval is the interval between counter flushes to the
	// event logger.
	ReportInterval time.Duration

	// EventLogger receives state changes, granularity classification,
	// periodic reports, and widget errors. Nil disables logging.
	EventLogger log.Logger

	// Sleep overrides the sleep primitive. Nil means time.Sleep.
	// Tests use this to script granularity and pacing.
	Sleep func(time.Duration)

	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default sender configuration: 100 µs break,
// ~44 frames per second, one report per second.
func DefaultConfig() Config {
	return Config{
		BreakTime:      dmx.DefaultBreakTime,
		FrameTime:      dmx.DefaultFrameTime,
		ReportInterval: DefaultReportInterval,
	}
}

// Validate checks the configuration against the DMX timing minima.
func (c Config) Validate() error {
	if c.BreakTime < dmx.MinBreakTime {
		return fmt.Errorf("break time %v below minimum %v", c.BreakTime, dmx.MinBreakTime)
	}
	if c.FrameTime <= 0 {
		return fmt.Errorf("frame time %v must be positive", c.FrameTime)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("report interval %v must be positive", c.ReportInterval)
	}
	return nil
}
