package sender

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/log"
	"github.com/dmx-protocol/dmxuart-go/pkg/widget"
)

// Sender errors.
var (
	// ErrNilWidget indicates construction without a widget.
	ErrNilWidget = errors.New("sender: nil widget")

	// ErrNilBuffer indicates Publish with a nil buffer.
	ErrNilBuffer = errors.New("sender: nil buffer")

	// ErrAlreadyRunning indicates Start on a running sender.
	ErrAlreadyRunning = errors.New("sender: already running")

	// ErrAlreadyStopped indicates Start on a stopped sender. A sender's
	// lifecycle is one-shot; construct a new one to restart output.
	ErrAlreadyStopped = errors.New("sender: already stopped")
)

// lifecycle states
type runState uint8

const (
	stateCreated runState = iota
	stateRunning
	stateStopped
)

func (s runState) String() string {
	switch s {
	case stateRunning:
		return "running"
	case stateStopped:
		return "stopped"
	default:
		return "created"
	}
}

// Sender drives continuous DMX512 output on a widget from a background
// goroutine. See the package documentation for the cycle structure.
//
// All methods are safe for concurrent use. The widget is used
// exclusively by the background goroutine between Start and the return
// of Stop.
type Sender struct {
	id     string
	w      widget.Widget
	config Config
	logger log.Logger

	sleep func(time.Duration)
	now   func() time.Time

	mu     sync.Mutex
	state  runState
	stopCh chan struct{}
	wg     sync.WaitGroup

	bufMu     sync.Mutex
	published dmx.Buffer

	// granularity is set once by the calibration probe before the first
	// cycle and read thereafter by Stats.
	granularity atomic.Uint32

	// cumulative totals for Stats; the per-interval report counters are
	// local to the output goroutine.
	framesTotal     atomic.Uint64
	breakStartTotal atomic.Uint64
	breakStopTotal  atomic.Uint64
	writeTotal      atomic.Uint64
}

// New creates a Sender for the given widget. The widget must not be
// used by anything else once the sender is started.
func New(w widget.Widget, config Config) (*Sender, error) {
	if w == nil {
		return nil, ErrNilWidget
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.EventLogger
	if logger == nil {
		logger = log.NoopLogger{}
	}
	sleep := config.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &Sender{
		id:     uuid.New().String(),
		w:      w,
		config: config,
		logger: logger,
		sleep:  sleep,
		now:    now,
		stopCh: make(chan struct{}),
	}, nil
}

// ID returns the sender's instance ID, stamped on every log event.
func (s *Sender) ID() string {
	return s.id
}

// Start begins the output goroutine.
func (s *Sender) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateRunning:
		return ErrAlreadyRunning
	case stateStopped:
		return ErrAlreadyStopped
	}

	s.state = stateRunning
	s.logStateChange(stateCreated, stateRunning)

	s.wg.Add(1)
	go s.run()
	return nil
}

// Stop requests termination and blocks until the output goroutine has
// exited. The goroutine observes the request once per cycle, so Stop
// returns within roughly one frame time. Stop is idempotent; after it
// returns the widget is no longer touched.
func (s *Sender) Stop() {
	s.mu.Lock()
	switch s.state {
	case stateCreated:
		s.state = stateStopped
		s.logStateChange(stateCreated, stateStopped)
		s.mu.Unlock()
		return
	case stateRunning:
		s.state = stateStopped
		close(s.stopCh)
		s.logStateChange(stateRunning, stateStopped)
	}
	s.mu.Unlock()

	s.wg.Wait()
}

// Close stops the sender. It exists so callers can defer resource
// cleanup; the underlying widget is not closed.
func (s *Sender) Close() error {
	s.Stop()
	return nil
}

// Publish copies buf into the published slot. The next output cycle
// transmits it. Publishing faster than the frame rate replaces the
// pending frame; only the latest is ever sent.
func (s *Sender) Publish(buf *dmx.Buffer) error {
	if buf == nil {
		return ErrNilBuffer
	}

	s.bufMu.Lock()
	s.published = *buf
	s.bufMu.Unlock()
	return nil
}

// Granularity returns the sleep-granularity classification, or
// GranularityUnknown before the probe has run.
func (s *Sender) Granularity() Granularity {
	return Granularity(s.granularity.Load())
}

// Stats is a snapshot of cumulative sender counters. Unlike the
// per-interval report events, these never reset.
type Stats struct {
	Running          bool
	Granularity      Granularity
	Frames           uint64
	BreakStartErrors uint64
	BreakStopErrors  uint64
	WriteErrors      uint64
}

// Stats returns a snapshot of the cumulative counters.
func (s *Sender) Stats() Stats {
	s.mu.Lock()
	running := s.state == stateRunning
	s.mu.Unlock()

	return Stats{
		Running:          running,
		Granularity:      s.Granularity(),
		Frames:           s.framesTotal.Load(),
		BreakStartErrors: s.breakStartTotal.Load(),
		BreakStopErrors:  s.breakStopTotal.Load(),
		WriteErrors:      s.writeTotal.Load(),
	}
}

// intervalCounters accumulate between report flushes. Owned solely by
// the output goroutine; no synchronization needed.
type intervalCounters struct {
	frames           int
	breakStartErrors int
	breakStopErrors  int
	writeErrors      int
}

func (c *intervalCounters) reset() {
	*c = intervalCounters{}
}

// run is the output goroutine.
func (s *Sender) run() {
	defer s.wg.Done()

	g, observed := checkTimeGranularity(s.sleep, s.now)
	s.granularity.Store(uint32(g))
	s.logEvent(log.Event{
		Category: log.CategoryGranularity,
		Granularity: &log.GranularityEvent{
			Classification:  g.String(),
			RequestedMicros: granularityProbe.Microseconds(),
			ObservedMicros:  observed.Microseconds(),
		},
	})

	if !s.w.IsOpen() {
		if err := s.w.SetupOutput(); err != nil {
			// Not fatal: the per-cycle operations will fail and be
			// counted until the port comes up or the sender is stopped.
			s.logEvent(log.Event{
				Category: log.CategoryError,
				Error:    &log.ErrorEventData{Op: "setup", Message: err.Error()},
			})
		}
	}

	var working dmx.Buffer
	var counters intervalCounters
	lastReport := s.now()

	for {
		select {
		case <-s.stopCh:
			return
		default:
		}

		s.bufMu.Lock()
		working = s.published
		s.bufMu.Unlock()

		s.transmitFrame(&working, g, &counters)

		// Sleep out the remainder of the frame time. Runs even after a
		// failed cycle so errors cannot tighten the pacing.
		s.sleep(s.config.FrameTime)

		counters.frames++
		s.framesTotal.Add(1)

		now := s.now()
		if elapsed := now.Sub(lastReport); elapsed > s.config.ReportInterval {
			s.logEvent(log.Event{
				Category: log.CategoryReport,
				Report: &log.ReportEvent{
					Frames:           counters.frames,
					BreakStartErrors: counters.breakStartErrors,
					BreakStopErrors:  counters.breakStopErrors,
					WriteErrors:      counters.writeErrors,
					IntervalMicros:   elapsed.Microseconds(),
				},
			})
			counters.reset()
			lastReport = now
		}
	}
}

// transmitFrame runs one break/MAB/write sequence. A failed step ends
// the cycle early; the caller still performs the frame sleep.
func (s *Sender) transmitFrame(working *dmx.Buffer, g Granularity, c *intervalCounters) {
	if err := s.w.SetBreak(true); err != nil {
		c.breakStartErrors++
		s.breakStartTotal.Add(1)
		return
	}

	if g == GranularityGood {
		s.sleep(s.config.BreakTime)
	}

	if err := s.w.SetBreak(false); err != nil {
		c.breakStopErrors++
		s.breakStopTotal.Add(1)
		return
	}

	if g == GranularityGood {
		s.sleep(dmx.MarkAfterBreakTime)
	}

	if err := s.w.Write(working); err != nil {
		c.writeErrors++
		s.writeTotal.Add(1)
	}
}

// logStateChange emits a lifecycle event. Called with s.mu held.
func (s *Sender) logStateChange(from, to runState) {
	s.logEvent(log.Event{
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{From: from.String(), To: to.String()},
	})
}

// logEvent stamps and forwards an event to the configured logger.
func (s *Sender) logEvent(event log.Event) {
	event.Timestamp = s.now()
	event.SenderID = s.id
	event.Device = s.w.Path()
	s.logger.Log(event)
}
