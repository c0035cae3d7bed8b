package sender

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
	"github.com/dmx-protocol/dmxuart-go/pkg/log"
	"github.com/dmx-protocol/dmxuart-go/pkg/widget"
)

// recordingLogger captures events for inspection.
type recordingLogger struct {
	mu     sync.Mutex
	events []log.Event
}

func (r *recordingLogger) Log(event log.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingLogger) byCategory(c log.Category) []log.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []log.Event
	for _, e := range r.events {
		if e.Category == c {
			out = append(out, e)
		}
	}
	return out
}

// lockedClock is a fakeClock safe for concurrent use.
type lockedClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *lockedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

// recordingSleep records every requested duration without sleeping.
type recordingSleep struct {
	mu        sync.Mutex
	durations []time.Duration
}

func (r *recordingSleep) Sleep(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, d)
}

func (r *recordingSleep) snapshot() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]time.Duration, len(r.durations))
	copy(out, r.durations)
	return out
}

func fastConfig() Config {
	config := DefaultConfig()
	config.FrameTime = 500 * time.Microsecond
	config.ReportInterval = 10 * time.Millisecond
	return config
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, DefaultConfig()); err != ErrNilWidget {
		t.Errorf("New(nil) = %v, want ErrNilWidget", err)
	}

	bad := DefaultConfig()
	bad.FrameTime = 0
	if _, err := New(widget.NewMockWidget(), bad); err == nil {
		t.Error("New with invalid config succeeded")
	}
}

func TestSenderLifecycle(t *testing.T) {
	w := widget.NewMockWidget()
	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Start(); err != ErrAlreadyRunning {
		t.Errorf("second Start = %v, want ErrAlreadyRunning", err)
	}

	// Let a few cycles run
	time.Sleep(20 * time.Millisecond)

	begin := time.Now()
	s.Stop()
	if elapsed := time.Since(begin); elapsed > 1*time.Second {
		t.Errorf("Stop took %v, want bounded by ~one frame time", elapsed)
	}

	if err := s.Start(); err != ErrAlreadyStopped {
		t.Errorf("Start after Stop = %v, want ErrAlreadyStopped", err)
	}

	if w.FrameCount() == 0 {
		t.Error("no frames written while running")
	}
}

func TestSenderStopIdempotent(t *testing.T) {
	w := widget.NewMockWidget()
	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	s.Stop()
	frames := w.FrameCount()
	breaks := len(w.BreakStates())

	// Further stops return immediately and never re-touch hardware
	s.Stop()
	s.Stop()
	time.Sleep(10 * time.Millisecond)

	if got := w.FrameCount(); got != frames {
		t.Errorf("frames written after Stop: %d -> %d", frames, got)
	}
	if got := len(w.BreakStates()); got != breaks {
		t.Errorf("break transitions after Stop: %d -> %d", breaks, got)
	}
}

func TestSenderStopWithoutStart(t *testing.T) {
	w := widget.NewMockWidget()
	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(1 * time.Second):
		t.Fatal("Stop before Start blocked")
	}

	if w.FrameCount() != 0 || w.SetupCalls() != 0 {
		t.Error("widget touched by a never-started sender")
	}
}

func TestSenderClose(t *testing.T) {
	s, err := New(widget.NewMockWidget(), fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := s.Start(); err != ErrAlreadyStopped {
		t.Errorf("Start after Close = %v, want ErrAlreadyStopped", err)
	}
}

func TestSenderPublishNil(t *testing.T) {
	s, err := New(widget.NewMockWidget(), fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Publish(nil); err != ErrNilBuffer {
		t.Errorf("Publish(nil) = %v, want ErrNilBuffer", err)
	}
}

func TestSenderTransmitsLatestFrame(t *testing.T) {
	w := widget.NewMockWidget()
	allow := make(chan struct{})
	entered := make(chan struct{}, 1)
	w.Handlers.OnWrite = func(*dmx.Buffer) error {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-allow
		return nil
	}

	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	f1 := dmx.NewBuffer([]byte{1, 1, 1})
	if err := s.Publish(&f1); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	// Wait until the first write is in flight: its frame (f1) is already
	// captured. While it is blocked, publish three more frames; only the
	// last may reach the wire.
	<-entered
	f2 := dmx.NewBuffer([]byte{2, 2, 2})
	f3 := dmx.NewBuffer([]byte{3, 3, 3})
	f4 := dmx.NewBuffer([]byte{4, 4, 4})
	for _, f := range []*dmx.Buffer{&f2, &f3, &f4} {
		if err := s.Publish(f); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	allow <- struct{}{} // release write 1 (f1)
	<-entered           // write 2 is in flight with the pending frame
	allow <- struct{}{} // release write 2

	close(allow)
	s.Stop()

	frames := w.Frames()
	if len(frames) < 2 {
		t.Fatalf("wrote %d frames, want at least 2", len(frames))
	}
	if !bytes.Equal(frames[0].Bytes(), f1.Bytes()) {
		t.Errorf("frame 0 = %v, want %v", frames[0].Bytes(), f1.Bytes())
	}
	if !bytes.Equal(frames[1].Bytes(), f4.Bytes()) {
		t.Errorf("frame 1 = %v, want latest published %v", frames[1].Bytes(), f4.Bytes())
	}

	// No frame may mix two published buffers
	published := [][]byte{f1.Bytes(), f2.Bytes(), f3.Bytes(), f4.Bytes()}
	for i, frame := range frames {
		match := false
		for _, p := range published {
			if bytes.Equal(frame.Bytes(), p) {
				match = true
				break
			}
		}
		if !match {
			t.Errorf("frame %d is not any published buffer: %v", i, frame.Bytes())
		}
	}
}

func TestSenderFailureIsolationBreakStart(t *testing.T) {
	w := widget.NewMockWidget()
	errBreak := errors.New("break stuck")
	w.Handlers.OnSetBreak = func(on bool) error {
		if on {
			return errBreak
		}
		return nil
	}

	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	st := s.Stats()
	if st.Frames == 0 {
		t.Fatal("no cycles completed")
	}
	if st.BreakStartErrors != st.Frames {
		t.Errorf("BreakStartErrors = %d, want %d (one per cycle)", st.BreakStartErrors, st.Frames)
	}
	if st.BreakStopErrors != 0 || st.WriteErrors != 0 {
		t.Errorf("unrelated counters moved: %+v", st)
	}
	if w.FrameCount() != 0 {
		t.Errorf("%d frames written despite failed break", w.FrameCount())
	}
}

func TestSenderFailureIsolationBreakStop(t *testing.T) {
	w := widget.NewMockWidget()
	errBreak := errors.New("break stuck")
	w.Handlers.OnSetBreak = func(on bool) error {
		if !on {
			return errBreak
		}
		return nil
	}

	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	st := s.Stats()
	if st.Frames == 0 {
		t.Fatal("no cycles completed")
	}
	if st.BreakStopErrors != st.Frames {
		t.Errorf("BreakStopErrors = %d, want %d", st.BreakStopErrors, st.Frames)
	}
	if st.BreakStartErrors != 0 || st.WriteErrors != 0 {
		t.Errorf("unrelated counters moved: %+v", st)
	}
	if w.FrameCount() != 0 {
		t.Errorf("%d frames written despite failed break clear", w.FrameCount())
	}
}

func TestSenderFailureIsolationWrite(t *testing.T) {
	w := widget.NewMockWidget()
	errWrite := errors.New("tx overflow")
	w.Handlers.OnWrite = func(*dmx.Buffer) error { return errWrite }

	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	st := s.Stats()
	if st.Frames == 0 {
		t.Fatal("no cycles completed")
	}
	if st.WriteErrors != st.Frames {
		t.Errorf("WriteErrors = %d, want %d", st.WriteErrors, st.Frames)
	}
	if st.BreakStartErrors != 0 || st.BreakStopErrors != 0 {
		t.Errorf("unrelated counters moved: %+v", st)
	}
}

func TestSenderGranularityBadSkipsHolds(t *testing.T) {
	w := widget.NewMockWidget()
	logger := &recordingLogger{}
	clock := &lockedClock{t: time.Unix(0, 0), step: 10 * time.Millisecond}
	sleeps := &recordingSleep{}

	config := fastConfig()
	config.EventLogger = logger
	config.Now = clock.Now
	config.Sleep = sleeps.Sleep

	s, err := New(w, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Sleeps are instant, so cycles complete as fast as the scheduler
	// allows; a real-time wait accumulates plenty of them.
	deadline := time.After(1 * time.Second)
	for w.FrameCount() < 5 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for cycles")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	s.Stop()

	if g := s.Granularity(); g != GranularityBad {
		t.Fatalf("Granularity = %v, want BAD", g)
	}

	durations := sleeps.snapshot()
	if len(durations) == 0 || durations[0] != granularityProbe {
		t.Fatalf("first sleep = %v, want probe %v", durations, granularityProbe)
	}
	for i, d := range durations[1:] {
		if d != config.FrameTime {
			t.Errorf("sleep %d = %v, want frame time only (no break/MAB holds)", i+1, d)
		}
	}

	// Classified exactly once
	if events := logger.byCategory(log.CategoryGranularity); len(events) != 1 {
		t.Errorf("granularity classified %d times, want 1", len(events))
	} else if events[0].Granularity.Classification != "BAD" {
		t.Errorf("classification = %q, want BAD", events[0].Granularity.Classification)
	}
}

func TestSenderGranularityGoodHolds(t *testing.T) {
	w := widget.NewMockWidget()
	clock := &lockedClock{t: time.Unix(0, 0), step: 100 * time.Microsecond}
	sleeps := &recordingSleep{}

	config := fastConfig()
	config.Now = clock.Now
	config.Sleep = sleeps.Sleep

	s, err := New(w, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.After(1 * time.Second)
	for w.FrameCount() < 3 {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for cycles")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	s.Stop()

	if g := s.Granularity(); g != GranularityGood {
		t.Fatalf("Granularity = %v, want GOOD", g)
	}

	// Each full cycle must hold the break and the MAB
	var breakHolds, mabHolds int
	for _, d := range sleeps.snapshot() {
		switch d {
		case config.BreakTime:
			breakHolds++
		case dmx.MarkAfterBreakTime:
			mabHolds++
		}
	}
	if breakHolds < 3 || mabHolds < 3 {
		t.Errorf("holds = %d break, %d MAB; want at least 3 each", breakHolds, mabHolds)
	}
}

func TestSenderSetupOutputWhenClosed(t *testing.T) {
	w := widget.NewMockWidget()
	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	if w.SetupCalls() != 1 {
		t.Errorf("SetupCalls = %d, want 1", w.SetupCalls())
	}
	if !w.IsOpen() {
		t.Error("widget not open after setup")
	}
}

func TestSenderSkipsSetupWhenOpen(t *testing.T) {
	w := widget.NewMockWidget()
	if err := w.SetupOutput(); err != nil {
		t.Fatalf("SetupOutput failed: %v", err)
	}

	s, err := New(w, fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	s.Stop()

	if w.SetupCalls() != 1 {
		t.Errorf("SetupCalls = %d, want 1 (no re-setup of an open widget)", w.SetupCalls())
	}
}

func TestSenderSetupFailureNonFatal(t *testing.T) {
	w := widget.NewMockWidget()
	w.Handlers.OnSetupOutput = func() error { return errors.New("no such device") }
	logger := &recordingLogger{}

	config := fastConfig()
	config.EventLogger = logger

	s, err := New(w, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	// Loop keeps cycling despite the failed setup
	if st := s.Stats(); st.Frames == 0 {
		t.Error("no cycles completed after setup failure")
	}

	events := logger.byCategory(log.CategoryError)
	if len(events) != 1 {
		t.Fatalf("error events = %d, want 1", len(events))
	}
	if events[0].Error.Op != "setup" {
		t.Errorf("error op = %q, want setup", events[0].Error.Op)
	}
}

func TestSenderReportFlushResetsCounters(t *testing.T) {
	w := widget.NewMockWidget()
	logger := &recordingLogger{}

	config := DefaultConfig()
	config.FrameTime = 1 * time.Millisecond
	config.ReportInterval = 10 * time.Millisecond
	config.EventLogger = logger

	s, err := New(w, config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	s.Stop()

	reports := logger.byCategory(log.CategoryReport)
	if len(reports) < 2 {
		t.Fatalf("reports = %d, want at least 2", len(reports))
	}

	// If counters reset on every flush, the per-interval frames sum to
	// at most the cumulative total; without the reset they would
	// compound past it.
	var sum uint64
	for _, r := range reports {
		if r.Report.Frames <= 0 {
			t.Errorf("report with %d frames", r.Report.Frames)
		}
		if r.Report.IntervalMicros < config.ReportInterval.Microseconds() {
			t.Errorf("report interval %dus shorter than configured %v",
				r.Report.IntervalMicros, config.ReportInterval)
		}
		sum += uint64(r.Report.Frames)
	}
	if total := s.Stats().Frames; sum > total {
		t.Errorf("reported frames sum %d exceeds cumulative total %d", sum, total)
	}
}

func TestSenderStatsSnapshot(t *testing.T) {
	s, err := New(widget.NewMockWidget(), fastConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	st := s.Stats()
	if st.Running {
		t.Error("Running before Start")
	}
	if st.Granularity != GranularityUnknown {
		t.Errorf("Granularity = %v before Start, want UNKNOWN", st.Granularity)
	}
	if st.Frames != 0 {
		t.Errorf("Frames = %d before Start, want 0", st.Frames)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !s.Stats().Running {
		t.Error("Running false while started")
	}
	s.Stop()
	if s.Stats().Running {
		t.Error("Running true after Stop")
	}
}

func TestSenderStateChangeEvents(t *testing.T) {
	logger := &recordingLogger{}
	config := fastConfig()
	config.EventLogger = logger

	s, err := New(widget.NewMockWidget(), config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	s.Stop()

	changes := logger.byCategory(log.CategoryState)
	if len(changes) != 2 {
		t.Fatalf("state changes = %d, want 2", len(changes))
	}
	if changes[0].StateChange.To != "running" || changes[1].StateChange.To != "stopped" {
		t.Errorf("unexpected transitions: %+v, %+v", changes[0].StateChange, changes[1].StateChange)
	}
	for _, e := range changes {
		if e.SenderID != s.ID() {
			t.Errorf("event sender ID %q, want %q", e.SenderID, s.ID())
		}
	}
}
