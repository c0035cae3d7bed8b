package widget

import (
	"sync"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

// MockHandlers holds optional callbacks that override MockWidget's
// default (always succeed) behavior. A nil callback means success.
type MockHandlers struct {
	// OnSetupOutput is called from SetupOutput.
	OnSetupOutput func() error

	// OnSetBreak is called from SetBreak with the requested state.
	OnSetBreak func(on bool) error

	// OnWrite is called from Write with the buffer about to be sent.
	OnWrite func(buf *dmx.Buffer) error
}

// MockWidget is an in-memory Widget for tests. It records every break
// transition and every written frame, and supports scripted failures
// through MockHandlers.
//
// All methods are safe for concurrent use, so tests can inspect state
// while the output thread is running.
type MockWidget struct {
	// Handlers holds the failure-injection callbacks. Set before
	// handing the widget to an output thread.
	Handlers MockHandlers

	mu          sync.Mutex
	open        bool
	setupCalls  int
	breakStates []bool
	frames      []dmx.Buffer
}

// NewMockWidget returns a closed mock widget.
func NewMockWidget() *MockWidget {
	return &MockWidget{}
}

// Path returns a fixed placeholder device path.
func (m *MockWidget) Path() string {
	return "mock"
}

// IsOpen reports whether SetupOutput has succeeded.
func (m *MockWidget) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// SetupOutput marks the widget open unless OnSetupOutput fails.
func (m *MockWidget) SetupOutput() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupCalls++
	if m.Handlers.OnSetupOutput != nil {
		if err := m.Handlers.OnSetupOutput(); err != nil {
			return err
		}
	}
	m.open = true
	return nil
}

// SetBreak records the break transition unless OnSetBreak fails.
func (m *MockWidget) SetBreak(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Handlers.OnSetBreak != nil {
		if err := m.Handlers.OnSetBreak(on); err != nil {
			return err
		}
	}
	m.breakStates = append(m.breakStates, on)
	return nil
}

// Write records a copy of the frame unless OnWrite fails.
func (m *MockWidget) Write(buf *dmx.Buffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Handlers.OnWrite != nil {
		if err := m.Handlers.OnWrite(buf); err != nil {
			return err
		}
	}
	m.frames = append(m.frames, *buf)
	return nil
}

// Close marks the widget closed.
func (m *MockWidget) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

// SetupCalls returns how many times SetupOutput was called.
func (m *MockWidget) SetupCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setupCalls
}

// Frames returns copies of every frame written so far.
func (m *MockWidget) Frames() []dmx.Buffer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]dmx.Buffer, len(m.frames))
	copy(out, m.frames)
	return out
}

// FrameCount returns the number of frames written so far.
func (m *MockWidget) FrameCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

// LastFrame returns the most recently written frame and whether any
// frame has been written.
func (m *MockWidget) LastFrame() (dmx.Buffer, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.frames) == 0 {
		return dmx.Buffer{}, false
	}
	return m.frames[len(m.frames)-1], true
}

// BreakStates returns the recorded break transitions in order
// (true = assert, false = clear).
func (m *MockWidget) BreakStates() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bool, len(m.breakStates))
	copy(out, m.breakStates)
	return out
}

// Compile-time interface satisfaction check.
var _ Widget = (*MockWidget)(nil)
