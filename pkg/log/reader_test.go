package log

import (
	"io"
	"path/filepath"
	"testing"
	"time"
)

func TestReaderFilterByCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.dlog")

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	l.Log(Event{Timestamp: time.Now(), SenderID: "a", Category: CategoryState,
		StateChange: &StateChangeEvent{From: "created", To: "running"}})
	l.Log(Event{Timestamp: time.Now(), SenderID: "a", Category: CategoryReport,
		Report: &ReportEvent{Frames: 10}})
	l.Log(Event{Timestamp: time.Now(), SenderID: "b", Category: CategoryReport,
		Report: &ReportEvent{Frames: 20}})
	l.Close()

	cat := CategoryReport
	r, err := NewFilteredReader(path, Filter{Category: &cat, SenderID: "b"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	event, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if event.SenderID != "b" || event.Report == nil || event.Report.Frames != 20 {
		t.Errorf("unexpected event: %+v", event)
	}

	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected EOF after last match, got %v", err)
	}
}

func TestReaderFilterByTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.dlog")

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)
	t2 := t0.Add(2 * time.Minute)

	l, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	for _, ts := range []time.Time{t0, t1, t2} {
		l.Log(Event{Timestamp: ts, SenderID: "a", Category: CategoryReport,
			Report: &ReportEvent{}})
	}
	l.Close()

	r, err := NewFilteredReader(path, Filter{TimeStart: &t1, TimeEnd: &t2})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer r.Close()

	event, err := r.Next()
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if !event.Timestamp.Equal(t1) {
		t.Errorf("Timestamp = %v, want %v", event.Timestamp, t1)
	}
	if _, err := r.Next(); err != io.EOF {
		t.Errorf("expected EOF, got %v", err)
	}
}
