package inmemory

import (
	"testing"

	"sessionreplay/internal/app/ports"
)

func TestRecorderSnapshot(t *testing.T) {
	r := NewRecorder()
	r.RecordEmitted(ports.PlaybackTimed)
	r.RecordEmitted(ports.PlaybackImmediate)
	r.RecordEmitted(ports.PlaybackImmediate)
	r.RecordCancelled()
	r.RecordCompleted()
	r.RecordFetchFailure()

	s := r.Snapshot()
	if s.EmittedTotal != 3 {
		t.Fatalf("expected total 3, got %d", s.EmittedTotal)
	}
	if s.EmittedByMode[string(ports.PlaybackTimed)] != 1 {
		t.Fatalf("expected timed count 1")
	}
	if s.EmittedByMode[string(ports.PlaybackImmediate)] != 2 {
		t.Fatalf("expected immediate count 2")
	}
	if s.Cancellations != 1 {
		t.Fatalf("expected cancellations 1, got %d", s.Cancellations)
	}
	if s.Completions != 1 {
		t.Fatalf("expected completions 1, got %d", s.Completions)
	}
	if s.FetchFailures != 1 {
		t.Fatalf("expected fetch failures 1, got %d", s.FetchFailures)
	}
}
