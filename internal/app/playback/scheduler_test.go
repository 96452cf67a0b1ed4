package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"
)

func TestScheduler_TimedPlaybackEmitsEveryEventInOrder(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	state := &recordingState{}
	metrics := &countingMetrics{}
	s := NewScheduler(Config{Sink: sink, State: state, Metrics: metrics, After: clock.After})

	if err := s.StartReplay(events("a", "b", "c"), "ws1"); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	if got, want := s.Mode(), ModeTimed; got != want {
		t.Fatalf("mode mismatch: got=%v want=%v", got, want)
	}
	for i := 0; i < 3; i++ {
		clock.next(t) <- time.Time{}
	}
	waitLoops(t, s)

	assertApplied(t, sink.snapshot(), []applied{
		{ID: "a", Context: "ws1"},
		{ID: "b", Context: "ws1"},
		{ID: "c", Context: "ws1"},
	})
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, false})
	if got, want := s.Mode(), ModeIdle; got != want {
		t.Fatalf("mode after completion mismatch: got=%v want=%v", got, want)
	}
	if got, want := metrics.get("timed"), 3; got != want {
		t.Fatalf("timed emissions mismatch: got=%d want=%d", got, want)
	}
	if got, want := metrics.get("completed"), 1; got != want {
		t.Fatalf("completed mismatch: got=%d want=%d", got, want)
	}
}

func TestScheduler_CursorAdvancesPerTimedEmission(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(Config{Sink: &recordingSink{}, After: clock.After})

	if err := s.StartReplay(events("a", "b"), ""); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	if got := s.Cursor(); got != 0 {
		t.Fatalf("expected cursor 0 before first delay, got %d", got)
	}
	clock.next(t) <- time.Time{}
	pending := clock.next(t)
	if got := s.Cursor(); got != 1 {
		t.Fatalf("expected cursor 1 after first emission, got %d", got)
	}
	pending <- time.Time{}
	waitLoops(t, s)
	if got := s.Cursor(); got != 0 {
		t.Fatalf("expected cursor reset once idle, got %d", got)
	}
}

// Fast-forward restarts from index 0 rather than resuming from the cursor, so
// the event already emitted on the timer is emitted a second time.
func TestScheduler_CancelAndFlushReplaysFromStart(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	state := &recordingState{}
	metrics := &countingMetrics{}
	s := NewScheduler(Config{Sink: sink, State: state, Metrics: metrics, After: clock.After})

	if err := s.StartReplay(events("a", "b", "c"), "ws1"); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	clock.next(t) <- time.Time{}
	pendingB := clock.next(t)

	if got, want := s.CancelAndFlush(), 3; got != want {
		t.Fatalf("flushed count mismatch: got=%d want=%d", got, want)
	}
	pendingB <- time.Time{}
	waitLoops(t, s)

	assertApplied(t, sink.snapshot(), []applied{
		{ID: "a", Context: "ws1"},
		{ID: "a", Context: "ws1", Quiet: true},
		{ID: "b", Context: "ws1", Quiet: true},
		{ID: "c", Context: "ws1", Quiet: true},
	})
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, true, false})
	if got, want := metrics.get("timed"), 1; got != want {
		t.Fatalf("timed emissions mismatch: got=%d want=%d", got, want)
	}
	if got, want := metrics.get("immediate"), 3; got != want {
		t.Fatalf("immediate emissions mismatch: got=%d want=%d", got, want)
	}
	if got := metrics.get("completed"); got != 0 {
		t.Fatalf("flushed session must not count as completed, got %d", got)
	}
	if got, want := s.Mode(), ModeIdle; got != want {
		t.Fatalf("mode after flush mismatch: got=%v want=%v", got, want)
	}
}

func TestScheduler_CancelDuringFirstDelaySuppressesPendingEvent(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	s := NewScheduler(Config{Sink: sink, After: clock.After})

	if err := s.StartReplay(events("a", "b"), "ws"); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	pendingA := clock.next(t)
	s.CancelAndFlush()
	pendingA <- time.Time{}
	waitLoops(t, s)

	for _, got := range sink.snapshot() {
		if !got.Quiet {
			t.Fatalf("unexpected timed emission after cancel: %+v", got)
		}
	}
	if got, want := len(sink.snapshot()), 2; got != want {
		t.Fatalf("emission count mismatch: got=%d want=%d", got, want)
	}
}

func TestScheduler_CancelAndFlushWithoutSessionIsNoop(t *testing.T) {
	sink := &recordingSink{}
	state := &recordingState{}
	metrics := &countingMetrics{}
	s := NewScheduler(Config{Sink: sink, State: state, Metrics: metrics})

	if got := s.CancelAndFlush(); got != 0 {
		t.Fatalf("expected 0 events flushed, got %d", got)
	}
	if len(sink.snapshot()) != 0 {
		t.Fatalf("expected no emissions")
	}
	if len(state.playbackHistory()) != 0 {
		t.Fatalf("expected no state signals, got %v", state.playbackHistory())
	}
	if got := metrics.get("cancelled"); got != 0 {
		t.Fatalf("expected no cancellations recorded, got %d", got)
	}
}

func TestScheduler_CancelAndFlushIsIdempotent(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	state := &recordingState{}
	s := NewScheduler(Config{Sink: sink, State: state, After: clock.After})

	if err := s.StartReplay(events("a"), ""); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	clock.next(t)
	if got := s.CancelAndFlush(); got != 1 {
		t.Fatalf("first flush count mismatch: got=%d", got)
	}
	if got := s.CancelAndFlush(); got != 0 {
		t.Fatalf("second flush must be a no-op, got %d", got)
	}
	waitLoops(t, s)
	if got, want := len(sink.snapshot()), 1; got != want {
		t.Fatalf("emission count mismatch: got=%d want=%d", got, want)
	}
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, true, false})
}

func TestScheduler_CancelAndFlushAfterCompletionIsNoop(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	s := NewScheduler(Config{Sink: sink, After: clock.After})

	if err := s.StartReplay(events("a"), ""); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	clock.next(t) <- time.Time{}
	waitLoops(t, s)

	if got := s.CancelAndFlush(); got != 0 {
		t.Fatalf("expected no flush after completion, got %d", got)
	}
	if got, want := len(sink.snapshot()), 1; got != want {
		t.Fatalf("emission count mismatch: got=%d want=%d", got, want)
	}
}

func TestScheduler_StartReplayRetiresPreviousLoop(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	state := &recordingState{}
	metrics := &countingMetrics{}
	s := NewScheduler(Config{Sink: sink, State: state, Metrics: metrics, After: clock.After})

	if err := s.StartReplay(events("x", "y"), "old"); err != nil {
		t.Fatalf("StartReplay old error: %v", err)
	}
	clock.next(t) <- time.Time{}
	pendingY := clock.next(t)

	if err := s.StartReplay(events("a"), "new"); err != nil {
		t.Fatalf("StartReplay new error: %v", err)
	}
	pendingY <- time.Time{}
	clock.next(t) <- time.Time{}
	waitLoops(t, s)

	assertApplied(t, sink.snapshot(), []applied{
		{ID: "x", Context: "old"},
		{ID: "a", Context: "new"},
	})
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, true, false})
	if got, want := metrics.get("cancelled"), 1; got != want {
		t.Fatalf("cancelled mismatch: got=%d want=%d", got, want)
	}
}

func TestScheduler_RetireStopsWithoutFlushing(t *testing.T) {
	clock := newManualClock()
	sink := &recordingSink{}
	state := &recordingState{}
	s := NewScheduler(Config{Sink: sink, State: state, After: clock.After})

	if err := s.StartReplay(events("a", "b"), ""); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	pending := clock.next(t)
	s.Retire()
	pending <- time.Time{}
	waitLoops(t, s)

	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("expected no emissions after retire, got %d", got)
	}
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, false})

	s.Retire()
	assertBools(t, "playback loading", state.playbackHistory(), []bool{true, false})
}

func TestScheduler_CloseStopsLoop(t *testing.T) {
	sink := &recordingSink{}
	st := &recordingState{}
	s := NewScheduler(Config{Sink: sink, State: st, Delay: time.Hour})
	if err := s.StartReplay(events("a", "b"), "ws"); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}

	closed := make(chan struct{})
	go func() {
		s.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatalf("Close did not return")
	}
	if got := s.Mode(); got != ModeIdle {
		t.Fatalf("mode after Close: got=%v want=%v", got, ModeIdle)
	}
	if got := len(sink.snapshot()); got != 0 {
		t.Fatalf("Close must not flush: emitted=%d", got)
	}
	s.Close()
}

func TestScheduler_RejectsEmptySequence(t *testing.T) {
	state := &recordingState{}
	s := NewScheduler(Config{Sink: &recordingSink{}, State: state})
	if err := s.StartReplay(nil, "ws"); !errors.Is(err, ErrNoEvents) {
		t.Fatalf("expected ErrNoEvents, got %v", err)
	}
	if len(state.playbackHistory()) != 0 {
		t.Fatalf("expected no loading signal for empty replay")
	}
}

func TestScheduler_RequiresSink(t *testing.T) {
	s := NewScheduler(Config{})
	if err := s.StartReplay(events("a"), ""); !errors.Is(err, ErrNoSink) {
		t.Fatalf("expected ErrNoSink, got %v", err)
	}
}

func TestScheduler_WaitReturnsOnContextDone(t *testing.T) {
	clock := newManualClock()
	s := NewScheduler(Config{Sink: &recordingSink{}, After: clock.After})
	if err := s.StartReplay(events("a"), ""); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	s.Retire()
	waitLoops(t, s)
}

func TestScheduler_RealDelaySpacesEmissions(t *testing.T) {
	delay := 20 * time.Millisecond
	sink := &recordingSink{}
	s := NewScheduler(Config{Sink: sink, Delay: delay})

	start := time.Now()
	if err := s.StartReplay(events("a", "b", "c"), "ws1"); err != nil {
		t.Fatalf("StartReplay error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait error: %v", err)
	}

	got := sink.snapshot()
	if len(got) != 3 {
		t.Fatalf("expected 3 emissions, got %d", len(got))
	}
	prev := start
	for _, a := range got {
		if gap := a.At.Sub(prev); gap < delay {
			t.Fatalf("event %s emitted %s after previous, want >= %s", a.ID, gap, delay)
		}
		prev = a.At
	}
}

func TestDefaultConfig(t *testing.T) {
	if got, want := DefaultConfig().Delay, 1500*time.Millisecond; got != want {
		t.Fatalf("default delay mismatch: got=%s want=%s", got, want)
	}
	if got, want := NewScheduler(Config{}).delay, DefaultDelay; got != want {
		t.Fatalf("zero delay must fall back to default: got=%s want=%s", got, want)
	}
}

func events(ids ...string) []session.Event {
	out := make([]session.Event, 0, len(ids))
	for _, id := range ids {
		out = append(out, session.Event{ID: id, Type: session.EventAgentResponse, Payload: map[string]any{"type": "agent_response"}})
	}
	return out
}

func waitLoops(t *testing.T, s *Scheduler) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		s.loops.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("playback loop did not exit")
	}
}

// manualClock hands every requested delay to the test, which releases it.
type manualClock struct {
	waits chan chan time.Time
}

func newManualClock() *manualClock {
	return &manualClock{waits: make(chan chan time.Time, 16)}
}

func (c *manualClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.waits <- ch
	return ch
}

func (c *manualClock) next(t *testing.T) chan time.Time {
	t.Helper()
	select {
	case ch := <-c.waits:
		return ch
	case <-time.After(2 * time.Second):
		t.Fatalf("playback loop never started a delay")
		return nil
	}
}

type applied struct {
	ID      string
	Context string
	Quiet   bool
	At      time.Time
}

type recordingSink struct {
	mu  sync.Mutex
	got []applied
}

func (s *recordingSink) Apply(evt session.Event, sinkContext string, quiet bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, applied{ID: evt.ID, Context: sinkContext, Quiet: quiet, At: time.Now()})
}

func (s *recordingSink) snapshot() []applied {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]applied(nil), s.got...)
}

type recordingState struct {
	mu       sync.Mutex
	playback []bool
}

func (s *recordingState) SetFetchLoading(bool) {}
func (s *recordingState) SetWorkspace(string)  {}

func (s *recordingState) SetPlaybackLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playback = append(s.playback, loading)
}

func (s *recordingState) playbackHistory() []bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]bool(nil), s.playback...)
}

type countingMetrics struct {
	mu     sync.Mutex
	counts map[string]int
}

func (m *countingMetrics) inc(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counts == nil {
		m.counts = map[string]int{}
	}
	m.counts[key]++
}

func (m *countingMetrics) get(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[key]
}

func (m *countingMetrics) RecordEmitted(mode ports.PlaybackMode) { m.inc(string(mode)) }
func (m *countingMetrics) RecordCancelled()                      { m.inc("cancelled") }
func (m *countingMetrics) RecordCompleted()                      { m.inc("completed") }
func (m *countingMetrics) RecordFetchFailure()                   { m.inc("fetch_failure") }

func assertApplied(t *testing.T, got, want []applied) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("emission count mismatch: got=%d want=%d (%+v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i].ID != want[i].ID || got[i].Context != want[i].Context || got[i].Quiet != want[i].Quiet {
			t.Fatalf("emission %d mismatch: got=%+v want=%+v", i, got[i], want[i])
		}
	}
}

func assertBools(t *testing.T, name string, got, want []bool) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s history mismatch: got=%v want=%v", name, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("%s history mismatch: got=%v want=%v", name, got, want)
		}
	}
}
