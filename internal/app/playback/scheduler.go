// Package playback re-emits a recorded session's events into a sink, either
// paced by a fixed delay or all at once when fast-forwarded.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"sessionreplay/internal/app/ports"
	"sessionreplay/internal/domain/session"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const DefaultDelay = 1500 * time.Millisecond

var (
	ErrNoEvents = errors.New("replay requires at least one event")
	ErrNoSink   = errors.New("replay sink not configured")
)

type Config struct {
	Sink    ports.EventSink
	State   ports.StatePublisher
	Metrics ports.PlaybackMetrics
	Delay   time.Duration
	// After is the delay primitive; time.After when nil.
	After func(time.Duration) <-chan time.Time
}

func DefaultConfig() Config {
	return Config{Delay: DefaultDelay}
}

// Scheduler owns at most one live replay session. Sink, State and Metrics are
// called while the scheduler lock is held and must not call back into it.
type Scheduler struct {
	sink    ports.EventSink
	state   ports.StatePublisher
	metrics ports.PlaybackMetrics
	delay   time.Duration
	after   func(time.Duration) <-chan time.Time

	mu      sync.Mutex
	current *replaySession
	loops   sync.WaitGroup
}

func NewScheduler(cfg Config) *Scheduler {
	s := &Scheduler{
		sink:    cfg.Sink,
		state:   cfg.State,
		metrics: cfg.Metrics,
		delay:   cfg.Delay,
		after:   cfg.After,
	}
	if s.state == nil {
		s.state = noopState{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.delay <= 0 {
		s.delay = DefaultDelay
	}
	if s.after == nil {
		s.after = time.After
	}
	return s
}

// StartReplay replaces any live session and starts timed playback of events.
func (s *Scheduler) StartReplay(events []session.Event, sinkContext string) error {
	if len(events) == 0 {
		return ErrNoEvents
	}
	if s.sink == nil {
		return ErrNoSink
	}
	sess := newReplaySession(events, sinkContext)

	s.mu.Lock()
	s.cancelCurrentLocked()
	s.current = sess
	s.state.SetPlaybackLoading(true)
	s.mu.Unlock()

	hlog.Debugf("replay started: events=%d context=%q delay=%s", len(events), sinkContext, s.delay)
	s.loops.Add(1)
	go s.run(sess)
	return nil
}

// CancelAndFlush abandons timed playback and emits the whole sequence again
// from the first event, synchronously and quietly. It returns the number of
// events emitted; with no live session it does nothing and returns 0.
func (s *Scheduler) CancelAndFlush() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.current
	if sess == nil {
		return 0
	}
	sess.token.cancel()
	s.metrics.RecordCancelled()

	sess.mode = ModeImmediate
	s.state.SetPlaybackLoading(true)
	for _, evt := range sess.events {
		s.emitLocked(evt, sess.sinkContext, ModeImmediate)
	}
	sess.cursor = len(sess.events)
	s.state.SetPlaybackLoading(false)

	sess.retire()
	s.current = nil
	hlog.Debugf("replay flushed: events=%d context=%q", len(sess.events), sess.sinkContext)
	return len(sess.events)
}

// Retire cancels the live session without flushing it.
func (s *Scheduler) Retire() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelCurrentLocked() {
		s.state.SetPlaybackLoading(false)
	}
}

// Close retires the live session and waits for its playback goroutine to
// exit.
func (s *Scheduler) Close() {
	s.Retire()
	s.loops.Wait()
}

// Wait blocks until the session live at call time retires.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()
	if sess == nil {
		return nil
	}
	select {
	case <-sess.retired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ModeIdle
	}
	return s.current.mode
}

// Cursor is the number of events the live session has emitted on its timer.
func (s *Scheduler) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.cursor
}

func (s *Scheduler) run(sess *replaySession) {
	defer s.loops.Done()
	for {
		if sess.token.cancelled() {
			return
		}
		if !s.sleep(sess.token) {
			return
		}

		s.mu.Lock()
		if sess.token.cancelled() {
			s.mu.Unlock()
			return
		}
		s.emitLocked(sess.events[sess.cursor], sess.sinkContext, ModeTimed)
		sess.cursor++
		if sess.cursor < len(sess.events) {
			s.mu.Unlock()
			continue
		}

		s.state.SetPlaybackLoading(false)
		s.metrics.RecordCompleted()
		sess.retire()
		if s.current == sess {
			s.current = nil
		}
		s.mu.Unlock()
		hlog.Debugf("replay completed: events=%d context=%q", len(sess.events), sess.sinkContext)
		return
	}
}

// sleep waits one inter-event delay. It reports false when the token was
// cancelled first.
func (s *Scheduler) sleep(tok *cancelToken) bool {
	select {
	case <-s.after(s.delay):
		return true
	case <-tok.done:
		return false
	}
}

func (s *Scheduler) emitLocked(evt session.Event, sinkContext string, mode Mode) {
	s.sink.Apply(evt, sinkContext, mode == ModeImmediate)
	if mode == ModeImmediate {
		s.metrics.RecordEmitted(ports.PlaybackImmediate)
		return
	}
	s.metrics.RecordEmitted(ports.PlaybackTimed)
}

func (s *Scheduler) cancelCurrentLocked() bool {
	sess := s.current
	if sess == nil {
		return false
	}
	sess.token.cancel()
	sess.retire()
	s.current = nil
	s.metrics.RecordCancelled()
	return true
}

type noopState struct{}

func (noopState) SetFetchLoading(bool)    {}
func (noopState) SetPlaybackLoading(bool) {}
func (noopState) SetWorkspace(string)     {}

type noopMetrics struct{}

func (noopMetrics) RecordEmitted(ports.PlaybackMode) {}
func (noopMetrics) RecordCancelled()                 {}
func (noopMetrics) RecordCompleted()                 {}
func (noopMetrics) RecordFetchFailure()              {}
