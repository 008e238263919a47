package interview

import (
	"log/slog"
	"sync"
	"time"

	"github.com/pathforge/coach-backend/internal/audio"
)

// Scheduler lines up asynchronously arriving playback frames back-to-back on
// the output clock: each frame starts at max(nextStart, now) and pushes
// nextStart to its own end, so playback is gapless and non-overlapping no
// matter how fast frames arrive.
type Scheduler struct {
	clock Clock
	log   *slog.Logger

	mu        sync.Mutex
	nextStart time.Time
	inflight  map[int]time.Time
	seq       int
	stopped   bool
	onIdle    func()
}

func NewScheduler(clock Clock, log *slog.Logger) *Scheduler {
	if clock == nil {
		clock = NewClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		clock:    clock,
		log:      log.With("component", "playback_scheduler"),
		inflight: make(map[int]time.Time),
	}
}

// SetIdleFunc registers the callback fired when the last scheduled frame's
// end time elapses with nothing queued behind it. The session interprets it
// as the ai_speaking -> listening transition.
func (s *Scheduler) SetIdleFunc(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onIdle = fn
}

// Schedule registers a frame and returns its playback start time. Frames may
// queue arbitrarily far ahead; latency is bounded by the near-real-time
// source.
func (s *Scheduler) Schedule(frame audio.Frame) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	start := s.nextStart
	if start.Before(now) {
		start = now
	}
	end := start.Add(frame.Duration())
	s.nextStart = end
	s.stopped = false

	s.seq++
	id := s.seq
	s.inflight[id] = end

	// One-shot timer for this frame's scheduled end. It may be stale by the
	// time it fires; frameDone re-validates against the current queue end.
	s.clock.AfterFunc(end.Sub(now), func() {
		s.frameDone(id, end)
	})

	return start
}

func (s *Scheduler) frameDone(id int, end time.Time) {
	s.mu.Lock()
	delete(s.inflight, id)

	// Only the frame currently holding the queue end may signal idle. A
	// later frame has pushed nextStart out; this timer is stale.
	fire := !s.stopped && s.nextStart.Equal(end) && s.onIdle != nil
	onIdle := s.onIdle
	s.mu.Unlock()

	if fire {
		onIdle()
	}
}

// InFlight reports how many scheduled frames have not yet reached their end.
func (s *Scheduler) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// QueueEnd returns the scheduled end of the last enqueued frame.
func (s *Scheduler) QueueEnd() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextStart
}

// Stop drops every pending frame and suppresses their timers. Armed timers
// cannot be cancelled in this design; they fire, see stopped, and do nothing.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	s.inflight = make(map[int]time.Time)
	s.nextStart = time.Time{}
}
