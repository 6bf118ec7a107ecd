package rotation

import (
	"sync"
	"time"
)

// DefaultExitDelay matches the card exit animation.
const DefaultExitDelay = 300 * time.Millisecond

// Scheduler serializes access to an Engine and applies know/learning after
// the exit delay. Any other operation cancels the scheduled commit.
type Scheduler struct {
	mu       sync.Mutex
	engine   *Engine
	delay    time.Duration
	timer    *time.Timer
	seq      uint64
	onCommit func(Snapshot)
	closed   bool
}

func NewScheduler(engine *Engine, delay time.Duration) *Scheduler {
	if delay <= 0 {
		delay = DefaultExitDelay
	}
	return &Scheduler{engine: engine, delay: delay}
}

// OnCommit registers fn to run after each applied transition. fn runs
// outside the scheduler lock.
func (s *Scheduler) OnCommit(fn func(Snapshot)) {
	s.mu.Lock()
	s.onCommit = fn
	s.mu.Unlock()
}

func (s *Scheduler) Know() (Transition, bool) {
	return s.begin(KindKnow)
}

func (s *Scheduler) Learning() (Transition, bool) {
	return s.begin(KindLearning)
}

func (s *Scheduler) begin(kind Kind) (Transition, bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Transition{}, false
	}

	var committed *Snapshot
	if _, ok := s.engine.Pending(); ok {
		s.cancelLocked()
		if s.engine.CommitTransition() {
			snap := s.engine.Snapshot()
			committed = &snap
		}
	}

	t, ok := s.engine.BeginTransition(kind)
	if ok {
		s.seq++
		seq := s.seq
		s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
	}
	fn := s.onCommit
	s.mu.Unlock()

	if committed != nil && fn != nil {
		fn(*committed)
	}
	return t, ok
}

func (s *Scheduler) fire(seq uint64) {
	s.mu.Lock()
	if s.closed || seq != s.seq {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.commitLocked()
}

// Flush commits the pending transition immediately.
func (s *Scheduler) Flush() bool {
	s.mu.Lock()
	s.cancelLocked()
	return s.commitLocked()
}

// commitLocked releases s.mu before running the commit callback.
func (s *Scheduler) commitLocked() bool {
	if !s.engine.CommitTransition() {
		s.mu.Unlock()
		return false
	}
	snap := s.engine.Snapshot()
	fn := s.onCommit
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return true
}

func (s *Scheduler) Next() Snapshot {
	return s.apply((*Engine).Next)
}

func (s *Scheduler) Previous() Snapshot {
	return s.apply((*Engine).Previous)
}

func (s *Scheduler) Restart() Snapshot {
	return s.apply((*Engine).Restart)
}

func (s *Scheduler) SetShortlistEnabled(enabled bool) Snapshot {
	return s.apply(func(e *Engine) { e.SetShortlistEnabled(enabled) })
}

func (s *Scheduler) apply(op func(*Engine)) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	op(s.engine)
	return s.engine.Snapshot()
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Snapshot()
}

func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.engine.Pending()
	return ok
}

// Close stops the timer and drops any pending transition.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked()
	s.engine.pending = nil
	s.closed = true
}

func (s *Scheduler) cancelLocked() {
	s.seq++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
