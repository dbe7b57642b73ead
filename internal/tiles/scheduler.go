package tiles

import (
	"time"
)

// TimerID identifies a scheduled callback.
type TimerID uint64

type timer struct {
	id       TimerID
	due      time.Time
	interval time.Duration // zero for one-shot timers
	fn       func()
}

// Scheduler owns every timer of a session: one repeating tick slot plus any
// number of one-shot callbacks. Nothing fires on its own; the owner calls
// Advance (once per UI frame) and all callbacks that are due run on the
// caller's goroutine in due-time order.
//
// Scheduler is not safe for concurrent use.
type Scheduler struct {
	clock  Clock
	nextID TimerID
	tick   TimerID
	timers map[TimerID]*timer
}

// NewScheduler creates a scheduler reading time from clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{
		clock:  clock,
		timers: make(map[TimerID]*timer),
	}
}

func (s *Scheduler) add(delay, interval time.Duration, fn func()) TimerID {
	s.nextID++
	t := &timer{
		id:       s.nextID,
		due:      s.clock.Now().Add(max(delay, 0)),
		interval: interval,
		fn:       fn,
	}
	s.timers[t.id] = t
	return t.id
}

// ScheduleTick installs fn as the repeating tick, replacing any previous one.
func (s *Scheduler) ScheduleTick(interval time.Duration, fn func()) {
	s.CancelTick()
	if interval <= 0 {
		interval = time.Millisecond
	}
	s.tick = s.add(interval, interval, fn)
}

// CancelTick stops the repeating tick if one is installed.
func (s *Scheduler) CancelTick() {
	if s.tick != 0 {
		delete(s.timers, s.tick)
		s.tick = 0
	}
}

// TickActive reports whether a repeating tick is installed.
func (s *Scheduler) TickActive() bool {
	if s.tick == 0 {
		return false
	}
	_, ok := s.timers[s.tick]
	return ok
}

// ScheduleOnce runs fn once after delay. A zero delay runs it on the next Advance.
func (s *Scheduler) ScheduleOnce(delay time.Duration, fn func()) TimerID {
	return s.add(delay, 0, fn)
}

// Cancel removes a pending one-shot timer or the tick.
// Returns false if the timer already fired or never existed.
func (s *Scheduler) Cancel(id TimerID) bool {
	if _, ok := s.timers[id]; !ok {
		return false
	}
	delete(s.timers, id)
	if id == s.tick {
		s.tick = 0
	}
	return true
}

// CancelAll drops every pending timer, the tick included.
func (s *Scheduler) CancelAll() {
	clear(s.timers)
	s.tick = 0
}

// Pending returns the number of scheduled timers, the tick included.
func (s *Scheduler) Pending() int {
	return len(s.timers)
}

// Advance runs every callback that is due at the current clock time and
// returns how many ran. Callbacks scheduled with zero delay from inside a
// callback run in the same call. A late tick catches up one interval at a time.
func (s *Scheduler) Advance() int {
	now := s.clock.Now()
	fired := 0
	for {
		t := s.earliestDue(now)
		if t == nil {
			return fired
		}
		if t.interval > 0 {
			t.due = t.due.Add(t.interval)
		} else {
			delete(s.timers, t.id)
		}
		t.fn()
		fired++
	}
}

// earliestDue picks the timer with the smallest due time not after now.
// Ties go to the timer scheduled first.
func (s *Scheduler) earliestDue(now time.Time) *timer {
	var best *timer
	for _, t := range s.timers {
		if t.due.After(now) {
			continue
		}
		if best == nil || t.due.Before(best.due) || (t.due.Equal(best.due) && t.id < best.id) {
			best = t
		}
	}
	return best
}
