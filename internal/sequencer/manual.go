package sequencer

import (
	"sync"
	"time"
)

// ManualScheduler only moves when Advance is called. Due callbacks run
// synchronously on the caller's goroutine in deadline order, including
// timers they schedule themselves.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	s    *ManualScheduler
	when time.Time
	fn   func()
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := &manualTimer{s: m, when: m.now.Add(d), fn: f}
	m.timers = append(m.timers, t)
	return t
}

// Pending reports how many timers have neither fired nor been stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		next := -1
		for i, t := range m.timers {
			if t.when.After(target) {
				continue
			}
			if next < 0 || t.when.Before(m.timers[next].when) {
				next = i
			}
		}
		if next < 0 {
			m.now = target
			m.mu.Unlock()
			return
		}
		t := m.timers[next]
		m.timers = append(m.timers[:next], m.timers[next+1:]...)
		m.now = t.when
		m.mu.Unlock()

		t.fn()
	}
}

func (t *manualTimer) Stop() bool {
	m := t.s
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, pending := range m.timers {
		if pending == t {
			m.timers = append(m.timers[:i], m.timers[i+1:]...)
			return true
		}
	}
	return false
}
