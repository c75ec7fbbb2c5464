// Package sequencer drives the scripted, timer based flows of a shopping
// session: checkout settlement, the intent overlay and the chat assistant.
package sequencer

import (
	"context"
	"sync"
	"time"
)

type Timer interface {
	Stop() bool
}

type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

// System schedules on the wall clock.
var System Scheduler = systemScheduler{}

func (systemScheduler) Now() time.Time { return time.Now() }

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// run groups the timers of one sequence. Ending the run, or cancelling the
// context it was started from, stops every timer it still owns; callbacks
// must check done() under their sequencer's lock before mutating state.
type run struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	timers []Timer
}

func startRun(parent context.Context) *run {
	ctx, cancel := context.WithCancel(parent)
	r := &run{ctx: ctx, cancel: cancel}
	context.AfterFunc(ctx, r.stopTimers)
	return r
}

func (r *run) after(s Scheduler, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ctx.Err() != nil {
		return
	}
	r.timers = append(r.timers, s.AfterFunc(d, fn))
}

func (r *run) done() bool {
	return r.ctx.Err() != nil
}

func (r *run) end() {
	if r == nil {
		return
	}
	r.cancel()
	r.stopTimers()
}

func (r *run) stopTimers() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.timers {
		t.Stop()
	}
	r.timers = nil
}
