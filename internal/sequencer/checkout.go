package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

type CheckoutStep string

const (
	StepReview     CheckoutStep = "review"
	StepProcessing CheckoutStep = "processing"
	StepSuccess    CheckoutStep = "success"
)

const DefaultCheckoutDelay = 4 * time.Second

var ErrInvalidTransition = errors.New("invalid checkout transition")

type CheckoutState struct {
	Step      CheckoutStep `json:"step"`
	ItemCount int          `json:"item_count"`
}

// CheckoutSequencer moves review -> processing -> success. Steps only move
// forward within a run; Begin and Reset start over from review.
type CheckoutSequencer struct {
	sched Scheduler
	delay time.Duration

	mu    sync.Mutex
	step  CheckoutStep
	items int
	run   *run
}

func NewCheckoutSequencer(sched Scheduler, delay time.Duration) *CheckoutSequencer {
	return &CheckoutSequencer{
		sched: sched,
		delay: delay,
		step:  StepReview,
	}
}

// Begin discards any pending settlement and shows the review step for a
// cart of cartSize entries.
func (c *CheckoutSequencer) Begin(cartSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discard()
	c.step = StepReview
	c.items = cartSize
}

// ConfirmPayment moves to processing and, after the settlement delay, to
// success. onSettled runs once, outside the sequencer lock, when success is
// reached. Cancelling ctx before then discards the transition.
func (c *CheckoutSequencer) ConfirmPayment(ctx context.Context, onSettled func()) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step != StepReview {
		return fmt.Errorf("%w: confirm payment while %s", ErrInvalidTransition, c.step)
	}

	r := startRun(ctx)
	c.run = r
	c.step = StepProcessing
	r.after(c.sched, c.delay, func() {
		c.settle(r, onSettled)
	})
	return nil
}

func (c *CheckoutSequencer) settle(r *run, onSettled func()) {
	c.mu.Lock()
	if r.done() || c.run != r {
		c.mu.Unlock()
		return
	}
	c.step = StepSuccess
	c.run = nil
	c.mu.Unlock()

	r.end()
	if onSettled != nil {
		onSettled()
	}
}

// Reset drops any pending settlement and returns to an empty review.
func (c *CheckoutSequencer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.discard()
	c.step = StepReview
	c.items = 0
}

func (c *CheckoutSequencer) State() CheckoutState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return CheckoutState{Step: c.step, ItemCount: c.items}
}

func (c *CheckoutSequencer) Step() CheckoutStep {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *CheckoutSequencer) discard() {
	c.run.end()
	c.run = nil
}
