package sequencer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 2, 4, 4, 22, 0, 0, time.UTC)

func TestCheckoutBeginYieldsReview(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)

	for _, size := range []int{0, 1, 7} {
		c.Begin(size)
		assert.Equal(t, CheckoutState{Step: StepReview, ItemCount: size}, c.State())
	}
}

func TestCheckoutBeginFromSuccessYieldsReview(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)

	c.Begin(1)
	require.NoError(t, c.ConfirmPayment(context.Background(), nil))
	sched.Advance(DefaultCheckoutDelay)
	require.Equal(t, StepSuccess, c.Step())

	c.Begin(2)
	assert.Equal(t, StepReview, c.Step())
}

func TestCheckoutSettlesAfterDelay(t *testing.T) {
	for _, size := range []int{0, 1, 3} {
		sched := NewManualScheduler(epoch)
		c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)
		settled := 0

		c.Begin(size)
		require.NoError(t, c.ConfirmPayment(context.Background(), func() { settled++ }))
		assert.Equal(t, StepProcessing, c.Step())

		sched.Advance(DefaultCheckoutDelay - time.Millisecond)
		assert.Equal(t, StepProcessing, c.Step())
		assert.Equal(t, 0, settled)

		sched.Advance(time.Millisecond)
		assert.Equal(t, StepSuccess, c.Step())
		assert.Equal(t, 1, settled)

		sched.Advance(time.Hour)
		assert.Equal(t, 1, settled)
	}
}

func TestCheckoutConfirmOnlyFromReview(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)

	c.Begin(1)
	require.NoError(t, c.ConfirmPayment(context.Background(), nil))
	require.ErrorIs(t, c.ConfirmPayment(context.Background(), nil), ErrInvalidTransition)

	sched.Advance(DefaultCheckoutDelay)
	require.ErrorIs(t, c.ConfirmPayment(context.Background(), nil), ErrInvalidTransition)
}

func TestCheckoutResetDiscardsPendingSettlement(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)
	settled := false

	c.Begin(2)
	require.NoError(t, c.ConfirmPayment(context.Background(), func() { settled = true }))
	sched.Advance(time.Second)

	c.Reset()
	assert.Equal(t, CheckoutState{Step: StepReview}, c.State())
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(DefaultCheckoutDelay)
	assert.Equal(t, StepReview, c.Step())
	assert.False(t, settled)
}

func TestCheckoutReopenDoesNotInheritStaleTimer(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)

	c.Begin(1)
	require.NoError(t, c.ConfirmPayment(context.Background(), nil))
	sched.Advance(2 * time.Second)

	c.Begin(1)
	sched.Advance(3 * time.Second)
	assert.Equal(t, StepReview, c.Step())
}

func TestCheckoutContextCancelDiscardsSettlement(t *testing.T) {
	sched := NewManualScheduler(epoch)
	c := NewCheckoutSequencer(sched, DefaultCheckoutDelay)
	ctx, cancel := context.WithCancel(context.Background())

	c.Begin(1)
	require.NoError(t, c.ConfirmPayment(ctx, nil))
	cancel()

	sched.Advance(DefaultCheckoutDelay)
	assert.Equal(t, StepProcessing, c.Step())
}

func TestCheckoutConfirmWithCancelledContext(t *testing.T) {
	c := NewCheckoutSequencer(NewManualScheduler(epoch), DefaultCheckoutDelay)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.Begin(1)
	require.ErrorIs(t, c.ConfirmPayment(ctx, nil), context.Canceled)
	assert.Equal(t, StepReview, c.Step())
}

func TestCheckoutWithSystemScheduler(t *testing.T) {
	c := NewCheckoutSequencer(System, 10*time.Millisecond)
	done := make(chan struct{})

	c.Begin(1)
	require.NoError(t, c.ConfirmPayment(context.Background(), func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("checkout never settled")
	}
	assert.Equal(t, StepSuccess, c.Step())
}
