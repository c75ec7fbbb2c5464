package sequencer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualSchedulerFiresInDeadlineOrder(t *testing.T) {
	sched := NewManualScheduler(epoch)
	var fired []string

	sched.AfterFunc(3*time.Second, func() { fired = append(fired, "c") })
	sched.AfterFunc(time.Second, func() {
		fired = append(fired, "a")
		sched.AfterFunc(time.Second, func() { fired = append(fired, "b") })
	})
	stopped := sched.AfterFunc(2*time.Second, func() { fired = append(fired, "never") })
	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop())

	sched.Advance(3 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, fired)
	assert.Equal(t, epoch.Add(3*time.Second), sched.Now())
	assert.Equal(t, 0, sched.Pending())
}
