package simulate

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"agentchat/internal/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var start = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

func TestTimerScheduler_Fires(t *testing.T) {
	s := NewTimerScheduler()
	var ran atomic.Bool

	task := s.Schedule(5*time.Millisecond, func() { ran.Store(true) })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, task.Wait(ctx))
	assert.True(t, ran.Load())
	assert.True(t, task.Fired())
	assert.False(t, task.Cancel(), "fired task cannot be cancelled")
}

func TestTimerScheduler_Cancel(t *testing.T) {
	s := NewTimerScheduler()
	var ran atomic.Bool

	task := s.Schedule(time.Hour, func() { ran.Store(true) })
	assert.True(t, task.Cancel())
	assert.False(t, task.Cancel(), "second cancel is a no-op")

	err := task.Wait(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.CodeTaskCancelled, domain.ErrorCodeOf(err))
	assert.False(t, ran.Load())
	assert.True(t, task.Cancelled())
	assert.False(t, task.Fired())
}

func TestTask_WaitContextEnds(t *testing.T) {
	s := NewManualScheduler(start)
	task := s.Schedule(time.Second, func() {})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, task.Wait(ctx), context.Canceled)
	task.Cancel()
}

func TestManualScheduler_AdvanceFiresDueInOrder(t *testing.T) {
	s := NewManualScheduler(start)
	var order []string

	s.Schedule(2*time.Second, func() { order = append(order, "create") })
	s.Schedule(time.Second, func() { order = append(order, "reply-1") })
	s.Schedule(time.Second, func() { order = append(order, "reply-2") })

	assert.Equal(t, 0, s.Advance(999*time.Millisecond))
	assert.Empty(t, order)
	assert.Equal(t, 3, s.Pending())

	assert.Equal(t, 2, s.Advance(time.Millisecond))
	assert.Equal(t, []string{"reply-1", "reply-2"}, order)

	assert.Equal(t, 1, s.Advance(time.Second))
	assert.Equal(t, []string{"reply-1", "reply-2", "create"}, order)
	assert.Equal(t, start.Add(2*time.Second), s.Now())
	assert.Zero(t, s.Pending())
}

func TestManualScheduler_CancelledTaskSkipped(t *testing.T) {
	s := NewManualScheduler(start)
	var ran atomic.Int32

	task := s.Schedule(time.Second, func() { ran.Add(1) })
	s.Schedule(time.Second, func() { ran.Add(10) })
	require.True(t, task.Cancel())

	assert.Equal(t, 1, s.Advance(time.Second))
	assert.Equal(t, int32(10), ran.Load())
}

func TestManualScheduler_NestedScheduleFiresInSameAdvance(t *testing.T) {
	s := NewManualScheduler(start)
	var fired []time.Time

	s.Schedule(time.Second, func() {
		fired = append(fired, s.Now())
		s.Schedule(time.Second, func() { fired = append(fired, s.Now()) })
	})

	assert.Equal(t, 2, s.Advance(3*time.Second))
	require.Len(t, fired, 2)
	assert.Equal(t, start.Add(time.Second), fired[0])
	assert.Equal(t, start.Add(2*time.Second), fired[1])
	assert.Equal(t, start.Add(3*time.Second), s.Now())
}

func TestManualScheduler_FlushAll(t *testing.T) {
	s := NewManualScheduler(start)
	var n atomic.Int32
	s.Schedule(2*time.Second, func() { n.Add(1) })
	s.Schedule(time.Hour, func() { n.Add(1) })

	assert.Equal(t, 2, s.FlushAll())
	assert.Equal(t, int32(2), n.Load())
	assert.Equal(t, 0, s.FlushAll())
}

func TestGroup_CancelAll(t *testing.T) {
	s := NewManualScheduler(start)
	g := NewGroup()

	g.Track(s.Schedule(time.Second, func() {}))
	g.Track(s.Schedule(time.Second, func() {}))
	fired := g.Track(s.Schedule(time.Millisecond, func() {}))
	s.Advance(time.Millisecond)
	<-fired.Done()

	assert.Eventually(t, func() bool { return g.Len() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, g.CancelAll())
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0, g.Close())
	assert.Equal(t, 0, s.Advance(time.Hour))
}
