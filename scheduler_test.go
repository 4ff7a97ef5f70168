package gosched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance the scheduler's notion of time explicitly
// and deterministically, one microsecond at a time if needed.
type fakeClock struct{ us uint32 }

func (f *fakeClock) source() uint32 { return f.us }
func (f *fakeClock) advance(d uint32) { f.us += d }

func newTestScheduler(fc *fakeClock, opts ...Option) *Scheduler {
	base := []Option{WithClockSource(fc.source)}
	return New(DefaultConfig(), append(base, opts...)...)
}

func TestAddTaskRunsAtExactPeriodBoundary(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	calls := 0
	_, err := s.Add(func() { calls++ }, "t", 1000, PriorityNormal)
	require.NoError(t, err)

	s.Step() // t=0: first call is always due
	assert.Equal(t, 1, calls)

	fc.advance(500)
	s.Step()
	assert.Equal(t, 1, calls, "500us < period, must not fire")

	fc.advance(500)
	s.Step()
	assert.Equal(t, 2, calls, "1000us elapsed, exactly at period boundary")

	fc.advance(1)
	s.Step()
	assert.Equal(t, 2, calls, "already consumed this period's due window")
}

func TestLateTimeAccumulates(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)
	id, _ := s.Add(func() {}, "t", 1000, PriorityNormal)

	s.Step()
	fc.advance(1500)
	s.Step()

	task, ok := s.tasks.get(id)
	require.True(t, ok)
	assert.Equal(t, uint32(500), task.LateTimeUs)
}

func TestPublishSubscribeExactMatch(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	var got string
	_, err := s.Subscribe(0, "home/temp", func(topic, payload, originator string) {
		got = payload
	}, "")
	require.NoError(t, err)

	assert.True(t, s.Publish("home/temp", "21.5", "sensor1"))
	s.Step()
	assert.Equal(t, "21.5", got)
}

func TestOriginatorLoopbackSuppression(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	delivered := false
	_, err := s.Subscribe(0, "a/b", func(string, string, string) { delivered = true }, "me")
	require.NoError(t, err)

	s.Publish("a/b", "x", "me")
	s.Step()
	assert.False(t, delivered, "message from filtered originator must be suppressed")

	s.Publish("a/b", "x", "someone-else")
	s.Step()
	assert.True(t, delivered)
}

func TestMessagePublishedDuringDrainWaitsForNextDrain(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	var secondFired bool
	_, err := s.Subscribe(0, "chain/2", func(string, string, string) { secondFired = true }, "")
	require.NoError(t, err)
	_, err = s.Subscribe(0, "chain/1", func(string, string, string) {
		s.Publish("chain/2", "", "")
	}, "")
	require.NoError(t, err)

	s.Publish("chain/1", "", "")
	s.Step()
	assert.False(t, secondFired, "republish during a drain must not be delivered within the same drain")

	s.Step()
	assert.True(t, secondFired)
}

func TestSingleTaskModeSuppressesOthersAndDrain(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	var aCalls, bCalls int
	idA, _ := s.Add(func() { aCalls++ }, "a", 1, PriorityNormal)
	_, _ = s.Add(func() { bCalls++ }, "b", 1, PriorityNormal)

	delivered := false
	_, _ = s.Subscribe(0, "x", func(string, string, string) { delivered = true }, "")
	s.Publish("x", "", "")

	s.SingleTaskMode(&idA)
	s.Step()

	assert.Equal(t, 1, aCalls)
	assert.Equal(t, 0, bCalls)
	assert.False(t, delivered, "queue drain must be suppressed while pinned")

	s.SingleTaskMode(nil)
	s.Step()
	assert.True(t, delivered)
	assert.Equal(t, 1, bCalls)
}

func TestRemoveDuringTaskIterationIsToleratedAndSkipsFuture(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	var bCalls int
	var idB int
	idA, _ := s.Add(func() {
		s.Remove(idB)
	}, "a", 1, PriorityNormal)
	idB, _ = s.Add(func() { bCalls++ }, "b", 1, PriorityNormal)
	_ = idA

	s.Step()
	assert.Equal(t, 0, bCalls, "b was removed by a before its own due check ran")

	fc.advance(10)
	s.Step()
	assert.Equal(t, 0, bCalls, "removed tasks never run again")
}

func TestPublishFailsWhenQueueFull(t *testing.T) {
	fc := &fakeClock{}
	cfg := DefaultConfig()
	cfg.QueueCapacity = 1
	s := New(cfg, WithClockSource(fc.source))

	assert.True(t, s.Publish("a", "1", ""))
	assert.False(t, s.Publish("a", "2", ""), "second publish must fail: queue at capacity")
}

func TestSubscribeRejectsInvalidPattern(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	_, err := s.Subscribe(0, "a/#/b", func(string, string, string) {}, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddRejectsBeyondMaxTasks(t *testing.T) {
	fc := &fakeClock{}
	cfg := DefaultConfig()
	cfg.MaxTasks = 1
	s := New(cfg, WithClockSource(fc.source))

	_, err := s.Add(func() {}, "one", 1000, PriorityNormal)
	require.NoError(t, err)

	_, err = s.Add(func() {}, "two", 1000, PriorityNormal)
	assert.ErrorIs(t, err, ErrAllocFailure)
}

func TestUptimeSecondsTracksRealClockByDefault(t *testing.T) {
	s := New(DefaultConfig())
	assert.GreaterOrEqual(t, s.UptimeSeconds(), 0.0)
}

func TestMatchDelegatesToTopicPackage(t *testing.T) {
	s := New(DefaultConfig())
	assert.True(t, s.Match("a/b/c", "a/+/c"))
	assert.False(t, s.Match("a/b/c", "a/b"))
}

func TestDefaultCatchUpPolicyRunsOnceRegardlessOfGap(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	calls := 0
	_, err := s.Add(func() { calls++ }, "t", 1000, PriorityNormal)
	require.NoError(t, err)

	s.Step() // t=0: first call is always due
	assert.Equal(t, 1, calls)

	fc.advance(5000) // five periods' worth of gap
	s.Step()
	assert.Equal(t, 2, calls, "NoCatchUp invokes the callback exactly once, no matter the gap")
}

func TestBoundedCatchUpRunsOncePerElapsedPeriodUpToMax(t *testing.T) {
	fc := &fakeClock{}
	s := newTestScheduler(fc)

	calls := 0
	id, err := s.AddWithCatchUp(func() { calls++ }, "t", 1000, PriorityNormal, BoundedCatchUp(3))
	require.NoError(t, err)

	s.Step() // t=0: first call is always due
	assert.Equal(t, 1, calls)

	fc.advance(5000) // five periods elapsed, bounded to 3 catch-up invocations
	s.Step()
	assert.Equal(t, 4, calls, "one initial run plus 3 catch-up runs (capped by Max)")

	task, ok := s.tasks.get(id)
	require.True(t, ok)
	assert.Equal(t, uint32(4000), task.LateTimeUs, "lateness reflects the full gap, independent of how many runs catch up")
}
