package gosched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCronRejectsMalformedExpression(t *testing.T) {
	s := New(DefaultConfig())
	_, err := s.AddCron("not a cron expr", func() {}, "bad")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAddCronRegistersATaskWithAPositivePeriod(t *testing.T) {
	s := New(DefaultConfig())
	id, err := s.AddCron("* * * * *", func() {}, "every-minute")
	require.NoError(t, err)

	task, ok := s.tasks.get(id)
	require.True(t, ok)
	assert.NotNil(t, task.cronSchedule)
	assert.Greater(t, task.PeriodUs, uint32(0))
}

func TestAfterCronInvocationRearmsPeriod(t *testing.T) {
	s := New(DefaultConfig())
	id, err := s.AddCron("* * * * *", func() {}, "every-minute")
	require.NoError(t, err)

	task, _ := s.tasks.get(id)
	before := task.PeriodUs
	s.afterCronInvocation(task)
	// Recomputed against "now" a moment later; still describes a wait of
	// at most a minute, and never goes negative/huge via wraparound.
	assert.LessOrEqual(t, task.PeriodUs, uint32(61_000_000))
	_ = before
}
