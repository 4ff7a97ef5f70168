package gosched

import (
	"time"

	"github.com/robfig/cron/v3"
)

// cronSchedule is satisfied by *cron.SpecSchedule (and anything else
// robfig/cron produces from a parsed expression). Declared locally so
// task.go doesn't need to import cron directly.
type cronSchedule interface {
	Next(time.Time) time.Time
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// AddCron registers a task whose period is recomputed after every
// invocation from a standard five-field cron expression, bridging
// robfig/cron's wall-clock Schedule into this scheduler's wrapping
// microsecond PeriodUs model. The first PeriodUs is the delta from now
// to the schedule's next fire time; every firing after that rearms the
// same way, so drift in the host's Step cadence never accumulates against
// the wall clock.
func (s *Scheduler) AddCron(pattern string, cb TaskFunc, name string) (int, error) {
	sched, err := cronParser.Parse(pattern)
	if err != nil {
		return 0, ErrInvalidArgument
	}

	first := sched.Next(time.Now())
	periodUs := durationToUs(time.Until(first))

	id, err := s.Add(cb, name, periodUs, PriorityNormal)
	if err != nil {
		return 0, err
	}
	if t, ok := s.tasks.get(id); ok {
		t.cronSchedule = sched
	}
	return id, nil
}

// afterCronInvocation rearms a cron-backed task's PeriodUs against the
// schedule's next fire time. No-op for ordinary tasks.
func (s *Scheduler) afterCronInvocation(t *Task) {
	if t.cronSchedule == nil {
		return
	}
	next := t.cronSchedule.Next(time.Now())
	t.PeriodUs = durationToUs(time.Until(next))
}

func durationToUs(d time.Duration) uint32 {
	if d <= 0 {
		return 1
	}
	us := d.Microseconds()
	if us > int64(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(us)
}
