package gosched

import "github.com/muwerk/gosched/clock"

// TaskStats is one task's accounting for a single StatsTick.
type TaskStats struct {
	ID         int
	Name       string
	CPUTimeUs  uint32
	LateTimeUs uint32
}

// StatsTick is emitted once per stats interval (Config.StatsIntervalUs,
// default one second) of clock time since the previous tick, carrying every active task's accumulated counters since the previous
// tick. Counters are reset to zero immediately after the tick is built.
type StatsTick struct {
	SystemTimeUs uint32
	MainTimeUs   uint32
	Tasks        []TaskStats
}

// StatsSink receives a StatsTick. A nil sink only skips that hand-off:
// the tick is still built, the counters are still reset, and the tick is
// still emitted as an event and a debug log line.
type StatsSink func(StatsTick)

const statsIntervalUsDefault uint32 = 1_000_000

// maybeEmitStats fires at most one StatsTick per Step, when at least one
// full interval (cfg.StatsIntervalUs, default one simulated second) has
// elapsed since the last tick. Skipped entirely in single-task mode,
// mirroring the drain suppression.
func (s *Scheduler) maybeEmitStats(now uint32) {
	interval := statsIntervalUsDefault
	if s.cfg.StatsIntervalUs > 0 {
		interval = uint32(s.cfg.StatsIntervalUs)
	}
	if clock.Delta(s.lastStatsTickUs, now) < interval {
		return
	}
	s.lastStatsTickUs = now

	tick := StatsTick{
		SystemTimeUs: s.systemTimeUs,
		MainTimeUs:   s.mainTimeUs,
	}
	for _, t := range s.tasks.list() {
		tick.Tasks = append(tick.Tasks, TaskStats{
			ID:         t.ID,
			Name:       t.Name,
			CPUTimeUs:  t.CPUTimeUs,
			LateTimeUs: t.LateTimeUs,
		})
		t.CPUTimeUs = 0
		t.LateTimeUs = 0
	}
	s.systemTimeUs = 0
	s.mainTimeUs = 0

	if s.statsSink != nil {
		s.statsSink(tick)
	}
	s.emitEvent(EventTypeStatsTick, tick)
	s.logger.Debug("stats tick", "system_us", tick.SystemTimeUs, "main_us", tick.MainTimeUs, "tasks", len(tick.Tasks))
}
