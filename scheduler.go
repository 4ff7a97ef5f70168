// Package gosched implements a cooperative, single-threaded task
// scheduler fused with an in-process topic-routed publish/subscribe bus.
// A host repeatedly calls Step; the scheduler runs due tasks in
// registration order, interleaving delivery of queued messages, and
// accounts CPU/lateness per task.
package gosched

import (
	"github.com/google/uuid"
	"github.com/muwerk/gosched/clock"
	"github.com/muwerk/gosched/queue"
	"github.com/muwerk/gosched/topic"
)

// YieldHook is invoked between tasks, if configured. It never suspends a
// task; it exists so the host can service its own event loop or feed a
// watchdog.
type YieldHook func()

// Scheduler is the single entry point for the public API: add/remove
// tasks, subscribe/unsubscribe, publish, pin single-task mode, and step
// the dispatcher. It owns the task registry, the subscription registry,
// and the message queue; nothing here is safe for concurrent use from
// more than one goroutine, by design — there is no preemption and no
// multi-threaded execution.
type Scheduler struct {
	InstanceID uuid.UUID

	clk *clock.Clock
	cfg Config

	queue *queue.Queue
	tasks taskRegistry
	subs  subscriptionRegistry

	logger      Logger
	eventSink   EventSink
	statsSink   StatsSink
	eventSource string

	yield YieldHook

	lastSystemSampleUs uint32
	systemTimeUs       uint32
	mainTimeUs         uint32
	lastStatsTickUs    uint32

	pinnedTaskID *int
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithLogger installs a Logger; the default is NoopLogger.
func WithLogger(l Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithEventSink installs a CloudEvents sink for lifecycle/stats events.
func WithEventSink(sink EventSink) Option {
	return func(s *Scheduler) { s.eventSink = sink }
}

// WithStatsSink installs the per-second counters sink.
func WithStatsSink(sink StatsSink) Option {
	return func(s *Scheduler) { s.statsSink = sink }
}

// WithClockSource overrides the monotonic counter source; tests use this
// to drive the scheduler with simulated clock advances.
func WithClockSource(source clock.Source) Option {
	return func(s *Scheduler) { s.clk = clock.New(source) }
}

// WithYieldHook installs the cooperative yield hook, invoked between
// tasks during Step.
func WithYieldHook(hook YieldHook) Option {
	return func(s *Scheduler) { s.yield = hook }
}

// New constructs a Scheduler from cfg and any Options.
func New(cfg Config, opts ...Option) *Scheduler {
	q := queue.New(cfg.QueueCapacity)
	if cfg.MaxMessageSize > 0 {
		q.SetMaxMessageSize(cfg.MaxMessageSize)
	}

	s := &Scheduler{
		InstanceID: uuid.New(),
		cfg:        cfg,
		queue:      q,
		tasks:      newTaskRegistry(),
		subs:       newSubscriptionRegistry(),
		logger:     NoopLogger{},
		clk:        clock.NewReal(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.eventSource = "gosched/" + s.InstanceID.String()
	s.lastSystemSampleUs = s.clk.Now()
	s.lastStatsTickUs = s.lastSystemSampleUs
	return s
}

// UptimeSeconds returns elapsed time since construction.
func (s *Scheduler) UptimeSeconds() float64 {
	return s.clk.UptimeSeconds()
}

// Match exposes the topic matcher for testing/diagnostics.
func (s *Scheduler) Match(topicStr, pattern string) bool {
	return topic.Match(topicStr, pattern)
}

// Add registers a new task, returning its id. A zero periodUs is
// rejected in favor of DefaultPeriodUs; use AddTask for the common case
// of wanting the default entirely. The task's catch-up policy is
// NoCatchUp; use AddWithCatchUp to configure one.
func (s *Scheduler) Add(cb TaskFunc, name string, periodUs uint32, priority Priority) (int, error) {
	return s.AddWithCatchUp(cb, name, periodUs, priority, NoCatchUp())
}

// AddWithCatchUp registers a new task like Add, additionally configuring
// how its due-check behaves when more than one period has elapsed since
// its last invocation.
func (s *Scheduler) AddWithCatchUp(cb TaskFunc, name string, periodUs uint32, priority Priority, catchUp CatchUpPolicy) (int, error) {
	if periodUs == 0 {
		periodUs = DefaultPeriodUs
	}
	t, err := s.tasks.add(cb, name, periodUs, priority, catchUp, s.cfg.MaxTasks)
	if err != nil {
		return 0, err
	}
	// Back-date LastCallUs by a full period so the task is due on the very
	// first Step that observes it, regardless of when within a period Add
	// was called.
	t.LastCallUs = s.clk.Now() - periodUs
	s.emitEvent(EventTypeTaskAdded, map[string]any{"id": t.ID, "name": t.Name, "period_us": t.PeriodUs})
	return t.ID, nil
}

// AddTask registers a task with the default period and Normal priority.
func (s *Scheduler) AddTask(cb TaskFunc, name string) (int, error) {
	return s.Add(cb, name, DefaultPeriodUs, PriorityNormal)
}

// Remove unregisters the task with the given id. Removing the currently
// executing task is permitted; the dispatcher finishes the callback
// before the removal is observed, since remove() only tombstones an
// already-fetched *Task and Step never re-reads a tombstoned entry mid
// callback.
func (s *Scheduler) Remove(id int) bool {
	ok := s.tasks.remove(id)
	if !ok {
		s.logger.Warn("remove: unknown task", "error", ErrUnknownHandle, "id", id)
		return false
	}
	s.emitEvent(EventTypeTaskRemoved, map[string]any{"id": id})
	return true
}

// Subscribe registers cb to receive messages whose topic matches pattern.
// originatorFilter, if non-empty, suppresses delivery of any message whose
// Originator equals it.
func (s *Scheduler) Subscribe(ownerTaskID int, pattern string, cb SubscriptionFunc, originatorFilter string) (int, error) {
	sub, err := s.subs.add(ownerTaskID, pattern, cb, originatorFilter, s.cfg.MaxSubscriptions)
	if err != nil {
		return 0, err
	}
	s.emitEvent(EventTypeSubscribed, map[string]any{"handle": sub.Handle, "pattern": sub.Pattern, "owner_task_id": sub.OwnerTaskID})
	return sub.Handle, nil
}

// Unsubscribe removes the subscription with the given handle.
func (s *Scheduler) Unsubscribe(handle int) bool {
	ok := s.subs.remove(handle)
	if !ok {
		s.logger.Warn("unsubscribe: unknown handle", "error", ErrUnknownHandle, "handle", handle)
		return false
	}
	s.emitEvent(EventTypeUnsubscribed, map[string]any{"handle": handle})
	return true
}

// Publish enqueues a message for delivery on the next drain. It returns
// false (never an error) if the queue is full; the failure is still
// identified internally by ErrQueueFull so a host's logs carry a stable
// error identity even though the caller only sees a boolean.
func (s *Scheduler) Publish(topicStr, payload, originator string) bool {
	ok := s.queue.Push(Message{Topic: topicStr, Payload: payload, Originator: originator})
	if !ok {
		s.logger.Warn("publish: queue full", "error", ErrQueueFull, "topic", topicStr)
	}
	return ok
}

// SingleTaskMode pins the dispatcher to exactly one task id, suppressing
// queue drain and stats. Pass nil to return to Normal.
func (s *Scheduler) SingleTaskMode(id *int) {
	if id == nil {
		if s.pinnedTaskID != nil {
			s.emitEvent(EventTypeSingleTaskModeExit, map[string]any{"id": *s.pinnedTaskID})
		}
		s.pinnedTaskID = nil
		return
	}
	pinned := *id
	s.pinnedTaskID = &pinned
	s.emitEvent(EventTypeSingleTaskModeEnter, map[string]any{"id": pinned})
}

// Step is the dispatcher's single entry point. The host calls it in a
// tight loop.
func (s *Scheduler) Step() {
	now := s.clk.Now()
	s.systemTimeUs += clock.Delta(s.lastSystemSampleUs, now)
	s.lastSystemSampleUs = now

	pinned := s.pinnedTaskID != nil

	if !pinned {
		s.maybeEmitStats(now)
		s.drainQueue(now)
	}

	for i := 0; i < s.tasks.sliceLen(); i++ {
		t := s.tasks.at(i)
		if t == nil || t.removed {
			continue
		}
		if pinned && t.ID != *s.pinnedTaskID {
			continue
		}
		if !pinned {
			s.drainQueue(now)
		}
		s.runTaskIfDue(t, now)
		s.yieldBetweenTasks()
	}
}

// drainQueue processes exactly the messages present at entry (Len() at
// call time), bounding recursion: a callback that publishes during
// delivery appends to the queue but is picked up on the NEXT drain, never
// this one.
func (s *Scheduler) drainQueue(now uint32) {
	n := s.queue.Len()
	for i := 0; i < n; i++ {
		m, ok := s.queue.Pop()
		if !ok {
			return
		}
		s.deliver(m, now)
	}
}

func (s *Scheduler) deliver(m Message, now uint32) {
	s.subs.deliverTo(m, func(sub *Subscription, msg Message) {
		before := s.clk.Now()
		sub.Callback(msg.Topic, msg.Payload, msg.Originator)
		after := s.clk.Now()
		cost := clock.Delta(before, after)

		if owner, ok := s.tasks.get(sub.OwnerTaskID); ok {
			owner.CPUTimeUs += cost
		} else {
			s.mainTimeUs += cost
		}
	})
}

func (s *Scheduler) runTaskIfDue(t *Task, now uint32) {
	sinceLast := clock.Delta(t.LastCallUs, now)
	if sinceLast < t.PeriodUs {
		return
	}

	runs := uint32(1)
	if t.CatchUp.Kind == CatchUpBounded && t.CatchUp.Max > 1 && t.PeriodUs > 0 {
		runs = sinceLast / t.PeriodUs
		if runs < 1 {
			runs = 1
		}
		if max := uint32(t.CatchUp.Max); runs > max {
			runs = max
		}
	}

	for i := uint32(0); i < runs; i++ {
		before := s.clk.Now()
		t.Callback()
		after := s.clk.Now()
		t.CPUTimeUs += clock.Delta(before, after)
	}
	t.LateTimeUs += sinceLast - t.PeriodUs
	t.LastCallUs = now

	s.afterCronInvocation(t)
}

func (s *Scheduler) yieldBetweenTasks() {
	if s.yield == nil {
		return
	}
	before := s.clk.Now()
	s.yield()
	after := s.clk.Now()
	s.systemTimeUs += clock.Delta(before, after)
}
