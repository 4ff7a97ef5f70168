package gosched

// Priority is advisory metadata recorded on a Task. Dispatch order is
// always registration order; Priority is reserved for future use, but
// implementations must still accept and store it.
type Priority int

const (
	PriorityLowest Priority = iota
	PriorityLow
	PriorityNormal
	PriorityHigh
	PriorityTimeCritical
	PrioritySystemCritical
)

// DefaultPeriodUs is the period applied when Add's caller doesn't specify
// one.
const DefaultPeriodUs uint32 = 100_000

// TaskFunc is a nullary task callback.
type TaskFunc func()

// CatchUpKind selects how a due-check handles a task whose elapsed time
// since its last invocation spans more than one full period — the host
// process may itself have been descheduled by its OS for a stretch, or a
// prior callback may have run long.
type CatchUpKind int

const (
	// CatchUpNone invokes the callback exactly once per due-check no
	// matter how many periods have actually elapsed. This is a task's
	// default and reproduces the literal single-invocation behavior.
	CatchUpNone CatchUpKind = iota
	// CatchUpBounded invokes the callback once per elapsed period,
	// up to CatchUpPolicy.Max, to make up for missed invocations.
	CatchUpBounded
)

// CatchUpPolicy configures a task's catch-up behavior. The zero value
// (CatchUpNone) reproduces the default single-invocation-per-due-check
// behavior.
type CatchUpPolicy struct {
	Kind CatchUpKind
	Max  int // consulted only when Kind == CatchUpBounded; <= 1 behaves like CatchUpNone
}

// NoCatchUp is the default policy: one invocation per due-check.
func NoCatchUp() CatchUpPolicy { return CatchUpPolicy{Kind: CatchUpNone} }

// BoundedCatchUp runs up to max invocations per due-check, one per
// elapsed period, when the task has fallen behind by more than one
// period.
func BoundedCatchUp(max int) CatchUpPolicy {
	return CatchUpPolicy{Kind: CatchUpBounded, Max: max}
}

// Task is a periodically invoked callback owned by the scheduler.
// id 0 is reserved for the host context ("main") and is never assigned by
// Add; it only appears as an owner_task_id on Subscriptions and as the
// attribution bucket for CPU time spent outside any task's callback.
type Task struct {
	ID         int
	Name       string
	Callback   TaskFunc
	PeriodUs   uint32
	Priority   Priority
	LastCallUs uint32
	CPUTimeUs  uint32
	LateTimeUs uint32
	CatchUp    CatchUpPolicy

	removed bool

	// cronSchedule is non-nil only for tasks registered via AddCron; see
	// cron.go. It's consulted after every invocation to recompute
	// PeriodUs from the wall clock, which is how a cron.Schedule's
	// variable-length intervals are expressed in terms of this
	// scheduler's fixed-period Task model.
	cronSchedule cronSchedule
}

// taskRegistry is embedded in Scheduler. Entries are never removed from
// the backing slice (swap-remove mutation during iteration would corrupt
// a callback's view mid-dispatch); Remove only tombstones. IDs are
// therefore never reused.
type taskRegistry struct {
	tasks  []*Task
	nextID int
}

func newTaskRegistry() taskRegistry {
	return taskRegistry{nextID: 1}
}

// add appends a new task, returning ErrAllocFailure if maxTasks (0 =
// unlimited) active tasks already exist.
func (r *taskRegistry) add(cb TaskFunc, name string, periodUs uint32, priority Priority, catchUp CatchUpPolicy, maxTasks int) (*Task, error) {
	if maxTasks > 0 && r.activeCount() >= maxTasks {
		return nil, ErrAllocFailure
	}
	t := &Task{
		ID:       r.nextID,
		Name:     name,
		Callback: cb,
		PeriodUs: periodUs,
		Priority: priority,
		CatchUp:  catchUp,
	}
	r.nextID++
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *taskRegistry) activeCount() int {
	n := 0
	for _, t := range r.tasks {
		if !t.removed {
			n++
		}
	}
	return n
}

// remove tombstones the task with the given id. Returns false if unknown
// or already removed.
func (r *taskRegistry) remove(id int) bool {
	for _, t := range r.tasks {
		if t.ID == id && !t.removed {
			t.removed = true
			return true
		}
	}
	return false
}

// list returns the active tasks in registration order.
func (r *taskRegistry) list() []*Task {
	out := make([]*Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.removed {
			out = append(out, t)
		}
	}
	return out
}

func (r *taskRegistry) get(id int) (*Task, bool) {
	for _, t := range r.tasks {
		if t.ID == id && !t.removed {
			return t, true
		}
	}
	return nil, false
}

// sliceLen and at give the dispatcher index-based access to the raw
// backing slice (tombstones included), so a callback that adds or removes
// a task mid-iteration is reflected immediately: sliceLen grows as soon as
// add appends, and a removed entry's tombstone is visible to the very next
// index check. A pre-built snapshot (e.g. list()) would miss both.
func (r *taskRegistry) sliceLen() int {
	return len(r.tasks)
}

func (r *taskRegistry) at(i int) *Task {
	if i < 0 || i >= len(r.tasks) {
		return nil
	}
	return r.tasks[i]
}
