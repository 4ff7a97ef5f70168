package gosched

import "errors"

// Sentinel errors surfaced at the public API boundary.
// Subscribe, Add and AddCron return these sentinel values directly,
// unwrapped, so errors.Is and == both work. Publish, Unsubscribe,
// and Remove keep their literal bool-returning signatures, but still log
// these same sentinels through the ambient Logger on failure, so a host's
// structured logs carry a stable error identity either way.
var (
	// ErrQueueFull identifies a Publish failure: the bounded FIFO is
	// saturated. The message is dropped; the caller decides what to do.
	ErrQueueFull = errors.New("gosched: queue full")

	// ErrUnknownHandle identifies an Unsubscribe/Remove failure: no entry
	// matches the given handle or task id.
	ErrUnknownHandle = errors.New("gosched: unknown handle")

	// ErrAllocFailure is returned by Subscribe/Add when the registry has
	// reached its configured capacity (Config.MaxSubscriptions /
	// Config.MaxTasks).
	ErrAllocFailure = errors.New("gosched: registry at capacity")

	// ErrInvalidArgument is returned by Subscribe for an ill-formed
	// pattern (a '#' not in terminal position) and by AddCron for an
	// unparseable cron expression.
	ErrInvalidArgument = errors.New("gosched: invalid argument")
)
