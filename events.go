package gosched

import (
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// Event type constants, following a reverse-domain CloudEvents naming
// convention.
const (
	EventTypeTaskAdded           = "dev.gosched.task.added"
	EventTypeTaskRemoved         = "dev.gosched.task.removed"
	EventTypeSubscribed          = "dev.gosched.subscription.added"
	EventTypeUnsubscribed        = "dev.gosched.subscription.removed"
	EventTypeSingleTaskModeEnter = "dev.gosched.singletask.entered"
	EventTypeSingleTaskModeExit  = "dev.gosched.singletask.exited"
	EventTypeStatsTick           = "dev.gosched.stats.tick"
)

// EventSink receives scheduler lifecycle events as CloudEvents. A nil sink
// is always safe to "call" (emitEvent no-ops); emission never blocks and
// never causes Step to fail.
type EventSink func(cloudevents.Event)

// newCloudEvent mirrors modular.NewCloudEvent: fill required CloudEvents
// attributes, encode data as JSON, and stamp extensions from metadata.
func newCloudEvent(eventType, source string, data any, metadata map[string]any) cloudevents.Event {
	event := cloudevents.NewEvent()
	event.SetID(generateEventID())
	event.SetSource(source)
	event.SetType(eventType)
	event.SetTime(time.Now())
	event.SetSpecVersion(cloudevents.VersionV1)

	if data != nil {
		_ = event.SetData(cloudevents.ApplicationJSON, data)
	}
	for k, v := range metadata {
		event.SetExtension(k, v)
	}
	return event
}

// generateEventID prefers UUIDv7 (time-ordered, useful for log correlation)
// and falls back to v4 if the runtime can't source one.
func generateEventID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func (s *Scheduler) emitEvent(eventType string, data any) {
	if s.eventSink == nil {
		return
	}
	event := newCloudEvent(eventType, s.eventSource, data, nil)
	s.eventSink(event)
}
