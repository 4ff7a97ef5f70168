package gosched

import "github.com/muwerk/gosched/queue"

// Message is a concrete (non-wildcard) topic, payload, and optional
// originator. Originator "" means "no originator": loopback suppression
// is disabled for that message regardless of any subscription's
// OriginatorFilter.
type Message = queue.Message
