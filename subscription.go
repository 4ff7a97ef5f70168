package gosched

import "github.com/muwerk/gosched/topic"

// SubscriptionFunc receives a delivered message.
type SubscriptionFunc func(topic, payload, originator string)

// Subscription is a (pattern, callback, owner, filter) tuple receiving
// messages whose topic matches pattern.
type Subscription struct {
	Handle           int
	Pattern          string
	Callback         SubscriptionFunc
	OwnerTaskID      int
	OriginatorFilter string

	removed bool
}

type subscriptionRegistry struct {
	subs       []*Subscription
	nextHandle int
}

func newSubscriptionRegistry() subscriptionRegistry {
	return subscriptionRegistry{nextHandle: 1}
}

// add validates pattern, then appends a new subscription. Order of
// validation matters: an invalid pattern is always ErrInvalidArgument,
// even when the registry is also at capacity.
func (r *subscriptionRegistry) add(ownerTaskID int, pattern string, cb SubscriptionFunc, originatorFilter string, maxSubs int) (*Subscription, error) {
	if err := topic.Validate(pattern); err != nil {
		return nil, ErrInvalidArgument
	}
	if maxSubs > 0 && r.activeCount() >= maxSubs {
		return nil, ErrAllocFailure
	}
	s := &Subscription{
		Handle:           r.nextHandle,
		Pattern:          pattern,
		Callback:         cb,
		OwnerTaskID:      ownerTaskID,
		OriginatorFilter: originatorFilter,
	}
	r.nextHandle++
	r.subs = append(r.subs, s)
	return s, nil
}

func (r *subscriptionRegistry) activeCount() int {
	n := 0
	for _, s := range r.subs {
		if !s.removed {
			n++
		}
	}
	return n
}

// remove tombstones the subscription with the given handle. Returns false
// if unknown or already removed — handles are never reused afterward.
func (r *subscriptionRegistry) remove(handle int) bool {
	for _, s := range r.subs {
		if s.Handle == handle && !s.removed {
			s.removed = true
			return true
		}
	}
	return false
}

// deliverTo walks subscriptions in insertion order, tolerating
// subscriptions added or removed during iteration by a prior
// callback in the same walk: the loop re-reads len(r.subs) every
// iteration and skips tombstoned/not-yet-matching entries rather than
// snapshotting up front.
func (r *subscriptionRegistry) deliverTo(m Message, deliver func(s *Subscription, m Message)) {
	for i := 0; i < len(r.subs); i++ {
		s := r.subs[i]
		if s.removed {
			continue
		}
		if m.Originator != "" && s.OriginatorFilter == m.Originator {
			continue
		}
		if !topic.Match(m.Topic, s.Pattern) {
			continue
		}
		deliver(s, m)
	}
}
