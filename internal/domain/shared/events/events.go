package events

import "time"

type DomainEvent interface {
	EventName() string
	AggregateID() string
	OccurredAt() time.Time
}

// Addressed is implemented by events that have to reach specific users.
type Addressed interface {
	Recipients() []string
}

type EventRecorder struct {
	pending []DomainEvent
}

func (r *EventRecorder) Record(event DomainEvent) {
	if event == nil {
		return
	}
	r.pending = append(r.pending, event)
}

func (r *EventRecorder) PendingEvents() []DomainEvent {
	out := make([]DomainEvent, len(r.pending))
	copy(out, r.pending)
	return out
}

func (r *EventRecorder) ClearEvents() {
	r.pending = nil
}

// Drain returns the pending events and resets the recorder.
func (r *EventRecorder) Drain() []DomainEvent {
	out := r.PendingEvents()
	r.ClearEvents()
	return out
}

// RecipientsOf lists the users an event is addressed to, or nil.
func RecipientsOf(event DomainEvent) []string {
	addressed, ok := event.(Addressed)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{})
	out := make([]string, 0, 2)
	for _, id := range addressed.Recipients() {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
