package events

import "time"

type EventCreatedEvent struct {
	EventID     EventID
	OrganizerID string
	StartsAt    time.Time
	At          time.Time
}

func (e EventCreatedEvent) EventName() string     { return "event.created" }
func (e EventCreatedEvent) AggregateID() string   { return string(e.EventID) }
func (e EventCreatedEvent) OccurredAt() time.Time { return e.At }
