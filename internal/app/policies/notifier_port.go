package policies

import (
	"context"
	"time"
)

// Notification is a domain event addressed to a set of users.
type Notification struct {
	EventID    string
	Event      string
	Subject    string
	Recipients []string
	Payload    []byte
	OccurredAt time.Time
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
