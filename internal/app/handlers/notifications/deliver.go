package notifications

import (
	"context"
	"errors"
	"log/slog"

	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/policies"
)

var ErrNotifierRequired = errors.New("notifications: notifier required")

// Dispatcher hands relayed event records to the notifier. Records that are
// not addressed to anybody are skipped.
type Dispatcher struct {
	Notifier policies.Notifier
	Logger   *slog.Logger
}

func (d *Dispatcher) Deliver(ctx context.Context, record outbox.EventRecord) error {
	if d.Notifier == nil {
		return ErrNotifierRequired
	}
	recipients := record.Recipients()
	if len(recipients) == 0 {
		if d.Logger != nil {
			d.Logger.Debug("event has no recipients", "event", record.Name, "event_id", record.ID)
		}
		return nil
	}
	return d.Notifier.Notify(ctx, policies.Notification{
		EventID:    record.ID,
		Event:      record.Name,
		Subject:    record.Aggregate,
		Recipients: recipients,
		Payload:    record.Payload,
		OccurredAt: record.OccurredAt,
	})
}
