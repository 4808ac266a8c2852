package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"campusconnect/internal/app/policies"
)

// LogNotifier writes every notification to the structured log. It stands in
// for a push or e-mail gateway.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, msg policies.Notification) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		"event_id", msg.EventID,
		"event", msg.Event,
		"subject", msg.Subject,
		"recipients", msg.Recipients,
		"occurred_at", msg.OccurredAt,
	}
	if json.Valid(msg.Payload) {
		attrs = append(attrs, "payload", json.RawMessage(msg.Payload))
	}
	logger.InfoContext(ctx, "notification", attrs...)
	return nil
}

var _ policies.Notifier = LogNotifier{}
