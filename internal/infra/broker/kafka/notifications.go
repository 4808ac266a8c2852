package kafka

import (
	"context"

	"github.com/IBM/sarama"

	"campusconnect/internal/app/outbox"
	infraoutbox "campusconnect/internal/infra/outbox"
)

// Deduper reports whether an event id was processed before.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

type Deliverer interface {
	Deliver(ctx context.Context, record outbox.EventRecord) error
}

// NotificationHandler turns relayed CloudEvents back into event records and
// hands them to the notification dispatcher exactly once per event id.
type NotificationHandler struct {
	Inbox     Deduper
	Deliverer Deliverer
}

func (h NotificationHandler) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	record, err := infraoutbox.DecodeCloudEvent(msg.Value)
	if err != nil {
		return err
	}
	for _, header := range msg.Headers {
		if header == nil || string(header.Key) != outbox.HeaderRecipients {
			continue
		}
		if _, ok := record.Headers[outbox.HeaderRecipients]; !ok {
			record.Headers[outbox.HeaderRecipients] = string(header.Value)
		}
	}
	if h.Inbox != nil {
		seen, err := h.Inbox.Seen(ctx, record.ID)
		if err != nil {
			return err
		}
		if seen {
			return nil
		}
	}
	return h.Deliverer.Deliver(ctx, record)
}
