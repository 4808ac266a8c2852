package notifications

import (
	"context"
	"errors"
	"testing"

	"campusconnect/internal/app/outbox"
	"campusconnect/internal/app/policies"
)

type recordingNotifier struct {
	got []policies.Notification
	err error
}

func (n *recordingNotifier) Notify(_ context.Context, msg policies.Notification) error {
	n.got = append(n.got, msg)
	return n.err
}

func TestDispatcherDeliversAddressedRecords(t *testing.T) {
	notifier := &recordingNotifier{}
	d := &Dispatcher{Notifier: notifier}

	err := d.Deliver(context.Background(), outbox.EventRecord{
		ID:        "evt-1",
		Name:      "booking.confirmed",
		Aggregate: "b-1",
		Headers:   map[string]string{outbox.HeaderRecipients: "owner,borrower"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(notifier.got) != 1 {
		t.Fatalf("notifications = %d", len(notifier.got))
	}
	msg := notifier.got[0]
	if msg.EventID != "evt-1" || msg.Subject != "b-1" || len(msg.Recipients) != 2 || msg.Recipients[1] != "borrower" {
		t.Fatalf("notification = %+v", msg)
	}
}

func TestDispatcherSkipsUnaddressedRecords(t *testing.T) {
	notifier := &recordingNotifier{}
	d := &Dispatcher{Notifier: notifier}
	if err := d.Deliver(context.Background(), outbox.EventRecord{Name: "listing.created"}); err != nil {
		t.Fatal(err)
	}
	if len(notifier.got) != 0 {
		t.Fatal("unaddressed record was delivered")
	}
}

func TestDispatcherErrors(t *testing.T) {
	rec := outbox.EventRecord{Headers: map[string]string{outbox.HeaderRecipients: "u1"}}
	if err := (&Dispatcher{}).Deliver(context.Background(), rec); !errors.Is(err, ErrNotifierRequired) {
		t.Fatalf("missing notifier: %v", err)
	}
	boom := errors.New("smtp down")
	d := &Dispatcher{Notifier: &recordingNotifier{err: boom}}
	if err := d.Deliver(context.Background(), rec); !errors.Is(err, boom) {
		t.Fatalf("notifier error: %v", err)
	}
}
