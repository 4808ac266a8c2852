package memory

import (
	"context"
	"errors"
	"testing"

	appoutbox "campusconnect/internal/app/outbox"
)

func TestOutboxFlushDeliversInOrder(t *testing.T) {
	var got []string
	box := NewOutbox(func(_ context.Context, rec appoutbox.EventRecord) error {
		got = append(got, rec.ID)
		return nil
	})
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		if err := box.Add(ctx, appoutbox.EventRecord{ID: id}); err != nil {
			t.Fatal(err)
		}
	}
	if err := box.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Fatalf("delivered %v", got)
	}
	if len(box.Pending()) != 0 {
		t.Fatal("records left after flush")
	}
}

func TestOutboxKeepsFailedTail(t *testing.T) {
	boom := errors.New("sink down")
	box := NewOutbox(func(_ context.Context, rec appoutbox.EventRecord) error {
		if rec.ID == "b" {
			return boom
		}
		return nil
	})
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		_ = box.Add(ctx, appoutbox.EventRecord{ID: id})
	}
	if err := box.Flush(ctx); !errors.Is(err, boom) {
		t.Fatalf("flush error = %v", err)
	}
	pending := box.Pending()
	if len(pending) != 2 || pending[0].ID != "b" || pending[1].ID != "c" {
		t.Fatalf("pending = %+v", pending)
	}
}

func TestOutboxWithoutSinkDrops(t *testing.T) {
	box := NewOutbox(nil)
	_ = box.Add(context.Background(), appoutbox.EventRecord{ID: "a"})
	if err := box.Flush(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(box.Pending()) != 0 {
		t.Fatal("records kept without a sink")
	}
}
