package memory

import (
	"context"
	"testing"
	"time"

	domainmessages "campusconnect/internal/domain/messages"
)

func TestMessageStoreOrdersHistoryAndConversations(t *testing.T) {
	ctx := context.Background()
	store := NewMessageStore()
	base := time.Date(2024, time.April, 1, 9, 0, 0, 0, time.UTC)
	send := func(from, to, text string, offset time.Duration) {
		t.Helper()
		msg, err := domainmessages.New(from, to, text, base.Add(offset))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := store.Append(ctx, msg); err != nil {
			t.Fatal(err)
		}
	}
	send("ana", "ben", "second", 2*time.Minute)
	send("ben", "ana", "first", time.Minute)
	send("cara", "ana", "latest", 5*time.Minute)
	send("ben", "cara", "unrelated", 10*time.Minute)

	history, err := store.History(ctx, domainmessages.RoomID("ben", "ana"))
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Text != "first" || history[1].Text != "second" || history[0].ID == "" {
		t.Fatalf("history: %+v", history)
	}

	latest, err := store.LatestPerRoom(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 2 || latest[0].Text != "latest" || latest[1].Text != "second" {
		t.Fatalf("conversations: %+v", latest)
	}
}
