package messaging

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	domainmessages "campusconnect/internal/domain/messages"
	"campusconnect/internal/infra/storage/memory"
)

func newTestClient(t *testing.T, svc Service) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(svc, nil)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	client, err := NewClient(context.Background(), Config{Addr: "bufnet"}, nil,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestClientServerRoundTrip(t *testing.T) {
	clock := time.Date(2024, time.May, 2, 10, 0, 0, 0, time.UTC)
	server := &Server{Store: memory.NewMessageStore(), Now: func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}}
	client := newTestClient(t, server)
	ctx := context.Background()

	first, err := client.Send(ctx, "ana", "ben", "is the cycle free?")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if first.ID == "" || first.RoomID != "ana_ben" || !first.CreatedAt.Equal(clock) {
		t.Fatalf("sent message: %+v", first)
	}
	if _, err := client.Send(ctx, "ben", "ana", "yes, from monday"); err != nil {
		t.Fatal(err)
	}
	if _, err := client.Send(ctx, "cara", "ana", "hello"); err != nil {
		t.Fatal(err)
	}

	history, err := client.History(ctx, "ben", "ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 || history[0].Text != "is the cycle free?" || history[1].SenderID != "ben" {
		t.Fatalf("history: %+v", history)
	}

	latest, err := client.Conversations(ctx, "ana")
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 2 || latest[0].SenderID != "cara" || latest[1].Text != "yes, from monday" {
		t.Fatalf("conversations: %+v", latest)
	}
}

func TestServerMapsErrorsToStatusCodes(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, &Server{Store: memory.NewMessageStore()})

	_, err := client.Send(ctx, "ana", "ben", "   ")
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("blank text: %v", err)
	}
	if _, err := client.History(ctx, "ana", ""); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("missing peer: %v", err)
	}

	offline := newTestClient(t, &Server{Store: unavailableStore{}})
	if _, err := offline.Conversations(ctx, "ana"); status.Code(err) != codes.Unavailable {
		t.Fatalf("unavailable store: %v", err)
	}
	empty := newTestClient(t, &Server{})
	if _, err := empty.Send(ctx, "ana", "ben", "hi"); status.Code(err) != codes.Unavailable {
		t.Fatalf("missing store: %v", err)
	}
}

func TestNewClientRequiresAddress(t *testing.T) {
	if _, err := NewClient(context.Background(), Config{}, nil); err == nil {
		t.Fatal("expected error for empty address")
	}
}

type unavailableStore struct{}

func (unavailableStore) Append(context.Context, domainmessages.Message) (domainmessages.Message, error) {
	return domainmessages.Message{}, domainmessages.ErrUnavailable
}

func (unavailableStore) History(context.Context, string) ([]domainmessages.Message, error) {
	return nil, domainmessages.ErrUnavailable
}

func (unavailableStore) LatestPerRoom(context.Context, string) ([]domainmessages.Message, error) {
	return nil, domainmessages.ErrUnavailable
}
