package middleware

import (
	"context"
	"errors"
	"testing"

	"campusconnect/internal/app/commands"
)

type mapStore struct {
	records map[string]IdempotencyRecord
}

func (s *mapStore) Get(_ context.Context, key string) (IdempotencyRecord, bool, error) {
	rec, ok := s.records[key]
	return rec, ok, nil
}

func (s *mapStore) Save(_ context.Context, rec IdempotencyRecord) error {
	s.records[rec.Key] = rec
	return nil
}

type result struct {
	ID string `json:"id"`
}

type createThing struct {
	key string
	cmd string
}

func (c createThing) Key() string            { return c.cmd }
func (c createThing) IdempotencyKey() string { return c.key }
func (c createThing) ResultPrototype() any   { return &result{} }

func TestIdempotencyReplaysSuccessfulResult(t *testing.T) {
	calls := 0
	base := commandFunc(func(context.Context, commands.Command) (any, error) {
		calls++
		return &result{ID: "first"}, nil
	})
	bus := ChainCommands(base, Idempotency(&mapStore{records: map[string]IdempotencyRecord{}}, nil))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := commands.Dispatch[createThing, *result](ctx, bus, createThing{key: "k1", cmd: "thing.create"})
		if err != nil {
			t.Fatalf("dispatch %d: %v", i, err)
		}
		if got.ID != "first" {
			t.Fatalf("dispatch %d: got %+v", i, got)
		}
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotencyDoesNotRecordFailures(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	base := commandFunc(func(context.Context, commands.Command) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return &result{ID: "second"}, nil
	})
	bus := ChainCommands(base, Idempotency(&mapStore{records: map[string]IdempotencyRecord{}}, nil))
	ctx := context.Background()

	if _, err := bus.Dispatch(ctx, createThing{key: "k", cmd: "thing.create"}); !errors.Is(err, boom) {
		t.Fatalf("first dispatch: %v", err)
	}
	got, err := commands.Dispatch[createThing, *result](ctx, bus, createThing{key: "k", cmd: "thing.create"})
	if err != nil || got.ID != "second" {
		t.Fatalf("retry: %+v, %v", got, err)
	}
}

func TestIdempotencyRejectsKeyReuseAcrossCommands(t *testing.T) {
	base := commandFunc(func(context.Context, commands.Command) (any, error) {
		return &result{ID: "x"}, nil
	})
	bus := ChainCommands(base, Idempotency(&mapStore{records: map[string]IdempotencyRecord{}}, nil))
	ctx := context.Background()
	if _, err := bus.Dispatch(ctx, createThing{key: "k", cmd: "thing.create"}); err != nil {
		t.Fatal(err)
	}
	if _, err := bus.Dispatch(ctx, createThing{key: "k", cmd: "thing.delete"}); !errors.Is(err, ErrIdempotencyReuse) {
		t.Fatalf("got %v, want ErrIdempotencyReuse", err)
	}
}

type actorCmd struct{ actor string }

func (c actorCmd) Key() string     { return "actor.cmd" }
func (c actorCmd) ActorID() string { return c.actor }

func TestAuthorizationRequiresActor(t *testing.T) {
	base := commandFunc(func(context.Context, commands.Command) (any, error) { return "ok", nil })
	bus := ChainCommands(base, nil, Authorization(RequireActor{}))

	if _, err := bus.Dispatch(context.Background(), actorCmd{}); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous: got %v", err)
	}
	if res, err := bus.Dispatch(context.Background(), actorCmd{actor: "u1"}); err != nil || res != "ok" {
		t.Fatalf("signed in: %v, %v", res, err)
	}
}

func TestChainOrderOutermostFirst(t *testing.T) {
	var order []string
	mark := func(name string) CommandMiddleware {
		return func(next commands.Bus) commands.Bus {
			return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
				order = append(order, name)
				return next.Dispatch(ctx, cmd)
			})
		}
	}
	base := commandFunc(func(context.Context, commands.Command) (any, error) {
		order = append(order, "handler")
		return nil, nil
	})
	_, _ = ChainCommands(base, mark("a"), mark("b")).Dispatch(context.Background(), actorCmd{actor: "u"})
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "handler" {
		t.Fatalf("order = %v", order)
	}
}
