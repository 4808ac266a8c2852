package commands

import (
	"context"
	"errors"
	"testing"
)

type greet struct{ Name string }

func (greet) Key() string { return "test.greet" }

type other struct{}

func (other) Key() string { return "test.other" }

func TestRegisterAndDispatch(t *testing.T) {
	bus := NewInMemoryBus()
	Register[greet, string](bus, HandlerFunc[greet, string](func(_ context.Context, cmd greet) (string, error) {
		return "hello " + cmd.Name, nil
	}))

	got, err := Dispatch[greet, string](context.Background(), bus, greet{Name: "campus"})
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello campus" {
		t.Fatalf("got %q", got)
	}
	if keys := bus.Keys(); len(keys) != 1 || keys[0] != "test.greet" {
		t.Fatalf("keys = %v", keys)
	}
}

func TestDispatchErrors(t *testing.T) {
	bus := NewInMemoryBus()
	Register[greet, string](bus, HandlerFunc[greet, string](func(context.Context, greet) (string, error) {
		return "ok", nil
	}))

	if _, err := Dispatch[other, string](context.Background(), bus, other{}); !errors.Is(err, ErrHandlerNotFound) {
		t.Fatalf("unknown key: %v", err)
	}
	if _, err := Dispatch[greet, int](context.Background(), bus, greet{}); !errors.Is(err, ErrResultType) {
		t.Fatalf("wrong result type: %v", err)
	}
	if _, err := Dispatch[greet, string](context.Background(), nil, greet{}); !errors.Is(err, ErrNilBus) {
		t.Fatalf("nil bus: %v", err)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	bus := NewInMemoryBus()
	h := HandlerFunc[greet, string](func(context.Context, greet) (string, error) { return "", nil })
	Register[greet, string](bus, h)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate registration")
		}
	}()
	Register[greet, string](bus, h)
}
