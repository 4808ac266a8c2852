package middleware

import (
	"context"
	"errors"
	"strings"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/queries"
)

var ErrUnauthenticated = errors.New("middleware: authenticated caller required")

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// Actor is implemented by messages issued on behalf of a signed-in user.
type Actor interface {
	ActorID() string
}

// RequireActor rejects Actor messages that carry no caller id.
type RequireActor struct{}

func (RequireActor) Authorize(_ context.Context, message any) error {
	actor, ok := message.(Actor)
	if !ok {
		return nil
	}
	if strings.TrimSpace(actor.ActorID()) == "" {
		return ErrUnauthenticated
	}
	return nil
}

func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			if err := a.Authorize(ctx, cmd); err != nil {
				return nil, err
			}
			return next.Dispatch(ctx, cmd)
		})
	}
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return func(next queries.Bus) queries.Bus {
		return queryFunc(func(ctx context.Context, q queries.Query) (any, error) {
			if err := a.Authorize(ctx, q); err != nil {
				return nil, err
			}
			return next.Ask(ctx, q)
		})
	}
}
