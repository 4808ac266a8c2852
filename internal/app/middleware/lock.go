package middleware

import (
	"context"

	"campusconnect/internal/app/commands"
)

// Locker hands out exclusive locks by key. The returned func releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// LockKeyResolver names the resource a command must hold. An empty key means
// the command runs unlocked.
type LockKeyResolver interface {
	LockKey(ctx context.Context, cmd commands.Command) (string, error)
}

// ResourceLock holds the resolved lock for the rest of the chain. Placed
// outside Transaction, the lock covers the commit.
func ResourceLock(locker Locker, resolver LockKeyResolver) CommandMiddleware {
	if locker == nil || resolver == nil {
		panic("middleware: locker and resolver required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			key, err := resolver.LockKey(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if key == "" {
				return next.Dispatch(ctx, cmd)
			}
			unlock, err := locker.Lock(ctx, key)
			if err != nil {
				return nil, err
			}
			defer unlock()
			return next.Dispatch(ctx, cmd)
		})
	}
}
