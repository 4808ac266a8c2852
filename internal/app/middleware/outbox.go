package middleware

import (
	"context"

	"campusconnect/internal/app/commands"
	"campusconnect/internal/app/outbox"
)

// OutboxFlush flushes box after a successful command. Place it outside
// Transaction so records are only released after commit.
func OutboxFlush(box outbox.Outbox) CommandMiddleware {
	if box == nil {
		panic("middleware: outbox required")
	}
	return func(next commands.Bus) commands.Bus {
		return commandFunc(func(ctx context.Context, cmd commands.Command) (any, error) {
			res, err := next.Dispatch(ctx, cmd)
			if err != nil {
				return nil, err
			}
			if err := box.Flush(ctx); err != nil {
				return nil, err
			}
			return res, nil
		})
	}
}
