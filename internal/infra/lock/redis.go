package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"

	domainavailability "campusconnect/internal/domain/availability"
)

const (
	defaultTTL        = 5 * time.Second
	defaultRetryDelay = 50 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// Redis is a SET NX PX lock shared by every API instance. A lock that is
// never released expires after TTL.
type Redis struct {
	Client     *redis.Client
	Prefix     string
	TTL        time.Duration
	RetryDelay time.Duration
	Logger     *slog.Logger
}

func NewRedisClient(addr, password string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})
}

func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}
	name := r.prefix() + key
	for {
		ok, err := r.Client.SetNX(ctx, name, token, r.ttl()).Result()
		if err != nil {
			return nil, fmt.Errorf("lock: acquire %s: %w", name, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domainavailability.ErrLockNotAcquired, ctx.Err())
		case <-time.After(r.retryDelay()):
		}
	}
	return func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, r.Client, []string{name}, token).Err(); err != nil && r.Logger != nil {
			r.Logger.Warn("lock release failed", "key", name, "error", err)
		}
	}, nil
}

// Ping backs the readiness check.
func (r *Redis) Ping(ctx context.Context) error {
	return r.Client.Ping(ctx).Err()
}

func (r *Redis) prefix() string {
	if r.Prefix != "" {
		return r.Prefix
	}
	return "campusconnect:lock:listing:"
}

func (r *Redis) ttl() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return defaultTTL
}

func (r *Redis) retryDelay() time.Duration {
	if r.RetryDelay > 0 {
		return r.RetryDelay
	}
	return defaultRetryDelay
}

func newToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("lock: token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

var _ domainavailability.Locker = (*Redis)(nil)
