package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// LocationLock is a Redis-backed app.LocationLocker: a SETNX lease keyed by
// location serializes deck generation across instances. The TTL bounds how
// long a crashed holder can block a location; release only deletes the key
// when the caller still owns it.
type LocationLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

func NewLocationLock(client *redis.Client, ttl time.Duration) *LocationLock {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &LocationLock{
		client: client,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
	}
}

func (l *LocationLock) Acquire(ctx context.Context, locationID string) (func(), error) {
	key := l.key(locationID)
	token := uuid.NewString()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}

	release := func() {
		// Detached context: the lease must be released even when the request
		// context is already canceled.
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}
	return release, nil
}

func (l *LocationLock) key(locationID string) string {
	return "deck:generate:" + locationID
}
