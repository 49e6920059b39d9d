package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"entalk-deck-service/internal/app"
	"entalk-deck-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DeckLoader fetches deck content from the backing store on a cache miss.
type DeckLoader interface {
	FindByAccessCode(ctx context.Context, code string) (domain.Deck, error)
}

// DeckCache is an app.DeckStore that serves reads from Redis. Decks are
// immutable after creation, so a cached deck never goes stale; the TTL only
// bounds memory. Writes pass through to the inner store, which keeps the
// access-code uniqueness guarantee.
type DeckCache struct {
	client *redis.Client
	store  app.DeckStore
	loader DeckLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewDeckCache(client *redis.Client, store app.DeckStore, loader DeckLoader, ttl time.Duration) *DeckCache {
	return &DeckCache{
		client: client,
		store:  store,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *DeckCache) Create(ctx context.Context, deck domain.Deck) error {
	if err := c.store.Create(ctx, deck); err != nil {
		return err
	}
	// Best-effort prime; readers fall back to the loader if this is lost.
	if raw, err := json.Marshal(deck); err == nil {
		_ = c.client.Set(ctx, c.key(deck.AccessCode), raw, c.ttlWithJitter()).Err()
	}
	return nil
}

func (c *DeckCache) FindByAccessCode(ctx context.Context, code string) (domain.Deck, error) {
	key := c.key(code)
	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var deck domain.Deck
		if err := json.Unmarshal(raw, &deck); err == nil {
			return deck, nil
		}
	}

	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		// Re-check in case another goroutine filled the cache.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var deck domain.Deck
			if err := json.Unmarshal(raw, &deck); err == nil {
				return deck, nil
			}
		}

		deck, err := c.loader.FindByAccessCode(ctx, code)
		if err != nil {
			return domain.Deck{}, err
		}
		if raw, err := json.Marshal(deck); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return deck, nil
	})
	if err != nil {
		return domain.Deck{}, err
	}
	return result.(domain.Deck), nil
}

func (c *DeckCache) key(code string) string {
	return "deck:code:" + code
}

func (c *DeckCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
