package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/monsoonshop/monsoon-backend/pkg/logger"
)

// SnapshotStore is the slice of the Redis client the cart needs. Satisfied by
// *redis.Client.
type SnapshotStore interface {
	GetMaybe(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisPersister snapshots a session's cart into Redis as a JSON array under
// the session's cart key. An empty cart deletes the key instead of storing
// an empty payload.
type RedisPersister struct {
	client    SnapshotStore
	sessionID string
	ttl       time.Duration
	logg      *logger.Logger
}

func NewRedisPersister(client SnapshotStore, sessionID string, ttl time.Duration, logg *logger.Logger) *RedisPersister {
	return &RedisPersister{client: client, sessionID: sessionID, ttl: ttl, logg: logg}
}

func (p *RedisPersister) Save(ctx context.Context, items []Item) error {
	key := p.client.CartKey(p.sessionID)
	if len(items) == 0 {
		if err := p.client.Del(ctx, key); err != nil {
			p.logError(ctx, err)
			return fmt.Errorf("deleting cart snapshot: %w", err)
		}
		return nil
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart snapshot: %w", err)
	}
	if err := p.client.Set(ctx, key, payload, p.ttl); err != nil {
		p.logError(ctx, err)
		return fmt.Errorf("storing cart snapshot: %w", err)
	}
	return nil
}

func (p *RedisPersister) logError(ctx context.Context, err error) {
	if p.logg != nil {
		p.logg.Warn(ctx, "cart snapshot write failed: "+err.Error())
	}
}

// LoadItems restores a session's cart snapshot. A missing key yields an
// empty cart, not an error.
func LoadItems(ctx context.Context, client SnapshotStore, sessionID string) ([]Item, error) {
	payload, found, err := client.GetMaybe(ctx, client.CartKey(sessionID))
	if err != nil {
		return nil, fmt.Errorf("reading cart snapshot: %w", err)
	}
	if !found || payload == "" {
		return nil, nil
	}
	var items []Item
	if err := json.Unmarshal([]byte(payload), &items); err != nil {
		return nil, fmt.Errorf("decoding cart snapshot: %w", err)
	}
	return items, nil
}
