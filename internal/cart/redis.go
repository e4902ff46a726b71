package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisPersistence stores cart snapshots as JSON keyed by user identity.
type RedisPersistence struct {
	Client *redis.Client
	Prefix string
	TTL    time.Duration
}

func (p RedisPersistence) key(userID string) string {
	prefix := p.Prefix
	if prefix == "" {
		prefix = "konveksi:cart:"
	}
	return prefix + userID
}

// Load fetches the persisted cart for a user. It reports whether one existed.
func (p RedisPersistence) Load(ctx context.Context, userID string) (State, bool, error) {
	if p.Client == nil {
		return State{}, false, errors.New("cart: redis client not configured")
	}
	data, err := p.Client.Get(ctx, p.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return State{}, false, nil
		}
		return State{}, false, fmt.Errorf("cart: load state: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("cart: decode state: %w", err)
	}
	return st, true, nil
}

// Save writes the cart snapshot with the configured TTL.
func (p RedisPersistence) Save(ctx context.Context, userID string, st State) error {
	if p.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("cart: encode state: %w", err)
	}
	ttl := p.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	if err := p.Client.Set(ctx, p.key(userID), data, ttl).Err(); err != nil {
		return fmt.Errorf("cart: save state: %w", err)
	}
	return nil
}

// Delete removes the persisted cart for a user.
func (p RedisPersistence) Delete(ctx context.Context, userID string) error {
	if p.Client == nil {
		return errors.New("cart: redis client not configured")
	}
	if err := p.Client.Del(ctx, p.key(userID)).Err(); err != nil {
		return fmt.Errorf("cart: delete state: %w", err)
	}
	return nil
}
