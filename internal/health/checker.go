package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// Probe implements Checker against the live Redis and backend dependencies.
type Probe struct {
	Redis      *redis.Client
	BackendURL string
	HTTPClient *http.Client
}

// PingRedis verifies the Redis connection responds within the timeout.
func (p Probe) PingRedis(ctx context.Context, timeout time.Duration) error {
	if p.Redis == nil {
		return errors.New("redis not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Redis.Ping(ctx).Err()
}

// PingBackend verifies the backend API answers HTTP within the timeout.
// Any response counts; readiness only cares that the host is reachable.
func (p Probe) PingBackend(ctx context.Context, timeout time.Duration) error {
	if p.BackendURL == "" {
		return errors.New("backend not configured")
	}
	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.BackendURL, nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
