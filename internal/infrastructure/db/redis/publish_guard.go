package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const guardTTL = time.Hour

// PublishGuard keeps registration event publication at-most-once per client,
// backed by Redis. Key format: registered:<client_id>
type PublishGuard struct {
	client *redis.Client
}

// NewPublishGuard creates a PublishGuard wrapping the given Redis client.
func NewPublishGuard(client *redis.Client) *PublishGuard {
	return &PublishGuard{client: client}
}

// AlreadyPublished reports whether the event for this client was already handed
// to the bus.
func (g *PublishGuard) AlreadyPublished(ctx context.Context, clientID string) (bool, error) {
	n, err := g.client.Exists(ctx, g.key(clientID)).Result()
	if err != nil {
		return false, fmt.Errorf("publish guard check: %w", err)
	}
	return n > 0, nil
}

// MarkPublished records the publication (expires after guardTTL).
func (g *PublishGuard) MarkPublished(ctx context.Context, clientID string) error {
	return g.client.Set(ctx, g.key(clientID), "1", guardTTL).Err()
}

func (g *PublishGuard) key(clientID string) string {
	return "registered:" + clientID
}
