package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = 24 * time.Hour

// UpdateDeduper provides idempotency checks for bot updates backed by Redis.
// Telegram redelivers updates after reconnects and restarts; marking each
// update id keeps the decode-and-notify pipeline at-most-once across the
// messaging surface. Key format: botupdate:<update_id>
type UpdateDeduper struct {
	client *redis.Client
}

// NewUpdateDeduper creates an UpdateDeduper wrapping the given Redis client.
func NewUpdateDeduper(client *redis.Client) *UpdateDeduper {
	return &UpdateDeduper{client: client}
}

// IsDuplicate reports whether this update has already been handled.
func (d *UpdateDeduper) IsDuplicate(ctx context.Context, updateID int) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(updateID)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this update has been handled (expires after dedupTTL).
func (d *UpdateDeduper) Mark(ctx context.Context, updateID int) error {
	return d.client.Set(ctx, d.key(updateID), "1", dedupTTL).Err()
}

func (d *UpdateDeduper) key(updateID int) string {
	return fmt.Sprintf("botupdate:%d", updateID)
}
