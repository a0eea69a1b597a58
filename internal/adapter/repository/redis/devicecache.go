package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeviceSeenCache implements usecase.DeviceSeenCache. It is a read-side
// shortcut in front of the view_records unique index: a hit suppresses
// the duplicate before any transaction is opened, a miss proves nothing.
type DeviceSeenCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDeviceSeenCache creates a new DeviceSeenCache.
func NewDeviceSeenCache(client *redis.Client, ttl time.Duration) *DeviceSeenCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	return &DeviceSeenCache{
		client: client,
		prefix: "seen:",
		ttl:    ttl,
	}
}

// Seen reports whether the device is known to hold the dedup slot for
// the ad.
func (c *DeviceSeenCache) Seen(ctx context.Context, adID, deviceID string) (bool, error) {
	err := c.client.Get(ctx, c.key(adID, deviceID)).Err()
	if err == nil {
		return true, nil
	}

	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	return false, err
}

// MarkSeen records that the device holds the dedup slot for the ad.
func (c *DeviceSeenCache) MarkSeen(ctx context.Context, adID, deviceID string) error {
	return c.client.Set(ctx, c.key(adID, deviceID), "1", c.ttl).Err()
}

func (c *DeviceSeenCache) key(adID, deviceID string) string {
	return c.prefix + adID + ":" + deviceID
}
