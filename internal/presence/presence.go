// Package presence tracks member online status in Redis. A heartbeat sets the
// account's status with a TTL; a status that expires reads back as offline.
package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crewdesk/internal/hierarchy"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const statusTTL = 90 * time.Second

type Tracker struct {
	redis *redis.Client
}

func NewTracker(redis *redis.Client) *Tracker {
	return &Tracker{
		redis: redis,
	}
}

func statusKey(accountID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", accountID)
}

// Heartbeat records the account's current status for the TTL window.
func (t *Tracker) Heartbeat(ctx context.Context, accountID uuid.UUID, status hierarchy.Status) error {
	if err := t.redis.Set(ctx, statusKey(accountID), string(status), statusTTL).Err(); err != nil {
		return fmt.Errorf("failed to record heartbeat for %s: %w", accountID, err)
	}
	return nil
}

// Status returns the account's last reported status, or offline when the
// heartbeat has expired or was never sent.
func (t *Tracker) Status(ctx context.Context, accountID uuid.UUID) (hierarchy.Status, error) {
	val, err := t.redis.Get(ctx, statusKey(accountID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return hierarchy.StatusOffline, nil
		}
		return hierarchy.StatusOffline, fmt.Errorf("failed to read presence for %s: %w", accountID, err)
	}

	switch hierarchy.Status(val) {
	case hierarchy.StatusOnline, hierarchy.StatusAway:
		return hierarchy.Status(val), nil
	default:
		return hierarchy.StatusOffline, nil
	}
}

// Statuses resolves presence for a batch of accounts in one round trip.
func (t *Tracker) Statuses(ctx context.Context, accountIDs []uuid.UUID) (map[uuid.UUID]hierarchy.Status, error) {
	statuses := make(map[uuid.UUID]hierarchy.Status, len(accountIDs))
	if len(accountIDs) == 0 {
		return statuses, nil
	}

	keys := make([]string, len(accountIDs))
	for i, id := range accountIDs {
		keys[i] = statusKey(id)
	}

	vals, err := t.redis.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read presence batch: %w", err)
	}

	for i, id := range accountIDs {
		statuses[id] = hierarchy.StatusOffline
		if s, ok := vals[i].(string); ok {
			switch hierarchy.Status(s) {
			case hierarchy.StatusOnline, hierarchy.StatusAway:
				statuses[id] = hierarchy.Status(s)
			}
		}
	}

	return statuses, nil
}
