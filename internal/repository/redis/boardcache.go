package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/planbird/planbird/internal/domain"
)

const (
	boardCachePrefix = "board:"
	boardCacheTTL    = 2 * time.Minute
)

// BoardCache caches a project's task list for board rendering. Every task
// mutation invalidates the owning project's entry, so the cache can only be
// stale between a write and its invalidation.
type BoardCache struct {
	client *Client
}

// NewBoardCache creates a new board cache
func NewBoardCache(client *Client) *BoardCache {
	return &BoardCache{client: client}
}

// Get retrieves the cached task list for a project; (nil, nil) on a miss
func (c *BoardCache) Get(ctx context.Context, projectID uuid.UUID) ([]domain.Task, error) {
	key := fmt.Sprintf("%s%s", boardCachePrefix, projectID.String())

	data, err := c.client.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, nil // Cache miss
	}

	var tasks []domain.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tasks: %w", err)
	}

	return tasks, nil
}

// Set caches a project's task list
func (c *BoardCache) Set(ctx context.Context, projectID uuid.UUID, tasks []domain.Task) error {
	key := fmt.Sprintf("%s%s", boardCachePrefix, projectID.String())

	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to marshal tasks: %w", err)
	}

	return c.client.rdb.Set(ctx, key, data, boardCacheTTL).Err()
}

// Invalidate removes a project's cached task list
func (c *BoardCache) Invalidate(ctx context.Context, projectID uuid.UUID) error {
	key := fmt.Sprintf("%s%s", boardCachePrefix, projectID.String())
	return c.client.rdb.Del(ctx, key).Err()
}
