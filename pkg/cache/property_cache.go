package cache

import (
	"context"
	"sync"
	"time"

	"stay-nest/internal/data/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// PropertyCache holds property details read by the public detail endpoint.
// Failures are logged and treated as misses.
type PropertyCache interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Property, bool)
	Set(ctx context.Context, property *entity.Property)
	Invalidate(ctx context.Context, id uuid.UUID)
}

type redisPropertyCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisPropertyCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) PropertyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &redisPropertyCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("cache", "property")),
	}
}

func propertyKey(id uuid.UUID) string {
	return "property:" + id.String()
}

func (c *redisPropertyCache) Get(ctx context.Context, id uuid.UUID) (*entity.Property, bool) {
	var property entity.Property
	found, err := getJSON(ctx, c.rdb, propertyKey(id), &property)
	if err != nil {
		c.log.Warn("Property cache read failed", zap.Error(err), zap.String("property_id", id.String()))
		return nil, false
	}
	if !found {
		c.log.Debug("Property cache miss", zap.String("property_id", id.String()))
		return nil, false
	}

	c.log.Debug("Property cache hit", zap.String("property_id", id.String()))
	return &property, true
}

func (c *redisPropertyCache) Set(ctx context.Context, property *entity.Property) {
	if err := setJSON(ctx, c.rdb, propertyKey(property.ID), property, c.ttl); err != nil {
		c.log.Warn("Property cache write failed", zap.Error(err), zap.String("property_id", property.ID.String()))
	}
}

func (c *redisPropertyCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, propertyKey(id)).Err(); err != nil {
		c.log.Warn("Property cache invalidation failed", zap.Error(err), zap.String("property_id", id.String()))
	}
}

// memoryPropertyCache is used when no Redis address is configured.
type memoryPropertyCache struct {
	mu    sync.RWMutex
	items map[uuid.UUID]memoryEntry
	ttl   time.Duration
}

type memoryEntry struct {
	property  entity.Property
	expiresAt time.Time
}

func NewMemoryPropertyCache(ttl time.Duration) PropertyCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &memoryPropertyCache{items: make(map[uuid.UUID]memoryEntry), ttl: ttl}
}

func (c *memoryPropertyCache) Get(_ context.Context, id uuid.UUID) (*entity.Property, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.items[id]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	property := entry.property
	return &property, true
}

func (c *memoryPropertyCache) Set(_ context.Context, property *entity.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[property.ID] = memoryEntry{property: *property, expiresAt: time.Now().Add(c.ttl)}
}

func (c *memoryPropertyCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
}
