package service

import (
	"context"
	"fmt"
	"time"

	"analytics/internal/api/models"
	"analytics/pkg"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ColumnCatalog lists the real column names of a dataset's table.
type ColumnCatalog interface {
	Columns(ctx context.Context, ds models.Dataset) ([]string, error)
}

// ColumnFetcher reads column metadata straight from the warehouse.
type ColumnFetcher func(ctx context.Context, ds models.Dataset) ([]pkg.ColumnMetadata, error)

// ColumnCatalogService serves warehouse column names from redis, falling back
// to information_schema on a miss.
type ColumnCatalogService struct {
	redis  *redis.Client
	ttl    time.Duration
	fetch  ColumnFetcher
	logger zerolog.Logger
}

func NewColumnCatalogService(rdb *redis.Client, ttl time.Duration, fetch ColumnFetcher, logger zerolog.Logger) *ColumnCatalogService {
	return &ColumnCatalogService{redis: rdb, ttl: ttl, fetch: fetch, logger: logger}
}

// IntrospectorColumnFetcher reads a dataset's columns through introspector.
func IntrospectorColumnFetcher(introspector WarehouseIntrospector) ColumnFetcher {
	return func(ctx context.Context, ds models.Dataset) ([]pkg.ColumnMetadata, error) {
		return introspector.Columns(ctx, ds.SchemaName, ds.Table)
	}
}

func columnCacheKey(ds models.Dataset) string {
	return fmt.Sprintf("columns:%s:%s.%s", ds.Database, ds.SchemaName, ds.Table)
}

func (slf *ColumnCatalogService) Columns(ctx context.Context, ds models.Dataset) ([]string, error) {
	cacheKey := columnCacheKey(ds)
	var names []string
	if slf.redis != nil {
		err := pkg.RedisGet(ctx, slf.redis, cacheKey, &names)
		if err == nil {
			return names, nil
		}
		if !pkg.IsRedisNil(err) {
			slf.logger.Warn().Err(err).Str("key", cacheKey).Msg("Column cache unavailable, reading warehouse")
		}
	}

	metadata, err := slf.fetch(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch columns of %s: %w", ds.QualifiedName(), err)
	}
	names = make([]string, 0, len(metadata))
	for _, col := range metadata {
		names = append(names, col.ColumnName)
	}

	if slf.redis != nil && len(names) > 0 {
		if err := pkg.RedisSet(ctx, slf.redis, cacheKey, names, slf.ttl); err != nil {
			slf.logger.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache columns")
		}
	}
	return names, nil
}
