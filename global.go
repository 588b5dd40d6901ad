package analytics

import (
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var Logger zerolog.Logger

// Clients bundles the long-lived connections opened at startup. They are handed
// to repositories and services explicitly.
type Clients struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func (c *Clients) Close() error {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			return err
		}
	}
	if c.DB != nil {
		sqlDB, err := c.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
