package database

import (
	"sync"
	"time"

	"bhms/pkg/cache"
	"bhms/pkg/config"
)

var (
	statsCacheInstance *cache.RedisCache
	statsCacheOnce     sync.Once
)

// GetStatsCache 获取统计缓存的单例实例
func GetStatsCache() *cache.RedisCache {
	statsCacheOnce.Do(func() {
		cfg := config.GetConfig()
		statsCacheInstance = cache.NewRedisCache(&cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			TTL:      time.Duration(cfg.Redis.TTL) * time.Second,
		})
	})
	return statsCacheInstance
}

// CloseStatsCache 关闭Redis连接
func CloseStatsCache() error {
	if statsCacheInstance != nil {
		return statsCacheInstance.Close()
	}
	return nil
}
