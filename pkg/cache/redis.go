// Package cache 提供应用缓存 Redis 的连接封装，供连通性检查使用
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/pensiondb/pkg/config"
)

// RedisCache Redis 客户端封装
type RedisCache struct {
	client *redis.Client
	addr   string
}

// New 创建 Redis 客户端，不会立即建立连接
func New(cfg config.RedisConfig) *RedisCache {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    1,
		DialTimeout: time.Duration(cfg.ConnTimeout) * time.Second,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Second,
		MaxRetries:  -1,
	})
	return &RedisCache{client: client, addr: addr}
}

// Addr 返回连接地址
func (rc *RedisCache) Addr() string {
	return rc.addr
}

// Ping 测试连接并返回服务端版本
func (rc *RedisCache) Ping(ctx context.Context) (string, error) {
	if err := rc.client.Ping(ctx).Err(); err != nil {
		return "", fmt.Errorf("failed to ping redis at %s: %w", rc.addr, err)
	}
	info, err := rc.client.Info(ctx, "server").Result()
	if err != nil {
		return "", fmt.Errorf("redis at %s answered PING but INFO failed: %w", rc.addr, err)
	}
	return parseVersion(info), nil
}

// Close 关闭客户端
func (rc *RedisCache) Close() error {
	return rc.client.Close()
}

func parseVersion(info string) string {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "redis_version:"); ok {
			return v
		}
	}
	return ""
}
