package database

import (
	"context"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"github.com/go-redis/redis/v8"
)

// InitRedis 初始化 Redis 客户端连接。
// Redis 仅用于限流计数，连接失败时记录告警并返回 nil，由调用方回退到进程内计数器。
func InitRedis(addr, password string, db int) *redis.Client {
	if addr == "" {
		log.Info("Redis not configured, rate limiting will use the in-process counter")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Error("failed to connect to redis, falling back to in-process rate limiting", err)
		return nil
	}

	log.Info("Redis client connected successfully")
	return rdb
}
