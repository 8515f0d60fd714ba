// Package middleware 存放 Gin 框架的中间件。
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimitReply 是限流时返回给用户的提示文案。
const RateLimitReply = "You're sending messages a bit too quickly. Please wait a moment and try again."

// Counter 统计一个 key 在当前时间窗口内的请求次数。
type Counter interface {
	// Incr 将 key 的计数加一并返回累计值，窗口首次计数时设置过期。
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// redisCounter 基于 Redis INCR + EXPIRE 的计数器，多实例部署时共享窗口。
type redisCounter struct {
	rdb *redis.Client
}

func (c *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to incr rate limit counter: %w", err)
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return 0, fmt.Errorf("failed to set rate limit window: %w", err)
		}
	}
	return n, nil
}

// memoryCounter 是进程内的回退实现，用于未配置 Redis 的部署与测试。
type memoryCounter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

type memoryEntry struct {
	count   int64
	resetAt time.Time
}

func (c *memoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	e, ok := c.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &memoryEntry{resetAt: now.Add(window)}
		c.entries[key] = e
	}
	e.count++
	return e.count, nil
}

// NewCounter 根据 Redis 是否可用选择计数器后端。
func NewCounter(rdb *redis.Client) Counter {
	if rdb == nil {
		return &memoryCounter{entries: make(map[string]*memoryEntry)}
	}
	return &redisCounter{rdb: rdb}
}

// RateLimit 按客户端 IP 限制时间窗口内的请求数，超出时返回 429。
// 被拒绝的请求不会触达存储与 LLM 后端。
func RateLimit(counter Counter, requests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := fmt.Sprintf("ratelimit:chat:%s", c.ClientIP())
		n, err := counter.Incr(c.Request.Context(), key, window)
		if err != nil {
			// 计数器故障不应拖垮聊天本身，放行并告警
			log.Error("rate limit counter failed, allowing request", err)
			c.Next()
			return
		}
		if n > int64(requests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
				"reply": RateLimitReply,
			})
			return
		}
		c.Next()
	}
}
