package middleware

import (
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"github.com/gin-gonic/gin"
)

// RequestLogger 是一个 Gin 中间件，用于记录每个请求的结构化访问日志。
// 聊天消息属于用户隐私，这里不记录请求与响应体，只记录元信息。
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		latency := time.Since(startTime)
		log.Infow("HTTP Request Log",
			"statusCode", c.Writer.Status(),
			"latency", latency.String(),
			"clientIP", c.ClientIP(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
		)
	}
}
