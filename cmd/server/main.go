// Package main 是应用程序的入口点。
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/config"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/handler"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/middleware"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/repository"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/service"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/database"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/llm"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("./configs/config.yaml")
	if err != nil {
		panic(err)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync()
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	db := database.InitMySQL(cfg.Database.MySQL.DSN)
	rdb := database.InitRedis(cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)

	// 4. 解析 LLM 后端：启动时一次性完成，名称非法直接失败
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatal("LLM 后端解析失败", err)
	}
	if err := llmClient.ValidateConfig(); err != nil {
		// 密钥缺失不阻止启动，运行期由兜底文案接管，这里只告警
		log.Error("LLM 配置校验失败", err)
	}

	// 5. 初始化 Repository、Service、Handler（依赖注入）
	conversationRepo := repository.NewConversationRepository(db)
	chatService := service.NewChatService(llmClient, cfg.LLM)
	chatHandler := handler.NewChatHandler(chatService, conversationRepo)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	if cfg.Server.AllowOrigin != "" {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = []string{cfg.Server.AllowOrigin}
		corsCfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsCfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
		r.Use(cors.New(corsCfg))
	}

	// 7. 注册路由
	rateLimiter := middleware.RateLimit(
		middleware.NewCounter(rdb),
		cfg.RateLimit.Requests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)
	chat := r.Group("/chat")
	{
		chat.POST("/message", rateLimiter, chatHandler.PostMessage)
		chat.GET("/history/:sessionId", chatHandler.GetHistory)
	}
	r.GET("/health", chatHandler.Health)

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s（provider=%s）", srv.Addr, llmClient.Name())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("HTTP 服务器关闭失败", err)
	}
	log.Info("服务已优雅关闭")
}
