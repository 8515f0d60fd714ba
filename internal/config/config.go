// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
// 所有字段均可通过环境变量覆盖（以 "_" 连接层级，例如 LLM_PROVIDER）。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	LLM       LLMConfig       `mapstructure:"llm"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	AllowOrigin string `mapstructure:"allow_origin"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时限流中间件回退到进程内计数器。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LLMConfig 存储大语言模型相关的配置。
// 成本控制相关的数值（上下文长度、输出 token 上限）集中在此处，避免散落在业务代码中。
type LLMConfig struct {
	Provider           string         `mapstructure:"provider"`
	MaxContextMessages int            `mapstructure:"max_context_messages"`
	MaxTokens          int            `mapstructure:"max_tokens"`
	MaxRetries         int            `mapstructure:"max_retries"`
	OpenAI             ProviderConfig `mapstructure:"openai"`
	DeepSeek           ProviderConfig `mapstructure:"deepseek"`
	Gemini             ProviderConfig `mapstructure:"gemini"`
}

// ProviderConfig 存储单个 LLM 后端的配置。
type ProviderConfig struct {
	APIKey        string `mapstructure:"api_key"`
	BaseURL       string `mapstructure:"base_url"`
	Model         string `mapstructure:"model"`
	FallbackModel string `mapstructure:"fallback_model"`
}

// RateLimitConfig 存储按 IP 限流的配置。
type RateLimitConfig struct {
	Requests      int `mapstructure:"requests"`
	WindowSeconds int `mapstructure:"window_seconds"`
}

// Load 从指定路径读取 YAML 配置并解析为 Config。
// 配置文件缺失不视为错误：此时全部取默认值与环境变量。
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allow_origin", "")

	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("database.redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output_path", "")

	// 每个键都要有默认值，AutomaticEnv 才能在 Unmarshal 时拾取对应的环境变量
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.max_context_messages", 10)
	v.SetDefault("llm.max_tokens", 300)
	v.SetDefault("llm.max_retries", 2)
	v.SetDefault("llm.openai.api_key", "")
	v.SetDefault("llm.openai.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")
	v.SetDefault("llm.openai.fallback_model", "gpt-4o")
	v.SetDefault("llm.deepseek.api_key", "")
	v.SetDefault("llm.deepseek.base_url", "https://api.deepseek.com")
	v.SetDefault("llm.deepseek.model", "deepseek-chat")
	v.SetDefault("llm.deepseek.fallback_model", "deepseek-reasoner")
	v.SetDefault("llm.gemini.api_key", "")
	v.SetDefault("llm.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("llm.gemini.model", "gemini-2.5-flash")
	v.SetDefault("llm.gemini.fallback_model", "gemini-2.5-pro")

	v.SetDefault("rate_limit.requests", 10)
	v.SetDefault("rate_limit.window_seconds", 60)
}
