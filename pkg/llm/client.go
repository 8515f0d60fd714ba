// Package llm provides clients for hosted chat-completion providers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/config"
)

// 支持的后端名称（闭集）。
const (
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"
	ProviderGemini   = "gemini"
)

// 所有请求使用固定采样温度，保证回复语气足够稳定。
const temperature = 0.7

var (
	// ErrEmptyCompletion 表示服务端成功响应但没有返回任何文本。
	ErrEmptyCompletion = errors.New("llm: provider returned an empty completion")
	// ErrUnsupportedProvider 表示配置中的 provider 名称不在支持的闭集内。
	ErrUnsupportedProvider = errors.New("llm: unsupported provider")
)

// ProviderError 携带一次失败调用的服务端状态信息。
type ProviderError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("llm: %s api error (status %d): %s", e.Provider, e.StatusCode, e.Message)
}

// CredentialError 表示该后端所需的密钥缺失、为空或仍是占位值。
type CredentialError struct {
	Provider string
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("llm: missing or placeholder api key for provider %s", e.Provider)
}

// Message 表示一条角色消息。
type Message struct {
	Role    string `json:"role"` // "system"、"user" 或 "assistant"
	Content string `json:"content"`
}

// Client 定义了单个 LLM 后端的能力。
// Complete 的前置条件：messages 非空且末条角色为 user。
type Client interface {
	// Name 返回后端标识（如 "openai"）。
	Name() string
	// ValidateConfig 在任何网络调用之前校验该后端的必需配置。
	ValidateConfig() error
	// Complete 执行一次非流式的对话补全，返回去除首尾空白的文本。
	Complete(ctx context.Context, messages []Message, maxTokens int, model string) (string, error)
}

// NewClient 根据配置中的 provider 名称解析出一个具体的客户端。
// 只在进程启动时调用一次，之后所有请求复用同一个句柄。
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case ProviderOpenAI:
		return newOpenAICompatClient(ProviderOpenAI, cfg.OpenAI), nil
	case ProviderDeepSeek:
		return newOpenAICompatClient(ProviderDeepSeek, cfg.DeepSeek), nil
	case ProviderGemini:
		return newGeminiClient(cfg.Gemini), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
	}
}

// 常见的占位密钥值，视同缺失。
var placeholderKeys = map[string]struct{}{
	"your-api-key-here": {},
	"your_api_key_here": {},
	"changeme":          {},
	"sk-xxxx":           {},
}

func validateAPIKey(provider, key string) error {
	if key == "" {
		return &CredentialError{Provider: provider}
	}
	if _, ok := placeholderKeys[key]; ok {
		return &CredentialError{Provider: provider}
	}
	return nil
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 60 * time.Second}
}
