// Package service 包含了应用的业务逻辑层。
package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/config"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/model"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/llm"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
)

// ErrRetriesExhausted 表示对限流的重试次数已用尽仍未成功。
var ErrRetriesExhausted = errors.New("service: retries exhausted")

// ReplyError 是回复生成失败的终态错误，携带后端名称与已尝试次数。
type ReplyError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ReplyError) Error() string {
	return fmt.Sprintf("service: reply generation failed (provider=%s, attempts=%d): %v", e.Provider, e.Attempts, e.Err)
}

func (e *ReplyError) Unwrap() error {
	return e.Err
}

// ChatService 定义了回复生成的业务逻辑接口。
type ChatService interface {
	// GenerateReply 基于有序历史与新的用户消息生成一条助手回复。
	GenerateReply(ctx context.Context, history []model.Message, userMessage string) (string, error)
}

type chatService struct {
	client     llm.Client
	model      string
	maxContext int
	maxTokens  int
	maxRetries int
	sleep      func(time.Duration)
}

// NewChatService 创建一个新的 ChatService 实例。
// limits 在构造时固化，之后不再读取任何全局状态。
func NewChatService(client llm.Client, cfg config.LLMConfig) ChatService {
	return &chatService{
		client:     client,
		model:      activeModel(cfg),
		maxContext: cfg.MaxContextMessages,
		maxTokens:  cfg.MaxTokens,
		maxRetries: cfg.MaxRetries,
		sleep:      time.Sleep,
	}
}

// activeModel 解析当前 provider 的默认模型名。
func activeModel(cfg config.LLMConfig) string {
	switch cfg.Provider {
	case llm.ProviderDeepSeek:
		return cfg.DeepSeek.Model
	case llm.ProviderGemini:
		return cfg.Gemini.Model
	default:
		return cfg.OpenAI.Model
	}
}

// GenerateReply 组装有界的上下文窗口并调用 LLM 后端，对限流做指数退避重试。
func (s *chatService) GenerateReply(ctx context.Context, history []model.Message, userMessage string) (string, error) {
	// 密钥校验先于一切网络调用，失败立即上抛，不重试
	if err := s.client.ValidateConfig(); err != nil {
		return "", err
	}

	messages := s.composeMessages(history, userMessage)

	for attempt := 0; ; attempt++ {
		text, err := s.client.Complete(ctx, messages, s.maxTokens, s.model)
		if err == nil {
			return text, nil
		}

		var perr *llm.ProviderError
		rateLimited := errors.As(err, &perr) && perr.StatusCode == http.StatusTooManyRequests
		if rateLimited && attempt < s.maxRetries {
			wait := time.Duration(1<<attempt) * time.Second
			log.Warnf("%s rate limited, retrying in %s (attempt %d/%d)", s.client.Name(), wait, attempt+1, s.maxRetries)
			s.sleep(wait)
			continue
		}

		if rateLimited {
			err = errors.Join(ErrRetriesExhausted, err)
		}
		return "", &ReplyError{Provider: s.client.Name(), Attempts: attempt + 1, Err: err}
	}
}

// composeMessages 构建发送给 LLM 的消息序列：
// system 指令 + 最近 maxContext 条历史（从旧到新，更早的静默丢弃）+ 新的用户消息。
func (s *chatService) composeMessages(history []model.Message, userMessage string) []llm.Message {
	if len(history) > s.maxContext {
		history = history[len(history)-s.maxContext:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: "system", Content: systemPrompt})
	for _, m := range history {
		role := "user"
		if m.Sender == model.SenderAI {
			role = "assistant"
		}
		messages = append(messages, llm.Message{Role: role, Content: m.Text})
	}
	messages = append(messages, llm.Message{Role: "user", Content: userMessage})
	return messages
}
