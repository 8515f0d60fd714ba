// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/model"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/repository"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/service"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/llm"
	"github.com/1234Priyanshu4321/shop-ai-chatbot/pkg/log"
	"github.com/gin-gonic/gin"
)

// 消息正文的最大长度（按字符计）。
const maxMessageLen = 1000

// LLM 不可用时的固定兜底文案，按失败原因区分。
// 会话不能因为 LLM 故障而对用户表现为损坏，所以兜底文案仍以正常回复返回并入库。
const (
	fallbackConfig   = "The chat assistant is not set up correctly right now. Please email support@shopsmart.example.com and we'll help you directly."
	fallbackAuth     = "The chat assistant is temporarily unavailable. Our team has been notified - please try again later or email support@shopsmart.example.com."
	fallbackOverload = "We're receiving a lot of messages right now. Please try again in a few moments."
	fallbackGeneric  = "Sorry, something went wrong on our side. Please try again shortly."
)

// ChatHandler 处理聊天相关的 API 请求。
type ChatHandler struct {
	chatService service.ChatService
	repo        repository.ConversationRepository
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService, repo repository.ConversationRepository) *ChatHandler {
	return &ChatHandler{chatService: chatService, repo: repo}
}

type chatMessageRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}

type historyMessage struct {
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// PostMessage 处理 POST /chat/message。
// 流程：解析会话（历史在写入用户消息之前读取）→ 持久化用户消息 →
// 生成回复（失败时替换为兜底文案）→ 持久化助手消息 → 响应。
func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req chatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message must be 1000 characters or less"})
		return
	}

	ctx := c.Request.Context()

	conv, history, err := h.repo.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		log.Error("failed to resolve conversation", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if _, err := h.repo.Append(ctx, conv.ID, model.SenderUser, message); err != nil {
		log.Error("failed to persist user message", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	reply, err := h.chatService.GenerateReply(ctx, history, message)
	if err != nil {
		log.Error("reply generation failed, using fallback", err)
		reply = fallbackReply(err)
	}

	if _, err := h.repo.Append(ctx, conv.ID, model.SenderAI, reply); err != nil {
		// 回复已经生成，仍然返回给用户，只是这条助手消息没有落库
		log.Error("failed to persist assistant message", err)
	}

	c.JSON(http.StatusOK, gin.H{
		"reply":     reply,
		"sessionId": conv.ID,
	})
}

// GetHistory 处理 GET /chat/history/:sessionId。
// 未知的 sessionId 返回空历史而非错误，等同于一个全新会话。
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionId")

	messages, err := h.repo.History(c.Request.Context(), sessionID)
	if err != nil {
		log.Error("failed to load history", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	out := make([]historyMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, historyMessage{
			Sender:    m.Sender,
			Text:      m.Text,
			Timestamp: m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// Health 处理 GET /health，仅作存活探测。
func (h *ChatHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fallbackReply 按失败原因选择兜底文案。
func fallbackReply(err error) string {
	var credErr *llm.CredentialError
	switch {
	case errors.Is(err, llm.ErrUnsupportedProvider):
		return fallbackConfig
	case errors.As(err, &credErr):
		return fallbackAuth
	case errors.Is(err, service.ErrRetriesExhausted):
		return fallbackOverload
	default:
		var perr *llm.ProviderError
		if errors.As(err, &perr) {
			switch perr.StatusCode {
			case http.StatusUnauthorized:
				return fallbackAuth
			case http.StatusTooManyRequests:
				return fallbackOverload
			}
		}
		return fallbackGeneric
	}
}
