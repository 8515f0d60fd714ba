package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/1234Priyanshu4321/shop-ai-chatbot/internal/config"
)

// openAICompatClient 调用 OpenAI 兼容的 /chat/completions 接口。
// OpenAI 与 DeepSeek 共用同一套报文格式，仅密钥与地址不同。
type openAICompatClient struct {
	name   string
	cfg    config.ProviderConfig
	client *http.Client
}

func newOpenAICompatClient(name string, cfg config.ProviderConfig) *openAICompatClient {
	return &openAICompatClient{
		name:   name,
		cfg:    cfg,
		client: newHTTPClient(),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *openAICompatClient) Name() string {
	return c.name
}

func (c *openAICompatClient) ValidateConfig() error {
	return validateAPIKey(c.name, c.cfg.APIKey)
}

// Complete 执行一次非流式的对话补全。
func (c *openAICompatClient) Complete(ctx context.Context, messages []Message, maxTokens int, model string) (string, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/chat/completions", bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: c.name, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// 尽量取出服务端的错误描述，取不到则回退到原始报文
		var parsed chatResponse
		msg := string(body)
		if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ProviderError{Provider: c.name, StatusCode: resp.StatusCode, Message: msg}
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal chat response: %w", err)
	}

	if len(parsed.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
