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

// geminiClient 调用 Google Gemini 的 generateContent 接口。
type geminiClient struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func newGeminiClient(cfg config.ProviderConfig) *geminiClient {
	return &geminiClient{
		cfg:    cfg,
		client: newHTTPClient(),
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *geminiClient) Name() string {
	return ProviderGemini
}

func (c *geminiClient) ValidateConfig() error {
	return validateAPIKey(ProviderGemini, c.cfg.APIKey)
}

// Complete 执行一次非流式的对话补全。
// Gemini 没有独立的 system 角色，system 内容合并进首条 user 消息；
// assistant 映射为 Gemini 的 "model" 角色。
func (c *geminiClient) Complete(ctx context.Context, messages []Message, maxTokens int, model string) (string, error) {
	var systemText string
	contents := make([]geminiContent, 0, len(messages))
	for _, m := range messages {
		if m.Role == "system" {
			systemText += m.Content + "\n\n"
			continue
		}
		role := m.Role
		if role == "assistant" {
			role = "model"
		}
		text := m.Content
		if systemText != "" && role == "user" && len(contents) == 0 {
			text = systemText + text
		}
		contents = append(contents, geminiContent{
			Parts: []geminiPart{{Text: text}},
			Role:  role,
		})
	}

	reqBody := geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.cfg.BaseURL, model, c.cfg.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &ProviderError{Provider: ProviderGemini, StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var parsed geminiResponse
		msg := string(body)
		if json.Unmarshal(body, &parsed) == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return "", &ProviderError{Provider: ProviderGemini, StatusCode: resp.StatusCode, Message: msg}
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to unmarshal gemini response: %w", err)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
