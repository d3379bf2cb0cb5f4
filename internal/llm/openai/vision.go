package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"promotore-backend/internal/llm"
	"promotore-backend/internal/shared/telemetry"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 4096
)

// Options configures the vision client.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
	// Timeout of zero keeps the HTTP client default.
	Timeout time.Duration
}

// VisionClient implements llm.VisionClient using OpenAI Chat Completions.
type VisionClient struct {
	client    *goopenai.Client
	model     string
	maxTokens int
}

// NewVisionClient constructs a new OpenAI vision client.
func NewVisionClient(opts Options) (*VisionClient, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimRight(base, "/")
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &VisionClient{
		client:    goopenai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Complete sends the instruction and every image in one user message and
// returns the first choice's content unchanged.
func (c *VisionClient) Complete(ctx context.Context, req llm.VisionRequest) (string, error) {
	parts := make([]goopenai.ChatMessagePart, 0, len(req.Images)+1)
	parts = append(parts, goopenai.ChatMessagePart{
		Type: goopenai.ChatMessagePartTypeText,
		Text: req.Instruction,
	})
	for _, img := range req.Images {
		parts = append(parts, goopenai.ChatMessagePart{
			Type: goopenai.ChatMessagePartTypeImageURL,
			ImageURL: &goopenai.ChatMessageImageURL{
				URL: DataURL(img),
			},
		})
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []goopenai.ChatCompletionMessage{
			{
				Role:         goopenai.ChatMessageRoleUser,
				MultiContent: parts,
			},
		},
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("openai error (%s): %w", apiErr.Type, err)
		}
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}

	telemetry.Info("llm.response", map[string]any{
		"model":             c.model,
		"images":            len(req.Images),
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
		"duration_ms":       time.Since(start).Milliseconds(),
	})
	return resp.Choices[0].Message.Content, nil
}

// DataURL encodes an image as a data: URL.
func DataURL(img llm.Image) string {
	mime := img.MimeType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

var _ llm.VisionClient = (*VisionClient)(nil)
