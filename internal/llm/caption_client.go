// ABOUTME: Captioning client for multimodal chat completions with retry logic
// ABOUTME: Talks to any OpenAI-compatible endpoint (Ollama by default) via go-openai
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/flowscope/internal/models"
	"github.com/harper/flowscope/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Ollama's OpenAI-compatible endpoint
	DefaultBaseURL = "http://localhost:11434/v1"
	// DefaultCaptionModel is the default multimodal model
	DefaultCaptionModel = "gemma3:4b"
)

// CaptionConfig holds configuration for the captioning client
type CaptionConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	RetryDelay time.Duration
	Timeout    time.Duration // per attempt
	MaxTokens  int
}

// DefaultCaptionConfig returns the default client configuration
func DefaultCaptionConfig() *CaptionConfig {
	return &CaptionConfig{
		BaseURL:    DefaultBaseURL,
		APIKey:     "ollama",
		Model:      DefaultCaptionModel,
		MaxRetries: 2,
		RetryDelay: time.Second,
		Timeout:    120 * time.Second,
	}
}

// CaptionClient wraps the OpenAI API client with retry logic
type CaptionClient struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryDelay time.Duration
	timeout    time.Duration
	maxTokens  int
}

// NewCaptionClient creates a captioning client from config
func NewCaptionClient(config *CaptionConfig) (*CaptionClient, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("caption model is required")
	}
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = "ollama"
	}

	oc := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(config.BaseURL, "/")
	}

	return &CaptionClient{
		client:     openai.NewClientWithConfig(oc),
		model:      config.Model,
		maxRetries: config.MaxRetries,
		retryDelay: config.RetryDelay,
		timeout:    config.Timeout,
		maxTokens:  config.MaxTokens,
	}, nil
}

// Caption asks the model to describe images guided by prompts. Parts are
// interleaved: prompts[i] then images[i] for i up to the longer of the two.
// All failures wrap models.ErrCollaboratorUnavailable.
func (c *CaptionClient) Caption(ctx context.Context, images []Image, prompts []string) (string, error) {
	parts := interleave(images, prompts)
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: nothing to caption", models.ErrCollaboratorUnavailable)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		MaxTokens: c.maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := util.SleepBackoff(ctx, c.retryDelay, attempt); err != nil {
				lastErr = err
				break
			}
		}

		text, err := c.complete(ctx, req)
		if err == nil {
			return text, nil
		}
		lastErr = fmt.Errorf("attempt %d: %w", attempt+1, err)
		if ctx.Err() != nil {
			break
		}
	}

	return "", fmt.Errorf("%w: caption failed after %d attempts: %v", models.ErrCollaboratorUnavailable, c.maxRetries+1, lastErr)
}

func (c *CaptionClient) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// interleave builds the multi-content message body
func interleave(images []Image, prompts []string) []openai.ChatMessagePart {
	n := max(len(images), len(prompts))
	parts := make([]openai.ChatMessagePart, 0, len(images)+len(prompts))
	for i := 0; i < n; i++ {
		if i < len(prompts) {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: prompts[i],
			})
		}
		if i < len(images) {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    images[i].DataURL(),
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}
	return parts
}
