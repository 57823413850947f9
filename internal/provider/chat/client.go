package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"ratemate/internal/config"
	"ratemate/internal/models"
)

// ErrNotConfigured reports a missing API key for the selected provider.
var ErrNotConfigured = errors.New("chat client not initialized")

// Client generates completions through an eino chat model. The provider is
// fixed at startup; openai, claude and gemini are supported.
type Client struct {
	model       model.ToolCallingChatModel
	maxTokens   int
	temperature float32
}

// NewClient builds the chat model for the configured provider. A missing
// credential returns ErrNotConfigured so the service can start degraded.
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	var (
		chatModel model.ToolCallingChatModel
		err       error
	)
	switch cfg.Chat.Provider {
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, ErrNotConfigured
		}
		chatModel, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.Chat.Model,
			APIKey:  cfg.OpenAI.APIKey,
		})
	case "claude":
		if cfg.Claude.APIKey == "" {
			return nil, ErrNotConfigured
		}
		var baseURLPtr *string
		if cfg.Claude.BaseURL != "" {
			baseURLPtr = &cfg.Claude.BaseURL
		}
		chatModel, err = claude.NewChatModel(ctx, &claude.Config{
			APIKey:    cfg.Claude.APIKey,
			Model:     cfg.Chat.Model,
			BaseURL:   baseURLPtr,
			MaxTokens: cfg.Chat.MaxTokens,
		})
	case "gemini":
		if cfg.Gemini.APIKey == "" {
			return nil, ErrNotConfigured
		}
		var client *genai.Client
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		chatModel, err = gemini.NewChatModel(ctx, &gemini.Config{
			Client: client,
			Model:  cfg.Chat.Model,
		})
	default:
		return nil, fmt.Errorf("invalid provider: %s", cfg.Chat.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("init %s chat model: %w", cfg.Chat.Provider, err)
	}
	return &Client{
		model:       chatModel,
		maxTokens:   cfg.Chat.MaxTokens,
		temperature: float32(cfg.Chat.Temperature),
	}, nil
}

// Generate runs one completion over the prompt messages and returns the
// trimmed text.
func (c *Client) Generate(ctx context.Context, messages []models.PromptMessage) (string, error) {
	if c == nil || c.model == nil {
		return "", ErrNotConfigured
	}
	out, err := c.model.Generate(ctx, convertMessages(messages),
		model.WithMaxTokens(c.maxTokens),
		model.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("generate completion: %w", err)
	}
	content := strings.TrimSpace(out.Content)
	if content == "" {
		return "No response content.", nil
	}
	return content, nil
}

func convertMessages(messages []models.PromptMessage) []*schema.Message {
	converted := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		var role schema.RoleType
		switch msg.Role {
		case models.RoleAssistant:
			role = schema.Assistant
		case models.RoleSystem:
			role = schema.System
		default:
			role = schema.User
		}

		if msg.ImageURL == "" {
			converted = append(converted, &schema.Message{Role: role, Content: msg.Content})
			continue
		}
		converted = append(converted, &schema.Message{
			Role: role,
			MultiContent: []schema.ChatMessagePart{
				{Type: schema.ChatMessagePartTypeText, Text: msg.Content},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    msg.ImageURL,
						Detail: schema.ImageURLDetailAuto,
					},
				},
			},
		})
	}
	return converted
}
