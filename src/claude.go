package bookster

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Completion is a single prompt sent to the text-generation service.
type Completion struct {
	MaxTokens int64
	System    string
	Prompt    string
}

// Completer sends a prompt to a text-generation service and returns the reply text.
type Completer interface {
	Complete(ctx context.Context, req Completion) (string, error)
}

type ClaudeClient struct {
	client *anthropic.Client
	model  anthropic.Model
}

// NewClaudeClient builds a client for the Anthropic messages API. The SDK's own
// retries are disabled: failures go straight to the caller's fallback handling.
func NewClaudeClient(apiKey, model string) *ClaudeClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	)
	if model == "" {
		model = string(anthropic.ModelClaude3_5SonnetLatest)
	}
	return &ClaudeClient{
		client: client,
		model:  anthropic.Model(model),
	}
}

func (c *ClaudeClient) Complete(ctx context.Context, req Completion) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(req.MaxTokens),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(req.Prompt),
			),
		}),
	}
	if req.System != "" {
		params.System = anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(req.System),
		})
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}
	if len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from claude")
	}

	return message.Content[0].Text, nil
}
