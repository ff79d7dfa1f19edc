package extraction

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type openaiProvider struct {
	model  string
	client *openai.Client
}

func newOpenAIProvider(model, apiKey string) *openaiProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.HTTPClient = sharedHTTPClient
	return &openaiProvider{model: model, client: openai.NewClientWithConfig(cfg)}
}

func (p *openaiProvider) Name() string { return "openai:" + p.model }

func (p *openaiProvider) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.model,
		MaxTokens: defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
