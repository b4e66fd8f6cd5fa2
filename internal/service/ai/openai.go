package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/schema"
	openai "github.com/sashabaranov/go-openai"

	"github.com/zhouzirui/hands-on/backend/internal/config"
)

// OpenAIGenerator talks to an OpenAI-compatible chat completion API.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
	maxTokens   int
}

// NewOpenAIGenerator builds a generator for apiKey using the shared model settings.
func NewOpenAIGenerator(apiKey string, cfg config.AIConfig) *OpenAIGenerator {
	clientCfg := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	g := &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}
	if cfg.Temperature != nil {
		g.temperature = float32(*cfg.Temperature)
	}
	if cfg.TopP != nil {
		g.topP = float32(*cfg.TopP)
	}
	if cfg.MaxTokens != nil {
		g.maxTokens = *cfg.MaxTokens
	}
	return g
}

func (g *OpenAIGenerator) request(history []*schema.Message, query string) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openAIRole(m.Role), Content: m.Content})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: query})

	return openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    msgs,
		Temperature: g.temperature,
		TopP:        g.topP,
		MaxTokens:   g.maxTokens,
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, history []*schema.Message, query string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, g.request(history, query))
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (g *OpenAIGenerator) Stream(ctx context.Context, history []*schema.Message, query string, onDelta func(string)) (string, error) {
	req := g.request(history, query)
	req.Stream = true

	stream, err := g.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat stream: %w", err)
	}
	defer stream.Close()

	var builder strings.Builder
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		builder.WriteString(delta)
		if onDelta != nil {
			onDelta(delta)
		}
	}
	return builder.String(), nil
}

func openAIRole(role schema.RoleType) string {
	switch role {
	case schema.System:
		return openai.ChatMessageRoleSystem
	case schema.Assistant:
		return openai.ChatMessageRoleAssistant
	default:
		return openai.ChatMessageRoleUser
	}
}
