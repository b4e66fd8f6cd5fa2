package ai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/hands-on/backend/internal/config"
	"github.com/zhouzirui/hands-on/backend/internal/model/conversation"
	"github.com/zhouzirui/hands-on/backend/internal/model/persona"
)

// ErrCredentialMissing is returned when no model credential is bound to a persona.
var ErrCredentialMissing = errors.New("model credential not configured")

// Generator produces the simulated patient's reply for a history plus a new student message.
type Generator interface {
	Generate(ctx context.Context, history []*schema.Message, query string) (string, error)
	Stream(ctx context.Context, history []*schema.Message, query string, onDelta func(string)) (string, error)
}

// Service binds one Generator per persona; each persona talks to the model
// with its own credential.
type Service struct {
	generators map[string]Generator
	streaming  bool
}

// NewService builds a generator for every persona in the catalog using the
// credentials resolved in cfg.PersonaKeys.
func NewService(ctx context.Context, personas persona.Store, cfg config.AIConfig) (*Service, error) {
	generators := make(map[string]Generator)
	for _, p := range personas.List() {
		apiKey, ok := cfg.PersonaKeys[p.ID]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("persona %s: %w", p.ID, ErrCredentialMissing)
		}

		var (
			gen Generator
			err error
		)
		switch cfg.Provider {
		case config.ProviderOpenAI:
			gen = NewOpenAIGenerator(apiKey, cfg)
		default:
			var chatModel model.ChatModel
			chatModel, err = cfg.NewChatModel(ctx, apiKey)
			if err != nil {
				return nil, fmt.Errorf("persona %s: failed to create chat model: %w", p.ID, err)
			}
			gen, err = NewChainGenerator(ctx, chatModel)
		}
		if err != nil {
			return nil, fmt.Errorf("persona %s: %w", p.ID, err)
		}
		generators[p.ID] = gen
	}

	log.Printf("[ai] %s generators ready for %d personas (model=%s)", cfg.Provider, len(generators), cfg.Model)
	return NewServiceWithGenerators(generators, cfg.StreamResponse), nil
}

// NewServiceWithGenerators wires pre-built generators, mainly for tests.
func NewServiceWithGenerators(generators map[string]Generator, streaming bool) *Service {
	copied := make(map[string]Generator, len(generators))
	for id, gen := range generators {
		copied[id] = gen
	}
	return &Service{generators: copied, streaming: streaming}
}

// For returns the generator bound to personaID.
func (s *Service) For(personaID string) (Generator, error) {
	gen, ok := s.generators[personaID]
	if !ok || gen == nil {
		return nil, ErrCredentialMissing
	}
	return gen, nil
}

// StreamingEnabled 指示是否开启 SSE 流式输出。
func (s *Service) StreamingEnabled() bool {
	return s.streaming
}

// ToMessages converts stored turns into model messages. The persona seed
// becomes the system message.
func ToMessages(turns []conversation.Turn) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(turns))
	for _, t := range turns {
		switch {
		case t.Kind == conversation.KindPersonaSeed:
			msgs = append(msgs, schema.SystemMessage(t.Text))
		case t.Role == conversation.RolePatient:
			msgs = append(msgs, schema.AssistantMessage(t.Text, nil))
		default:
			msgs = append(msgs, schema.UserMessage(t.Text))
		}
	}
	return msgs
}

// ChainGenerator runs history + query through an eino chat chain.
type ChainGenerator struct {
	chain compose.Runnable[map[string]any, *schema.Message]
}

// NewChainGenerator compiles the chat chain around chatModel.
func NewChainGenerator(ctx context.Context, chatModel model.ChatModel) (*ChainGenerator, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}
	return &ChainGenerator{chain: runnable}, nil
}

func (g *ChainGenerator) Generate(ctx context.Context, history []*schema.Message, query string) (string, error) {
	response, err := g.chain.Invoke(ctx, chainInput(history, query))
	if err != nil {
		return "", fmt.Errorf("failed to run chat chain: %w", err)
	}
	if response == nil {
		return "", errors.New("chat chain returned no message")
	}
	return response.Content, nil
}

func (g *ChainGenerator) Stream(ctx context.Context, history []*schema.Message, query string, onDelta func(string)) (string, error) {
	stream, err := g.chain.Stream(ctx, chainInput(history, query))
	if err != nil {
		return "", fmt.Errorf("failed to stream chat chain output: %w", err)
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)
	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}
		chunks = append(chunks, chunk)
		if chunk.Content != "" && onDelta != nil {
			onDelta(chunk.Content)
		}
	}
	if len(chunks) == 0 {
		return "", errors.New("chat chain stream was empty")
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}
	return response.Content, nil
}

func chainInput(history []*schema.Message, query string) map[string]any {
	return map[string]any{
		"history": history,
		"query":   query,
	}
}
