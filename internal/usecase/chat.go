package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agent-gateway/internal/dispatch"
	"agent-gateway/internal/domain"
)

// Dispatcher forwards a validated request to the model capability.
type Dispatcher interface {
	Dispatch(ctx context.Context, in dispatch.Input) (string, error)
}

type ChatInput struct {
	ModelName     string
	ModelProvider string
	SystemPrompt  string
	Messages      []string
	AllowSearch   bool
}

type ChatOutput struct {
	Response string
}

// ChatService validates chat requests against the allow-list and dispatches them.
// It holds no per-request state and is safe for concurrent use.
type ChatService struct {
	allowed    domain.AllowList
	dispatcher Dispatcher
}

func NewChatService(allowed domain.AllowList, d Dispatcher) (*ChatService, error) {
	if len(allowed) == 0 {
		return nil, errors.New("usecase: allow-list must not be empty")
	}
	if d == nil {
		return nil, errors.New("usecase: dispatcher must not be nil")
	}
	return &ChatService{allowed: allowed, dispatcher: d}, nil
}

// Chat validates provider then model, assembles the prompt and dispatches exactly once.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	provider := domain.Provider(in.ModelProvider)
	if !s.allowed.Has(provider) {
		return ChatOutput{}, newError(ErrorInvalidProvider,
			fmt.Sprintf("Invalid provider. Choose from %s.", strings.Join(s.allowed.Providers(), ", ")), nil)
	}
	if !s.allowed.Allows(provider, in.ModelName) {
		return ChatOutput{}, newError(ErrorInvalidModel,
			fmt.Sprintf("Invalid model for provider %s. Allowed: %s.", provider, strings.Join(s.allowed.Models(provider), ", ")), nil)
	}

	answer, err := s.dispatcher.Dispatch(ctx, dispatch.Input{
		Model:        in.ModelName,
		Prompt:       assemblePrompt(in.Messages),
		AllowSearch:  in.AllowSearch,
		SystemPrompt: in.SystemPrompt,
		Provider:     provider,
	})
	if err != nil {
		return ChatOutput{}, newError(ErrorAgent, "Agent error: "+err.Error(), err)
	}
	return ChatOutput{Response: answer}, nil
}
