package dispatch

import (
	"context"
	"errors"
	"fmt"

	"agent-gateway/internal/agent"
	"agent-gateway/internal/domain"
)

const (
	DefaultDirectMaxTokens = 100
	// SearchMaxResults is the result cap of the web-search tool granted to the agent.
	SearchMaxResults = 2
)

// ErrNoAssistantMessage is returned when the reasoning transcript has no assistant turn.
var ErrNoAssistantMessage = errors.New("dispatch: agent produced no assistant message")

// Completer is the direct-completion capability.
type Completer interface {
	Complete(ctx context.Context, model, systemPrompt, userPrompt string, maxTokens int) (string, error)
}

// Input is one dispatch request.
type Input struct {
	Model        string
	Prompt       string
	AllowSearch  bool
	SystemPrompt string
	Provider     domain.Provider
}

// Config holds the shared clients built once at process start.
type Config struct {
	// Reasoner backs providers served by the tool-augmented reasoning capability.
	Reasoner agent.Chatter
	// Direct backs providers served by a single completion call.
	Direct Completer
	// Search is granted to the agent when search is allowed.
	Search agent.Tool

	DirectMaxTokens int
	AgentMaxTurns   int
}

// Dispatcher selects the external capability for a provider and extracts the answer.
type Dispatcher struct {
	reasoner        agent.Chatter
	direct          Completer
	search          agent.Tool
	directMaxTokens int
	agentMaxTurns   int
}

func New(cfg Config) (*Dispatcher, error) {
	if cfg.Reasoner == nil {
		return nil, errors.New("dispatch: reasoner must not be nil")
	}
	if cfg.Direct == nil {
		return nil, errors.New("dispatch: direct completer must not be nil")
	}
	if cfg.Search == nil {
		return nil, errors.New("dispatch: search tool must not be nil")
	}
	if cfg.DirectMaxTokens <= 0 {
		cfg.DirectMaxTokens = DefaultDirectMaxTokens
	}
	return &Dispatcher{
		reasoner:        cfg.Reasoner,
		direct:          cfg.Direct,
		search:          cfg.Search,
		directMaxTokens: cfg.DirectMaxTokens,
		agentMaxTurns:   cfg.AgentMaxTurns,
	}, nil
}

// Dispatch invokes the capability for in.Provider and returns the final answer text.
func (d *Dispatcher) Dispatch(ctx context.Context, in Input) (string, error) {
	switch in.Provider.Capability() {
	case domain.CapabilityDirect:
		return d.complete(ctx, in)
	case domain.CapabilityReasoning:
		return d.reason(ctx, in)
	default:
		return "", fmt.Errorf("dispatch: no capability for provider %q", in.Provider)
	}
}

func (d *Dispatcher) complete(ctx context.Context, in Input) (string, error) {
	out, err := d.direct.Complete(ctx, in.Model, in.SystemPrompt, in.Prompt, d.directMaxTokens)
	if err != nil {
		return "", fmt.Errorf("dispatch: error communicating with %s: %w", in.Provider, err)
	}
	return out, nil
}

func (d *Dispatcher) reason(ctx context.Context, in Input) (string, error) {
	opts := []agent.Option{
		agent.WithInstruction(in.SystemPrompt),
		agent.WithMaxTurns(d.agentMaxTurns),
	}
	if in.AllowSearch {
		opts = append(opts, agent.WithTools(d.search))
	}
	a, err := agent.New(d.reasoner, in.Model, opts...)
	if err != nil {
		return "", fmt.Errorf("dispatch: build agent: %w", err)
	}

	transcript, err := a.Invoke(ctx, in.Prompt)
	if err != nil {
		return "", err
	}
	return lastAssistant(transcript)
}

func lastAssistant(transcript []domain.ChatMessage) (string, error) {
	answers := domain.AssistantContents(transcript)
	if len(answers) == 0 {
		return "", ErrNoAssistantMessage
	}
	return answers[len(answers)-1], nil
}
