package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"agent-gateway/internal/domain"
)

const defaultMaxTurns = 10

// Tool is a capability the model may call while reasoning.
type Tool interface {
	Spec() domain.ToolSpec
	Call(ctx context.Context, arguments string) (string, error)
}

// Chatter runs a single model turn. *openai.Client satisfies it.
type Chatter interface {
	ChatTurn(ctx context.Context, model string, messages []domain.ChatMessage, tools []domain.ToolSpec) (domain.ChatMessage, error)
}

// ErrTurnLimit is returned when the model keeps requesting tools past the turn limit.
var ErrTurnLimit = errors.New("agent: turn limit reached")

// Agent is a tool-augmented reasoning loop bound to one model.
type Agent struct {
	llm         Chatter
	model       string
	instruction string
	tools       map[string]Tool
	specs       []domain.ToolSpec
	maxTurns    int
}

type Option func(*Agent)

// WithInstruction sets the system message that guides the agent.
func WithInstruction(instruction string) Option {
	return func(a *Agent) { a.instruction = instruction }
}

// WithTools grants tools to the agent. Later tools with the same name replace earlier ones.
func WithTools(tools ...Tool) Option {
	return func(a *Agent) {
		for _, t := range tools {
			if t == nil {
				continue
			}
			spec := t.Spec()
			if _, dup := a.tools[spec.Function.Name]; !dup {
				a.specs = append(a.specs, spec)
			}
			a.tools[spec.Function.Name] = t
		}
	}
}

// WithMaxTurns caps the number of model turns in one Invoke.
func WithMaxTurns(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// New constructs an Agent for model backed by llm.
func New(llm Chatter, model string, opts ...Option) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("agent: llm must not be nil")
	}
	if model == "" {
		return nil, errors.New("agent: model must not be empty")
	}
	a := &Agent{
		llm:      llm,
		model:    model,
		tools:    make(map[string]Tool),
		maxTurns: defaultMaxTurns,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Tools returns the specs of the tools bound to the agent, in registration order.
func (a *Agent) Tools() []domain.ToolSpec {
	return append([]domain.ToolSpec(nil), a.specs...)
}

// Invoke runs the loop with input as the only user turn and returns the full transcript.
// The loop ends when the model answers without requesting tools.
func (a *Agent) Invoke(ctx context.Context, input string) ([]domain.ChatMessage, error) {
	var transcript []domain.ChatMessage
	if a.instruction != "" {
		transcript = append(transcript, domain.ChatMessage{Role: domain.RoleSystem, Content: a.instruction})
	}
	transcript = append(transcript, domain.ChatMessage{Role: domain.RoleUser, Content: input})

	for turn := 1; turn <= a.maxTurns; turn++ {
		if err := ctx.Err(); err != nil {
			return transcript, err
		}

		reply, err := a.llm.ChatTurn(ctx, a.model, transcript, a.specs)
		if err != nil {
			return transcript, fmt.Errorf("agent: model turn %d: %w", turn, err)
		}
		reply.Role = domain.RoleAssistant
		for i := range reply.ToolCalls {
			if reply.ToolCalls[i].ID == "" {
				reply.ToolCalls[i].ID = "call_" + uuid.NewString()
			}
			if reply.ToolCalls[i].Type == "" {
				reply.ToolCalls[i].Type = "function"
			}
		}
		transcript = append(transcript, reply)

		if len(reply.ToolCalls) == 0 {
			return transcript, nil
		}
		for _, call := range reply.ToolCalls {
			transcript = append(transcript, a.runTool(ctx, call))
		}
	}
	return transcript, ErrTurnLimit
}

// runTool never fails the loop: tool errors go back to the model as tool output.
func (a *Agent) runTool(ctx context.Context, call domain.ToolCall) domain.ChatMessage {
	msg := domain.ChatMessage{
		Role:       domain.RoleTool,
		Name:       call.Function.Name,
		ToolCallID: call.ID,
	}
	t, ok := a.tools[call.Function.Name]
	if !ok {
		msg.Content = fmt.Sprintf("Error: %s is not a valid tool.", call.Function.Name)
		return msg
	}
	out, err := t.Call(ctx, call.Function.Arguments)
	if err != nil {
		msg.Content = fmt.Sprintf("Error: %v", err)
		return msg
	}
	msg.Content = out
	return msg
}
