package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"agent-gateway/internal/domain"
)

type scriptedChatter struct {
	replies []domain.ChatMessage
	err     error

	calls     int
	lastTools []domain.ToolSpec
	seen      [][]domain.ChatMessage
}

func (s *scriptedChatter) ChatTurn(_ context.Context, _ string, messages []domain.ChatMessage, tools []domain.ToolSpec) (domain.ChatMessage, error) {
	s.seen = append(s.seen, append([]domain.ChatMessage(nil), messages...))
	s.lastTools = tools
	if s.err != nil {
		return domain.ChatMessage{}, s.err
	}
	idx := s.calls
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	s.calls++
	return s.replies[idx], nil
}

type fakeTool struct {
	name string
	out  string
	err  error
	args []string
}

func (f *fakeTool) Spec() domain.ToolSpec {
	return domain.ToolSpec{Type: "function", Function: domain.FunctionSpec{Name: f.name}}
}

func (f *fakeTool) Call(_ context.Context, arguments string) (string, error) {
	f.args = append(f.args, arguments)
	return f.out, f.err
}

func toolCall(id, name, args string) domain.ChatMessage {
	return domain.ChatMessage{
		Role: domain.RoleAssistant,
		ToolCalls: []domain.ToolCall{{
			ID:       id,
			Type:     "function",
			Function: domain.FunctionCall{Name: name, Arguments: args},
		}},
	}
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, "m")
	require.Error(t, err)

	_, err = New(&scriptedChatter{}, "")
	require.Error(t, err)
}

func TestInvoke_NoTools_SingleTurn(t *testing.T) {
	llm := &scriptedChatter{replies: []domain.ChatMessage{{Role: domain.RoleAssistant, Content: "Hello!"}}}
	a, err := New(llm, "llama-3.3-70b-versatile", WithInstruction("Act as a helpful bot"))
	require.NoError(t, err)

	transcript, err := a.Invoke(context.Background(), "Hi")
	require.NoError(t, err)
	require.Equal(t, []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "Act as a helpful bot"},
		{Role: domain.RoleUser, Content: "Hi"},
		{Role: domain.RoleAssistant, Content: "Hello!"},
	}, transcript)
	require.Empty(t, llm.lastTools)
	require.Equal(t, 1, llm.calls)
}

func TestInvoke_EmptyInstructionOmitsSystemTurn(t *testing.T) {
	llm := &scriptedChatter{replies: []domain.ChatMessage{{Content: "ok"}}}
	a, err := New(llm, "m")
	require.NoError(t, err)

	transcript, err := a.Invoke(context.Background(), "Hi")
	require.NoError(t, err)
	require.Equal(t, domain.RoleUser, transcript[0].Role)
	require.Equal(t, domain.RoleAssistant, transcript[1].Role)
}

func TestInvoke_RunsToolThenAnswers(t *testing.T) {
	search := &fakeTool{name: "search", out: `[{"title":"t"}]`}
	llm := &scriptedChatter{replies: []domain.ChatMessage{
		toolCall("call_1", "search", `{"query":"news"}`),
		{Role: domain.RoleAssistant, Content: "Here is the news."},
	}}
	a, err := New(llm, "m", WithTools(search))
	require.NoError(t, err)
	require.Len(t, a.Tools(), 1)

	transcript, err := a.Invoke(context.Background(), "What's new?")
	require.NoError(t, err)
	require.Len(t, transcript, 4)
	require.Equal(t, []string{`{"query":"news"}`}, search.args)

	toolMsg := transcript[2]
	require.Equal(t, domain.RoleTool, toolMsg.Role)
	require.Equal(t, "call_1", toolMsg.ToolCallID)
	require.Equal(t, `[{"title":"t"}]`, toolMsg.Content)

	require.Equal(t, "Here is the news.", transcript[3].Content)
	require.Len(t, llm.seen[1], 3, "second turn must see the tool result")
}

func TestInvoke_ToolErrorsAreFedBack(t *testing.T) {
	broken := &fakeTool{name: "search", err: errors.New("tavily down")}
	llm := &scriptedChatter{replies: []domain.ChatMessage{
		toolCall("", "search", `{}`),
		{Content: "Sorry, search failed."},
	}}
	a, err := New(llm, "m", WithTools(broken))
	require.NoError(t, err)

	transcript, err := a.Invoke(context.Background(), "q")
	require.NoError(t, err)
	require.Equal(t, "Error: tavily down", transcript[2].Content)
	require.NotEmpty(t, transcript[1].ToolCalls[0].ID, "missing call ids are filled in")
	require.Equal(t, transcript[1].ToolCalls[0].ID, transcript[2].ToolCallID)
}

func TestInvoke_UnknownTool(t *testing.T) {
	llm := &scriptedChatter{replies: []domain.ChatMessage{
		toolCall("call_1", "calculator", `{}`),
		{Content: "done"},
	}}
	a, err := New(llm, "m")
	require.NoError(t, err)

	transcript, err := a.Invoke(context.Background(), "q")
	require.NoError(t, err)
	require.Contains(t, transcript[2].Content, "calculator is not a valid tool")
}

func TestInvoke_TurnLimit(t *testing.T) {
	llm := &scriptedChatter{replies: []domain.ChatMessage{toolCall("call_1", "search", `{}`)}}
	a, err := New(llm, "m", WithTools(&fakeTool{name: "search"}), WithMaxTurns(3))
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), "q")
	require.ErrorIs(t, err, ErrTurnLimit)
	require.Equal(t, 3, llm.calls)
}

func TestInvoke_ModelError(t *testing.T) {
	llm := &scriptedChatter{err: errors.New("openai: unexpected status 500")}
	a, err := New(llm, "m")
	require.NoError(t, err)

	_, err = a.Invoke(context.Background(), "q")
	require.ErrorContains(t, err, "model turn 1")
	require.ErrorContains(t, err, "unexpected status 500")
}

func TestInvoke_CanceledContext(t *testing.T) {
	llm := &scriptedChatter{replies: []domain.ChatMessage{{Content: "ok"}}}
	a, err := New(llm, "m")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = a.Invoke(ctx, "q")
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, llm.calls)
}

func TestWithTools_DeduplicatesByName(t *testing.T) {
	a, err := New(&scriptedChatter{}, "m", WithTools(&fakeTool{name: "search"}, nil, &fakeTool{name: "search"}))
	require.NoError(t, err)
	require.Len(t, a.Tools(), 1)
}
