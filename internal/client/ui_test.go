package client

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/glamour/styles"
	"github.com/stretchr/testify/require"
)

type stubAsker struct{}

func (stubAsker) Ask(context.Context, Request) (string, error) { return "", nil }

func newTestUI(t *testing.T, out *bytes.Buffer) *UI {
	t.Helper()
	u, err := NewUI(stubAsker{}, UIConfig{Out: out, Style: styles.NoTTYStyle})
	require.NoError(t, err)
	return u
}

func TestNewUI_RequiresAsker(t *testing.T) {
	_, err := NewUI(nil, UIConfig{})
	require.Error(t, err)
}

func TestReport(t *testing.T) {
	cases := []struct {
		name string
		ans  string
		err  error
		want []string
	}{
		{name: "success", ans: "Paris", want: []string{"Agent Responded!", "Response:", "Paris"}},
		{name: "empty query", err: ErrEmptyQuery, want: []string{"Please type a query"}},
		{name: "error key", err: &APIError{StatusCode: 200, Detail: "bad model"}, want: []string{"bad model"}},
		{name: "api error", err: &APIError{StatusCode: 500, Detail: "Agent error: boom"}, want: []string{"API Error (500)", "Agent error: boom"}},
		{name: "transport", err: errors.New("connection refused"), want: []string{"Request Failed", "connection refused"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			newTestUI(t, &out).Report(tc.ans, tc.err)
			for _, w := range tc.want {
				require.Contains(t, out.String(), w)
			}
		})
	}
}
