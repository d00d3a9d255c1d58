package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
)

const DefaultSystemPrompt = "Act as an AI chatbot who is smart and friendly"

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

// Asker sends one request to the gateway.
type Asker interface {
	Ask(ctx context.Context, req Request) (string, error)
}

type UIConfig struct {
	Out          io.Writer
	SystemPrompt string
	// Style is a glamour standard style name. Defaults to tokyo-night.
	Style string
	Width int
}

// UI is the terminal front end: a form per question, a spinner while the gateway works,
// and the answer rendered as markdown.
type UI struct {
	asker        Asker
	out          io.Writer
	renderer     *glamour.TermRenderer
	systemPrompt string
	width        int
}

func NewUI(a Asker, cfg UIConfig) (*UI, error) {
	if a == nil {
		return nil, errors.New("client: asker must not be nil")
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Style == "" {
		cfg.Style = styles.TokyoNightStyle
	}
	if cfg.Width <= 0 {
		cfg.Width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(cfg.Style),
		glamour.WithWordWrap(cfg.Width),
	)
	if err != nil {
		return nil, fmt.Errorf("client: create renderer: %w", err)
	}
	return &UI{
		asker:        a,
		out:          cfg.Out,
		renderer:     renderer,
		systemPrompt: cfg.SystemPrompt,
		width:        cfg.Width,
	}, nil
}

// Run asks questions until the user aborts the form.
func (u *UI) Run(ctx context.Context) error {
	fmt.Fprintln(u.out, titleStyle.Render("AI Chatbot Agents"))

	req := Request{SystemPrompt: u.systemPrompt, Provider: ProviderGroq}
	for {
		if err := u.form(&req).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(u.out, "\nGoodbye!")
				return nil
			}
			return fmt.Errorf("client: read form: %w", err)
		}
		if err := req.Validate(); err != nil {
			u.Report("", err)
			continue
		}

		var (
			answer string
			askErr error
		)
		action := func() { answer, askErr = u.asker.Ask(ctx, req) }
		if err := spinner.New().Title("Thinking...").Context(ctx).Action(action).Run(); err != nil {
			return fmt.Errorf("client: spinner: %w", err)
		}
		u.Report(answer, askErr)
		req.Query = ""
	}
}

func (u *UI) form(req *Request) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Define your AI Agent's Role").
				Placeholder("E.g. Act as a travel guide...").
				Lines(3).
				Value(&req.SystemPrompt),
			huh.NewSelect[string]().
				Title("Select AI Provider").
				Options(huh.NewOptions(Providers()...)...).
				Value(&req.Provider),
			huh.NewSelect[string]().
				TitleFunc(func() string { return "Select " + req.Provider + " Model" }, &req.Provider).
				OptionsFunc(func() []huh.Option[string] {
					return huh.NewOptions(ModelsFor(req.Provider)...)
				}, &req.Provider).
				Value(&req.Model),
			huh.NewConfirm().
				Title("Allow Web Search?").
				Value(&req.AllowSearch),
			huh.NewText().
				Title("Ask Something").
				Placeholder("Type your question here...").
				CharLimit(5000).
				Value(&req.Query),
		),
	).WithWidth(u.width).WithTheme(huh.ThemeCharm())
}

// Report prints the outcome of one question.
func (u *UI) Report(answer string, err error) {
	var apiErr *APIError
	switch {
	case err == nil:
		fmt.Fprintln(u.out, successStyle.Render("Agent Responded!"))
		fmt.Fprint(u.out, u.render("**Response:** "+answer))
	case errors.Is(err, ErrEmptyQuery):
		fmt.Fprintln(u.out, warningStyle.Render("Please type a query before asking the agent."))
	case errors.As(err, &apiErr) && apiErr.StatusCode == 200:
		fmt.Fprintln(u.out, errorStyle.Render(apiErr.Detail))
	case errors.As(err, &apiErr):
		fmt.Fprintln(u.out, errorStyle.Render(fmt.Sprintf("API Error (%d): %s", apiErr.StatusCode, apiErr.Detail)))
	default:
		fmt.Fprintln(u.out, errorStyle.Render("Request Failed: "+err.Error()))
	}
}

func (u *UI) render(markdown string) string {
	out, err := u.renderer.Render(markdown)
	if err != nil {
		return markdown + "\n"
	}
	return out
}
