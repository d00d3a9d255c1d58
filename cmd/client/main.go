package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"agent-gateway/internal/client"
	"agent-gateway/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		apiURL       string
		systemPrompt string
		style        string
		width        int
	)

	cmd := &cobra.Command{
		Use:   "agent-client",
		Short: "Ask the agent gateway questions from the terminal",
		Long: `agent-client collects a role, provider, model and question in a terminal form,
sends them to the agent gateway and renders the answer as markdown.

Example:
  agent-client --api-url http://127.0.0.1:9999/chat`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadClient()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("api-url") {
				apiURL = cfg.GatewayURL
			}
			if !cmd.Flags().Changed("system-prompt") {
				systemPrompt = cfg.SystemPrompt
			}

			c, err := client.NewClient(apiURL)
			if err != nil {
				return err
			}
			ui, err := client.NewUI(c, client.UIConfig{
				Out:          cmd.OutOrStdout(),
				SystemPrompt: systemPrompt,
				Style:        style,
				Width:        width,
			})
			if err != nil {
				return fmt.Errorf("error initializing ui: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return ui.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", client.DefaultURL, "gateway chat endpoint (overrides GATEWAY_URL)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", client.DefaultSystemPrompt, "initial agent role shown in the form")
	cmd.Flags().StringVar(&style, "style", "", "glamour style for rendering answers")
	cmd.Flags().IntVar(&width, "width", 100, "form and answer width")
	return cmd
}
