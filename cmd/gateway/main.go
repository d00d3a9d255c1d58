package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"agent-gateway/handler"
	"agent-gateway/internal/config"
	"agent-gateway/internal/dispatch"
	"agent-gateway/internal/domain"
	"agent-gateway/internal/integrations/openai"
	"agent-gateway/internal/integrations/paramstore"
	"agent-gateway/internal/integrations/tavily"
	"agent-gateway/internal/usecase"
)

func main() {
	ctx := context.Background()
	inLambda := os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""

	// ---- Configuration (read only here) ----
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if inLambda {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	// ---- Secrets ----
	getter, err := newGetter(ctx, cfg)
	if err != nil {
		slog.Error("failed to create parameter source", "err", err)
		os.Exit(1)
	}
	groqKey := mustToken(getter, cfg, config.GroqKeyEnv, config.GroqKeyParam)
	openRouterKey := mustToken(getter, cfg, config.OpenRouterKeyEnv, config.OpenRouterKeyParam)
	tavilyKey := mustToken(getter, cfg, config.TavilyKeyEnv, config.TavilyKeyParam)

	// ---- Clients ----
	httpClient := &http.Client{Timeout: cfg.UpstreamTimeout}

	groq, err := openai.NewClient(groqKey,
		openai.WithBaseURL(cfg.GroqBaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		slog.Error("failed to create Groq client", "err", err)
		os.Exit(1)
	}
	openRouter, err := openai.NewClient(openRouterKey,
		openai.WithBaseURL(cfg.OpenRouterBaseURL),
		openai.WithHTTPClient(httpClient),
		openai.WithHeader("X-Title", "agent-gateway"),
	)
	if err != nil {
		slog.Error("failed to create OpenRouter client", "err", err)
		os.Exit(1)
	}
	search, err := tavily.NewClient(tavilyKey,
		tavily.WithBaseURL(cfg.TavilyBaseURL),
		tavily.WithHTTPClient(httpClient),
	)
	if err != nil {
		slog.Error("failed to create Tavily client", "err", err)
		os.Exit(1)
	}
	searchTool, err := tavily.NewTool(search, dispatch.SearchMaxResults)
	if err != nil {
		slog.Error("failed to create search tool", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	dispatcher, err := dispatch.New(dispatch.Config{
		Reasoner:        groq,
		Direct:          openRouter,
		Search:          searchTool,
		DirectMaxTokens: cfg.DirectMaxTokens,
		AgentMaxTurns:   cfg.AgentMaxTurns,
	})
	if err != nil {
		slog.Error("failed to create dispatcher", "err", err)
		os.Exit(1)
	}
	chatService, err := usecase.NewChatService(domain.DefaultAllowList(), dispatcher)
	if err != nil {
		slog.Error("failed to create chat service", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(chatService, slog.Default())
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	if inLambda {
		lambda.Start(h.Handle)
		return
	}
	if err := serve(cfg.ListenAddr, h); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

// newGetter reads keys from SSM when PARAM_PREFIX is set and from the environment otherwise.
func newGetter(ctx context.Context, cfg *config.Config) (paramstore.Getter, error) {
	if !cfg.UseParamStore() {
		return paramstore.Env{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return paramstore.New(awsssm.NewFromConfig(awsCfg))
}

func mustToken(g paramstore.Getter, cfg *config.Config, envName, paramKey string) *paramstore.Token {
	name := envName
	if cfg.UseParamStore() {
		name = paramstore.ParameterName(cfg.ParamPrefix, paramKey)
	}
	t, err := paramstore.NewToken(g, name)
	if err != nil {
		slog.Error("failed to create token", "name", name, "err", err)
		os.Exit(1)
	}
	return t
}

func serve(addr string, h http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("gateway listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	slog.Info("shutting down gateway")
	return srv.Shutdown(shutdownCtx)
}
