package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"agent-gateway/internal/usecase"
)

const (
	ChatPath          = "/chat"
	correlationHeader = "X-Correlation-Id"
	maxBodyBytes      = 1 << 20
)

// ChatUseCase is the gateway operation served by the handler.
type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

// chatRequest mirrors the public body. Pointers distinguish absent fields from zero values.
type chatRequest struct {
	ModelName     *string   `json:"model_name"`
	ModelProvider *string   `json:"model_provider"`
	SystemPrompt  *string   `json:"system_prompt"`
	Messages      *[]string `json:"messages"`
	AllowSearch   *bool     `json:"allow_search"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Handler serves POST /chat as an API Gateway proxy integration and as a plain
// net/http handler for local runs.
type Handler struct {
	uc     ChatUseCase
	logger *slog.Logger
}

func NewHandler(uc ChatUseCase, logger *slog.Logger) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{uc: uc, logger: logger}, nil
}

// Handle is the Lambda entrypoint.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(event.Headers)
	log := h.logger.With("correlation_id", corrID)

	if strings.TrimRight(event.Path, "/") != ChatPath {
		return respond(corrID, http.StatusNotFound, errorResponse{Detail: "Not Found"}), nil
	}
	if event.HTTPMethod != http.MethodPost {
		resp := respond(corrID, http.StatusMethodNotAllowed, errorResponse{Detail: "Method Not Allowed"})
		resp.Headers["Allow"] = http.MethodPost
		return resp, nil
	}

	var req chatRequest
	if err := json.Unmarshal([]byte(event.Body), &req); err != nil {
		log.Info("rejected chat request", "status", http.StatusBadRequest, "err", err)
		return respond(corrID, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"}), nil
	}
	if field := missingField(req); field != "" {
		log.Info("rejected chat request", "status", http.StatusUnprocessableEntity, "missing", field)
		return respond(corrID, http.StatusUnprocessableEntity, errorResponse{Detail: "field required: " + field}), nil
	}

	in := usecase.ChatInput{
		ModelName:     *req.ModelName,
		ModelProvider: *req.ModelProvider,
		SystemPrompt:  *req.SystemPrompt,
		Messages:      *req.Messages,
		AllowSearch:   *req.AllowSearch,
	}
	log = log.With("provider", in.ModelProvider, "model", in.ModelName, "allow_search", in.AllowSearch)

	out, err := h.uc.Chat(ctx, in)
	if err != nil {
		status, detail := mapError(err)
		if status >= http.StatusInternalServerError {
			log.Error("chat request failed", "status", status, "err", err)
		} else {
			log.Info("rejected chat request", "status", status, "detail", detail)
		}
		return respond(corrID, status, errorResponse{Detail: detail}), nil
	}

	log.Info("chat request served", "status", http.StatusOK)
	return respond(corrID, http.StatusOK, chatResponse{Response: out.Response}), nil
}

// ServeHTTP adapts a net/http request to Handle.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	headers := make(map[string]string, len(r.Header))
	for k := range r.Header {
		headers[k] = r.Header.Get(k)
	}

	resp, err := h.Handle(r.Context(), events.APIGatewayProxyRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    headers,
		Body:       string(body),
	})
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	_, _ = io.WriteString(w, resp.Body)
}

func missingField(req chatRequest) string {
	switch {
	case req.ModelName == nil:
		return "model_name"
	case req.ModelProvider == nil:
		return "model_provider"
	case req.SystemPrompt == nil:
		return "system_prompt"
	case req.Messages == nil:
		return "messages"
	case req.AllowSearch == nil:
		return "allow_search"
	}
	return ""
}

func mapError(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, "Agent error: " + err.Error()
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidProvider, usecase.ErrorInvalidModel, usecase.ErrorInvalidInput:
		return http.StatusBadRequest, ucErr.Detail
	default:
		return http.StatusInternalServerError, ucErr.Detail
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func respond(corrID string, status int, v any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"detail":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}
