package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultURL     = "http://127.0.0.1:9999/chat"
	defaultTimeout = 120 * time.Second
)

var ErrEmptyQuery = errors.New("client: please type a query before asking the agent")

// Request is what the user fills in on the form.
type Request struct {
	SystemPrompt string
	Provider     string
	Model        string
	AllowSearch  bool
	Query        string
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

type chatRequest struct {
	ModelName     string   `json:"model_name"`
	ModelProvider string   `json:"model_provider"`
	SystemPrompt  string   `json:"system_prompt"`
	Messages      []string `json:"messages"`
	AllowSearch   bool     `json:"allow_search"`
}

type chatResponse struct {
	Response string          `json:"response"`
	Error    json.RawMessage `json:"error"`
	Detail   json.RawMessage `json:"detail"`
}

// APIError is a gateway-reported failure. A 200 reply carrying an "error" key is also an APIError.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("client: gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("client: gateway returned status %d: %s", e.StatusCode, e.Detail)
}

// Client posts chat requests to the gateway.
type Client struct {
	url        string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(url string, opts ...Option) (*Client, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, errors.New("client: gateway url is required")
	}
	c := &Client{url: url, httpClient: &http.Client{Timeout: defaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return c, nil
}

func (c *Client) URL() string {
	return c.url
}

// Ask sends req as a single-message conversation and returns the agent's answer.
// Blank queries are rejected without a network call.
func (c *Client) Ask(ctx context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		ModelName:     req.Model,
		ModelProvider: req.Provider,
		SystemPrompt:  req.SystemPrompt,
		Messages:      []string{req.Query},
		AllowSearch:   req.AllowSearch,
	})
	if err != nil {
		return "", fmt.Errorf("client: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("client: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("client: request failed: %w", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("client: read response: %w", err)
	}

	var out chatResponse
	decodeErr := json.Unmarshal(raw, &out)

	if res.StatusCode != http.StatusOK {
		detail := strings.TrimSpace(string(raw))
		if decodeErr == nil && len(out.Detail) > 0 {
			detail = rawText(out.Detail)
		}
		return "", &APIError{StatusCode: res.StatusCode, Detail: detail}
	}
	if decodeErr != nil {
		return "", fmt.Errorf("client: decode response: %w", decodeErr)
	}
	if len(out.Error) > 0 && string(out.Error) != "null" {
		return "", &APIError{StatusCode: res.StatusCode, Detail: rawText(out.Error)}
	}
	return out.Response, nil
}

// rawText unquotes JSON strings and keeps other values (objects, lists) as JSON text.
func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
