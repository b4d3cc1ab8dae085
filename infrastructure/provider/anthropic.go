package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicDefaultModel   = "claude-sonnet-4-20250514"
	anthropicAPIVersion     = "2023-06-01"
	anthropicDefaultTokens  = 4096
)

// AnthropicProvider generates price-analysis text through the Anthropic
// Messages API. Anthropic offers no embedding models, so this provider pairs
// with a separate Embedder.
type AnthropicProvider struct {
	apiKey     string
	baseURL    string
	model      string
	backoff    backoffPolicy
	httpClient *http.Client
}

// AnthropicOption is a functional option for AnthropicProvider.
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicModel sets the Claude model.
func WithAnthropicModel(model string) AnthropicOption {
	return func(p *AnthropicProvider) { p.model = model }
}

// WithAnthropicMaxRetries sets the maximum retry count.
func WithAnthropicMaxRetries(n int) AnthropicOption {
	return func(p *AnthropicProvider) { p.backoff.maxRetries = n }
}

// WithAnthropicInitialDelay sets the initial retry delay.
func WithAnthropicInitialDelay(d time.Duration) AnthropicOption {
	return func(p *AnthropicProvider) { p.backoff.initialDelay = d }
}

// WithAnthropicBackoffFactor sets the backoff multiplier.
func WithAnthropicBackoffFactor(f float64) AnthropicOption {
	return func(p *AnthropicProvider) { p.backoff.factor = f }
}

// WithAnthropicTimeout sets the HTTP timeout.
func WithAnthropicTimeout(d time.Duration) AnthropicOption {
	return func(p *AnthropicProvider) { p.httpClient.Timeout = d }
}

// WithAnthropicBaseURL sets the base URL (for testing or proxies).
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(p *AnthropicProvider) { p.baseURL = url }
}

// NewAnthropicProvider creates a new Anthropic Claude provider.
func NewAnthropicProvider(apiKey string, opts ...AnthropicOption) *AnthropicProvider {
	p := &AnthropicProvider{
		apiKey:  apiKey,
		baseURL: anthropicDefaultBaseURL,
		model:   anthropicDefaultModel,
		backoff: backoffPolicy{
			maxRetries:   5,
			initialDelay: 2 * time.Second,
			factor:       2.0,
		},
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	Timeout       time.Duration
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64

	// CacheDir enables on-disk response caching when non-empty.
	CacheDir string
}

// NewAnthropicProviderFromConfig creates a provider from configuration,
// filling unset fields with defaults.
func NewAnthropicProviderFromConfig(cfg AnthropicConfig) *AnthropicProvider {
	opts := []AnthropicOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, WithAnthropicBaseURL(cfg.BaseURL))
	}
	if cfg.Model != "" {
		opts = append(opts, WithAnthropicModel(cfg.Model))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithAnthropicTimeout(cfg.Timeout))
	}
	if cfg.MaxRetries > 0 {
		opts = append(opts, WithAnthropicMaxRetries(cfg.MaxRetries))
	}
	if cfg.InitialDelay > 0 {
		opts = append(opts, WithAnthropicInitialDelay(cfg.InitialDelay))
	}
	if cfg.BackoffFactor > 0 {
		opts = append(opts, WithAnthropicBackoffFactor(cfg.BackoffFactor))
	}

	p := NewAnthropicProvider(cfg.APIKey, opts...)
	if cfg.CacheDir != "" {
		p.httpClient.Transport = NewCachingTransport(cfg.CacheDir, nil)
	}
	return p
}

// SupportsTextGeneration returns true.
func (p *AnthropicProvider) SupportsTextGeneration() bool { return true }

// SupportsEmbedding returns false.
func (p *AnthropicProvider) SupportsEmbedding() bool { return false }

// Close is a no-op for the Anthropic provider.
func (p *AnthropicProvider) Close() error { return nil }

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
	Temperature *float64           `json:"temperature,omitempty"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	ID         string           `json:"id"`
	Type       string           `json:"type"`
	Role       string           `json:"role"`
	Content    []anthropicBlock `json:"content"`
	Model      string           `json:"model"`
	StopReason string           `json:"stop_reason"`
	Usage      anthropicUsage   `json:"usage"`
}

type anthropicBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ChatCompletion generates a completion using Claude. System messages are
// lifted into the Messages API system field; the remaining messages keep
// their order.
func (p *AnthropicProvider) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (ChatCompletionResponse, error) {
	messages := req.Messages()
	if len(messages) == 0 {
		return ChatCompletionResponse{}, NewProviderError("chat_completion", 0, "no messages provided", nil)
	}

	apiReq := anthropicRequest{
		Model:     p.model,
		MaxTokens: anthropicDefaultTokens,
	}
	if req.MaxTokens() > 0 {
		apiReq.MaxTokens = req.MaxTokens()
	}
	if t := req.Temperature(); t > 0 {
		apiReq.Temperature = &t
	}

	for _, m := range messages {
		if m.Role() == "system" {
			apiReq.System = m.Content()
			continue
		}
		apiReq.Messages = append(apiReq.Messages, anthropicMessage{
			Role:    m.Role(),
			Content: m.Content(),
		})
	}

	var resp anthropicResponse
	err := p.backoff.retry(ctx, anthropicRetryable, func() error {
		var callErr error
		resp, callErr = p.doRequest(ctx, apiReq)
		return callErr
	})
	if err != nil {
		return ChatCompletionResponse{}, err
	}

	var text bytes.Buffer
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	usage := NewUsage(
		resp.Usage.InputTokens,
		resp.Usage.OutputTokens,
		resp.Usage.InputTokens+resp.Usage.OutputTokens,
	)

	return NewChatCompletionResponse(text.String(), resp.StopReason, usage), nil
}

func (p *AnthropicProvider) doRequest(ctx context.Context, req anthropicRequest) (anthropicResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return anthropicResponse{}, NewProviderError("chat_completion", 0, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return anthropicResponse{}, NewProviderError("chat_completion", 0, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return anthropicResponse{}, NewProviderError("chat_completion", 0, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return anthropicResponse{}, NewProviderError("chat_completion", resp.StatusCode, "failed to read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr anthropicError
		if err := json.Unmarshal(respBody, &apiErr); err == nil && apiErr.Message != "" {
			return anthropicResponse{}, NewProviderError("chat_completion", resp.StatusCode, apiErr.Message, nil)
		}
		return anthropicResponse{}, NewProviderError("chat_completion", resp.StatusCode, string(respBody), nil)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return anthropicResponse{}, NewProviderError("chat_completion", 0, "failed to unmarshal response", err)
	}

	return apiResp, nil
}

func anthropicRetryable(err error) bool {
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		return false
	}
	switch provErr.StatusCode() {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// Ensure AnthropicProvider implements the interfaces.
var (
	_ Provider      = (*AnthropicProvider)(nil)
	_ TextGenerator = (*AnthropicProvider)(nil)
)
