package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxResponseLogBytes is the max length of a model response to log in full (to avoid huge logs).
const maxResponseLogBytes = 8192

// Supported completion providers
const (
	ProviderOpenAI   = "openai"
	ProviderGoogleAI = "googleai"
)

// httpClientForEndpoint returns an http.Client that rewrites request URLs to the given base endpoint (e.g. http://host.docker.internal:31300/gemini).
func httpClientForEndpoint(baseEndpoint string) *http.Client {
	base, err := url.Parse(baseEndpoint)
	if err != nil {
		log.Warn().Err(err).Str("endpoint", baseEndpoint).Msg("Invalid GEMINI_API_ENDPOINT, using default")
		return nil
	}
	base.Path = strings.TrimSuffix(base.Path, "/")
	return &http.Client{
		Transport: &endpointRoundTripper{base: base, next: http.DefaultTransport},
	}
}

// endpointRoundTripper rewrites request URLs to a custom base (scheme, host, path prefix).
type endpointRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

func (e *endpointRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.URL.Scheme = e.base.Scheme
	req2.URL.Host = e.base.Host
	req2.URL.Path = path.Join(e.base.Path, strings.TrimPrefix(req.URL.Path, "/"))
	if req.URL.RawQuery != "" {
		req2.URL.RawQuery = req.URL.RawQuery
	}
	return e.next.RoundTrip(req2)
}

// logResponse logs model response text, truncating if over maxResponseLogBytes.
func logResponse(caller, raw string) {
	if len(raw) <= maxResponseLogBytes {
		log.Debug().Str("caller", caller).Str("llm_response", raw).Msg("LLM response")
		return
	}
	log.Debug().
		Str("caller", caller).
		Str("llm_response", raw[:maxResponseLogBytes]+"... [truncated]").
		Int("llm_response_len", len(raw)).
		Msg("LLM response")
}

// CompletionRequest is a single system + user prompt completion.
type CompletionRequest struct {
	Caller      string // for logs
	System      string
	Prompt      string
	Temperature float64
	JSONMode    bool
}

// Client wraps a langchaingo chat model with a fixed per-call timeout.
type Client struct {
	provider string
	model    string
	llm      llms.Model
	timeout  time.Duration
}

// NewClient creates a completion client for cfg.LLMProvider.
// If the provider cannot be initialized (e.g. missing API key) the client is
// still returned; every Complete call then fails and callers use their fallback.
func NewClient(cfg *config.Config) *Client {
	var (
		model string
		llm   llms.Model
		err   error
	)

	switch cfg.LLMProvider {
	case ProviderGoogleAI:
		model = cfg.GeminiModel
		opts := []googleai.Option{googleai.WithAPIKey(cfg.GeminiAPIKey), googleai.WithDefaultModel(model)}
		if cfg.GeminiAPIEndpoint != "" {
			if httpClient := httpClientForEndpoint(cfg.GeminiAPIEndpoint); httpClient != nil {
				opts = append(opts, googleai.WithHTTPClient(httpClient))
			}
		}
		var g *googleai.GoogleAI
		g, err = googleai.New(context.Background(), opts...)
		if err == nil {
			llm = g
		}
	default:
		model = cfg.OpenAIModel
		opts := []openai.Option{openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(model)}
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
		}
		var o *openai.LLM
		o, err = openai.New(opts...)
		if err == nil {
			llm = o
		}
	}
	if err != nil {
		log.Error().Err(err).Str("provider", cfg.LLMProvider).Str("model", model).
			Msg("Failed to initialize completion model, stories will use the template fallback")
	}

	log.Info().
		Str("provider", cfg.LLMProvider).
		Str("model", model).
		Dur("timeout", cfg.LLMTimeout).
		Bool("ready", llm != nil).
		Msg("LLM client initialized")

	return NewClientWithModel(cfg.LLMProvider, model, llm, cfg.LLMTimeout)
}

// NewClientWithModel creates a client around an already constructed model.
func NewClientWithModel(provider, model string, llm llms.Model, timeout time.Duration) *Client {
	return &Client{
		provider: provider,
		model:    model,
		llm:      llm,
		timeout:  timeout,
	}
}

// Complete runs one completion and returns the text of the first choice.
// The call is bounded by the client timeout; there is no retry.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if c.llm == nil {
		return "", fmt.Errorf("%s model %q is not initialized", c.provider, c.model)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, req.System),
		llms.TextParts(llms.ChatMessageTypeHuman, req.Prompt),
	}
	opts := []llms.CallOption{
		llms.WithTemperature(req.Temperature),
	}
	if req.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}

	log.Debug().
		Str("caller", req.Caller).
		Str("model", c.model).
		Float64("temperature", req.Temperature).
		Bool("json_mode", req.JSONMode).
		Int("prompt_len", len(req.Prompt)).
		Msg("Calling completion model")

	started := time.Now()
	resp, err := c.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return "", fmt.Errorf("%s completion failed: %w", req.Caller, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s completion returned no choices", req.Caller)
	}

	content := resp.Choices[0].Content
	logResponse(req.Caller, content)
	log.Info().
		Str("caller", req.Caller).
		Dur("elapsed", time.Since(started)).
		Int("response_len", len(content)).
		Msg("Completion done")

	return content, nil
}
