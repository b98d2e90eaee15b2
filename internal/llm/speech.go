package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/config"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// defaultMaxSpeechInput is the audio/speech input limit in characters.
const defaultMaxSpeechInput = 4096

// maxErrorBodyBytes bounds how much of a failed TTS response is kept for the error message.
const maxErrorBodyBytes = 2048

type speechRequest struct {
	Model          string  `json:"model"`
	Input          string  `json:"input"`
	Voice          string  `json:"voice"`
	Speed          float64 `json:"speed"`
	ResponseFormat string  `json:"response_format"`
}

// SpeechClient calls the OpenAI audio/speech endpoint.
type SpeechClient struct {
	apiKey     string
	baseURL    string
	model      string
	voice      string
	speed      float64
	maxInput   int
	httpClient *http.Client
}

// NewSpeechClient creates a speech client from cfg.
func NewSpeechClient(cfg *config.Config) *SpeechClient {
	baseURL := cfg.OpenAIBaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	maxInput := cfg.TTSMaxInputChars
	if maxInput <= 0 {
		maxInput = defaultMaxSpeechInput
	}

	log.Info().
		Str("model", cfg.TTSModel).
		Str("voice", cfg.TTSVoice).
		Float64("speed", cfg.TTSSpeed).
		Msg("Speech client initialized")

	return &SpeechClient{
		apiKey:     cfg.OpenAIAPIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      cfg.TTSModel,
		voice:      cfg.TTSVoice,
		speed:      cfg.TTSSpeed,
		maxInput:   maxInput,
		httpClient: &http.Client{Timeout: cfg.TTSTimeout},
	}
}

// Synthesize renders text as MP3 and returns the audio as a stream.
// Text over the input limit is sent in sentence-aligned chunks and the MP3
// responses are joined in order. The caller must close the stream.
func (c *SpeechClient) Synthesize(ctx context.Context, text string) (io.ReadCloser, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("speech synthesis requires OPENAI_API_KEY")
	}

	chunks := speechChunks(text, c.maxInput)
	switch len(chunks) {
	case 0:
		return nil, fmt.Errorf("speech synthesis requires non-empty text")
	case 1:
		return c.synthesizeChunk(ctx, chunks[0])
	}

	log.Info().
		Int("chunks", len(chunks)).
		Int("text_length", len(text)).
		Msg("Splitting narration for speech synthesis")

	var buf bytes.Buffer
	for i, chunk := range chunks {
		body, err := c.synthesizeChunk(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		_, err = io.Copy(&buf, body)
		body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read speech chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}
	return io.NopCloser(&buf), nil
}

func (c *SpeechClient) synthesizeChunk(ctx context.Context, text string) (io.ReadCloser, error) {
	payload, err := json.Marshal(speechRequest{
		Model:          c.model,
		Input:          text,
		Voice:          c.voice,
		Speed:          c.speed,
		ResponseFormat: "mp3",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/audio/speech", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	log.Debug().
		Str("model", c.model).
		Str("voice", c.voice).
		Int("text_length", len(text)).
		Msg("Calling speech synthesis")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return nil, fmt.Errorf("speech request returned status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	return res.Body, nil
}
