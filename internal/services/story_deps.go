package services

import (
	"context"
	"io"

	"github.com/snappy-loop/soundtrip/internal/llm"
)

// completer is the text-completion call used by StoryService (llm.Client).
type completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (string, error)
}

// synthesizer is the speech call used by AudioService (llm.SpeechClient).
// The returned stream must be closed by the caller.
type synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, error)
}
