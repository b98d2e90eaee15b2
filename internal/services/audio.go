package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/models"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

// AudioService renders a story as narration audio and stores it by story id.
type AudioService struct {
	speech synthesizer
	store  storage.AudioStore
}

// NewAudioService creates a new AudioService
func NewAudioService(speech synthesizer, store storage.AudioStore) *AudioService {
	return &AudioService{
		speech: speech,
		store:  store,
	}
}

// AudioURL returns the public path of the audio for a story id.
func AudioURL(id string) string {
	return "/audio/" + id + storage.AudioExt
}

// NarrationScript joins the title and every chapter, in order, into the text read aloud.
func NarrationScript(st *models.Story) string {
	var b strings.Builder
	b.WriteString(st.Title)
	b.WriteString("。\n\n")
	for _, ch := range st.Chapters {
		b.WriteString(ch.Name)
		b.WriteString("。")
		b.WriteString(ch.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// Synthesize narrates st and stores the audio under id, replacing any earlier
// audio for that id. It returns the audio URL, or false on any failure;
// errors are logged and never returned.
func (a *AudioService) Synthesize(ctx context.Context, st *models.Story, id string) (string, bool) {
	if !storage.ValidID(id) {
		log.Error().Str("story_id", id).Msg("Audio generation skipped: invalid story id")
		return "", false
	}

	script := NarrationScript(st)
	log.Debug().
		Str("story_id", id).
		Int("text_length", len([]rune(script))).
		Msg("Generating audio for story")

	audio, err := a.speech.Synthesize(ctx, script)
	if err != nil {
		log.Error().Err(err).Str("story_id", id).Msg("Audio generation error")
		return "", false
	}
	defer audio.Close()

	if err := a.store.Save(ctx, id, audio); err != nil {
		log.Error().Err(err).Str("story_id", id).Msg("Failed to store audio")
		return "", false
	}

	url := AudioURL(id)
	log.Info().Str("story_id", id).Str("audio_url", url).Msg("Audio narration ready")
	return url, true
}
