package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/config"
	"github.com/snappy-loop/soundtrip/internal/llm"
	"github.com/snappy-loop/soundtrip/internal/models"
	"github.com/snappy-loop/soundtrip/internal/story"
	"golang.org/x/sync/errgroup"
)

// maxTitleRunes is the longest title kept from the model.
const maxTitleRunes = 20

// AffiliateThemes are attached to every model-written story.
var AffiliateThemes = []string{"旅行ガイド", "宿泊施設", "グルメ体験"}

// StoryService generates travel stories with the completion model and falls
// back to the template generator whenever the model path fails.
type StoryService struct {
	completer            completer
	audio                *AudioService
	narrativeTemperature float64
	lyricsTemperature    float64
	now                  func() time.Time
}

// NewStoryService creates a new StoryService
func NewStoryService(completer completer, audio *AudioService, cfg *config.Config) *StoryService {
	return &StoryService{
		completer:            completer,
		audio:                audio,
		narrativeTemperature: cfg.NarrativeTemperature,
		lyricsTemperature:    cfg.LyricsTemperature,
		now:                  time.Now,
	}
}

// NewStoryID returns an id of the form story_<unix seconds>_<8 hex chars>.
// The random suffix keeps ids generated in the same second apart.
func NewStoryID(now time.Time) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("story_%d_%s", now.Unix(), token)
}

// Create generates a story, assigns it an id and attaches narration audio.
// The story is returned even when audio synthesis fails; AudioURL is then nil.
func (s *StoryService) Create(ctx context.Context, req models.StoryRequest) *models.Story {
	st := s.Generate(ctx, req)
	st.ID = NewStoryID(s.now())

	log.Info().Str("story_id", st.ID).Msg("Generating audio narration")
	if url, ok := s.audio.Synthesize(ctx, st, st.ID); ok {
		st.AudioURL = &url
	}

	return st
}

// Generate returns the story text for req without id or audio. Any failure on
// the model path discards the attempt and returns story.Fallback(req).
func (s *StoryService) Generate(ctx context.Context, req models.StoryRequest) *models.Story {
	log.Info().
		Str("city", req.Destination.City).
		Str("date", req.Destination.Date).
		Str("time_of_day", req.Destination.TimeOfDay).
		Bool("has_comment", req.Comment != "").
		Msg("Starting story generation")

	st, err := s.draft(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("city", req.Destination.City).Msg("Story generation failed, using fallback story")
		return story.Fallback(req)
	}

	log.Info().Str("title", st.Title).Msg("Story generation complete")
	return st
}

// draft runs the narrative and lyrics completions. They do not depend on each
// other, so both run at once; the first failure cancels the other.
func (s *StoryService) draft(ctx context.Context, req models.StoryRequest) (*models.Story, error) {
	prompts := story.BuildPrompts(req)

	var narrativeRaw, lyricsRaw string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		out, err := s.completer.Complete(gctx, llm.CompletionRequest{
			Caller:      "GenerateNarrative",
			System:      story.NarrativeSystemPrompt,
			Prompt:      prompts.Narrative,
			Temperature: s.narrativeTemperature,
			JSONMode:    true,
		})
		narrativeRaw = out
		return err
	})
	g.Go(func() error {
		out, err := s.completer.Complete(gctx, llm.CompletionRequest{
			Caller:      "GenerateLyrics",
			System:      story.LyricsSystemPrompt,
			Prompt:      prompts.Lyrics,
			Temperature: s.lyricsTemperature,
		})
		lyricsRaw = out
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	title, chapters, err := parseNarrative(narrativeRaw)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = story.Title(req.Destination)
	}

	lyrics := strings.TrimSpace(lyricsRaw)
	if lyrics == "" {
		return nil, fmt.Errorf("lyrics completion returned empty text")
	}

	themes := make([]string, len(AffiliateThemes))
	copy(themes, AffiliateThemes)

	return &models.Story{
		Title:            title,
		Chapters:         chapters,
		SunoLyrics:       lyrics,
		AffiliateContext: models.AffiliateContext{Themes: themes},
	}, nil
}

type narrativeResponse struct {
	Title    string           `json:"title"`
	Chapters []models.Chapter `json:"chapters"`
}

// parseNarrative decodes the model's JSON story and checks it has the five
// chapters in order, each with text. The title may be empty.
func parseNarrative(raw string) (string, []models.Chapter, error) {
	var resp narrativeResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &resp); err != nil {
		return "", nil, fmt.Errorf("invalid narrative JSON: %w", err)
	}

	if len(resp.Chapters) != len(models.ChapterNames) {
		return "", nil, fmt.Errorf("narrative has %d chapters, want %d", len(resp.Chapters), len(models.ChapterNames))
	}
	chapters := make([]models.Chapter, len(resp.Chapters))
	for i, ch := range resp.Chapters {
		name := strings.TrimSpace(ch.Name)
		if name != models.ChapterNames[i] {
			return "", nil, fmt.Errorf("chapter %d is %q, want %q", i+1, name, models.ChapterNames[i])
		}
		text := strings.TrimSpace(ch.Text)
		if text == "" {
			return "", nil, fmt.Errorf("chapter %q has no text", name)
		}
		chapters[i] = models.Chapter{Name: name, Text: text}
	}

	return truncateRunes(strings.TrimSpace(resp.Title), maxTitleRunes), chapters, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
