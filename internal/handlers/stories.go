package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/models"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

// CreateStory handles POST /v1/stories
func (h *Handler) CreateStory(w http.ResponseWriter, r *http.Request) {
	var req models.StoryRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// Generation and the audio write run to completion even if the client goes away.
	ctx := context.WithoutCancel(r.Context())
	st := h.stories.Create(ctx, req)

	writeJSON(w, http.StatusOK, st)
}

// SynthesizeStoryAudio handles POST /v1/stories/{story_id}/audio
func (h *Handler) SynthesizeStoryAudio(w http.ResponseWriter, r *http.Request) {
	storyID := mux.Vars(r)["story_id"]
	if !storage.ValidID(storyID) {
		writeJSONError(w, http.StatusBadRequest, "invalid story id")
		return
	}

	var st models.Story
	if !h.decodeAndValidate(w, r, &st) {
		return
	}

	ctx := context.WithoutCancel(r.Context())
	url, ok := h.audio.Synthesize(ctx, &st, storyID)
	if !ok {
		log.Warn().Str("story_id", storyID).Msg("Audio re-synthesis failed")
		writeJSON(w, http.StatusOK, models.AudioResponse{Status: models.AudioStatusError})
		return
	}

	writeJSON(w, http.StatusOK, models.AudioResponse{AudioURL: &url, Status: models.AudioStatusSuccess})
}
