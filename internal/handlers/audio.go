package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

// GetAudio handles GET /audio/{story_id}.mp3
func (h *Handler) GetAudio(w http.ResponseWriter, r *http.Request) {
	storyID := mux.Vars(r)["story_id"]

	audio, err := h.store.Open(r.Context(), storyID)
	if err != nil {
		// A missing file is a normal answer for the client, not a failed request.
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusOK, "Audio file not found")
			return
		}
		log.Error().Err(err).Str("story_id", storyID).Msg("Failed to open audio")
		writeJSONError(w, http.StatusInternalServerError, "failed to read audio")
		return
	}
	defer audio.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s%s", storyID, storage.AudioExt))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, audio); err != nil {
		log.Warn().Err(err).Str("story_id", storyID).Msg("Audio stream interrupted")
	}
}
