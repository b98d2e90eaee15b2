package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/snappy-loop/soundtrip/internal/models"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// storyService is the story generation flow used by the handlers (services.StoryService).
type storyService interface {
	Create(ctx context.Context, req models.StoryRequest) *models.Story
}

// audioService is the narration flow used by the handlers (services.AudioService).
type audioService interface {
	Synthesize(ctx context.Context, st *models.Story, id string) (string, bool)
}

// Handler contains all HTTP handlers
type Handler struct {
	stories  storyService
	audio    audioService
	store    storage.AudioStore
	validate *validator.Validate
}

// NewHandler creates a new handler
func NewHandler(stories storyService, audio audioService, store storage.AudioStore) *Handler {
	v := validator.New()
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Handler{
		stories:  stories,
		audio:    audio,
		store:    store,
		validate: v,
	}
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{OK: true, TS: time.Now().UTC()})
}

// decodeAndValidate reads a JSON body into dst and checks its validate tags.
// On failure it writes the error response and returns false.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error().Err(err).Msg("Request validation failed unexpectedly")
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return false
		}
		details := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, fmt.Sprintf("%s: failed on %s", fe.Namespace(), fe.Tag()))
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "validation failed",
			"details": details,
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
