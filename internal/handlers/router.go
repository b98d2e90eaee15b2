package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// NewRouter registers every route of the API on a new mux router.
func NewRouter(h *Handler, allowedOrigin string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/audio/{story_id}.mp3", h.GetAudio).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/v1").Subrouter()
	api.HandleFunc("/stories", h.CreateStory).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/stories/{story_id}/audio", h.SynthesizeStoryAudio).Methods(http.MethodPost, http.MethodOptions)

	r.Use(requestLogger, mux.CORSMethodMiddleware(r), corsMiddleware(allowedOrigin))
	return r
}

// corsMiddleware allows cross-origin calls from allowedOrigin and answers preflight requests.
func corsMiddleware(allowedOrigin string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if allowedOrigin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(started)).
			Msg("HTTP request")
	})
}
