package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/snappy-loop/soundtrip/internal/models"
	"github.com/snappy-loop/soundtrip/internal/storage"
)

// fakeStoryService returns a canned story and records the request.
type fakeStoryService struct {
	got   *models.StoryRequest
	story *models.Story
}

func (f *fakeStoryService) Create(ctx context.Context, req models.StoryRequest) *models.Story {
	f.got = &req
	return f.story
}

// fakeAudioService answers Synthesize with a fixed outcome.
type fakeAudioService struct {
	ok      bool
	gotID   string
	gotStry *models.Story
}

func (f *fakeAudioService) Synthesize(ctx context.Context, st *models.Story, id string) (string, bool) {
	f.gotID = id
	f.gotStry = st
	if !f.ok {
		return "", false
	}
	return "/audio/" + id + ".mp3", true
}

// memStore is an in-memory storage.AudioStore.
type memStore struct {
	files   map[string][]byte
	openErr error
}

func (m *memStore) Save(ctx context.Context, id string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.files[id] = data
	return nil
}

func (m *memStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	data, ok := m.files[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

const kyotoBody = `{
  "destination": {"city": "Kyoto", "date": "2024-10-01", "timeOfDay": "evening"},
  "userProfile": {"ageRange": "30s", "companions": "solo", "mood": ["nostalgic"], "budget": "moderate"},
  "audioStyle": {"voice": "warm", "bgm": "ambient", "sfx": []},
  "comment": "missing my hometown"
}`

func newTestRouter(stories *fakeStoryService, audio *fakeAudioService, store *memStore) *mux.Router {
	if stories == nil {
		stories = &fakeStoryService{}
	}
	if audio == nil {
		audio = &fakeAudioService{}
	}
	if store == nil {
		store = &memStore{files: map[string][]byte{}}
	}
	return NewRouter(NewHandler(stories, audio, store), "*")
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(newTestRouter(nil, nil, nil), http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.TS.IsZero() {
		t.Errorf("unexpected health response %+v", resp)
	}
}

// TestCreateStory_Success asserts the story is returned with a null audioUrl when audio is missing.
func TestCreateStory_Success(t *testing.T) {
	stories := &fakeStoryService{story: &models.Story{
		ID:       "story_1",
		Title:    "Kyoto、2024-10-01のeveningに",
		Chapters: []models.Chapter{{Name: models.ChapterIntro, Text: "x"}},
	}}
	rec := serve(newTestRouter(stories, nil, nil), http.MethodPost, "/v1/stories", kyotoBody)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stories.got == nil || stories.got.Destination.City != "Kyoto" || stories.got.Comment != "missing my hometown" {
		t.Errorf("request not passed through: %+v", stories.got)
	}
	if !strings.Contains(rec.Body.String(), `"audioUrl":null`) {
		t.Errorf("expected null audioUrl: %s", rec.Body.String())
	}
}

func TestCreateStory_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{invalid json`, http.StatusBadRequest},
		{"wrong type", `{"destination": {"city": 42}}`, http.StatusBadRequest},
		{"missing city", `{"destination": {"date": "2024-10-01", "timeOfDay": "evening"}}`, http.StatusUnprocessableEntity},
		{"bad date", `{"destination": {"city": "Kyoto", "date": "10/01/2024", "timeOfDay": "evening"}}`, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stories := &fakeStoryService{}
			rec := serve(newTestRouter(stories, nil, nil), http.MethodPost, "/v1/stories", tt.body)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
			if stories.got != nil {
				t.Error("story service should not be called for a rejected body")
			}
		})
	}
}

func TestCreateStory_OnlyCityAndDateRequired(t *testing.T) {
	stories := &fakeStoryService{story: &models.Story{Title: "Kyoto、2024-10-01のに"}}
	rec := serve(newTestRouter(stories, nil, nil), http.MethodPost, "/v1/stories",
		`{"destination": {"city": "Kyoto", "date": "2024-10-01", "timeOfDay": ""}}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stories.got == nil || stories.got.Destination.TimeOfDay != "" {
		t.Errorf("request not passed through: %+v", stories.got)
	}
}

func TestCreateStory_ValidationDetailsUseJSONNames(t *testing.T) {
	rec := serve(newTestRouter(nil, nil, nil), http.MethodPost, "/v1/stories", `{"destination": {"date": "2024-10-01", "timeOfDay": "evening"}}`)

	if !strings.Contains(rec.Body.String(), "destination.city") {
		t.Errorf("details should name destination.city: %s", rec.Body.String())
	}
}

func TestSynthesizeStoryAudio(t *testing.T) {
	body := `{"title": "京都の夜", "chapters": [{"name": "導入", "text": "はじまり"}]}`

	t.Run("success", func(t *testing.T) {
		audio := &fakeAudioService{ok: true}
		rec := serve(newTestRouter(nil, audio, nil), http.MethodPost, "/v1/stories/story_7/audio", body)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp models.AudioResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Status != models.AudioStatusSuccess || resp.AudioURL == nil || *resp.AudioURL != "/audio/story_7.mp3" {
			t.Errorf("unexpected response %+v", resp)
		}
		if audio.gotID != "story_7" || audio.gotStry.Title != "京都の夜" {
			t.Errorf("audio service got id=%q story=%+v", audio.gotID, audio.gotStry)
		}
	})

	t.Run("synthesis error", func(t *testing.T) {
		rec := serve(newTestRouter(nil, &fakeAudioService{ok: false}, nil), http.MethodPost, "/v1/stories/story_7/audio", body)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), `"audioUrl":null`) || !strings.Contains(rec.Body.String(), `"status":"error"`) {
			t.Errorf("unexpected body %s", rec.Body.String())
		}
	})

	t.Run("untyped body rejected", func(t *testing.T) {
		audio := &fakeAudioService{ok: true}
		rec := serve(newTestRouter(nil, audio, nil), http.MethodPost, "/v1/stories/story_7/audio", `{"foo": "bar"}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
		}
		if audio.gotStry != nil {
			t.Error("audio service should not be called")
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		h := NewHandler(&fakeStoryService{}, &fakeAudioService{ok: true}, &memStore{})
		req := httptest.NewRequest(http.MethodPost, "/v1/stories/x/audio", strings.NewReader(body))
		req = mux.SetURLVars(req, map[string]string{"story_id": "../etc"})
		rec := httptest.NewRecorder()

		h.SynthesizeStoryAudio(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestGetAudio(t *testing.T) {
	store := &memStore{files: map[string][]byte{"story_1": []byte("mp3-bytes")}}
	router := newTestRouter(nil, nil, store)

	rec := serve(router, http.MethodGet, "/audio/story_1.mp3", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "inline; filename=story_1.mp3" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if rec.Body.String() != "mp3-bytes" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestGetAudio_NotFound(t *testing.T) {
	rec := serve(newTestRouter(nil, nil, nil), http.MethodGet, "/audio/story_missing.mp3", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with a not-found payload, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["error"] != "Audio file not found" {
		t.Errorf("unexpected body %v", resp)
	}
}

func TestGetAudio_StoreError(t *testing.T) {
	store := &memStore{files: map[string][]byte{}, openErr: errors.New("io")}
	rec := serve(newTestRouter(nil, nil, store), http.MethodGet, "/audio/story_1.mp3", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for a store failure, got %d", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(newTestRouter(nil, nil, nil), http.MethodOptions, "/v1/stories", "")

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
