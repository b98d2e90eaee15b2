package models

import "time"

// Chapter names, in narrative order. Every Story carries exactly these five.
const (
	ChapterIntro       = "導入"
	ChapterExploration = "街歩き"
	ChapterEncounter   = "出会い"
	ChapterExperience  = "体験"
	ChapterAfterglow   = "余韻"
)

// ChapterNames lists the chapter labels in the order they appear in a Story.
var ChapterNames = []string{
	ChapterIntro,
	ChapterExploration,
	ChapterEncounter,
	ChapterExperience,
	ChapterAfterglow,
}

// Lyrics section markers, in song order.
var LyricsSections = []string{"[Verse 1]", "[Chorus]", "[Verse 2]", "[Bridge]", "[Chorus]"}

// Destination describes where and when the trip happens
type Destination struct {
	City      string `json:"city" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD
	TimeOfDay string `json:"timeOfDay"`
}

// UserProfile describes the traveler
type UserProfile struct {
	AgeRange   string   `json:"ageRange"`
	Companions string   `json:"companions"`
	Mood       []string `json:"mood"`
	Budget     string   `json:"budget"`
}

// AudioStyle is the requested narration style
type AudioStyle struct {
	Voice string   `json:"voice"`
	BGM   string   `json:"bgm"`
	SFX   []string `json:"sfx"`
}

// StoryRequest is the body of POST /v1/stories
type StoryRequest struct {
	Destination Destination `json:"destination" validate:"required"`
	UserProfile UserProfile `json:"userProfile"`
	AudioStyle  AudioStyle  `json:"audioStyle"`
	Comment     string      `json:"comment"`
}

// Chapter is one narrative beat of a Story
type Chapter struct {
	Name string `json:"name" validate:"required"`
	Text string `json:"text" validate:"required"`
}

// AffiliateContext carries monetization tags
type AffiliateContext struct {
	Themes []string `json:"themes"`
}

// Story is the generated audio travel story.
// AudioURL stays nil until narration audio has been stored.
type Story struct {
	ID               string           `json:"id,omitempty"`
	Title            string           `json:"title" validate:"required"`
	Chapters         []Chapter        `json:"chapters" validate:"required,min=1,dive"`
	SunoLyrics       string           `json:"sunoLyrics"`
	AffiliateContext AffiliateContext `json:"affiliateContext"`
	AudioURL         *string          `json:"audioUrl"`
}

// AudioResponse is returned by POST /v1/stories/{story_id}/audio
type AudioResponse struct {
	AudioURL *string `json:"audioUrl"`
	Status   string  `json:"status"` // success, error
}

// Audio synthesis statuses
const (
	AudioStatusSuccess = "success"
	AudioStatusError   = "error"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	OK bool      `json:"ok"`
	TS time.Time `json:"ts"`
}
