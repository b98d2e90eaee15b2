package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration
type Config struct {
	// Server
	HTTPAddr          string
	LogLevel          string
	CORSAllowedOrigin string

	// Text completion
	LLMProvider          string // openai or googleai
	OpenAIAPIKey         string
	OpenAIBaseURL        string // optional, e.g. an OpenAI-compatible proxy
	OpenAIModel          string
	GeminiAPIKey         string
	GeminiAPIEndpoint    string // if set, overrides default Gemini API base URL
	GeminiModel          string
	LLMTimeout           time.Duration
	NarrativeTemperature float64
	LyricsTemperature    float64

	// Speech synthesis (OpenAI audio/speech)
	TTSModel         string
	TTSVoice         string
	TTSSpeed         float64
	TTSTimeout       time.Duration
	TTSMaxInputChars int // longer narration is synthesized in chunks

	// Audio storage
	AudioStore  string // fs or s3
	AudioDir    string
	S3Endpoint  string
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Prefix    string

	// Path-style addressing for MinIO/LocalStack
	S3UsePathStyle bool
}

// Load loads configuration from environment variables.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}

	return &Config{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8000"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigin: getEnv("CORS_ALLOWED_ORIGIN", "*"),

		LLMProvider:          getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:         getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:          getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:         getEnv("GEMINI_API_KEY", ""),
		GeminiAPIEndpoint:    getEnv("GEMINI_API_ENDPOINT", ""),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTimeout:           getEnvDuration("LLM_TIMEOUT", 30*time.Second),
		NarrativeTemperature: getEnvFloat("NARRATIVE_TEMPERATURE", 0.8),
		LyricsTemperature:    getEnvFloat("LYRICS_TEMPERATURE", 0.9),

		TTSModel:         getEnv("TTS_MODEL", "tts-1"),
		TTSVoice:         getEnv("TTS_VOICE", "nova"),
		TTSSpeed:         getEnvFloat("TTS_SPEED", 1.0),
		TTSTimeout:       getEnvDuration("TTS_TIMEOUT", 60*time.Second),
		TTSMaxInputChars: getEnvInt("TTS_MAX_INPUT_CHARS", 4096),

		AudioStore:  getEnv("AUDIO_STORE", "fs"),
		AudioDir:    getEnv("AUDIO_DIR", "audio_files"),
		S3Endpoint:  getEnv("S3_ENDPOINT", ""),
		S3Region:    getEnv("S3_REGION", "us-east-1"),
		S3Bucket:    getEnv("S3_BUCKET", "soundtrip-audio"),
		S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		S3Prefix:    getEnv("S3_PREFIX", "audio/"),

		S3UsePathStyle: getEnvBool("S3_USE_PATH_STYLE", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
