package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// AppConfig holds the non-database settings read from the environment.
type AppConfig struct {
	Port string

	LLMProvider string // vertex|openai
	STTProvider string // google|whisper

	VertexProject  string
	VertexLocation string
	VertexModel    string

	GoogleCredentialsFile string
	SpeechLanguage        string

	OpenAIAPIKey   string
	OpenAIBaseURL  string
	OpenAIModel    string
	EmbeddingModel string

	GCSBucket string

	QuestionTimeout   time.Duration
	SummaryTimeout    time.Duration
	TranscribeTimeout time.Duration

	TargetMinutes   int
	SummaryCacheTTL time.Duration
	AICallTTL       time.Duration

	IngestWorkers        int
	ReferenceRefreshCron string
}

func LoadApp() (*AppConfig, error) {
	cfg := &AppConfig{
		Port: getEnvOrDefault("PORT", "8080"),

		LLMProvider: strings.ToLower(getEnvOrDefault("LLM_PROVIDER", "vertex")),
		STTProvider: strings.ToLower(getEnvOrDefault("STT_PROVIDER", "google")),

		VertexProject:  os.Getenv("VERTEX_PROJECT"),
		VertexLocation: getEnvOrDefault("VERTEX_LOCATION", "us-central1"),
		VertexModel:    getEnvOrDefault("VERTEX_MODEL", "gemini-1.5-flash"),

		GoogleCredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SpeechLanguage:        getEnvOrDefault("SPEECH_LANGUAGE", "en-US"),

		OpenAIAPIKey:   os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:  os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:    getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel: getEnvOrDefault("EMBEDDING_MODEL", "text-embedding-3-small"),

		GCSBucket: os.Getenv("GCS_BUCKET"),

		ReferenceRefreshCron: getEnvOrDefault("REFERENCE_REFRESH_CRON", "0 3 * * *"),
	}

	var err error
	if cfg.QuestionTimeout, err = durationEnv("QUESTION_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.SummaryTimeout, err = durationEnv("SUMMARY_TIMEOUT", 60*time.Second); err != nil {
		return nil, err
	}
	if cfg.TranscribeTimeout, err = durationEnv("TRANSCRIBE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SummaryCacheTTL, err = durationEnv("SUMMARY_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AICallTTL, err = durationEnv("AI_CALL_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.TargetMinutes, err = intEnv("INTERVIEW_TARGET_MINUTES", 25); err != nil {
		return nil, err
	}
	if cfg.IngestWorkers, err = intEnv("INGEST_WORKERS", 2); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) validate() error {
	switch c.LLMProvider {
	case "vertex":
		if c.VertexProject == "" {
			return fmt.Errorf("VERTEX_PROJECT is required when LLM_PROVIDER=vertex")
		}
	case "openai":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=openai")
		}
	default:
		return fmt.Errorf("unsupported LLM_PROVIDER %q: supported providers are vertex, openai", c.LLMProvider)
	}

	switch c.STTProvider {
	case "google":
	case "whisper":
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when STT_PROVIDER=whisper")
		}
	default:
		return fmt.Errorf("unsupported STT_PROVIDER %q: supported providers are google, whisper", c.STTProvider)
	}

	if c.TargetMinutes <= 0 {
		return fmt.Errorf("INTERVIEW_TARGET_MINUTES must be > 0")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func intEnv(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
