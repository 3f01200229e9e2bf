// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "VOICEDIARY_"

// Config holds all runtime settings.
type Config struct {
	FirestoreProjectID string `env:"FIRESTORE_PROJECT_ID,required"`
	CredentialsFile    string `env:"CREDENTIALS_FILE" envDefault:"firebase_credentials.json"`
	Collection         string `env:"COLLECTION" envDefault:"diary_entries"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY,required"`
	WhisperModel string `env:"WHISPER_MODEL" envDefault:"whisper-1"`

	SampleRate        int           `env:"SAMPLE_RATE" envDefault:"44100"`
	RecordMaxDuration time.Duration `env:"RECORD_MAX_DURATION" envDefault:"60s"`
}

// Parse reads the configuration from the environment.
func Parse() (Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
