// Package config provides configuration for xenora.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"xenora/answer"
)

type Config struct {
	// Answering service
	Endpoint string
	Timeout  time.Duration

	// Preferences database directory
	DataDir string

	// Speech input
	GroqAPIKey   string
	OpenAIAPIKey string
	Language     string
	Settle       time.Duration
	Device       string
	Beep         bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Endpoint:     getEnv("XENORA_ENDPOINT", answer.DefaultEndpoint),
		Timeout:      time.Duration(getEnvInt("XENORA_TIMEOUT_MS", int(answer.DefaultTimeout/time.Millisecond))) * time.Millisecond,
		DataDir:      getEnv("XENORA_DATA_DIR", defaultDataDir()),
		GroqAPIKey:   os.Getenv("GROQ_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		Language:     getEnv("XENORA_LANGUAGE", "en-US"),
		Settle:       time.Duration(getEnvInt("XENORA_SETTLE_MS", 0)) * time.Millisecond,
		Device:       os.Getenv("XENORA_DEVICE"),
		Beep:         getEnvBool("XENORA_BEEP", true),
	}
}

// SpeechKey reports whether any transcription provider is configured.
func (c *Config) SpeechKey() bool {
	return c.GroqAPIKey != "" || c.OpenAIAPIKey != ""
}

func defaultDataDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "xenora")
	}
	return ".xenora"
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}
