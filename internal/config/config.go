/*
 * This file is part of Loqa (https://github.com/loqalabs/loqa).
 * Copyright (C) 2025 Loqa Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/loqalabs/loqa-scribe/internal/security"
	"github.com/loqalabs/loqa-scribe/internal/stt"
	"github.com/loqalabs/loqa-scribe/internal/subtitle"
)

// Backend selects the model implementation
type Backend string

const (
	BackendWhisper Backend = "whisper"
	BackendOpenAI  Backend = "openai"
)

// Config holds all configuration for loqa-scribe
type Config struct {
	STT     STTConfig
	OpenAI  OpenAIConfig
	Output  OutputConfig
	Media   MediaConfig
	Logging LoggingConfig
	NATS    NATSConfig
	Storage StorageConfig
}

// STTConfig holds model invocation settings
type STTConfig struct {
	Backend   Backend
	ModelSize stt.ModelSize
	Language  string
	Threads   int
	Translate bool
	ModelDir  string // ggml model directory for the whisper backend
}

// OpenAIConfig holds settings for OpenAI-compatible STT services
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// OutputConfig holds rendering settings
type OutputConfig struct {
	LineEnding     subtitle.LineEnding
	WrapWidth      int
	TextDelimiter  string
	SentenceBreaks bool
}

// MediaConfig holds ffmpeg settings
type MediaConfig struct {
	FFmpegPath  string
	FFprobePath string
	TempDir     string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// NATSConfig holds NATS messaging configuration. An empty URL disables
// event publishing.
type NATSConfig struct {
	URL           string
	Subject       string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// StorageConfig holds run history settings. An empty DBPath disables it.
type StorageConfig struct {
	DBPath string
}

// LoadDotEnv loads .env style files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	lineEnding, err := subtitle.ParseLineEnding(getEnvString("SCRIBE_LINE_ENDING", "lf"))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	config := &Config{
		STT: STTConfig{
			Backend:   Backend(strings.ToLower(getEnvString("SCRIBE_BACKEND", string(BackendWhisper)))),
			ModelSize: stt.ModelSize(strings.ToLower(getEnvString("SCRIBE_MODEL_SIZE", string(stt.ModelBase)))),
			Language:  getEnvString("SCRIBE_LANGUAGE", stt.AutoDetect),
			Threads:   getEnvInt("SCRIBE_THREADS", 0),
			Translate: getEnvBool("SCRIBE_TRANSLATE", false),
			ModelDir:  getEnvString("WHISPER_MODEL_DIR", "./models"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnvString("OPENAI_API_KEY", ""),
			BaseURL: getEnvString("OPENAI_BASE_URL", getEnvString("STT_URL", "")),
			Model:   getEnvString("OPENAI_STT_MODEL", stt.DefaultOpenAIModel),
			Timeout: getEnvDuration("OPENAI_TIMEOUT", 30*time.Minute),
		},
		Output: OutputConfig{
			LineEnding:     lineEnding,
			WrapWidth:      getEnvInt("SCRIBE_WRAP_WIDTH", 0),
			TextDelimiter:  getEnvRaw("SCRIBE_TEXT_DELIMITER", " "),
			SentenceBreaks: getEnvBool("SCRIBE_SENTENCE_BREAKS", false),
		},
		Media: MediaConfig{
			FFmpegPath:  getEnvString("FFMPEG_PATH", "ffmpeg"),
			FFprobePath: getEnvString("FFPROBE_PATH", "ffprobe"),
			TempDir:     getEnvString("SCRIBE_TEMP_DIR", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvString("LOG_LEVEL", "info"),
			Format: getEnvString("LOG_FORMAT", "console"),
		},
		NATS: NATSConfig{
			URL:           getEnvString("NATS_URL", ""),
			Subject:       getEnvString("NATS_SUBJECT", "loqa.transcriptions"),
			MaxReconnect:  getEnvInt("NATS_MAX_RECONNECT", 10),
			ReconnectWait: getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
			Timeout:       getEnvDuration("NATS_TIMEOUT", 5*time.Second),
		},
		Storage: StorageConfig{
			DBPath: getEnvString("DB_PATH", ""),
		},
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate checks if the configuration is valid. It normalizes the model
// size and language in place.
func (c *Config) Validate() error {
	switch c.STT.Backend {
	case BackendWhisper, BackendOpenAI:
	default:
		return fmt.Errorf("unknown backend %q (want whisper or openai)", c.STT.Backend)
	}

	if c.STT.Threads < 0 {
		return fmt.Errorf("threads must not be negative: %d", c.STT.Threads)
	}

	opts := c.STTOptions()
	if err := opts.Validate(); err != nil {
		return err
	}
	c.STT.ModelSize = opts.ModelSize
	c.STT.Language = opts.Language

	if c.STT.Backend == BackendWhisper && c.STT.ModelDir == "" {
		return fmt.Errorf("whisper model directory must be provided")
	}

	if c.STT.Backend == BackendOpenAI && c.OpenAI.APIKey == "" && c.OpenAI.BaseURL == "" {
		return fmt.Errorf("openai backend needs OPENAI_API_KEY or a self-hosted OPENAI_BASE_URL")
	}

	if err := c.RenderOptions().Validate(); err != nil {
		return err
	}

	if c.NATS.URL != "" {
		if err := security.ValidateSubject(c.NATS.Subject); err != nil {
			return fmt.Errorf("NATS_SUBJECT %q: %w", c.NATS.Subject, err)
		}
	}

	return nil
}

// STTOptions builds the model options described by this config
func (c *Config) STTOptions() stt.Options {
	return stt.Options{
		ModelSize: c.STT.ModelSize,
		Language:  c.STT.Language,
		Threads:   uint(max(c.STT.Threads, 0)),
		Translate: c.STT.Translate,
	}
}

// RenderOptions builds the serializer options described by this config
func (c *Config) RenderOptions() subtitle.Options {
	return subtitle.Options{
		LineEnding:     c.Output.LineEnding,
		WrapWidth:      c.Output.WrapWidth,
		Delimiter:      c.Output.TextDelimiter,
		SentenceBreaks: c.Output.SentenceBreaks,
	}
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// getEnvRaw keeps surrounding whitespace, so a delimiter like " | " survives
func getEnvRaw(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return strings.NewReplacer(`\n`, "\n", `\t`, "\t").Replace(value)
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
