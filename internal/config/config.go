// Package config supplies the application configuration consumed by the
// pipeline. Values come from environment variables (a .env file is loaded
// by the command layer) with an optional versepin.yaml override for the
// non-secret settings. The pipeline itself treats Config as opaque.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultModel         = "gemini-2.5-flash"
	defaultProvider      = "gemini"
	defaultMaxImageBytes = 10 * 1024 * 1024
	defaultMinConfidence = 0.7
	defaultCommunityLink = "https://whatsapp.com/channel/0029VbAhLis0rGiVQd0HSw03"

	defaultExtractTimeout = 30 * time.Second
	defaultPublishTimeout = 15 * time.Second
	defaultPublishRetries = 2
	defaultRetryBase      = time.Second
)

// Config holds everything the pipeline needs: credentials, limits, and the
// community link injected into pin descriptions.
type Config struct {
	GeminiAPIKey         string
	PinterestAccessToken string
	PinterestBoardID     string

	Provider      string
	Model         string
	MaxImageBytes int64
	MinConfidence float64
	CommunityLink string

	ExtractTimeout time.Duration
	PublishTimeout time.Duration
	PublishRetries int
	RetryBase      time.Duration
}

// fileSettings is the shape of the optional versepin.yaml override file.
// Secrets are deliberately absent; those only come from the environment.
type fileSettings struct {
	Provider      string  `yaml:"provider"`
	Model         string  `yaml:"model"`
	MaxImageMB    int64   `yaml:"max_image_mb"`
	MinConfidence float64 `yaml:"min_confidence"`
	CommunityLink string  `yaml:"community_link"`
}

// Load builds a Config from the environment and, when present, the YAML
// override file named by VERSEPIN_CONFIG (default versepin.yaml).
func Load() (*Config, error) {
	cfg := &Config{
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		PinterestAccessToken: os.Getenv("PINTEREST_ACCESS_TOKEN"),
		PinterestBoardID:     os.Getenv("PINTEREST_BOARD_ID"),

		Provider:      defaultProvider,
		Model:         defaultModel,
		MaxImageBytes: defaultMaxImageBytes,
		MinConfidence: defaultMinConfidence,
		CommunityLink: defaultCommunityLink,

		ExtractTimeout: defaultExtractTimeout,
		PublishTimeout: defaultPublishTimeout,
		PublishRetries: defaultPublishRetries,
		RetryBase:      defaultRetryBase,
	}

	if err := cfg.applyFile(configPath()); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configPath() string {
	if p := os.Getenv("VERSEPIN_CONFIG"); p != "" {
		return p
	}
	return "versepin.yaml"
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fs fileSettings
	if err := yaml.Unmarshal(data, &fs); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fs.Provider != "" {
		c.Provider = fs.Provider
	}
	if fs.Model != "" {
		c.Model = fs.Model
	}
	if fs.MaxImageMB != 0 {
		if fs.MaxImageMB < 0 {
			return fmt.Errorf("invalid max_image_mb value %d in %s", fs.MaxImageMB, path)
		}
		c.MaxImageBytes = fs.MaxImageMB * 1024 * 1024
	}
	if fs.MinConfidence != 0 {
		if fs.MinConfidence < 0 || fs.MinConfidence > 1 {
			return fmt.Errorf("invalid min_confidence value %v in %s", fs.MinConfidence, path)
		}
		c.MinConfidence = fs.MinConfidence
	}
	if fs.CommunityLink != "" {
		c.CommunityLink = fs.CommunityLink
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VERSEPIN_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("VERSEPIN_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("VERSEPIN_COMMUNITY_LINK"); v != "" {
		c.CommunityLink = v
	}
	// Original deployments set WHATSAPP_LINK; still honored.
	if v := os.Getenv("WHATSAPP_LINK"); v != "" {
		c.CommunityLink = v
	}
	if v := os.Getenv("VERSEPIN_MAX_IMAGE_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil || mb <= 0 {
			return fmt.Errorf("invalid VERSEPIN_MAX_IMAGE_MB value %q", v)
		}
		c.MaxImageBytes = mb * 1024 * 1024
	}
	if v := os.Getenv("VERSEPIN_MIN_CONFIDENCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 || f > 1 {
			return fmt.Errorf("invalid VERSEPIN_MIN_CONFIDENCE value %q", v)
		}
		c.MinConfidence = f
	}
	return nil
}
