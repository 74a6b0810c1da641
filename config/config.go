package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// WebhookEnv names the variable that supplies the delegate URL when the
// config file leaves it empty.
const WebhookEnv = "N8N_WEBHOOK_URL"

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Delegate DelegateConfig `yaml:"delegate"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Capture  CaptureConfig  `yaml:"capture"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// DelegateConfig points at the n8n webhook. Timeout bounds each call and
// 0 leaves it unbounded.
type DelegateConfig struct {
	WebhookURL string         `yaml:"webhook_url"`
	Timeout    *time.Duration `yaml:"timeout"`
}

type CatalogConfig struct {
	// Path overrides the bundled catalog.
	Path string `yaml:"path"`
}

// CaptureConfig drives the terminal client. Locale also picks the
// transcription language when openai.language is unset.
type CaptureConfig struct {
	Source     string        `yaml:"source"`
	Endpoint   string        `yaml:"endpoint"`
	Locale     string        `yaml:"locale"`
	FileDir    string        `yaml:"file_dir"`
	SampleRate int           `yaml:"sample_rate"`
	Timeout    time.Duration `yaml:"timeout"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads .env when present, then the YAML file at path with environment
// variables expanded. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}

		expanded := os.ExpandEnv(string(data))

		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if cfg.Delegate.WebhookURL == "" {
		cfg.Delegate.WebhookURL = os.Getenv(WebhookEnv)
	}

	cfg.setDefaults()

	return &cfg, nil
}

// DelegateTimeout is the configured webhook timeout.
func (c *Config) DelegateTimeout() time.Duration {
	if c.Delegate.Timeout == nil {
		return 30 * time.Second
	}
	return *c.Delegate.Timeout
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 45 * time.Second
	}
	if c.Capture.Source == "" {
		c.Capture.Source = "text"
	}
	if c.Capture.Endpoint == "" {
		c.Capture.Endpoint = "http://localhost:3000/api/voice"
	}
	if c.Capture.FileDir == "" {
		c.Capture.FileDir = "./audio"
	}
	if c.Capture.SampleRate == 0 {
		c.Capture.SampleRate = 16000
	}
	if c.Capture.Timeout == 0 {
		c.Capture.Timeout = 60 * time.Second
	}
	if c.Capture.Locale == "" {
		c.Capture.Locale = "th-TH"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = localeLanguage(c.Capture.Locale)
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// localeLanguage returns the primary subtag of a BCP 47 locale, "th" for "th-TH".
func localeLanguage(locale string) string {
	lang, _, _ := strings.Cut(locale, "-")
	return strings.ToLower(lang)
}
