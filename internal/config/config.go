package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Inference InferenceConfig `mapstructure:"inference"`
	Report    ReportConfig    `mapstructure:"report"`
	Templates TemplatesConfig `mapstructure:"templates"`
	History   HistoryConfig   `mapstructure:"history"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Addr           string        `mapstructure:"addr" validate:"required"`
	AllowedOrigin  string        `mapstructure:"allowed_origin"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"gt=0"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gt=0"`
}

type AnthropicConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model" validate:"required"`
	BaseURL        string `mapstructure:"base_url" validate:"required,url"`
	MaxTokens      int    `mapstructure:"max_tokens" validate:"gt=0"`
	MaxWebSearches int    `mapstructure:"max_web_searches" validate:"gte=0"`
}

type GeminiConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model" validate:"required"`
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
}

type InferenceConfig struct {
	MaxRetryAttempts uint   `mapstructure:"max_retry_attempts"`
	DefaultProvider  string `mapstructure:"default_provider" validate:"oneof=claude gemini"`
}

// ReportConfig overrides the page layout and the strings printed on every report.
type ReportConfig struct {
	PageSize                string  `mapstructure:"page_size" validate:"required,oneof=A3 A4 A5 Letter Legal Tabloid"`
	Margin                  float64 `mapstructure:"margin" validate:"gte=0"`
	LineBreakThreshold      float64 `mapstructure:"line_break_threshold" validate:"gte=0"`
	CitationsBreakThreshold float64 `mapstructure:"citations_break_threshold" validate:"gte=0"`
	LookAheadLines          int     `mapstructure:"look_ahead_lines" validate:"gte=0"`
	LeadCardHeight          float64 `mapstructure:"lead_card_height" validate:"gte=0"`
	LeadCardGap             float64 `mapstructure:"lead_card_gap" validate:"gte=0"`
	LeadBlockPadding        float64 `mapstructure:"lead_block_padding" validate:"gte=0"`
	BulletRowHeight         float64 `mapstructure:"bullet_row_height" validate:"gte=0"`
	BulletIndent            float64 `mapstructure:"bullet_indent" validate:"gte=0"`
	BodyLineHeight          float64 `mapstructure:"body_line_height" validate:"gte=0"`
	ParagraphGap            float64 `mapstructure:"paragraph_gap" validate:"gte=0"`
	BlankGap                float64 `mapstructure:"blank_gap" validate:"gte=0"`
	HeaderGap               float64 `mapstructure:"header_gap" validate:"gte=0"`
	Title                   string  `mapstructure:"title"`
	Subtitle                string  `mapstructure:"subtitle"`
	Footer                  string  `mapstructure:"footer"`
	TimestampFormat         string  `mapstructure:"timestamp_format" validate:"required"`
	Timezone                string  `mapstructure:"timezone" validate:"omitempty,timezone"`
}

type TemplatesConfig struct {
	PromptFile string `mapstructure:"prompt_file" validate:"omitempty,file"`
}

type HistoryConfig struct {
	Driver    string         `mapstructure:"driver" validate:"oneof=yaml mysql none"`
	Directory string         `mapstructure:"directory" validate:"required_if=Driver yaml"`
	Database  DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Debug      bool   `mapstructure:"debug"`
}

// Location resolves the configured report timezone, defaulting to local time.
func (c ReportConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("time.LoadLocation(%s) > %w", c.Timezone, err)
	}
	return loc, nil
}

// APIKey returns the configured key of a provider, or "" when none is set.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case "claude":
		return c.Anthropic.APIKey
	case "gemini":
		return c.Gemini.APIKey
	}
	return ""
}

// Model returns the configured model of a provider.
func (c *Config) Model(provider string) string {
	switch provider {
	case "claude":
		return c.Anthropic.Model
	case "gemini":
		return c.Gemini.Model
	}
	return ""
}

func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/leadgen")
	}

	v.SetDefault("server.addr", ":3001")
	v.SetDefault("server.allowed_origin", "http://localhost:5173")
	v.SetDefault("server.request_timeout", 5*time.Minute)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.base_url", "https://api.anthropic.com")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("anthropic.max_web_searches", 100)
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("inference.max_retry_attempts", 3)
	v.SetDefault("inference.default_provider", "claude")
	v.SetDefault("report.page_size", "A4")
	v.SetDefault("report.margin", 50)
	v.SetDefault("report.line_break_threshold", 100)
	v.SetDefault("report.citations_break_threshold", 200)
	v.SetDefault("report.look_ahead_lines", 20)
	v.SetDefault("report.lead_card_height", 28)
	v.SetDefault("report.lead_card_gap", 8)
	v.SetDefault("report.lead_block_padding", 12)
	v.SetDefault("report.bullet_row_height", 16)
	v.SetDefault("report.bullet_indent", 20)
	v.SetDefault("report.body_line_height", 14)
	v.SetDefault("report.paragraph_gap", 4)
	v.SetDefault("report.blank_gap", 4)
	v.SetDefault("report.header_gap", 6)
	v.SetDefault("report.timestamp_format", "January 2, 2006 15:04")
	v.SetDefault("history.driver", "yaml")
	v.SetDefault("history.directory", filepath.Join("outputs", "history"))
	v.SetDefault("history.database.host", "localhost")
	v.SetDefault("history.database.port", 3306)
	v.SetDefault("history.database.database", "leadgen")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	// Secrets and the provider switch are read from the environment
	for key, env := range map[string]string{
		"anthropic.api_key":          "ANTHROPIC_API_KEY",
		"gemini.api_key":             "GEMINI_API_KEY",
		"history.database.password":  "LEADGEN_DB_PASSWORD",
		"inference.default_provider": "LEADGEN_PROVIDER",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded values and reports every invalid field at once.
func (c *Config) Validate() error {
	v, err := NewValidator("mapstructure")
	if err != nil {
		return fmt.Errorf("NewValidator() > %w", err)
	}
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
