package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/pmik-id/pmikbot/internal/ai"
	"github.com/pmik-id/pmikbot/internal/bot"
)

// Chat platforms
const (
	PlatformTelegram = "telegram"
	PlatformDiscord  = "discord"
)

// Config holds all configuration values. It is built once at startup and
// never mutated afterwards. Variables left unset keep the values from
// Defaults.
type Config struct {
	Platform      string `env:"CHAT_PLATFORM"`
	TelegramToken string `env:"TELEGRAM_BOT_TOKEN"`
	DiscordToken  string `env:"DISCORD_TOKEN"`

	Provider        string `env:"LLM_PROVIDER"`
	DeepSeekAPIKey  string `env:"DEEPSEEK_API_KEY"`
	GeminiAPIKey    string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`

	Model       string        `env:"LLM_MODEL"`
	BaseURL     string        `env:"LLM_BASE_URL"`
	Temperature float64       `env:"LLM_TEMPERATURE"`
	MaxTokens   int           `env:"LLM_MAX_TOKENS"`
	TopP        float64       `env:"LLM_TOP_P"`
	TopK        int           `env:"LLM_TOP_K"`
	Timeout     time.Duration `env:"LLM_TIMEOUT"`

	ReplyFormat string `env:"REPLY_FORMAT"`
	PersonaFile string `env:"PERSONA_FILE"`
	MetricsAddr string `env:"METRICS_ADDR"`

	LogFormat string `env:"LOG_FORMAT"`
	LogLevel  string `env:"LOG_LEVEL"`
}

// Defaults returns the configuration used for every unset variable.
func Defaults() Config {
	return Config{
		Platform:    PlatformTelegram,
		Provider:    ai.DefaultProvider,
		Temperature: ai.DefaultTemperature,
		MaxTokens:   ai.DefaultMaxTokens,
		Timeout:     ai.DefaultTimeout,
		ReplyFormat: bot.FormatMarkdown,
		LogFormat:   "json",
		LogLevel:    "info",
	}
}

// LoadConfig loads environment variables from .env file and returns a Config struct
func LoadConfig() (*Config, error) {
	// Try to load .env file (optional - may not exist in production)
	_ = godotenv.Load(".env")

	cfg := Defaults()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return &cfg, nil
}

// PlatformToken returns the bot credential of the selected chat platform.
func (c *Config) PlatformToken() string {
	switch c.Platform {
	case PlatformTelegram:
		return c.TelegramToken
	case PlatformDiscord:
		return c.DiscordToken
	}
	return ""
}

// APIKey returns the credential of the selected LLM provider.
func (c *Config) APIKey() string {
	switch c.Provider {
	case ai.ProviderDeepSeek:
		return c.DeepSeekAPIKey
	case ai.ProviderGemini:
		return c.GeminiAPIKey
	case ai.ProviderOpenAI:
		return c.OpenAIAPIKey
	case ai.ProviderAnthropic:
		return c.AnthropicAPIKey
	}
	return ""
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Platform {
	case PlatformTelegram:
		if c.TelegramToken == "" {
			return NewConfigError("TELEGRAM_BOT_TOKEN", "environment variable is required")
		}
	case PlatformDiscord:
		if c.DiscordToken == "" {
			return NewConfigError("DISCORD_TOKEN", "environment variable is required")
		}
	default:
		return NewConfigValueError("CHAT_PLATFORM", c.Platform, fmt.Sprintf("must be %q or %q", PlatformTelegram, PlatformDiscord))
	}

	if err := c.ValidateProvider(); err != nil {
		return err
	}

	if c.ReplyFormat != bot.FormatMarkdown && c.ReplyFormat != bot.FormatPlain {
		return NewConfigValueError("REPLY_FORMAT", c.ReplyFormat, fmt.Sprintf("must be %q or %q", bot.FormatMarkdown, bot.FormatPlain))
	}

	return nil
}

// ValidateProvider checks only the LLM side of the configuration. The model
// probe uses it since it never connects to a chat platform.
func (c *Config) ValidateProvider() error {
	keyVar := ""
	switch c.Provider {
	case ai.ProviderDeepSeek:
		keyVar = "DEEPSEEK_API_KEY"
	case ai.ProviderGemini:
		keyVar = "GEMINI_API_KEY"
	case ai.ProviderOpenAI:
		keyVar = "OPENAI_API_KEY"
	case ai.ProviderAnthropic:
		keyVar = "ANTHROPIC_API_KEY"
	default:
		return NewConfigValueError("LLM_PROVIDER", c.Provider, "unsupported provider")
	}
	if c.APIKey() == "" {
		return NewConfigError(keyVar, "environment variable is required")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return NewConfigValueError("LLM_TEMPERATURE", fmt.Sprint(c.Temperature), "must be between 0 and 2")
	}
	if c.MaxTokens <= 0 {
		return NewConfigValueError("LLM_MAX_TOKENS", fmt.Sprint(c.MaxTokens), "must be positive")
	}
	if c.TopP < 0 || c.TopP > 1 {
		return NewConfigValueError("LLM_TOP_P", fmt.Sprint(c.TopP), "must be between 0 and 1")
	}
	if c.TopK < 0 {
		return NewConfigValueError("LLM_TOP_K", fmt.Sprint(c.TopK), "cannot be negative")
	}
	if c.Timeout <= 0 {
		return NewConfigValueError("LLM_TIMEOUT", c.Timeout.String(), "must be positive")
	}

	return nil
}
