package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath        = "config.yaml"
	DefaultTypingDelay = 900 * time.Millisecond
	DefaultLogFile     = "hackerbot.log"
)

type Config struct {
	Log  Log  `yaml:"log"`
	Chat Chat `yaml:"chat"`
}

type Chat struct {
	// Simulated "thinking" delay before the assistant reply is delivered
	TypingDelay time.Duration `yaml:"typing_delay" example:"900ms" validate:"min=0"`
	// Locale selected on startup
	DefaultLocale string `yaml:"default_locale" example:"en" validate:"required,oneof=en ru tt es"`
	// Topic selected on startup
	DefaultTopic string `yaml:"default_topic" example:"home" validate:"required,oneof=home general work school questions hacking cheats"`
	// Message ID generator
	IDs string `yaml:"ids" example:"uuid" validate:"required,oneof=uuid counter"`
}

type Log struct {
	// Minimum log level
	Level string `yaml:"level" example:"debug" validate:"required,oneof=debug info warn error"`
	// Console log destination, empty means stderr
	File string `yaml:"file" example:"hackerbot.log"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890" validate:"required_with=Token"`
}

// Path returns the config location, HACKERBOT_CONFIG overrides the default.
func Path() string {
	if path := os.Getenv("HACKERBOT_CONFIG"); path != "" {
		return path
	}

	return DefaultPath
}

// Load decodes path on top of Default, so keys absent from the file keep
// their defaults while explicit zero values such as typing_delay: 0s stick.
func Load(path string) (*Config, error) {
	result := *Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, oops.In("config").With("path", path).Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.In("config").With("path", path).Errorf("failed to parse YAML config: %w", err)
	}

	result.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.In("config").With("path", path).Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Log: Log{
			Level: "debug",
			File:  DefaultLogFile,
		},
		Chat: Chat{
			TypingDelay:   DefaultTypingDelay,
			DefaultLocale: "en",
			DefaultTopic:  "home",
			IDs:           "uuid",
		},
	}
}

// applyDefaults refills keys that are present but blank.
func (c *Config) applyDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "debug"
	}
	if c.Chat.DefaultLocale == "" {
		c.Chat.DefaultLocale = "en"
	}
	if c.Chat.DefaultTopic == "" {
		c.Chat.DefaultTopic = "home"
	}
	if c.Chat.IDs == "" {
		c.Chat.IDs = "uuid"
	}
}
