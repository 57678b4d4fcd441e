package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the app.
type Config struct {
	TelegramToken string
	DatabasePath  string
	OwnerChatID   int64
	ReminderTime  string
	LogMode       string
}

// Load reads configuration from an optional .env file and environment
// variables, with sane defaults. The Telegram token is validated by
// RequireBot since only the bot command needs it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		TelegramToken: strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabasePath:  strings.TrimSpace(os.Getenv("DATABASE_PATH")),
		LogMode:       strings.TrimSpace(os.Getenv("LOG_MODE")),
	}

	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "data/onesmallstep.db"
	}

	if cfg.LogMode == "" {
		cfg.LogMode = "dev"
	}

	reminder, ok := os.LookupEnv("REMINDER_TIME")
	if !ok {
		reminder = "19:00"
	}
	cfg.ReminderTime = strings.TrimSpace(reminder)

	if raw := strings.TrimSpace(os.Getenv("OWNER_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("OWNER_CHAT_ID must be a number: %w", err)
		}
		cfg.OwnerChatID = id
	}

	return cfg, nil
}

// RequireBot checks the settings needed to run the Telegram bot.
func (c Config) RequireBot() error {
	if c.TelegramToken == "" {
		return fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	return nil
}
