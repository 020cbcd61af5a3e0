package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// ENV is the process configuration. Keys are read from the environment
// (optionally seeded from a .env file) and lowercased, so DB_HOST maps to
// the db_host tag.
type ENV struct {
	Port        string `koanf:"app_port" validate:"required"`
	Debug       bool   `koanf:"debug"`
	DBDriver    string `koanf:"db_driver" validate:"required,oneof=mysql postgres"`
	DBHost      string `koanf:"db_host" validate:"required"`
	DBPort      string `koanf:"db_port" validate:"required"`
	DBUser      string `koanf:"db_user" validate:"required"`
	DBPassword  string `koanf:"db_password"`
	DBName      string `koanf:"db_name" validate:"required"`
	DBRetries   int    `koanf:"db_retries" validate:"min=1"`
	TotalOnPage int    `koanf:"total_on_page" validate:"min=1"`
	MediaRoot   string `koanf:"media_root" validate:"required"`
	MediaURL    string `koanf:"media_url" validate:"required,startswith=/,endswith=/"`
	MaxUploadMB int64  `koanf:"max_upload_mb" validate:"min=1"`

	// Timeouts are in seconds.
	ReadTimeout  int `koanf:"read_timeout" validate:"min=1"`
	WriteTimeout int `koanf:"write_timeout" validate:"min=1"`
	IdleTimeout  int `koanf:"idle_timeout" validate:"min=1"`
}

func defaultEnv() ENV {
	return ENV{
		Port:         ":8000",
		DBDriver:     "mysql",
		DBHost:       "127.0.0.1",
		DBPort:       "3306",
		DBRetries:    10,
		TotalOnPage:  10,
		MediaRoot:    "media",
		MediaURL:     "/media/",
		MaxUploadMB:  10,
		ReadTimeout:  15,
		WriteTimeout: 15,
		IdleTimeout:  60,
	}
}

func LoadEnv() (ENV, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Debug().Msg("no .env file found, reading process environment only")
	}

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", strings.ToLower), nil); err != nil {
		return ENV{}, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg := defaultEnv()
	if err := k.Unmarshal("", &cfg); err != nil {
		return ENV{}, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return ENV{}, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (e ENV) ReadTimeoutDuration() time.Duration  { return time.Duration(e.ReadTimeout) * time.Second }
func (e ENV) WriteTimeoutDuration() time.Duration { return time.Duration(e.WriteTimeout) * time.Second }
func (e ENV) IdleTimeoutDuration() time.Duration  { return time.Duration(e.IdleTimeout) * time.Second }

// MaxUploadBytes is the multipart body limit for image uploads.
func (e ENV) MaxUploadBytes() int64 {
	return e.MaxUploadMB << 20
}
