// Package config loads the room client settings from the environment.
package config

import (
	"fmt"

	"github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var validate = validator.New()

// Config holds the client settings. Flags may override any field after Load.
type Config struct {
	ServerURL   string `env:"ROOMCHAT_SERVER,default=ws://localhost:8080/ws" validate:"required,url,startswith=ws"`
	Username    string `env:"ROOMCHAT_USERNAME" validate:"required"`
	Transport   string `env:"ROOMCHAT_TRANSPORT,default=nhooyr" validate:"oneof=nhooyr gobwas"`
	AvatarStyle string `env:"ROOMCHAT_AVATAR_STYLE,default=adventurer-neutral" validate:"required"`
	OutboxSize  int    `env:"ROOMCHAT_OUTBOX_SIZE,default=16" validate:"min=1"`
	LogLevel    string `env:"LOG_LEVEL,default=info" validate:"oneof=debug info warn error"`
	LogFile     string `env:"LOG_FILE"`
}

// Load reads an optional .env file in the working directory, then the
// process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings once flags have been applied.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
