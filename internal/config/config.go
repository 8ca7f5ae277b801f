// Package config loads yvctl settings from the environment, an optional .env
// file and an optional TOML defaults file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// DefaultFile is read when YVCTL_CONFIG is unset. It may be absent.
const DefaultFile = "yvctl.toml"

// Config holds application configuration values.
type Config struct {
	Env string `env:"ENV" envDefault:"prod" validate:"oneof=dev prod"`

	API struct {
		Key     string        `env:"YOUVERSION_API_KEY"`
		BaseURL string        `env:"YOUVERSION_BASE_URL" envDefault:"https://api.youversion.com" validate:"required,url"`
		Timeout time.Duration `env:"YOUVERSION_TIMEOUT" envDefault:"30s" validate:"gt=0"`
	}

	Log struct {
		ConsoleLevel string `env:"LOG_CONSOLE_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
		FileLevel    string `env:"LOG_FILE_LEVEL" envDefault:"debug" validate:"oneof=debug info warn warning error"`
		File         string `env:"LOG_FILE"`
	}

	// File is the defaults file that was read, or "" when none was.
	File     string `env:"YVCTL_CONFIG"`
	Defaults Defaults
}

// Defaults are per-user preferences applied when a flag is not given.
type Defaults struct {
	VersionID int    `toml:"version_id" validate:"gte=0"`
	Language  string `toml:"language"`
	Format    string `toml:"format" validate:"omitempty,oneof=text html"`
	Retries   int    `toml:"retries" validate:"gte=0,lte=10"`
	Watch     struct {
		Schedule  string `toml:"schedule"`
		VersionID int    `toml:"version_id" validate:"gte=0"`
	} `toml:"watch"`
}

// ErrNoAPIKey is returned by RequireAPIKey.
var ErrNoAPIKey = errors.New("YOUVERSION_API_KEY is not set")

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads configuration from environment variables, an optional .env file
// and the defaults file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return load(env.ToMap(os.Environ()))
}

func load(environ map[string]string) (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	c.Log.ConsoleLevel = strings.ToLower(c.Log.ConsoleLevel)
	c.Log.FileLevel = strings.ToLower(c.Log.FileLevel)
	c.Defaults = Defaults{VersionID: 111, Language: "en", Format: "text"}
	c.Defaults.Watch.Schedule = "0 7 * * *"

	explicit := c.File != ""
	if !explicit {
		c.File = DefaultFile
	}
	switch err := readDefaults(c.File, &c.Defaults); {
	case errors.Is(err, os.ErrNotExist) && !explicit:
		c.File = ""
	case err != nil:
		return Config{}, err
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func readDefaults(path string, d *Defaults) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := toml.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(d); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// RequireAPIKey fails unless an app key is configured.
func (c Config) RequireAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// IsDev reports whether ENV=dev.
func (c Config) IsDev() bool { return c.Env == "dev" }
