package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/costcalc/internal/db"
	"github.com/Simplici0/costcalc/internal/pricing"
	"github.com/Simplici0/costcalc/internal/seed"
)

const (
	defaultPort       = "8080"
	defaultAppEnv     = "development"
	defaultLogLevel   = "info"
	defaultConfigFile = ".costcalc.yaml"
)

// Config holds application configuration sourced from environment variables
// and the optional workspace file.
type Config struct {
	DBPath     string
	Port       string
	AppEnv     string
	LogLevel   string
	ConfigFile string
	Workspace  File
}

// File is the YAML workspace file. Params missing from the file keep their
// default values.
type File struct {
	Params    pricing.Params `yaml:"params"`
	Scenarios []FileScenario `yaml:"scenarios" validate:"dive"`
}

// FileScenario is a custom scenario declared in the workspace file.
type FileScenario struct {
	Name      string `yaml:"name" validate:"required"`
	UserCount int    `yaml:"user_count" validate:"gt=0"`
	Color     string `yaml:"color" validate:"omitempty,hexcolor"`
}

// Load reads .env and the environment, then the workspace file.
func Load() (Config, error) {
	// Best-effort: load local dev environment variables.
	// Production should use real env injection.
	if err := loadDotEnv(".env"); err != nil {
		slog.Warn("ignoring .env", "error", err)
	}

	cfg := Config{
		DBPath:     os.Getenv("DB_PATH"),
		Port:       os.Getenv("PORT"),
		AppEnv:     os.Getenv("APP_ENV"),
		LogLevel:   strings.ToLower(os.Getenv("LOG_LEVEL")),
		ConfigFile: os.Getenv("CONFIG_FILE"),
	}
	explicitFile := cfg.ConfigFile != ""

	if cfg.DBPath == "" {
		cfg.DBPath = db.MemoryPath
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = defaultAppEnv
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.ConfigFile == "" {
		cfg.ConfigFile = defaultConfigFile
	}

	file, err := LoadFile(cfg.ConfigFile)
	switch {
	case err == nil:
		cfg.Workspace = file
	case errors.Is(err, os.ErrNotExist) && !explicitFile:
		cfg.Workspace = File{Params: pricing.DefaultParams()}
	default:
		return Config{}, err
	}

	return cfg, nil
}

// LoadFile parses and validates the workspace file at path.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read config %s: %w", path, err)
	}

	file := File{Params: pricing.DefaultParams()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if file.Params.IdentityFormula == "" {
		file.Params.IdentityFormula = pricing.IdentityProrated
	}
	if err := file.Params.Validate(); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}
	if err := validator.New().Struct(file); err != nil {
		return File{}, fmt.Errorf("config %s: %w", path, err)
	}

	return file, nil
}

// Verbose reports whether debug logging is enabled.
func (c Config) Verbose() bool {
	return c.LogLevel == "debug"
}

// IsDev reports whether the app runs in its development environment.
func (c Config) IsDev() bool {
	return c.AppEnv == defaultAppEnv
}

// Seed returns the seed configuration for a fresh or reset workspace.
func (c Config) Seed() seed.Config {
	scenarios := make([]seed.Scenario, 0, len(c.Workspace.Scenarios))
	for _, sc := range c.Workspace.Scenarios {
		scenarios = append(scenarios, seed.Scenario{
			Name:      sc.Name,
			UserCount: sc.UserCount,
			Color:     sc.Color,
		})
	}
	return seed.Config{Params: c.Workspace.Params, Scenarios: scenarios}
}
