package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"scouttrack/internal/core/model"
)

type ServerConfig struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"gt=0,lte=65535"`
}

type EngineConfig struct {
	TickInterval    time.Duration     `yaml:"tickInterval" validate:"gt=0"`
	RefreshInterval time.Duration     `yaml:"refreshInterval" validate:"gt=0"`
	HistoryCap      int               `yaml:"historyCap" validate:"gte=1"`
	Spawn           model.Coordinates `yaml:"spawn"`
	Simulate        bool              `yaml:"simulate"`
	MaxDelta        float64           `yaml:"maxDelta" validate:"gte=0"`
	Seed            bool              `yaml:"seed"`
}

type H02Config struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"omitempty,gt=0,lte=65535"`
}

type Config struct {
	Server   ServerConfig `yaml:"server"`
	Engine   EngineConfig `yaml:"engine"`
	Mongo    MongoConfig  `yaml:"mongo"`
	RedisURL string       `yaml:"redisURL" validate:"omitempty,url"`
	H02      H02Config    `yaml:"h02"`
	LogLevel string       `yaml:"logLevel" validate:"omitempty,oneof=trace debug info warn error"`
	LogJSON  bool         `yaml:"logJSON"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8000},
		Engine: EngineConfig{
			TickInterval:    2 * time.Second,
			RefreshInterval: time.Second,
			HistoryCap:      50,
			Spawn:           model.Coordinates{Lat: 38.7223, Lng: -9.1393},
			Simulate:        true,
			MaxDelta:        0.0005,
			Seed:            true,
		},
		Mongo:    MongoConfig{Database: "scouttrack"},
		H02:      H02Config{Port: 5013},
		LogLevel: "info",
	}
}

// LoadConfig reads the YAML file at path over the defaults, applies
// environment overrides and validates the result. A missing file is not an
// error.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Server.Host = getEnv("HOST", cfg.Server.Host)
	cfg.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", cfg.LogLevel))
	cfg.Mongo.URI = getEnv("MONGODB_URI", cfg.Mongo.URI)
	cfg.Mongo.Database = getEnv("MONGODB_DATABASE", cfg.Mongo.Database)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)

	var err error
	if cfg.Server.Port, err = getEnvInt("PORT", cfg.Server.Port); err != nil {
		return err
	}
	if cfg.H02.Port, err = getEnvInt("H02_PORT", cfg.H02.Port); err != nil {
		return err
	}
	if os.Getenv("H02_PORT") != "" {
		cfg.H02.Enabled = true
	}
	if cfg.Engine.Simulate, err = getEnvBool("SIMULATE", cfg.Engine.Simulate); err != nil {
		return err
	}
	if cfg.LogJSON, err = getEnvBool("LOG_JSON", cfg.LogJSON); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.TrimSpace(value)
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := getEnv(key, "")
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}
