// Package config loads and validates the service configuration.
//
// Values come from an optional YAML file (via the --config flag or the
// CONFIG_PATH environment variable), overridden by REGISTRAR_* environment
// variables. A .env file in the working directory is loaded first when
// present so local runs don't need exported variables.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	pstrings "registrar/pkg/platform/strings"
)

// Supported storage backends.
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongodb"
)

// Config is the root configuration structure.
type Config struct {
	Env  string `yaml:"env" env:"REGISTRAR_ENV" env-default:"dev" validate:"oneof=dev staging prod"`
	Addr string `yaml:"addr" env:"REGISTRAR_ADDR" env-default:":8080"`

	Database Database `yaml:"database"`
	CORS     CORS     `yaml:"cors"`
}

// Database selects the storage backend and its connection settings. Exactly
// one backend is active per process; the other section is ignored.
type Database struct {
	Backend     string `yaml:"backend" env:"REGISTRAR_DB_BACKEND" env-default:"postgres" validate:"oneof=postgres mongodb"`
	PostgresDSN string `yaml:"postgres_dsn" env:"REGISTRAR_POSTGRES_DSN"`
	Mongo       Mongo  `yaml:"mongo"`
}

// Mongo holds the MongoDB connection and pool settings.
type Mongo struct {
	URI         string        `yaml:"uri" env:"REGISTRAR_MONGO_URI"`
	Database    string        `yaml:"database" env:"REGISTRAR_MONGO_DATABASE" env-default:"registrar"`
	MinPoolSize uint64        `yaml:"min_pool_size" env:"REGISTRAR_MONGO_MIN_POOL_SIZE" env-default:"1"`
	MaxPoolSize uint64        `yaml:"max_pool_size" env:"REGISTRAR_MONGO_MAX_POOL_SIZE" env-default:"20"`
	MaxIdleTime time.Duration `yaml:"max_idle_time" env:"REGISTRAR_MONGO_MAX_IDLE_TIME" env-default:"5m"`
}

// CORS lists the origins allowed to call the API.
type CORS struct {
	Origins []string `yaml:"origins" env:"REGISTRAR_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// MustLoad reads, validates, and returns the application config. It exits
// the process on failure so main never runs with a half-loaded config.
func MustLoad() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		flagPath := flag.String("config", "", "path to the configuration YAML file")
		flag.Parse()
		path = *flagPath
	}

	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

// Load builds the configuration from the YAML file at path plus the
// environment. An empty path means environment only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.CORS.Origins = pstrings.DedupeAndTrim(cfg.CORS.Origins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate enforces the struct tags plus the cross-field rule the tags
// cannot express: the selected backend must have connection settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Database.Backend {
	case BackendPostgres:
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("postgres backend selected but REGISTRAR_POSTGRES_DSN is not set")
		}
	case BackendMongo:
		if c.Database.Mongo.URI == "" {
			return fmt.Errorf("mongodb backend selected but REGISTRAR_MONGO_URI is not set")
		}
	}
	return nil
}
