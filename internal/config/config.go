// Package config reads the service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all settings of the backend.
type Config struct {
	APIURL   string `env:"API_URL" envDefault:"http://localhost:8080"`
	Port     string `env:"PORT" envDefault:"8080"`
	GinMode  string `env:"GIN_MODE" envDefault:"release"`
	DataDir  string `env:"DATA_DIR" envDefault:"data"`
	DocDir   string `env:"DOCUMENT_DIR" envDefault:"documents"`
	Database Database

	LogFormat string `env:"LOG_FORMAT"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:" "`
	EnablePprof      bool     `env:"ENABLE_PPROF" envDefault:"false"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"12h"`

	DefaultAdminUsername string `env:"DEFAULT_ADMIN_USERNAME" envDefault:"admin"`
	DefaultAdminPassword string `env:"DEFAULT_ADMIN_PASSWORD"`
}

// Database selects and configures the store.
//
// When Driver is empty and Host is set, postgres is used, otherwise sqlite.
type Database struct {
	Driver   string `env:"DB_DRIVER"`
	Host     string `env:"DB_HOST"`
	Port     string `env:"DB_PORT"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Name     string `env:"DB_NAME" envDefault:"smartenroll"`
}

var (
	ErrInvalidAPIURL = errors.New("API_URL must be an absolute URL")
	ErrNoJWTSecret   = errors.New("JWT_SECRET must be set")
)

// Load reads an optional .env file and parses the environment into a Config.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || !u.IsAbs() {
		return ErrInvalidAPIURL
	}

	if c.JWTSecret == "" {
		return ErrNoJWTSecret
	}

	return nil
}

// URL returns the parsed API_URL.
func (c Config) URL() *url.URL {
	u, _ := url.Parse(c.APIURL)
	return u
}

// StoreDriver resolves which gorm dialector to use.
func (d Database) StoreDriver() string {
	if d.Driver != "" {
		return d.Driver
	}

	if d.Host != "" {
		return "postgres"
	}

	return "sqlite"
}
