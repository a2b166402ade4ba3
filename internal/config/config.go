// Package config loads server settings from a yaml file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Store kinds.
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

var ErrUnknownStore = errors.New("unknown store kind")

type Config struct {
	LogLevel  string `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log-format" env:"LOG_FORMAT" env-default:"text"`
	HTTP      HTTP   `yaml:"http"`
	Store     Store  `yaml:"store"`
	Redis     Redis  `yaml:"redis"`
}

type HTTP struct {
	Addr            string        `yaml:"addr" env:"HTTP_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown-timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Store struct {
	Kind       string        `yaml:"kind" env:"STORE_KIND" env-default:"memory"`
	SessionTTL time.Duration `yaml:"session-ttl" env:"STORE_SESSION_TTL" env-default:"24h"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
	Prefix   string `yaml:"prefix" env:"REDIS_PREFIX" env-default:"tictactoe:session:"`
}

// Addr returns host:port.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// Load reads path when it exists and the environment otherwise. A .env file
// in the working directory is loaded into the environment first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{}
	if path != "" && fileExists(path) {
		if err := cleanenv.ReadConfig(path, conf); err != nil {
			return nil, fmt.Errorf("unable to load config file: %w", err)
		}
	} else if err := cleanenv.ReadEnv(conf); err != nil {
		return nil, fmt.Errorf("unable to load config from env: %w", err)
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	conf, err := Load(path)
	if err != nil {
		panic(err)
	}
	return conf
}

// Validate checks values cleanenv cannot.
func (c *Config) Validate() error {
	switch c.Store.Kind {
	case StoreMemory, StoreRedis:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStore, c.Store.Kind)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
