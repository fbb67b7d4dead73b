// Package config loads dormstats configuration from environment variables.
//
// Configuration is read once at startup into an immutable value that is
// passed explicitly into the components that need it; nothing in the
// pipeline reads the environment directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// MySQL holds connection settings for the MySQL server.
type MySQL struct {
	// Host is the server hostname or IP (default: 127.0.0.1).
	Host string
	// Port is the server port (default: 3306).
	Port int
	// User is the MySQL user (default: root).
	User string
	// Password is the MySQL password (default: empty).
	Password string
	// Database is the database name (default: dormstats).
	Database string
	// ConnectTimeout bounds connection establishment (default: 10s).
	ConnectTimeout time.Duration
}

// Config holds all application configuration.
type Config struct {
	MySQL MySQL
}

// Load builds a Config from the environment. A .env file in the working
// directory is read first if present; real environment variables win over
// .env entries.
func Load() (Config, error) {
	// godotenv does not override variables already set in the environment.
	_ = godotenv.Load()

	port, err := intEnv("MYSQL_PORT", 3306)
	if err != nil {
		return Config{}, err
	}
	timeoutSec, err := intEnv("MYSQL_CONNECT_TIMEOUT", 10)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		MySQL: MySQL{
			Host:           strEnv("MYSQL_HOST", "127.0.0.1"),
			Port:           port,
			User:           strEnv("MYSQL_USER", "root"),
			Password:       os.Getenv("MYSQL_PASSWORD"),
			Database:       strEnv("MYSQL_DATABASE", "dormstats"),
			ConnectTimeout: time.Duration(timeoutSec) * time.Second,
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks configuration values and returns an error for invalid settings.
func (c *Config) Validate() error {
	if c.MySQL.Host == "" {
		return fmt.Errorf("MYSQL_HOST must not be empty")
	}
	if c.MySQL.Port <= 0 || c.MySQL.Port > 65535 {
		return fmt.Errorf("MYSQL_PORT out of range: %d", c.MySQL.Port)
	}
	if c.MySQL.User == "" {
		return fmt.Errorf("MYSQL_USER must not be empty")
	}
	if c.MySQL.Database == "" {
		return fmt.Errorf("MYSQL_DATABASE must not be empty")
	}
	if c.MySQL.ConnectTimeout <= 0 {
		return fmt.Errorf("MYSQL_CONNECT_TIMEOUT must be positive, got %s", c.MySQL.ConnectTimeout)
	}
	return nil
}

func strEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return n, nil
}
