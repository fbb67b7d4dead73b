package config

import (
	"testing"
	"time"
)

func clearMySQLEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"MYSQL_HOST", "MYSQL_PORT", "MYSQL_USER",
		"MYSQL_PASSWORD", "MYSQL_DATABASE", "MYSQL_CONNECT_TIMEOUT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearMySQLEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MySQL.Host != "127.0.0.1" {
		t.Errorf("Host = %q, want 127.0.0.1", cfg.MySQL.Host)
	}
	if cfg.MySQL.Port != 3306 {
		t.Errorf("Port = %d, want 3306", cfg.MySQL.Port)
	}
	if cfg.MySQL.User != "root" {
		t.Errorf("User = %q, want root", cfg.MySQL.User)
	}
	if cfg.MySQL.Password != "" {
		t.Errorf("Password = %q, want empty", cfg.MySQL.Password)
	}
	if cfg.MySQL.Database != "dormstats" {
		t.Errorf("Database = %q, want dormstats", cfg.MySQL.Database)
	}
	if cfg.MySQL.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %s, want 10s", cfg.MySQL.ConnectTimeout)
	}
}

func TestLoadFromEnv(t *testing.T) {
	clearMySQLEnv(t)
	t.Setenv("MYSQL_HOST", "db.internal")
	t.Setenv("MYSQL_PORT", "13306")
	t.Setenv("MYSQL_USER", "loader")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DATABASE", "dorms_test")
	t.Setenv("MYSQL_CONNECT_TIMEOUT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.MySQL.Host != "db.internal" {
		t.Errorf("Host = %q, want db.internal", cfg.MySQL.Host)
	}
	if cfg.MySQL.Port != 13306 {
		t.Errorf("Port = %d, want 13306", cfg.MySQL.Port)
	}
	if cfg.MySQL.Password != "secret" {
		t.Errorf("Password = %q, want secret", cfg.MySQL.Password)
	}
	if cfg.MySQL.ConnectTimeout != 3*time.Second {
		t.Errorf("ConnectTimeout = %s, want 3s", cfg.MySQL.ConnectTimeout)
	}
}

func TestLoadInvalidPort(t *testing.T) {
	clearMySQLEnv(t)
	t.Setenv("MYSQL_PORT", "not-a-number")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric MYSQL_PORT")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty host",
			mutate:  func(c *Config) { c.MySQL.Host = "" },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.MySQL.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "empty user",
			mutate:  func(c *Config) { c.MySQL.User = "" },
			wantErr: true,
		},
		{
			name:    "empty database",
			mutate:  func(c *Config) { c.MySQL.Database = "" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.MySQL.ConnectTimeout = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{MySQL: MySQL{
				Host:           "127.0.0.1",
				Port:           3306,
				User:           "root",
				Database:       "dormstats",
				ConnectTimeout: 10 * time.Second,
			}}
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
