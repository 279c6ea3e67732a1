// AngelaMos | 2026
// config_test.go

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "Storefront API",
			Environment: "development",
		},
		Server: ServerConfig{
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			URL: "postgres://localhost:5432/storefront",
		},
		Redis: RedisConfig{
			URL: "redis://localhost:6379/0",
		},
		JWT: JWTConfig{
			Secret:        strings.Repeat("s", MinJWTSecretLength),
			TokenValidity: 5 * time.Hour,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validate(validConfig()); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing database url",
			mutate:  func(c *Config) { c.Database.URL = "" },
			wantErr: "DATABASE_URL",
		},
		{
			name:    "missing redis url",
			mutate:  func(c *Config) { c.Redis.URL = "" },
			wantErr: "REDIS_URL",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "" },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.JWT.Secret = "short" },
			wantErr: "at least",
		},
		{
			name:    "non-positive token validity",
			mutate:  func(c *Config) { c.JWT.TokenValidity = 0 },
			wantErr: "token_validity",
		},
		{
			name: "cors wildcard with credentials",
			mutate: func(c *Config) {
				c.CORS.AllowCredentials = true
				c.CORS.AllowedOrigins = []string{"*"}
			},
			wantErr: "wildcard",
		},
		{
			name: "insecure otel in production",
			mutate: func(c *Config) {
				c.App.Environment = "production"
				c.Otel.Enabled = true
				c.Otel.Insecure = true
			},
			wantErr: "OTEL_INSECURE",
		},
		{
			name:    "non-positive read timeout",
			mutate:  func(c *Config) { c.Server.ReadTimeout = 0 },
			wantErr: "read_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
