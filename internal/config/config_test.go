package config

import (
	"log/slog"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("JWT_EXPIRY", "")
	t.Setenv("CORS_ALLOW_ORIGINS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBDriver != "mysql" {
		t.Errorf("DBDriver = %q, want mysql", cfg.DBDriver)
	}
	if cfg.DBMaxOpenConns != 10 {
		t.Errorf("DBMaxOpenConns = %d, want 10", cfg.DBMaxOpenConns)
	}
	if cfg.JWTExpiry != 7*24*time.Hour {
		t.Errorf("JWTExpiry = %v, want 168h", cfg.JWTExpiry)
	}
	if cfg.JWTSecret != devJWTSecret {
		t.Errorf("expected development secret fallback")
	}
	if len(cfg.CORSAllowOrigins) != 2 {
		t.Errorf("CORSAllowOrigins = %v", cfg.CORSAllowOrigins)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"missing secret in production", map[string]string{"ENVIRONMENT": "production", "JWT_SECRET": ""}},
		{"bad expiry", map[string]string{"JWT_EXPIRY": "soon"}},
		{"bad pool size", map[string]string{"DB_MAX_OPEN_CONNS": "0"}},
		{"bad seed flag", map[string]string{"SEED_PACKAGES": "maybe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "DEBUG"}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("got %v", cfg.SlogLevel())
	}
	cfg.LogLevel = "nonsense"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("got %v", cfg.SlogLevel())
	}
}
