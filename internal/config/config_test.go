package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{KeyPort, KeyUploadDir, KeyMaxUploadMB, KeyAPIKey, KeyLogLevel, KeyLogFormat} {
		t.Setenv(key, "")
	}

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Port)
	}
	if cfg.UploadDir != "uploads" {
		t.Errorf("UploadDir = %q, want uploads", cfg.UploadDir)
	}
	if cfg.MaxUploadBytes != 50*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 50 MiB", cfg.MaxUploadBytes)
	}
	if cfg.AuthEnabled() {
		t.Error("auth should be disabled when API_KEY is unset")
	}
	if cfg.WriteTimeout != 5*time.Minute {
		t.Errorf("WriteTimeout = %s, want 5m", cfg.WriteTimeout)
	}
	if cfg.Addr() != ":8000" {
		t.Errorf("Addr() = %q, want :8000", cfg.Addr())
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv(KeyPort, "9090")
	t.Setenv(KeyUploadDir, "/srv/drop")
	t.Setenv(KeyMaxUploadMB, "5")
	t.Setenv(KeyAPIKey, "s3cret")
	t.Setenv(KeyLogFormat, "JSON")
	t.Setenv(KeyCORSOrigins, "https://a.example, https://b.example,")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Port != 9090 || cfg.UploadDir != "/srv/drop" {
		t.Errorf("unexpected port/dir: %d %q", cfg.Port, cfg.UploadDir)
	}
	if cfg.MaxUploadBytes != 5*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 5 MiB", cfg.MaxUploadBytes)
	}
	if !cfg.AuthEnabled() || cfg.APIKey != "s3cret" {
		t.Errorf("APIKey = %q, auth enabled = %v", cfg.APIKey, cfg.AuthEnabled())
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_ExplicitValuesOverrideEnvironment(t *testing.T) {
	t.Setenv(KeyPort, "9090")

	v := viper.New()
	v.Set(KeyPort, "7070")

	cfg, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Port != 7070 {
		t.Errorf("Port = %d, want 7070", cfg.Port)
	}
}

func TestLoad_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port not a number", KeyPort, "http"},
		{"port out of range", KeyPort, "70000"},
		{"zero upload size", KeyMaxUploadMB, "0"},
		{"negative upload size", KeyMaxUploadMB, "-3"},
		{"bad log level", KeyLogLevel, "verbose"},
		{"bad log format", KeyLogFormat, "xml"},
		{"bad duration", KeyReadTimeout, "soon"},
		{"negative rate limit", KeyRateLimit, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load(viper.New())
			if err == nil {
				t.Fatalf("expected error for %s=%q", tt.key, tt.value)
			}

			var v *Validator
			if !errors.As(err, &v) {
				t.Fatalf("expected *Validator, got %T", err)
			}
			if v.Errors()[0].Field != tt.key {
				t.Errorf("error field = %q, want %q", v.Errors()[0].Field, tt.key)
			}
		})
	}
}

func TestLoad_ReportsAllErrors(t *testing.T) {
	t.Setenv(KeyPort, "nope")
	t.Setenv(KeyMaxUploadMB, "nope")

	_, err := Load(viper.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "2 error(s)") {
		t.Errorf("expected both errors reported, got: %s", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	found, err := LoadDotEnv(filepath.Join(dir, "missing.env"))
	if err != nil || found {
		t.Fatalf("missing file: found=%v err=%v", found, err)
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("FILEDROP_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FILEDROP_TEST_DOTENV", "")
	os.Unsetenv("FILEDROP_TEST_DOTENV")

	found, err = LoadDotEnv(path)
	if err != nil || !found {
		t.Fatalf("existing file: found=%v err=%v", found, err)
	}
	if got := os.Getenv("FILEDROP_TEST_DOTENV"); got != "from-file" {
		t.Errorf("FILEDROP_TEST_DOTENV = %q, want from-file", got)
	}
}
