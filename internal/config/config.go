// Package config builds the immutable runtime configuration for the file
// drop service from an optional .env file, environment variables and
// command-line flags.
package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Configuration keys. They double as environment variable names.
const (
	KeyPort            = "PORT"
	KeyUploadDir       = "UPLOAD_DIR"
	KeyMaxUploadMB     = "MAX_CONTENT_LENGTH_MB"
	KeyAPIKey          = "API_KEY"
	KeyLogLevel        = "LOG_LEVEL"
	KeyLogFormat       = "LOG_FORMAT"
	KeyReadTimeout     = "READ_TIMEOUT"
	KeyWriteTimeout    = "WRITE_TIMEOUT"
	KeyShutdownTimeout = "SHUTDOWN_TIMEOUT"
	KeyRateLimit       = "RATE_LIMIT_PER_MINUTE"
	KeyCORSOrigins     = "CORS_ORIGINS"
)

const bytesPerMiB = 1024 * 1024

// Config holds everything the server needs. It is built once at startup by
// Load and passed by value; nothing mutates it afterwards.
type Config struct {
	Port      int
	UploadDir string

	// MaxUploadBytes is the largest request body accepted by POST /upload.
	MaxUploadBytes int64

	// APIKey is the shared secret expected in X-API-Key. Empty disables auth.
	APIKey string

	LogLevel  string
	LogFormat string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	// RateLimitPerMinute caps requests per client IP. Zero disables it.
	RateLimitPerMinute int
	CORSOrigins        []string
}

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// AuthEnabled reports whether requests must carry the API key.
func (c Config) AuthEnabled() bool {
	return c.APIKey != ""
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyPort, "8000")
	v.SetDefault(KeyUploadDir, "uploads")
	v.SetDefault(KeyMaxUploadMB, "50")
	v.SetDefault(KeyAPIKey, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyReadTimeout, "5m")
	v.SetDefault(KeyWriteTimeout, "5m")
	v.SetDefault(KeyShutdownTimeout, "10s")
	v.SetDefault(KeyRateLimit, "0")
	v.SetDefault(KeyCORSOrigins, "")
}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) without overriding variables already set in the environment.
// A missing file is not an error; found reports whether anything was read.
func LoadDotEnv(files ...string) (found bool, err error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Load reads and validates the configuration held by v. Environment
// variables are consulted automatically; flags must already be bound by the
// caller. All validation problems are reported together.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	val := NewValidator()

	cfg := Config{
		Port:               val.ValidatePort(KeyPort, v.GetString(KeyPort)),
		UploadDir:          strings.TrimSpace(v.GetString(KeyUploadDir)),
		APIKey:             v.GetString(KeyAPIKey),
		LogLevel:           strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		LogFormat:          strings.ToLower(strings.TrimSpace(v.GetString(KeyLogFormat))),
		ReadTimeout:        val.ValidateDuration(KeyReadTimeout, v.GetString(KeyReadTimeout)),
		WriteTimeout:       val.ValidateDuration(KeyWriteTimeout, v.GetString(KeyWriteTimeout)),
		ShutdownTimeout:    val.ValidateDuration(KeyShutdownTimeout, v.GetString(KeyShutdownTimeout)),
		RateLimitPerMinute: val.ValidateNonNegativeInt(KeyRateLimit, v.GetString(KeyRateLimit)),
		CORSOrigins:        splitList(v.GetString(KeyCORSOrigins)),
	}

	maxMB := val.ValidatePositiveInt(KeyMaxUploadMB, v.GetString(KeyMaxUploadMB))
	cfg.MaxUploadBytes = int64(maxMB) * bytesPerMiB

	if cfg.UploadDir == "" {
		val.AddError(KeyUploadDir, "must not be empty")
	}
	val.ValidateEnum(KeyLogLevel, cfg.LogLevel, []string{"debug", "info", "warn", "error"})
	val.ValidateEnum(KeyLogFormat, cfg.LogFormat, []string{"text", "json"})

	if val.HasErrors() {
		return Config{}, val
	}
	return cfg, nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
