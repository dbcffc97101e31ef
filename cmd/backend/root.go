package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"simple-file-drop/internal/config"
	"simple-file-drop/internal/server"
)

// newRootCmd builds the command tree. Flags are bound into v so they take
// precedence over environment variables when given explicitly.
func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filedrop",
		Short: "Minimal HTTP file drop: upload, list and download files",
		Long: "filedrop serves a single directory over HTTP.\n\n" +
			"Configuration comes from flags, environment variables or a .env file:\n" +
			"  PORT, UPLOAD_DIR, MAX_CONTENT_LENGTH_MB, API_KEY, LOG_LEVEL, LOG_FORMAT,\n" +
			"  READ_TIMEOUT, WRITE_TIMEOUT, SHUTDOWN_TIMEOUT, RATE_LIMIT_PER_MINUTE, CORS_ORIGINS",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, v)
		},
	}

	flags := cmd.Flags()
	flags.Int("port", 8000, "listen port")
	flags.String("dir", "uploads", "storage directory (created if missing)")
	flags.Int("max-mb", 50, "maximum upload size in MiB")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text or json")

	_ = v.BindPFlag(config.KeyPort, flags.Lookup("port"))
	_ = v.BindPFlag(config.KeyUploadDir, flags.Lookup("dir"))
	_ = v.BindPFlag(config.KeyMaxUploadMB, flags.Lookup("max-mb"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func runServe(cmd *cobra.Command, v *viper.Viper) error {
	dotenv, err := config.LoadDotEnv()
	if err != nil {
		return fmt.Errorf("read .env: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	logger := server.NewLogger(os.Stdout, server.ParseLogLevel(cfg.LogLevel), cfg.LogFormat == "json")
	if !dotenv {
		logger.Debug("no .env file found, reading from environment", nil)
	}

	store, err := server.NewDirStorage(cfg.UploadDir)
	if err != nil {
		logger.Error("storage init failed", map[string]interface{}{"dir": cfg.UploadDir}, err)
		return err
	}

	build := server.BuildInfo{Version: Version, Commit: GitCommit}
	srv := server.New(server.Config{
		Addr:               cfg.Addr(),
		Build:              build,
		Auth:               server.AuthConfig{APIKey: cfg.APIKey},
		MaxUploadBytes:     cfg.MaxUploadBytes,
		ReadTimeout:        cfg.ReadTimeout,
		WriteTimeout:       cfg.WriteTimeout,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSOrigins,
		Store:              store,
		Logger:             logger,
	})

	// Start the HTTP server in a background goroutine so signals can be
	// handled while it runs.
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting", map[string]interface{}{
			"addr":         cfg.Addr(),
			"dir":          store.Dir(),
			"max_bytes":    cfg.MaxUploadBytes,
			"auth_enabled": cfg.AuthEnabled(),
			"version":      build.Version,
			"commit":       build.Commit,
		})
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", nil, err)
			return err
		}
		logger.Info("shutdown complete", nil)
		return nil
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", nil, err)
		}
		return err
	}
}
