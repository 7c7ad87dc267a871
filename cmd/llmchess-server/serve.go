package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"llmchess/internal/server/catalog"
	"llmchess/internal/server/config"
	"llmchess/internal/server/credential"
	"llmchess/internal/server/http"
	"llmchess/internal/server/logging"
	"llmchess/internal/server/processor"
	"llmchess/internal/server/provider"
	"llmchess/internal/server/provider/anthropic"
	"llmchess/internal/server/provider/openai"
	"llmchess/internal/server/secrets"
	"llmchess/internal/server/selector"
	"llmchess/internal/server/service"
	"llmchess/internal/server/translate"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	gracefulShutdownTimeout = 5 * time.Second
	bootstrapTimeout        = 20 * time.Second
)

type serveFlags struct {
	host      string
	port      int
	provider  string
	model     string
	secretID  string
	logLevel  string
	logFormat string
	dev       bool
	pidPath   string
	pidLock   bool
}

func (f *serveFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.host, "host", "", "listen host")
	fs.IntVar(&f.port, "port", 0, "listen port")
	fs.StringVar(&f.provider, "provider", "", "model provider: openai or anthropic")
	fs.StringVar(&f.model, "model", "", "default model id")
	fs.StringVar(&f.secretID, "api-key-secret-id", "", "AWS Secrets Manager id holding the startup key (id or id#field)")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", "", "text or json")
	fs.BoolVar(&f.dev, "dev", false, "development mode (relaxed rate limit, fixed admin secret)")
	fs.StringVar(&f.pidPath, "pid", "", "optional path to write a PID file")
	fs.BoolVar(&f.pidLock, "pid-lock", false, "lock the PID file to allow one instance (requires --pid)")
}

// apply copies explicitly set flags over cfg
func (f *serveFlags) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("host", func() { cfg.Host = f.host })
	set("port", func() { cfg.Port = f.port })
	set("provider", func() { cfg.Provider = f.provider })
	set("model", func() { cfg.DefaultModel = f.model })
	set("api-key-secret-id", func() { cfg.APIKeySecretID = f.secretID })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
	set("dev", func() { cfg.Dev = f.dev })
}

func loadConfig(cmd *cobra.Command, path string, f *serveFlags) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if f != nil {
		f.apply(cmd.Flags(), &cfg)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, configPath string, f *serveFlags) error {
	if f.pidLock && f.pidPath == "" {
		return fmt.Errorf("--pid-lock requires --pid")
	}

	cfg, err := loadConfig(cmd, configPath, f)
	if err != nil {
		return err
	}

	log, err := logging.New(os.Stderr, logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Debug: cfg.Dev})
	if err != nil {
		return err
	}
	slog.SetDefault(log)

	if f.pidPath != "" {
		pf, err := acquirePIDFile(f.pidPath, f.pidLock)
		if err != nil {
			return fmt.Errorf("pid file: %w", err)
		}
		defer pf.release()
		log.Info("pid file written", "path", f.pidPath, "lock", f.pidLock)
	}

	// 1. Provider adapter and credential store
	prov := newProvider(cfg)
	store := credential.NewStore(prov, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bootstrapCredential(ctx, cfg, store, log)

	// 2. Admin guard for credential management
	var svc *service.Service
	if cfg.AdminSecret != "" {
		svc, err = service.New(cfg.AdminSecret)
		if err != nil {
			return err
		}
		if cfg.Dev {
			log.Warn("using fixed admin secret (dev mode)")
		}
	}

	// 3. Processor and HTTP app
	proc := processor.New(processor.Deps{
		Store:        store,
		Selector:     selector.New(prov, cfg.ProviderTimeout, log),
		Catalog:      catalog.New(prov, log),
		Translator:   translate.New(log),
		ProviderName: prov.Name(),
		Logger:       log,
	})
	app := http.NewFiberApp(proc, svc, http.Options{
		Origins:   cfg.Origins(),
		RateLimit: cfg.RateLimit,
		Dev:       cfg.Dev,
		Logger:    log,
	})

	listenErr := make(chan error, 1)
	go func() {
		log.Info("llmchess server starting",
			"addr", cfg.Addr(),
			"provider", prov.Name(),
			"model", prov.DefaultModel(),
			"api_key_configured", store.Configured(),
			"admin_guard", svc != nil,
			"rate_limit_per_min", cfg.RateLimit,
			"dev", cfg.Dev)
		listenErr <- app.Listen(cfg.Addr())
	}()

	select {
	case <-ctx.Done():
	case err := <-listenErr:
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
		}
		return nil
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}
	log.Info("server exited")
	return nil
}

func newProvider(cfg config.Config) provider.Provider {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return anthropic.New(cfg.DefaultModel,
			anthropic.WithBaseURL(cfg.ProviderBaseURL),
			anthropic.WithTemperature(cfg.Temperature))
	default:
		return openai.New(cfg.DefaultModel,
			openai.WithBaseURL(cfg.ProviderBaseURL),
			openai.WithTemperature(cfg.Temperature))
	}
}

// bootstrapCredential seeds the store from config or Secrets Manager. Failures
// are logged and leave the store empty; the server still starts.
func bootstrapCredential(ctx context.Context, cfg config.Config, store *credential.Store, log *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, bootstrapTimeout)
	defer cancel()

	candidate := credential.New(cfg.APIKey)
	if candidate.IsZero() && cfg.APIKeySecretID != "" {
		src, err := secrets.NewSource(ctx, cfg.AWSRegion, log)
		if err != nil {
			log.Warn("secrets manager unavailable", "err", err)
			return
		}
		candidate, err = src.Credential(ctx, cfg.APIKeySecretID)
		if err != nil {
			log.Warn("startup credential not loaded", "secret_id", cfg.APIKeySecretID, "err", err)
			return
		}
	}
	store.Bootstrap(ctx, candidate)
}
