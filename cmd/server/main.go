package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/katakuxiko/llmrelay/internal/api"
	"github.com/katakuxiko/llmrelay/internal/config"
	"github.com/katakuxiko/llmrelay/internal/logx"
	"github.com/katakuxiko/llmrelay/internal/metrics"
	"github.com/katakuxiko/llmrelay/internal/service"
	"github.com/katakuxiko/llmrelay/internal/store"
	"github.com/katakuxiko/llmrelay/internal/util"
)

func main() {
	// config
	cfg, err := config.Load()
	if err != nil {
		logx.Log.Fatal().Err(err).Msg("load config")
	}
	logx.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logx.Log.Fatal().Err(err).Msg("invalid configuration")
	}

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	// журнал вызовов (опционально)
	var rec service.Recorder
	if cfg.PgConn != "" {
		pg, err := store.NewPgStore(cfg.PgConn)
		if err != nil {
			logx.Log.Fatal().Err(err).Msg("open exchange log")
		}
		defer pg.Close()
		rec = pg
	}

	// services
	llm := service.NewLLMFactory(cfg, m)
	chat := service.NewChatService(llm, rec)

	// api
	app := api.NewApp(cfg, chat, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- app.Listen(cfg.ServerAddr) }()

	ev := logx.Log.Info().
		Str("addr", cfg.ServerAddr).
		Str("credential_source", cfg.CredentialSource).
		Str("llm_base_url", cfg.LMBaseURL).
		Bool("exchange_log", rec != nil)
	if cfg.UsesServerKey() {
		ev = ev.Str("server_key", util.MaskSecret(cfg.ServerAPIKey))
	}
	ev.Msg("server started")

	select {
	case err := <-errCh:
		if err != nil {
			logx.Log.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		logx.Log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logx.Log.Error().Err(err).Msg("shutdown")
		}
	}
}
