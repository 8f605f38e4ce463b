package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/X-CodesTech/qAudio-sub000/internal/chatlog"
	"github.com/X-CodesTech/qAudio-sub000/internal/config"
	"github.com/X-CodesTech/qAudio-sub000/internal/otelutil"
)

func main() {
	_ = godotenv.Load()
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)
	defer func() { _ = log.Sync() }()

	if err := otelutil.Init(); err != nil {
		log.Info("tracing disabled", zap.Error(err))
	}
	defer otelutil.Flush()

	var store chatlog.Store = chatlog.Nop{}
	if cfg.ChatLog.DSN != "" {
		gs, err := chatlog.Open(cfg.ChatLog.DSN, log)
		if err != nil {
			log.Warn("chat persistence unavailable, continuing without it", zap.Error(err))
		} else {
			store = gs
		}
	}

	s := NewServer(WithConfig(cfg), WithLogger(log), WithChatStore(store))
	s.Start()
	defer s.Shutdown()

	server := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: s.router,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("forced shutdown", zap.Error(err))
		}
	}()

	log.Info("starting coordinator", zap.String("addr", cfg.HTTP.Address), zap.String("env", cfg.Env))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("server failed", zap.Error(err))
	}
}

func setupLogger(env string) *zap.Logger {
	if env == "local" || env == "dev" {
		log, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return log
	}
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return log
}
