// Command repod runs the rights-management repository daemon: the HTTP
// API backed by a Blazegraph triple store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-yaml"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/clearrights/repository"
	"github.com/clearrights/repository/api"
	"github.com/clearrights/repository/index"
	"github.com/clearrights/repository/store/blazegraph"
)

type config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`

	Blazegraph struct {
		URL        string `yaml:"url"`
		FixtureDir string `yaml:"fixture_dir"`
	} `yaml:"blazegraph"`

	Index struct {
		URL   string `yaml:"url"`
		Token string `yaml:"token"`
	} `yaml:"index"`

	Service repository.Config `yaml:"service"`
}

func loadConfig(path string) (config, error) {
	cfg := config{
		Listen:   ":8004",
		LogLevel: "info",
		Service:  repository.DefaultConfig(),
	}
	cfg.Blazegraph.URL = "http://localhost:9999/bigdata"

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	// environment overrides
	for env, target := range map[string]*string{
		"REPOD_LISTEN":         &cfg.Listen,
		"REPOD_LOG_LEVEL":      &cfg.LogLevel,
		"REPOD_BLAZEGRAPH_URL": &cfg.Blazegraph.URL,
		"REPOD_FIXTURE_DIR":    &cfg.Blazegraph.FixtureDir,
		"REPOD_INDEX_URL":      &cfg.Index.URL,
		"REPOD_INDEX_TOKEN":    &cfg.Index.Token,
	} {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
	return cfg, nil
}

func newLogger(level string) *slog.Logger {
	var lv slog.Level
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		lv = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lv}))
}

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := newLogger(cfg.LogLevel)

	if err := run(cfg, logger); err != nil {
		logger.Error("daemon failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config, logger *slog.Logger) error {
	storeOpts := []blazegraph.Option{blazegraph.WithLogger(logger)}
	if cfg.Blazegraph.FixtureDir != "" {
		fixtures, err := blazegraph.FixturesFromDir(cfg.Blazegraph.FixtureDir)
		if err != nil {
			return err
		}
		logger.Info("loaded namespace fixtures", "count", len(fixtures))
		storeOpts = append(storeOpts, blazegraph.WithFixtures(fixtures...))
	}
	bg := blazegraph.New(cfg.Blazegraph.URL, storeOpts...)

	var notifier index.Notifier = index.Nop{}
	if cfg.Index.URL != "" {
		notifier = index.NewHTTP(cfg.Index.URL, index.WithToken(cfg.Index.Token))
	}

	svc, err := repository.NewService(
		repository.WithOpener(bg),
		repository.WithNotifier(notifier),
		repository.WithLogger(logger),
		repository.WithConfig(cfg.Service),
	)
	if err != nil {
		return err
	}

	root := chi.NewRouter()
	root.Handle("/metrics", promhttp.Handler())
	root.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	root.Mount("/", api.New(svc, logger).Handler())

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           root,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}
