// coachd is the FIAE coach HTTP server. It assembles the configured
// provider client with its resilience middleware, the response cache, the
// interaction log, and the web API, and runs until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fiaecoach/pkg/analysis"
	"fiaecoach/pkg/career"
	"fiaecoach/pkg/coach"
	"fiaecoach/pkg/config"
	"fiaecoach/pkg/llm/middleware/metrics"
	"fiaecoach/pkg/llm/provider"
	"fiaecoach/pkg/logx"
	"fiaecoach/pkg/persistence"
	"fiaecoach/pkg/tokens"
	"fiaecoach/pkg/webapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "coachd: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger := logx.NewLogger("coachd")

	base, err := provider.NewBase(&cfg)
	if err != nil {
		return err
	}

	counter, err := tokens.NewCounter()
	if err != nil {
		logger.Warn("tokenizer unavailable, falling back to estimates: %v", err)
	}

	recorder := metrics.NewPrometheusRecorder()
	client, _ := provider.NewResilient(base, &cfg, recorder, metrics.DefaultUsageExtractor(counter))

	store, err := persistence.Open(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	gateway := coach.New(coach.Options{
		Client:         client,
		CacheEntries:   cfg.Cache.MaxEntries,
		CacheTTL:       cfg.Cache.TTL.Std(),
		SweepInterval:  cfg.Cache.SweepInterval.Std(),
		MaxInputTokens: cfg.Limits.MaxInputTokens,
		Sink:           store,
		Recorder:       recorder,
		Counter:        counter,
	})
	defer gateway.Close()

	server := webapi.NewServer(&cfg, gateway, store, analysis.New(client, store), career.New(client))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting with model %s", client.GetModelName())
	return server.Serve(ctx)
}
