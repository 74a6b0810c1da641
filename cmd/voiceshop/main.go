package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"voice-shop/config"
	"voice-shop/internal/application"
	"voice-shop/internal/infra/catalog"
	"voice-shop/internal/infra/httpapi"
	"voice-shop/internal/infra/metrics"
	"voice-shop/internal/infra/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults only when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Log.NewLogger(os.Stdout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	products, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		logger.Error("loading catalog", "error", err, "path", cfg.Catalog.Path)
		os.Exit(1)
	}
	logger.Debug("catalog loaded", "products", products.Summary())

	var delegate application.Delegate
	if cfg.Delegate.WebhookURL != "" {
		delegate = webhook.NewClient(cfg.Delegate.WebhookURL, cfg.DelegateTimeout())
	} else {
		logger.Warn("webhook not configured, unmatched queries will fail", "env", config.WebhookEnv)
	}

	m := metrics.New()
	resolver := application.NewResolver(products, delegate, m, logger)

	opts := httpapi.DefaultOptions()
	opts.ReadTimeout = cfg.Server.ReadTimeout
	opts.WriteTimeout = cfg.Server.WriteTimeout
	server := httpapi.NewServer(cfg.Server.Addr, opts, resolver, products, m, logger)

	logger.Info("starting voice shop",
		"addr", cfg.Server.Addr,
		"catalog_size", products.Len(),
		"delegate_configured", resolver.DelegateConfigured(),
	)

	if err := server.Start(ctx); err != nil {
		logger.Error("starting server", "error", err)
		os.Exit(1)
	}

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		logger.Error("stopping server", "error", err)
		os.Exit(1)
	}
}
