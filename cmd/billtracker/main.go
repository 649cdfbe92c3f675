package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"billtracker/internal/amqp"
	"billtracker/internal/auth"
	"billtracker/internal/cli"
	"billtracker/internal/config"
	"billtracker/internal/core"
	apphttp "billtracker/internal/http"
	"billtracker/internal/log"
	"billtracker/internal/metrics"
	"billtracker/internal/ports"
	"billtracker/internal/services"
)

func main() {
	cfg, logger := cli.Bootstrap((*config.Config).Validate)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
	ctx = log.WithLogger(ctx, logger)

	store, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize record store", log.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close record store", log.FieldError, err)
		}
	}()

	var publisher ports.EventPublisher = services.NopPublisher{}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without change events", log.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
			logger.Info("Initialized AMQP client", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	m := metrics.New()
	urls := core.URLBuilder{Base: cfg.BillURLBase, GeneralAssembly: cfg.GeneralAssembly}
	bills := services.NewBillService(store.Store, publisher, urls, m)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Bills:              bills,
		Imports:            services.NewImportService(bills, m),
		Sessions:           auth.NewManager(cfg.AdminPassword, cfg.SessionSecret, cfg.SessionTTL, cfg.CookieSecure),
		Metrics:            m,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		ImportMaxBytes:     cfg.ImportMaxBytes,
	})
	srv.BaseContext = func(net.Listener) context.Context { return ctx }

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting billtracker server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
