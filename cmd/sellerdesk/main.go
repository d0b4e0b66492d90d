package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sellerdesk/sellerdesk/internal/application/orders"
	"github.com/sellerdesk/sellerdesk/internal/domain/currency"
	"github.com/sellerdesk/sellerdesk/internal/domain/order"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/config"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/event"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/logger"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/remote"
	"github.com/sellerdesk/sellerdesk/internal/infrastructure/store"
	"github.com/sellerdesk/sellerdesk/internal/interfaces/http/handler"
	"github.com/sellerdesk/sellerdesk/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(cfg.Log)
	defer func() { _ = log.Sync() }()

	log.Info("Starting sellerdesk",
		zap.String("app", cfg.App.Name),
		zap.String("remote", cfg.Remote.BaseURL),
		zap.String("store", cfg.Store.Path))

	annotations, err := store.Open(cfg.Store.Path, log)
	if err != nil {
		log.Fatal("Failed to open annotation store", zap.Error(err))
	}
	defer func() { _ = annotations.Close() }()

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(orders.NewPersistenceHandler(annotations, log), order.EventTypeOrderUpdated)

	client := remote.NewClient(cfg.Remote, log)
	manager := orders.NewManager(client, annotations, bus, cfg.Remote.PageSize, log)

	// Exchange rates are fetched once per session; conversion is simply
	// unavailable when the fetch fails
	var rates currency.Rates
	rateCtx, cancel := context.WithTimeout(context.Background(), cfg.Remote.Timeout)
	rates, err = remote.NewRateSource(cfg.Currency.RateURL, cfg.Remote.Timeout, log).Fetch(rateCtx)
	cancel()
	if err != nil {
		log.Warn("Exchange rate fetch failed, conversion disabled", zap.Error(err))
		rates = nil
	}

	engine := router.New(router.Handlers{
		Order:     handler.NewOrderHandler(manager, cfg.Remote.SellerBaseURL, rates, cfg.Currency.Target),
		Packaging: handler.NewPackagingHandler(manager),
	}, log)

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Shutdown failed", zap.Error(err))
	}
}
