// Package server boots the whole application: config, database, cache,
// storage, queue, websocket hub, listeners, and finally the HTTP server
// with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/shashiranjanraj/dabba/app/jobs"
	"github.com/shashiranjanraj/dabba/app/listeners"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/internal/kernel"
	"github.com/shashiranjanraj/dabba/pkg/cache"
	"github.com/shashiranjanraj/dabba/pkg/database"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/migration"
	"github.com/shashiranjanraj/dabba/pkg/notification"
	"github.com/shashiranjanraj/dabba/pkg/queue"
	"github.com/shashiranjanraj/dabba/pkg/schedule"
	"github.com/shashiranjanraj/dabba/pkg/storage"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
	"github.com/shashiranjanraj/dabba/pkg/ws"
)

// staleCheckoutAge is how long an order may sit in payment_in_progress
// before the scheduler gives up on its checkout session. Hosted sessions
// expire on the gateway side after 24 hours.
const staleCheckoutAge = 24 * time.Hour

const shutdownTimeout = 10 * time.Second

// Start boots every subsystem and serves HTTP until SIGINT/SIGTERM.
func Start() error {
	if err := config.Load(); err != nil {
		return err
	}

	if uri := config.Get("LOG_MONGO_URI", ""); uri != "" {
		if err := logger.EnableMongo(uri, config.Get("LOG_MONGO_DB", "dabba"), config.Get("LOG_MONGO_COLLECTION", "logs")); err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		}
		defer logger.CloseMongo()
	}

	if err := database.Connect(); err != nil {
		return err
	}
	// Registered migrations cover the schema; serve applies any that are
	// pending so a fresh checkout boots without a separate migrate step.
	if err := migration.New(database.DB).Run(); err != nil {
		return err
	}

	if err := cache.Connect(); err != nil {
		// Sessions fall back to empty loads and the cache no-ops.
		logger.Warn("redis unavailable, cache and sessions degraded", "error", err)
	}

	storage.Connect()
	notification.SetSlackWebhook(config.Get("SLACK_WEBHOOK_URL", ""))

	queue.Register("jobs.OrderConfirmationJob", func() queue.Job { return &jobs.OrderConfirmationJob{} })
	if cache.RDB != nil {
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	queue.StartWorkers(ctx, 5)

	hub := ws.NewHub()
	go hub.Run()
	listeners.Register(hub)

	gateway := stripe.NewClient(config.StripeSecretKey())

	payments := services.NewPaymentService(
		repositories.NewOrderRepository(database.DB),
		repositories.NewUserRepository(database.DB),
		gateway,
	)
	schedule.Every(10).Minutes().
		Name("orders.expire-stale-checkouts").
		WithoutOverlapping().
		Run(func() {
			n, err := payments.ExpireStaleCheckouts(staleCheckoutAge)
			if err != nil {
				logger.Error("stale checkout sweep failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("expired stale checkouts", "count", n)
			}
		})
	schedule.Start(ctx)

	handler, err := kernel.Handler(kernel.Options{
		DB:      database.DB,
		Hub:     hub,
		Gateway: gateway,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
