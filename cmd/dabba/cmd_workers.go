package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/dabba/app/jobs"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/pkg/cache"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/queue"
)

var queueWorkersFlag int

// dabba queue:work — standalone queue worker, for running mail delivery
// outside the web process. Requires the Redis driver so both processes
// share one queue.
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Start the queue worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if err := cache.Connect(); err != nil {
			return fmt.Errorf("queue:work needs redis: %w", err)
		}
		queue.SetDriver(queue.NewRedisDriver(cache.RDB))
		queue.Register("jobs.OrderConfirmationJob", func() queue.Job { return &jobs.OrderConfirmationJob{} })

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 5
		}

		logger.Info("queue worker started", "workers", workers)
		queue.StartWorkers(ctx, workers)

		<-ctx.Done()
		logger.Info("queue worker stopped")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 5, "Number of concurrent workers")
}
