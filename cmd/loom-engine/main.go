// Command loom-engine runs the conversation tree engine as a long-lived
// process: it wires the container, subscribes an audit log to the event bus
// and hot-reloads domain tuning while waiting for shutdown.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	domaincfg "loom-backend/domain/config"
	"loom-backend/domain/events"
	"loom-backend/infrastructure/config"
	"loom-backend/infrastructure/di"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	container, err := di.InitializeContainer()
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	defer container.Close()

	logger := container.Logger
	logger.Info("engine starting",
		zap.String("environment", container.Config.Environment),
		zap.Float64("node_width", container.DomainConfig.NodeWidth))

	// Every domain event lands in the audit log.
	container.EventBus.Subscribe("*", func(ctx context.Context, event events.DomainEvent) {
		logger.Info("domain event",
			zap.String("type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()))
	})

	if container.Config.ConfigFile != "" {
		watcher, err := config.NewWatcher(container.Config, logger)
		if err != nil {
			return fmt.Errorf("failed to start config watcher: %w", err)
		}
		watcher.OnChange(func(reloaded *domaincfg.DomainConfig) {
			// Tuning fields are plain numbers read without locking; a reload
			// may interleave with an in-flight layout computation.
			*container.DomainConfig = *reloaded
			logger.Info("domain tuning updated",
				zap.Float64("node_width", reloaded.NodeWidth),
				zap.Float64("fork_offset", reloaded.ForkHorizontalOffset))
		})
		watcher.Start()
		defer watcher.Stop()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	logger.Info("engine shutting down", zap.String("signal", sig.String()))
	return nil
}
