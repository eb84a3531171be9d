package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sado-notes-be/internal/bootstrap"
	"sado-notes-be/internal/config"
	"sado-notes-be/internal/server"
	"sado-notes-be/internal/tracer"
	"sado-notes-be/pkg/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, !cfg.IsProduction())
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, container.Logger)

	// 4. Start Background Services
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Panicf("Unable to start enrichment consumer: %v", err)
	}
	if _, err := container.ReminderService.RestoreSchedules(ctx); err != nil {
		container.Logger.Error("MAIN", "Failed to restore reminder schedules", map[string]interface{}{
			"error": err.Error(),
		})
	}
	container.Scheduler.Start(ctx, container.ReminderService.Fire)

	// 5. Initialize Server
	srv := server.New(cfg, container)
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Run()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		container.Logger.Error("MAIN", "HTTP server stopped", map[string]interface{}{"error": err.Error()})
	}

	// 6. Graceful shutdown: requests first, then fires, then enrichment.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		container.Logger.Warn("MAIN", "HTTP shutdown incomplete", map[string]interface{}{"error": err.Error()})
	}
	container.Scheduler.Stop()
	container.Close()
	container.ConsumerService.Wait()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
	container.SyncLoggers()
}
