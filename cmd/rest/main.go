package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"collectify-be/internal/bootstrap"
	"collectify-be/internal/config"
	"collectify-be/internal/pkg/logger"
	"collectify-be/internal/server"
	"collectify-be/internal/tracer"
	"collectify-be/pkg/database"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer sysLogger.Sync()
	zap.ReplaceGlobals(sysLogger.Zap())

	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)
	defer shutdownTracer(context.Background())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize Database
	var gormDB *gorm.DB
	if cfg.Database.Driver != "memory" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.App.Environment != "production")
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		gormDB = db
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(ctx, gormDB, cfg, sysLogger)
	if err != nil {
		log.Fatalf("Failed to build container: %v", err)
	}

	// 4. Start Background Services
	if err := container.Start(ctx); err != nil {
		log.Fatalf("Failed to start background services: %v", err)
	}
	defer container.Stop()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		sysLogger.Info("Main", "Shutting down", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			sysLogger.Error("Main", "Server shutdown failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		sysLogger.Error("Main", "Server stopped with error", map[string]interface{}{"error": err.Error()})
	}
}
