package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"mentor-ai-be/internal/bootstrap"
	"mentor-ai-be/internal/config"
	"mentor-ai-be/internal/repository/memory"
	"mentor-ai-be/internal/repository/unitofwork"
	"mentor-ai-be/internal/server"
	"mentor-ai-be/internal/tracer"
	"mentor-ai-be/pkg/database"

	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer("mentor-ai-backend")
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Storage
	var uowFactory unitofwork.RepositoryFactory
	switch cfg.Database.Driver {
	case "memory":
		log.Println("[WARN] Using in-memory storage, data is lost on restart")
		uowFactory = memory.NewRepositoryFactory(memory.NewStore())
	default:
		level := gormlogger.Info
		if cfg.App.Environment == "production" {
			level = gormlogger.Warn
		}
		gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.WithLogLevel(level))
		if err != nil {
			log.Panicf("Unable to connect to GORM DB: %v", err)
		}
		uowFactory = unitofwork.NewRepositoryFactory(gormDB)
	}

	// 3. Bootstrap Dependencies (Container)
	container, err := bootstrap.NewContainer(cfg, uowFactory, nil)
	if err != nil {
		log.Fatalf("[FATAL] %v", err)
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Start Background Services
	log.Println("Background: Starting Consumer Service...")
	if err := container.ConsumerService.Consume(ctx); err != nil {
		log.Printf("Background Consumer Error: %v", err)
	}

	if container.ProvisioningService != nil {
		log.Println("Background: Starting Quota Provisioning...")
		stopProvisioning, err := container.ProvisioningService.Start(ctx)
		if err != nil {
			log.Printf("Background Provisioning Error: %v", err)
		} else {
			defer stopProvisioning()
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// 6. Run Server
	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
