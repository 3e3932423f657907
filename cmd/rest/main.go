package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voice-assistant-be/internal/bootstrap"
	"voice-assistant-be/internal/config"
	"voice-assistant-be/internal/server"
	"voice-assistant-be/internal/tracer"
	"voice-assistant-be/pkg/database"
)

func main() {
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer("voice-assistant-be")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.Database.Verbose)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()

	if err := container.StartBackground(ctx); err != nil {
		log.Printf("[WARN] Background services: %v", err)
	}

	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		_ = srv.Shutdown(5 * time.Second)
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}
