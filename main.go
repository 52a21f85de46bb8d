package main

import (
	"context"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gosieve/app"
	"gosieve/internal/config"
	"gosieve/ui"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// pprof registers on the default mux, which the API server does not use
	if appConfig.Profiling.Enabled {
		go func() {
			addr := "localhost:" + appConfig.Profiling.Port
			log.Printf("Performance profiling server starting on %s", addr)
			srv := &http.Server{Addr: addr, ReadHeaderTimeout: 10 * time.Second}
			if err := srv.ListenAndServe(); err != nil {
				log.Printf("pprof server failed: %v", err)
			}
		}()
	}

	pipeline := app.NewPipelineService(appConfig)
	server := ui.NewServer(appConfig, pipeline)

	log.Printf("Starting gosieve server on port %s (sentinel %v)", appConfig.Server.Port, appConfig.Cleaning.Sentinel)
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
	log.Println("Server stopped")
}
