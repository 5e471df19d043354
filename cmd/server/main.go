// Command main is the entry point for the photo album server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photoalbum/internal/bootstrap"
	"photoalbum/internal/config"
	"photoalbum/internal/observability"
	"photoalbum/internal/seed"
	"photoalbum/internal/server"
)

var version = "dev"

func main() {
	seedDemo := flag.Bool("seed-demo", false, "Populate an empty database with demo users, albums and photos")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	observability.SetLogger(observability.NewLogger(cfg.Env, os.Stdout))

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, cfg, version)
	if err != nil {
		log.Fatalf("Failed to initialize tracing: %v", err)
	}

	srv, err := server.NewServer(ctx, cfg, bootstrap.Options{
		SeedDemo: *seedDemo,
		Seed: seed.Options{
			NumUsers:       5,
			AlbumsPerUser:  3,
			PhotosPerAlbum: 6,
			BcryptCost:     cfg.BcryptCost,
		},
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("Tracing shutdown error: %v", err)
		}
	}()

	if err := srv.Start(); err != nil {
		log.Fatal(err)
	}
}
