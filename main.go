package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mrsingh-rishi/vidscribe/app"
	"github.com/mrsingh-rishi/vidscribe/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	// A missing OPENAI_API_KEY stops us here, before any upload is accepted.
	a, err := app.New(cfg, log.Default())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Serve(ctx); err != nil {
		log.Fatal(err)
	}
}
