package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"inbound/internal/cli"
)

// @title WhatsApp Webhook Service API
// @version 1.0
// @description Ingests signed WhatsApp-like messages and serves list, stats, health and metrics endpoints.

// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		log.Printf("inbound: %v", err)
		stop()
		os.Exit(1)
	}
}
