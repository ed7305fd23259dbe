package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relabs-tech/gps_compass/internal/app"
	"github.com/relabs-tech/gps_compass/internal/config"
)

func main() {
	log.Println("starting gps-compass GPS monitor")

	if err := config.InitGlobal("compass_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunGPSMonitor(ctx, time.Second); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
