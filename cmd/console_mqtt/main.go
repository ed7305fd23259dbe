package main

import (
	"log"

	"github.com/relabs-tech/gps_compass/internal/app"
	"github.com/relabs-tech/gps_compass/internal/config"
)

func main() {
	log.Println("starting gps-compass console (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal("compass_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsoleMQTT(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
