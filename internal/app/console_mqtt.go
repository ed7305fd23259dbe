package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/gps_compass/internal/config"
	"github.com/relabs-tech/gps_compass/internal/telemetry"
)

// RunConsoleMQTT prints every telemetry frame the device publishes until
// Ctrl+C.
func RunConsoleMQTT() error {
	cfg := config.Get()

	client, err := connectSubscriber(cfg.MQTTBroker, cfg.MQTTClientIDConsole, "console")
	if err != nil {
		return err
	}

	err = subscribeTelemetry(client, cfg.TopicTelemetry, "console", func(f telemetry.Frame) {
		fmt.Println(f.Summary())
		if f.Error != "" {
			fmt.Printf("        error: %s\n", f.Error)
		}
	})
	if err != nil {
		client.Disconnect(250)
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
