package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kgames/security2mqtt/internal/config"
	"github.com/kgames/security2mqtt/internal/gateway"
	"github.com/kgames/security2mqtt/internal/log"
	"github.com/kgames/security2mqtt/internal/mqtt"
	"github.com/kgames/security2mqtt/internal/serial"
)

func main() {
	configFile := flag.String("config", "config.yml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Create logger
	logger := log.NewLogger(cfg.Log)

	// Open serial link to the device
	port, err := serial.Open(cfg.Serial.Device, cfg.Serial.Baud)
	if err != nil {
		logger.Error("Failed to open serial device: %v", err)
		os.Exit(1)
	}
	logger.Info("Serial link open: %s @ %d baud", cfg.Serial.Device, cfg.Serial.Baud)

	// Connect to MQTT broker
	broker := mqtt.NewMQTT(&cfg.MQTT, cfg.Name, logger)
	if err := broker.Connect(); err != nil {
		logger.Error("Failed to connect to MQTT broker: %v", err)
		port.Close()
		os.Exit(1)
	}

	// Run the gateway loop until interrupted
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gw := gateway.New(cfg, logger, port, broker)
	if err := gw.Run(ctx); err != nil {
		logger.Error("Gateway loop failed: %v", err)
	}

	// Graceful shutdown
	logger.Info("Shutting down...")
	broker.Close()
	port.Close()
}
