package main

import (
	"flag"
	"fmt"
	"os"

	"StockPilot/internal/di"
	"StockPilot/pkg/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "stockpilot-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	defaultPath := "config/config.yaml"
	if p := os.Getenv("STOCKPILOT_CONFIG"); p != "" {
		defaultPath = p
	}
	configPath := flag.String("config", defaultPath, "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	// blocks until SIGINT/SIGTERM
	return app.Run()
}
