package main

import (
	"errors"
	"fmt"
	"os"

	"StockPilot/internal/cli"
	"StockPilot/internal/di"
	"StockPilot/pkg/config"
)

func load(opts *cli.RootOptions) (*cli.Env, error) {
	cfg, err := config.LoadWithEnv(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	// stdout carries the JSON result
	cfg.Log.Output = "stderr"
	cfg.Log.Level = "warn"
	if opts.Verbose {
		cfg.Log.Level = "debug"
	}

	tk, err := di.InitializeToolkit(cfg)
	if err != nil {
		return nil, err
	}
	return &cli.Env{Pipeline: tk.Coordinator, Cache: tk.HTTP, Close: tk.Close}, nil
}

func main() {
	if err := cli.NewRootCommand(load).Execute(); err != nil {
		if !errors.Is(err, cli.ErrAnalysisFailed) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}
