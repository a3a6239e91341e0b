package main

import (
	"flag"
	"os"

	"github.com/charmbracelet/log"

	"budgetu/pkg/config"
	"budgetu/pkg/server"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		Prefix:          "budgetu",
	})

	var cfgFile string
	flag.StringVar(&cfgFile, "config", "", "Config file (default is config.yaml)")
	flag.Parse()

	cfg, err := config.Build(cfgFile, nil)
	if err != nil {
		logger.Fatal("failed to load config", "err", err)
	}
	logger.SetLevel(cfg.LogLevel())

	srv := server.New(cfg, logger)
	logger.Info("starting server", "addr", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		logger.Fatal("server error", "err", err)
	}
}
