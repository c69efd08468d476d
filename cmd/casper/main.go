// Package main is the entry point for Casper, an autonomous on-screen cat.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/casper/internal/config"
	"github.com/Faultbox/casper/internal/game"
	"github.com/Faultbox/casper/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, logger.FileConfig{
		Path:       cfg.Logging.LogFile,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Casper ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	// --write-config saves the resolved config and exits
	if path, err := config.WriteRequested(cfg); err != nil {
		logger.Error("failed to write config", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	} else if path != "" {
		logger.Info("config written", zap.String("path", path))
		return
	}

	g, err := game.New(cfg)
	if err != nil {
		logger.Error("failed to start", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	runErr := g.Run()
	g.Close()
	if runErr != nil {
		logger.Error("stopped", zap.Error(runErr))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("closed normally")
}
