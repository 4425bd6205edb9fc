package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/home-affordability/internal/config"
	"github.com/iwvelando/home-affordability/internal/listings"
	"github.com/iwvelando/home-affordability/internal/logging"
	"github.com/iwvelando/home-affordability/internal/planner"
	"github.com/iwvelando/home-affordability/internal/server"
	"github.com/iwvelando/home-affordability/internal/state"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	serverConf, err := server.LoadConfig(*serverConfigLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *serverConfigLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		serverConf.Address = *address
	}

	var conf *config.Configuration
	if _, statErr := os.Stat(serverConf.ConfigFile); errors.Is(statErr, fs.ErrNotExist) {
		conf, err = config.Defaults()
	} else {
		conf, err = config.LoadConfiguration(serverConf.ConfigFile)
	}
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", serverConf.ConfigFile, err)
		os.Exit(1)
	}

	// Server-level logging settings take precedence over the shared config.
	loggingConf := conf.Logging
	if serverConf.Logging.Level != "" {
		loggingConf.Level = serverConf.Logging.Level
	}
	if serverConf.Logging.Format != "" {
		loggingConf.Format = serverConf.Logging.Format
	}
	if serverConf.Logging.OutputFile != "" {
		loggingConf.OutputFile = serverConf.Logging.OutputFile
	}

	logger, err := logging.New(loggingConf, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	store, err := state.NewStore(logger, conf.State)
	if err != nil {
		logger.Fatal("failed to open form store",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if closer, ok := store.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	handler := server.NewHandler(logger, server.Dependencies{
		Planner:  planner.New(logger, conf.Plan),
		Listings: listings.NewClient(logger, conf.Listings, nil),
		Store:    store,
	}, serverConf.BodySizeBytes(), version)

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("server listening",
			zap.String("op", "main"),
			zap.String("address", serverConf.Address),
			zap.String("version", version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serverConf.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("server stopped", zap.String("op", "main"))
}
