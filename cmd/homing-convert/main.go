package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dls-controls/homing-convert/internal/config"
	"github.com/dls-controls/homing-convert/internal/motionarea"
)

const version = "0.0.0-dev"

func main() {
	var (
		showVersion bool
		configPath  string
		keepStaging bool
		verbose     bool
	)

	flag.BoolVar(&showVersion, "version", false, "Print version")
	flag.StringVar(&configPath, "config", "", "Path to config YAML")
	flag.BoolVar(&keepStaging, "keep", false, "Keep the staging trees after a successful run")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.Parse()

	if showVersion {
		fmt.Printf("homing-convert %s\n", version)
		return
	}
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <motion-area>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	logger, err := newLogger(verbose)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	area, err := motionarea.New(flag.Arg(0), cfg, logger)
	if err != nil {
		logger.Fatal("Failed to stage motion area", zap.Error(err))
	}

	verification, err := area.Convert(ctx)
	if verification != nil {
		fmt.Println(verification.Report())
	}
	if err != nil {
		if errors.Is(err, motionarea.ErrVerificationFailed) {
			logger.Warn("conversion did not verify",
				zap.String("staging", area.RootPath()), zap.Error(err))
			os.Exit(1)
		}
		logger.Fatal("Conversion failed", zap.Error(err))
	}

	if !keepStaging {
		if err := area.Cleanup(); err != nil {
			logger.Warn("failed to remove staging trees", zap.Error(err))
		}
	} else {
		logger.Info("staging trees kept", zap.String("path", area.RootPath()))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
