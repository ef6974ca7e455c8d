package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"spotsync/internal/catalog"
	"spotsync/internal/config"
	"spotsync/internal/logger"
	"spotsync/internal/pipeline"
	"spotsync/internal/progress"
	"spotsync/internal/shutdown"
	"spotsync/pkg/utils"
)

func main() {
	cfg, configPath, err := parseArgs(os.Args[1:])
	switch {
	case errors.Is(err, errShowHelp):
		printUsage()
		return
	case errors.Is(err, errInitConfig):
		if err := initConfigFile(); err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		return
	case err != nil:
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}

	if cfg.SpotifyURL == "" && cfg.CatalogFile == "" {
		var prompt io.Writer = io.Discard
		if isTerminal(os.Stdin) {
			prompt = os.Stdout
		}
		link, err := promptLink(os.Stdin, prompt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		cfg.SpotifyURL = link
	}

	log := logger.New(cfg.Verbose)
	defer log.Close()

	if !cfg.Verbose {
		logDir := config.GetDefaultLogPath()
		if err := os.MkdirAll(logDir, 0755); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN] Failed to create log directory: %v\n", err)
		} else {
			logFile := filepath.Join(logDir, fmt.Sprintf("spotsync_%s.log", time.Now().Format("2006-01-02_15-04-05")))
			if err := log.SetFileLog(logFile); err != nil {
				fmt.Fprintf(os.Stderr, "[WARN] Failed to setup file logging: %v\n", err)
			} else {
				log.Debug("Logging to file: %s", logFile)
			}
		}
	}

	if configPath != "" {
		log.Debug("Loaded configuration from: %s", configPath)
	}

	if err := cfg.Validate(); err != nil {
		log.Error("Configuration error: %v", err)
		os.Exit(1)
	}

	if err := run(cfg, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *logger.Logger) error {
	if !cfg.DryRun || cfg.CatalogFile == "" {
		log.Debug("Checking dependencies...")
		if err := utils.CheckDependencies(cfg.SpotdlPath); err != nil {
			return fmt.Errorf("dependency check failed: %w", err)
		}
	}

	sh := shutdown.New()
	sh.Listen()
	defer sh.Shutdown()
	sh.AddCleanup(func() {
		log.Debug("Interrupted, stopping after the current track...")
	})

	var bar *progress.Bar
	hooks := pipeline.Hooks{
		OnMissing: func(total int) {
			if !cfg.Verbose {
				bar = progress.New(total)
				log.SetProgressBar(true)
			}
		},
		OnProgress: func(t catalog.Track) {
			if bar != nil {
				bar.Describe(t.String())
				bar.Increment()
			}
		},
	}

	summary, err := pipeline.New(cfg, log, hooks).Run(sh.Context())

	if bar != nil {
		bar.Finish()
		log.SetProgressBar(false)
	}

	if err != nil {
		return err
	}

	summary.Report(log)
	log.Info("=== PLAYLIST SYNC COMPLETE ===")
	return nil
}
