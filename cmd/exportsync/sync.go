package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/fetch"
	"github.com/tennoforge/exportsync/pkg/exportsync/history"
	"github.com/tennoforge/exportsync/pkg/exportsync/logging"
	"github.com/tennoforge/exportsync/pkg/exportsync/output"
	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync cycle against the upstream catalog",
	Long: `Fetch the export index, download changed resources, and process texture
assets into their configured renditions. Equivalent to running exportsync
with no subcommand.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// runSync executes one full sync cycle: export phase, conditional image
// phase, summary, and a history entry.
func runSync(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("%v", err)
		return err
	}

	if err := initLogging(cfg); err != nil {
		printError("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := fetch.New(fetch.Options{
		OriginURL:  cfg.OriginURL,
		ContentURL: cfg.ContentURL,
		ProxyToken: cfg.ProxyToken,
	})

	s := syncer.New(client, syncer.Config{
		OutputDir:     cfg.OutputDir,
		Workers:       cfg.Workers,
		CanonicalSize: cfg.CanonicalSize,
		ImageSizes:    cfg.ImageSizes,
	})

	report, err := s.Run(ctx)
	if err != nil {
		printError("sync failed: %v", err)
		return err
	}

	journalCycle(cfg, report)

	if !viper.GetBool("quiet") {
		text, err := output.Render(viper.GetString("output"), report)
		if err != nil {
			printError("%v", err)
			return err
		}
		fmt.Print(text)
	}

	return nil
}

// journalCycle records the cycle in the history journal. Journaling
// problems never fail a completed sync.
func journalCycle(cfg *config.Config, report *syncer.Report) {
	log := logging.Get("history")

	journal, err := history.New(config.HistoryDir(cfg.OutputDir))
	if err != nil {
		log.Warn("skipping history entry", "error", err)
		return
	}
	if _, err := journal.Append(report); err != nil {
		log.Warn("failed to write history entry", "error", err)
	}
}

// loadConfig merges the config file, environment and flags into a Config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	// Flags (bound to viper in root.go) win over the config file.
	if v := viper.GetString("output_dir"); v != "" {
		cfg.OutputDir = v
	}
	if v := viper.GetInt("workers"); v > 0 {
		cfg.Workers = v
	}
	if v := viper.GetString("origin_url"); v != "" {
		cfg.OriginURL = v
	}
	if v := viper.GetString("content_url"); v != "" {
		cfg.ContentURL = v
	}

	return cfg, nil
}

// initLogging configures the logging package from config and flags.
func initLogging(cfg *config.Config) error {
	level := cfg.Logging.Level
	if viper.GetBool("verbose") {
		level = "debug"
	}

	return logging.Init(logging.Config{
		Level:      level,
		Components: cfg.Logging.Components,
		Quiet:      viper.GetBool("quiet"),
	})
}
