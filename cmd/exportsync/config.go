package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage exportsync configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file if none exists",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("%v", err)
		return err
	}

	sizes := make([]string, len(cfg.ImageSizes))
	for i, s := range cfg.ImageSizes {
		sizes[i] = fmt.Sprintf("%d", s)
	}

	fmt.Printf("origin_url:      %s\n", cfg.OriginURL)
	fmt.Printf("content_url:     %s\n", cfg.ContentURL)
	fmt.Printf("proxy_token:     %s\n", maskToken(cfg.ProxyToken))
	fmt.Printf("output_dir:      %s\n", cfg.OutputDir)
	fmt.Printf("workers:         %d\n", cfg.Workers)
	fmt.Printf("canonical_size:  %d\n", cfg.CanonicalSize)
	fmt.Printf("image_sizes:     [%s]\n", strings.Join(sizes, ", "))
	fmt.Printf("logging.level:   %s\n", cfg.Logging.Level)
	return nil
}

func runConfigInit(_ *cobra.Command, _ []string) error {
	path, written, err := config.WriteDefault()
	if err != nil {
		printError("%v", err)
		return err
	}

	if written {
		fmt.Printf("Wrote default config to %s\n", path)
	} else {
		fmt.Printf("Config already exists at %s\n", path)
	}
	return nil
}

// maskToken hides all but a hint of a configured credential.
func maskToken(token string) string {
	if token == "" {
		return "(unset)"
	}
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + strings.Repeat("*", len(token)-4) + token[len(token)-2:]
}
