package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "exportsync",
		Short: "Incrementally mirror the public export catalog",
		Long: `exportsync mirrors the remote public-export catalog to local storage.

It fetches the compressed export index, diffs every resource against the
hashes recorded by previous runs, downloads only what changed, and renders
texture downloads into a canonical PNG plus a fixed set of square sizes.

Examples:
  exportsync                     # Run a sync cycle with defaults
  exportsync sync -o ./mirror    # Mirror into a specific directory
  exportsync sync --output json  # Machine-readable cycle summary
  exportsync prune --force       # Remove artifacts dropped upstream
  exportsync history             # Show recent sync cycles`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/exportsync/config.yaml)")
	rootCmd.PersistentFlags().StringP("output-dir", "o", "", "mirror root directory")
	rootCmd.PersistentFlags().IntP("workers", "w", 0, "maximum concurrent downloads (0=default)")
	rootCmd.PersistentFlags().String("origin-url", "", "override the export index origin host")
	rootCmd.PersistentFlags().String("content-url", "", "override the content host")
	rootCmd.PersistentFlags().String("output", "pretty", "summary format: pretty, plain, json")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "minimal output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "debug output")

	_ = viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
	_ = viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	_ = viper.BindPFlag("origin_url", rootCmd.PersistentFlags().Lookup("origin-url"))
	_ = viper.BindPFlag("content_url", rootCmd.PersistentFlags().Lookup("content-url"))
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "exportsync"))
		}
		if homeDir, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "exportsync"))
		}
	}

	viper.SetEnvPrefix("EXPORTSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("origin_url", config.DefaultOriginURL)
	viper.SetDefault("content_url", config.DefaultContentURL)
	viper.SetDefault("output_dir", config.DefaultOutputDir)
	viper.SetDefault("workers", config.DefaultWorkers)
	viper.SetDefault("canonical_size", config.DefaultCanonicalSize)
	viper.SetDefault("image_sizes", config.DefaultImageSizes)
	viper.SetDefault("logging.level", "info")

	// Read config file (ignore if not found).
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// printError prints an error message to stderr.
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}
