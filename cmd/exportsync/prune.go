package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/ledger"
	"github.com/tennoforge/exportsync/pkg/exportsync/prune"
)

var pruneForce bool

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove mirror artifacts no longer present upstream",
	Long: `Walk the mirror and list artifacts whose resource is missing from the
ledgers, which happens when upstream drops a resource. By default nothing is
deleted; pass --force to remove the orphans.`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().BoolVarP(&pruneForce, "force", "f", false, "delete orphaned artifacts")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("%v", err)
		return err
	}
	if err := initLogging(cfg); err != nil {
		printError("%v", err)
		return err
	}

	exportLed, err := ledger.Load(config.ExportLedgerPath(cfg.OutputDir))
	if err != nil {
		printError("%v", err)
		return err
	}
	imageLed, err := ledger.Load(config.ImageLedgerPath(cfg.OutputDir))
	if err != nil {
		printError("%v", err)
		return err
	}

	result, err := prune.Run(prune.Options{
		OutputDir: cfg.OutputDir,
		Force:     pruneForce,
	}, exportLed.Snapshot(), imageLed.Snapshot())
	if err != nil {
		printError("prune failed: %v", err)
		return err
	}

	if viper.GetBool("quiet") {
		return nil
	}

	if len(result.Orphans) == 0 {
		fmt.Println("Nothing to prune.")
		return nil
	}

	for _, orphan := range result.Orphans {
		fmt.Println(orphan)
	}
	if pruneForce {
		fmt.Printf("Removed %d artifact(s), reclaimed %s.\n",
			result.Removed, humanize.Bytes(uint64(result.Bytes)))
	} else {
		fmt.Printf("%d orphaned artifact(s), %s. Re-run with --force to delete.\n",
			len(result.Orphans), humanize.Bytes(uint64(result.Bytes)))
	}

	return nil
}
