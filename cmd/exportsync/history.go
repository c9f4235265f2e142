package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync cycles",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "number of entries to show (0=all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("%v", err)
		return err
	}

	journal, err := history.New(config.HistoryDir(cfg.OutputDir))
	if err != nil {
		printError("%v", err)
		return err
	}

	entries, err := journal.List(historyLimit)
	if err != nil {
		printError("%v", err)
		return err
	}

	if len(entries) == 0 {
		fmt.Println("No sync cycles recorded yet.")
		return nil
	}

	for _, e := range entries {
		phase := "exports only"
		if e.ManifestChanged {
			phase = "exports + images"
		}
		fmt.Printf("%s  %s  %d downloaded, %d failed, %s (%s)\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			phase,
			e.Downloaded,
			e.Failed,
			humanize.Bytes(uint64(e.Bytes)),
			e.Duration.Round(10*time.Millisecond))
	}

	return nil
}
