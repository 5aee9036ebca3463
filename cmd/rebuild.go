package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kayz/scout/internal/persist"
	"github.com/kayz/scout/internal/pipeline"
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild [run-dir]",
	Short: "Regenerate the HTML report from a saved run",
	Long: `Rebuild re-renders report.html from the json artifacts of a previous
run directory without making any API calls. With no argument the most
recent run is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		var dir string
		if len(args) == 1 {
			dir = args[0]
		} else {
			store, err := persist.NewStore(filepath.Join(cfg.DataDir, "scout.db"))
			if err != nil {
				return err
			}
			dir, err = store.LatestRunDir()
			store.Close()
			if err != nil {
				return fmt.Errorf("no previous run found: %w", err)
			}
		}

		if _, err := os.Stat(dir); err != nil {
			return fmt.Errorf("run directory %s: %w", dir, err)
		}
		return pipeline.Rebuild(cfg, dir)
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
