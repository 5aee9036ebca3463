package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/scout/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
		}

		cfg := config.DefaultConfig()
		cfg.Query = "wireless earbuds"
		if err := cfg.Save(configPath); err != nil {
			return err
		}

		fmt.Printf("Wrote %s. Edit the query and add your API keys, or export\n", configPath)
		fmt.Println("SERP_API_KEY, DETAIL_API_KEY, REVIEWS_API_TOKEN and GEMINI_API_KEY.")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}
