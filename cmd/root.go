package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kayz/scout/internal/config"
	"github.com/kayz/scout/internal/logger"
)

var (
	logLevel   string
	configPath string

	queryFlag       string
	marketplaceFlag string
	pagesFlag       int
	limitFlag       int
	minRatingFlag   float64
	minReviewsFlag  int
	noOpenFlag      bool
)

var rootCmd = &cobra.Command{
	Use:   "scout",
	Short: "marketplace product research pipeline",
	Long: `scout researches a product niche end to end:

  search -> shortlist -> details -> reviews -> AI analysis -> HTML report

Every run saves its intermediate data under the data directory, so a
report can be rebuilt later without repeating any API calls.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	Run: runPipeline,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath,
		"Path to the yaml config file")
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Search query (overrides config)")
	cmd.Flags().StringVar(&marketplaceFlag, "marketplace", "", "Marketplace domain, e.g. amazon.com.au")
	cmd.Flags().IntVar(&pagesFlag, "pages", 0, "Maximum search pages to fetch")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum products to research")
	cmd.Flags().Float64Var(&minRatingFlag, "min-rating", 0, "Drop products rated below this")
	cmd.Flags().IntVar(&minReviewsFlag, "min-reviews", 0, "Drop products with fewer reviews than this")
	cmd.Flags().BoolVar(&noOpenFlag, "no-open", false, "Do not open the report in a browser")
}

// loadConfig builds the effective config: file, then environment
// credentials, then flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if queryFlag != "" {
		cfg.Query = queryFlag
	}
	if marketplaceFlag != "" {
		cfg.Marketplace = marketplaceFlag
	}
	if pagesFlag > 0 {
		cfg.Pages = pagesFlag
	}
	if limitFlag > 0 {
		cfg.Filters.Limit = limitFlag
	}
	if cmd.Flags().Changed("min-rating") {
		v := minRatingFlag
		cfg.Filters.MinRating = &v
	}
	if cmd.Flags().Changed("min-reviews") {
		v := minReviewsFlag
		cfg.Filters.MinReviews = &v
	}
	if noOpenFlag {
		cfg.OpenReport = false
	}

	return cfg, nil
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
