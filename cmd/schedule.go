package cmd

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/kayz/scout/internal/logger"
)

var scheduleSpec string

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the pipeline repeatedly on a cron schedule",
	Long: `Schedule keeps the process alive and runs the full pipeline on a
standard cron expression, e.g. "0 6 * * 1" for every Monday at 06:00.
The expression comes from --cron or the schedule key in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		expr := scheduleSpec
		if expr == "" {
			expr = cfg.Schedule
		}
		if expr == "" {
			return fmt.Errorf("no schedule given: set --cron or the schedule config key")
		}

		c := cron.New()
		_, err = c.AddFunc(expr, func() {
			logger.Info("scheduled run starting")
			if err := executeRun(cmd); err != nil {
				logger.Error("scheduled run failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid cron expression %q: %w", expr, err)
		}

		logger.Info("scheduler started with %q, waiting for the next tick", expr)
		c.Run()
		return nil
	},
}

func init() {
	addRunFlags(scheduleCmd)
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "", "Cron expression for repeated runs")
	rootCmd.AddCommand(scheduleCmd)
}
