package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"yelp_data_service/internal/app/config"
	"yelp_data_service/internal/app/db"
	"yelp_data_service/internal/app/logger"
	"yelp_data_service/internal/app/reconcile"
)

var (
	dryRun     bool
	sampleSize int
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "batch",
	Short: "Offline maintenance jobs for the Yelp dataset",
}

var reviewCountsCmd = &cobra.Command{
	Use:   "review-counts",
	Short: "Recompute yelp_users.review_count from the reviews table",
	Long: `Reports users whose review_count differs from the number of rows in
reviews, fixes all of them in one transaction, then counts again.
Remaining drift after the fix is reported but does not fail the command.`,
	Args: cobra.NoArgs,
	RunE: runReviewCounts,
}

func init() {
	reviewCountsCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report drift without updating")
	reviewCountsCmd.Flags().IntVar(&sampleSize, "sample", reconcile.DefaultSampleSize, "number of worst mismatches to report")
	reviewCountsCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the report as JSON on stdout")
	rootCmd.AddCommand(reviewCountsCmd)
}

func runReviewCounts(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.ConnectDatabase(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	gdb, err := db.OpenGorm(sqlDB, cfg.Debug, log)
	if err != nil {
		return err
	}

	log.Info("Starting review_count reconciliation", zap.Bool("dry_run", dryRun))
	report, err := reconcile.New(gdb, log, sampleSize).Run(ctx, reconcile.Options{DryRun: dryRun})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "mismatched before: %d\nupdated: %d (with reviews %d, to zero %d)\nremaining: %d\n",
		report.Before, report.Updated(), report.UpdatedWithReviews, report.UpdatedToZero, report.Remaining)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
