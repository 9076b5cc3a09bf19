package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelhq/articulate/internal/common"
	"github.com/kestrelhq/articulate/internal/service"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage saved evaluation runs",
	}

	cmd.AddCommand(runsListCmd())
	cmd.AddCommand(runsShowCmd())
	cmd.AddCommand(runsDeleteCmd())

	return cmd
}

func runsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved evaluation runs",
		RunE:  runRunsList,
	}

	cmd.Flags().StringP("institution", "i", "", "Only show runs for this institution")
	cmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")

	_ = viper.BindPFlag("runs.institution", cmd.Flags().Lookup("institution"))
	_ = viper.BindPFlag("runs.limit", cmd.Flags().Lookup("limit"))

	return cmd
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStorage(db)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	runs, err := db.ListRuns(ctx, service.RunFilter{
		Institution: viper.GetString("runs.institution"),
		Limit:       viper.GetInt("runs.limit"),
	})
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No evaluation runs found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tEVALUATED\tINSTITUTION\tTRANSFERABLE\tREJECTED\tREVIEW")
	for i := range runs {
		run := &runs[i]
		fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\t%.2f\t%d\n",
			run.ID,
			run.EvaluatedAt.Format("2006-01-02 15:04"),
			run.Institution.Name,
			run.Summary.TotalTransferableCredits,
			run.Summary.TotalRejectedCredits,
			run.Summary.LowConfidenceCourses,
		)
	}
	if err := w.Flush(); err != nil {
		slog.Warn("Failed to flush runs table", "error", err)
	}

	return nil
}

func runsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one evaluation run in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStorage(db)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	run, err := db.GetRun(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("run %d not found", id)
		}
		return fmt.Errorf("failed to load run: %w", err)
	}

	fmt.Printf("Run %d, evaluated %s\n", run.ID, run.EvaluatedAt.Format("2006-01-02 15:04"))
	printRun(run)

	return nil
}

func runsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved evaluation run",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsDelete,
	}
}

func runRunsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", args[0], err)
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStorage(db)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	if err := db.DeleteRun(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("run %d not found", id)
		}
		return fmt.Errorf("failed to delete run: %w", err)
	}

	slog.Info("Deleted evaluation run", "run_id", id)
	return nil
}
