package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kestrelhq/articulate/internal/engine"
	"github.com/kestrelhq/articulate/internal/model"
	"github.com/kestrelhq/articulate/internal/transcript"
)

func evaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <transcript.json>",
		Short: "Evaluate a transcript for transfer credit",
		Long: `Evaluate an extracted transcript for transfer credit.

Each course is scored for extraction quality, checked against the grade
and course-level policy rules, and optionally verified against the
receiving institution's written transfer policy. Results are persisted
unless --dry-run is given.

Examples:
  articulate evaluate transcript.json
  articulate evaluate transcript.json --policy policy.txt
  articulate evaluate transcript.json --graduate --strict-grades
  articulate evaluate transcript.json --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: runEvaluate,
	}

	// Flags
	cmd.Flags().StringP("policy", "p", "", "Path to the transfer policy text to verify against")
	cmd.Flags().BoolP("graduate", "g", false, "Apply the graduate grade floor")
	cmd.Flags().Bool("strict-grades", false, "Route non-standard grades to manual review")
	cmd.Flags().Bool("cap-excess", false, "Count credits above the transfer cap as rejected")
	cmd.Flags().Bool("dry-run", false, "Evaluate without saving the run")
	cmd.Flags().IntP("workers", "w", 0, "Concurrent course evaluations (0 = default)")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("evaluation.policy", cmd.Flags().Lookup("policy"))
	_ = viper.BindPFlag("evaluation.graduate", cmd.Flags().Lookup("graduate"))
	_ = viper.BindPFlag("evaluation.strict_grades", cmd.Flags().Lookup("strict-grades"))
	_ = viper.BindPFlag("evaluation.cap_excess", cmd.Flags().Lookup("cap-excess"))
	_ = viper.BindPFlag("evaluation.dry_run", cmd.Flags().Lookup("dry-run"))
	_ = viper.BindPFlag("evaluation.workers", cmd.Flags().Lookup("workers"))

	return cmd
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	policyPath := viper.GetString("evaluation.policy")
	dryRun := viper.GetBool("evaluation.dry_run")

	slog.Info("Starting transcript evaluation")

	// Parse the transcript
	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open transcript: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("Failed to close transcript file", "error", closeErr)
		}
	}()

	parsed, err := transcript.NewParser().ParseFile(ctx, file)
	if err != nil {
		return fmt.Errorf("failed to parse transcript: %w", err)
	}

	// Load the policy text, if any
	var policyText string
	if policyPath != "" {
		data, readErr := os.ReadFile(policyPath)
		if readErr != nil {
			return fmt.Errorf("failed to read policy file: %w", readErr)
		}
		policyText = string(data)
	}

	cfg := evaluationConfig()

	// The verifier is only needed when a policy document is in play
	var verifier engine.PolicyVerifier
	if policyText != "" {
		v, cleanup, verifierErr := createVerifier()
		if verifierErr != nil {
			return verifierErr
		}
		defer cleanup()
		verifier = v
	}

	evaluator := engine.New(cfg, verifier)

	bar := newEvaluationProgressBar(len(parsed.Courses))
	evaluator.OnProgress = func(_, _ int) {
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}

	run, err := evaluator.EvaluateTranscript(ctx, *parsed, policyText)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	printRun(run)

	if dryRun {
		slog.Info("Dry run, evaluation not saved")
		return nil
	}

	db, err := openStorage()
	if err != nil {
		return err
	}
	defer closeStorage(db)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("failed to run migrations: %w", migrateErr)
	}

	id, err := db.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save evaluation run: %w", err)
	}

	slog.Info("Evaluation saved", "run_id", id, "institution", run.Institution.Name)
	fmt.Printf("\nSaved as run %d. View again with: articulate runs show %d\n", id, id)

	return nil
}

// evaluationConfig builds the engine configuration from defaults
// overridden by viper settings.
func evaluationConfig() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.CurrentDate = time.Now()
	cfg.Graduate = viper.GetBool("evaluation.graduate")
	cfg.StrictGrades = viper.GetBool("evaluation.strict_grades")
	cfg.CapExcessAsRejected = viper.GetBool("evaluation.cap_excess")

	if v := viper.GetString("evaluation.min_grade_undergraduate"); v != "" {
		cfg.MinGradeUndergraduate = v
	}
	if v := viper.GetString("evaluation.min_grade_graduate"); v != "" {
		cfg.MinGradeGraduate = v
	}
	if viper.IsSet("evaluation.min_confidence") {
		cfg.MinConfidenceThreshold = viper.GetFloat64("evaluation.min_confidence")
	}
	if viper.IsSet("evaluation.credit_age_limit_years") {
		cfg.CreditAgeLimitYears = viper.GetInt("evaluation.credit_age_limit_years")
	}
	if viper.IsSet("evaluation.max_transferable_credits") {
		cfg.MaxTransferableCredits = viper.GetFloat64("evaluation.max_transferable_credits")
	}
	if v := viper.GetInt("evaluation.workers"); v > 0 {
		cfg.Workers = v
	}

	return cfg
}

func newEvaluationProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Evaluating courses...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(os.Stderr); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

// printRun writes the per-course table and the aggregate summary.
func printRun(run *model.EvaluationRun) {
	fmt.Printf("\nInstitution: %s (%s system)\n\n", run.Institution.Name, run.Institution.CreditSystem)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "COURSE\tNAME\tGRADE\tCREDITS\tCONFIDENCE\tDECISION\tREASONS")
	for i := range run.Courses {
		eval := &run.Courses[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\t%s\t%s\n",
			eval.Course.CourseCode,
			eval.Course.CourseName,
			eval.Course.Grade,
			eval.AdjustedCredits,
			eval.Confidence.Total,
			decisionLabel(eval),
			strings.Join(eval.RejectionReasons, "; "),
		)
	}
	if err := w.Flush(); err != nil {
		slog.Warn("Failed to flush course table", "error", err)
	}

	s := run.Summary
	fmt.Printf("\nTotal credits:        %.2f\n", s.TotalCredits)
	fmt.Printf("Transferable credits: %.2f (%d courses)\n", s.TotalTransferableCredits, s.TransferableCourses)
	fmt.Printf("Rejected credits:     %.2f (%d courses)\n", s.TotalRejectedCredits, s.RejectedCourses)
	fmt.Printf("Needs review:         %.2f (%d courses)\n", s.LowConfidenceCredits, s.LowConfidenceCourses)
}

func decisionLabel(eval *model.CourseEvaluation) string {
	switch {
	case eval.Transferable:
		return "accept"
	case eval.NeedsReview:
		return "review"
	default:
		return "reject"
	}
}
