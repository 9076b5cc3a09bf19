package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kestrelhq/articulate/internal/common"
	"github.com/kestrelhq/articulate/internal/model"
	"github.com/kestrelhq/articulate/internal/service"
)

// SaveRun persists an evaluation run and all of its course evaluations
// in one transaction. It returns the new run's ID.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.EvaluationRun) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateRun(run); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO evaluation_runs (
			institution, credit_system, evaluated_at,
			total_credits, transferable_credits, rejected_credits, low_confidence_credits,
			transferable_courses, rejected_courses, low_confidence_courses
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.Institution.Name, string(run.Institution.CreditSystem), run.EvaluatedAt,
		run.Summary.TotalCredits, run.Summary.TotalTransferableCredits,
		run.Summary.TotalRejectedCredits, run.Summary.LowConfidenceCredits,
		run.Summary.TransferableCourses, run.Summary.RejectedCourses,
		run.Summary.LowConfidenceCourses)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO course_evaluations (
			run_id, position, course_code, course_name, credits, adjusted_credits,
			grade, status, term, year, source_institution,
			confidence_score, transferable, needs_review,
			rejection_reasons, policy_verification, verifier_error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare course insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, eval := range run.Courses {
		reasons, marshalErr := json.Marshal(eval.RejectionReasons)
		if marshalErr != nil {
			return 0, fmt.Errorf("failed to encode rejection reasons: %w", marshalErr)
		}

		var verification []byte
		if eval.PolicyVerification != nil {
			verification, marshalErr = json.Marshal(eval.PolicyVerification)
			if marshalErr != nil {
				return 0, fmt.Errorf("failed to encode policy verification: %w", marshalErr)
			}
		}

		if _, err := stmt.ExecContext(ctx,
			runID, i,
			eval.Course.CourseCode, eval.Course.CourseName,
			eval.Course.Credits, eval.AdjustedCredits,
			eval.Course.Grade, eval.Course.Status,
			eval.Course.Term, eval.Course.Year, eval.Course.SourceInstitution,
			eval.Confidence.Total, eval.Transferable, eval.NeedsReview,
			string(reasons), nullableString(verification), eval.VerifierError); err != nil {
			return 0, fmt.Errorf("failed to insert course evaluation: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// GetRun loads a run with all of its course evaluations.
func (s *SQLiteStorage) GetRun(ctx context.Context, id int64) (*model.EvaluationRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	run := &model.EvaluationRun{ID: id}
	err := s.db.QueryRowContext(ctx, `
		SELECT institution, credit_system, evaluated_at,
			total_credits, transferable_credits, rejected_credits, low_confidence_credits,
			transferable_courses, rejected_courses, low_confidence_courses
		FROM evaluation_runs WHERE id = ?`, id).Scan(
		&run.Institution.Name, &run.Institution.CreditSystem, &run.EvaluatedAt,
		&run.Summary.TotalCredits, &run.Summary.TotalTransferableCredits,
		&run.Summary.TotalRejectedCredits, &run.Summary.LowConfidenceCredits,
		&run.Summary.TransferableCourses, &run.Summary.RejectedCourses,
		&run.Summary.LowConfidenceCourses)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT course_code, course_name, credits, adjusted_credits,
			grade, status, term, year, source_institution,
			confidence_score, transferable, needs_review,
			rejection_reasons, policy_verification, verifier_error
		FROM course_evaluations WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load course evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var eval model.CourseEvaluation
		var reasons string
		var verification, verifierError sql.NullString

		if err := rows.Scan(
			&eval.Course.CourseCode, &eval.Course.CourseName,
			&eval.Course.Credits, &eval.AdjustedCredits,
			&eval.Course.Grade, &eval.Course.Status,
			&eval.Course.Term, &eval.Course.Year, &eval.Course.SourceInstitution,
			&eval.Confidence.Total, &eval.Transferable, &eval.NeedsReview,
			&reasons, &verification, &verifierError); err != nil {
			return nil, fmt.Errorf("failed to scan course evaluation: %w", err)
		}

		if reasons != "" {
			if err := json.Unmarshal([]byte(reasons), &eval.RejectionReasons); err != nil {
				return nil, fmt.Errorf("failed to decode rejection reasons: %w", err)
			}
		}
		if verification.Valid && verification.String != "" {
			var pv model.PolicyVerification
			if err := json.Unmarshal([]byte(verification.String), &pv); err != nil {
				return nil, fmt.Errorf("failed to decode policy verification: %w", err)
			}
			eval.PolicyVerification = &pv
		}
		if verifierError.Valid {
			eval.VerifierError = verifierError.String
		}

		run.Courses = append(run.Courses, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate course evaluations: %w", err)
	}

	return run, nil
}

// ListRuns returns run summaries, newest first. Course evaluations are
// not loaded; use GetRun for the full record.
func (s *SQLiteStorage) ListRuns(ctx context.Context, filter service.RunFilter) ([]model.EvaluationRun, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT id, institution, credit_system, evaluated_at,
			total_credits, transferable_credits, rejected_credits, low_confidence_credits,
			transferable_courses, rejected_courses, low_confidence_courses
		FROM evaluation_runs`
	var args []any

	if filter.Institution != "" {
		query += " WHERE institution = ?"
		args = append(args, filter.Institution)
	}

	query += " ORDER BY evaluated_at DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.EvaluationRun
	for rows.Next() {
		var run model.EvaluationRun
		if err := rows.Scan(
			&run.ID, &run.Institution.Name, &run.Institution.CreditSystem, &run.EvaluatedAt,
			&run.Summary.TotalCredits, &run.Summary.TotalTransferableCredits,
			&run.Summary.TotalRejectedCredits, &run.Summary.LowConfidenceCredits,
			&run.Summary.TransferableCourses, &run.Summary.RejectedCourses,
			&run.Summary.LowConfidenceCourses); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

// DeleteRun removes a run and its course evaluations.
func (s *SQLiteStorage) DeleteRun(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM course_evaluations WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete course evaluations: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM evaluation_runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d: %w", id, common.ErrNotFound)
	}

	return tx.Commit()
}

// nullableString converts an optional JSON payload to a driver value.
func nullableString(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
