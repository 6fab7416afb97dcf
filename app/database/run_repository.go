package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunRepository handles database operations for runs and their file results
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun registers a new run and returns its ID
func (r *RunRepository) CreateRun(ctx context.Context, inputDir string, keywords []string, maxColumns, maxRepairIterations int) (string, error) {
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return "", fmt.Errorf("failed to encode keywords: %w", err)
	}

	runID := uuid.NewString()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO runs (id, input_dir, keywords, max_columns, max_repair_iterations, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, runID, inputDir, string(keywordsJSON), maxColumns, maxRepairIterations,
		string(RunStatusRunning), formatTime(time.Now()))
	if err != nil {
		return "", fmt.Errorf("failed to create run: %w", err)
	}

	return runID, nil
}

// FinishRun sets the final status and finish time of a run
func (r *RunRepository) FinishRun(ctx context.Context, runID string, status RunStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, finished_at = ? WHERE id = ?
	`, string(status), formatTime(time.Now()), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}

	return nil
}

// GetRun returns a run by ID, or nil if it does not exist
func (r *RunRepository) GetRun(ctx context.Context, runID string) (*Run, error) {
	var run Run
	var keywordsJSON, status, startedAt string
	var finishedAt sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, input_dir, keywords, max_columns, max_repair_iterations, status, started_at, finished_at
		FROM runs WHERE id = ?
	`, runID).Scan(&run.ID, &run.InputDir, &keywordsJSON, &run.MaxColumns,
		&run.MaxRepairIterations, &status, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if err := json.Unmarshal([]byte(keywordsJSON), &run.Keywords); err != nil {
		return nil, fmt.Errorf("failed to decode keywords: %w", err)
	}
	run.Status = RunStatus(status)

	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, err
		}
		run.FinishedAt = &t
	}

	return &run, nil
}

// RecordFileResult stores the outcome of processing one input file
func (r *RunRepository) RecordFileResult(ctx context.Context, result FileResult) error {
	droppedJSON, err := json.Marshal(nonNil(result.DroppedColumns))
	if err != nil {
		return fmt.Errorf("failed to encode dropped columns: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO file_results (
			run_id, path, columns_before, columns_after, dropped_columns,
			rows_read, deleted, retrieved, unretrieved, header_mismatch,
			error, processed_at, duration_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, result.RunID, result.Path, result.ColumnsBefore, result.ColumnsAfter, string(droppedJSON),
		result.RowsRead, result.Deleted, result.Retrieved, result.Unretrieved, result.HeaderMismatch,
		result.Error, formatTime(result.ProcessedAt), result.Duration.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to record file result: %w", err)
	}

	return nil
}

// GetFileResults returns the file results of a run in processing order
func (r *RunRepository) GetFileResults(ctx context.Context, runID string) ([]FileResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, path, columns_before, columns_after, dropped_columns,
			rows_read, deleted, retrieved, unretrieved, header_mismatch,
			error, processed_at, duration_ms
		FROM file_results
		WHERE run_id = ?
		ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query file results: %w", err)
	}
	defer rows.Close()

	var results []FileResult
	for rows.Next() {
		var result FileResult
		var droppedJSON, processedAt string
		var durationMs int64

		err := rows.Scan(&result.ID, &result.RunID, &result.Path, &result.ColumnsBefore,
			&result.ColumnsAfter, &droppedJSON, &result.RowsRead, &result.Deleted,
			&result.Retrieved, &result.Unretrieved, &result.HeaderMismatch,
			&result.Error, &processedAt, &durationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file result: %w", err)
		}

		if err := json.Unmarshal([]byte(droppedJSON), &result.DroppedColumns); err != nil {
			return nil, fmt.Errorf("failed to decode dropped columns: %w", err)
		}
		if result.ProcessedAt, err = parseTime(processedAt); err != nil {
			return nil, err
		}
		result.Duration = time.Duration(durationMs) * time.Millisecond

		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate file results: %w", err)
	}

	return results, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
