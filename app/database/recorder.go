package database

import (
	"context"

	"github.com/lysyi3m/mention-filter/app/mention"
)

// RunRecorder writes mention file results into the ledger under one run.
type RunRecorder struct {
	repo  RunRepositoryInterface
	runID string
}

func NewRunRecorder(repo RunRepositoryInterface, runID string) *RunRecorder {
	return &RunRecorder{repo: repo, runID: runID}
}

func (r *RunRecorder) RunID() string {
	return r.runID
}

func (r *RunRecorder) RecordFile(ctx context.Context, result mention.FileResult) error {
	record := FileResult{
		RunID:          r.runID,
		Path:           result.Path,
		ColumnsBefore:  result.ColumnsBefore,
		ColumnsAfter:   result.ColumnsAfter,
		DroppedColumns: result.DroppedColumns,
		RowsRead:       result.RowsRead,
		Deleted:        result.Deleted,
		Retrieved:      result.Retrieved,
		Unretrieved:    result.Unretrieved,
		HeaderMismatch: result.HeaderMismatch,
		ProcessedAt:    result.ProcessedAt,
		Duration:       result.ProcessDuration,
	}
	if result.Err != nil {
		record.Error = result.Err.Error()
	}
	return r.repo.RecordFileResult(ctx, record)
}

// StatusFor maps a run outcome to the status stored in the ledger.
func StatusFor(result *mention.RunResult, runErr error) RunStatus {
	switch {
	case runErr != nil:
		return RunStatusFailed
	case result != nil && result.Failed > 0:
		return RunStatusPartial
	default:
		return RunStatusCompleted
	}
}
