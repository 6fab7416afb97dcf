package database

import (
	"context"
)

type RunRepositoryInterface interface {
	CreateRun(ctx context.Context, inputDir string, keywords []string, maxColumns, maxRepairIterations int) (string, error)
	FinishRun(ctx context.Context, runID string, status RunStatus) error
	GetRun(ctx context.Context, runID string) (*Run, error)

	RecordFileResult(ctx context.Context, result FileResult) error
	GetFileResults(ctx context.Context, runID string) ([]FileResult, error)
}
