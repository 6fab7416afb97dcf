package database

import (
	"time"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusPartial   RunStatus = "partial" // finished with skipped files
	RunStatusFailed    RunStatus = "failed"
)

type Run struct {
	ID                  string
	InputDir            string
	Keywords            []string
	MaxColumns          int
	MaxRepairIterations int
	Status              RunStatus
	StartedAt           time.Time
	FinishedAt          *time.Time
}

type FileResult struct {
	ID             int64
	RunID          string
	Path           string
	ColumnsBefore  int
	ColumnsAfter   int
	DroppedColumns []string
	RowsRead       int
	Deleted        int
	Retrieved      int
	Unretrieved    int
	HeaderMismatch bool
	Error          string // empty when the file was processed
	ProcessedAt    time.Time
	Duration       time.Duration
}
