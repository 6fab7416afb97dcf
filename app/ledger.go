package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/mention-filter/app/database"
	"github.com/lysyi3m/mention-filter/app/mention"
)

// runLedger ties one run to the SQLite ledger. A nil *runLedger means no
// ledger was configured and every method is a no-op.
type runLedger struct {
	db    *database.DB
	repo  *database.RunRepository
	runID string
}

func openLedger(ctx context.Context, path, inputDir string, profile *mention.Profile) (*runLedger, error) {
	db, err := database.NewConnection(path)
	if err != nil {
		return nil, err
	}

	repo := database.NewRunRepository(db)
	// Registered even when ctx is already cancelled so finish can close it out.
	runID, err := repo.CreateRun(context.WithoutCancel(ctx), inputDir, profile.Keywords, profile.MaxColumns, profile.RepairLimit())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to register run: %w", err)
	}

	return &runLedger{db: db, repo: repo, runID: runID}, nil
}

func (l *runLedger) recorder() mention.Recorder {
	if l == nil {
		return nil
	}
	return database.NewRunRecorder(l.repo, l.runID)
}

// finish stores the final run status. It ignores cancellation of ctx so an
// interrupted run is still closed out.
func (l *runLedger) finish(ctx context.Context, result *mention.RunResult, runErr error) {
	if l == nil {
		return
	}
	status := database.StatusFor(result, runErr)
	if err := l.repo.FinishRun(context.WithoutCancel(ctx), l.runID, status); err != nil {
		slog.Warn("Failed to finish run in ledger", "run_id", l.runID, "error", err)
	}
}

func (l *runLedger) Close() error {
	if l == nil {
		return nil
	}
	return l.db.Close()
}
