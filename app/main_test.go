package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lysyi3m/mention-filter/app/cfg"
	"github.com/lysyi3m/mention-filter/app/database"
)

const (
	goodCSV = "Mention URL,Mention Content\n" +
		"https://a1,time to reopen safely\n" +
		"https://a2,nothing here\n"
	// lacks the content column
	badCSV = "Mention URL,Body\nhttps://b1,reopen\n"
)

func quietLogs(t *testing.T) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

func newTestCfg(t *testing.T, files map[string]string) *cfg.Cfg {
	t.Helper()
	root := t.TempDir()
	inputDir := filepath.Join(root, "input")
	if err := os.MkdirAll(inputDir, 0755); err != nil {
		t.Fatalf("Failed to create input dir: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return &cfg.Cfg{
		InputDir:        inputDir,
		Encoding:        "utf-8",
		RetrievedPath:   filepath.Join(root, "retrieved.csv"),
		UnretrievedPath: filepath.Join(root, "unretrieved.csv"),
		OnError:         cfg.OnErrorSkip,
	}
}

func readLedgerRun(t *testing.T, path string) (*database.Run, []database.FileResult) {
	t.Helper()
	ctx := context.Background()

	db, err := database.NewConnection(path)
	if err != nil {
		t.Fatalf("Failed to open ledger: %v", err)
	}
	defer db.Close()

	var runID string
	if err := db.QueryRow("SELECT id FROM runs").Scan(&runID); err != nil {
		t.Fatalf("Expected exactly one run in ledger: %v", err)
	}

	repo := database.NewRunRepository(db)
	run, err := repo.GetRun(ctx, runID)
	if err != nil || run == nil {
		t.Fatalf("Failed to load run %s: %v", runID, err)
	}
	files, err := repo.GetFileResults(ctx, runID)
	if err != nil {
		t.Fatalf("Failed to load file results: %v", err)
	}
	return run, files
}

func TestStart_ExitCodes(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name       string
		args       func(t *testing.T) []string
		wantCode   int
		wantStderr string
		wantStdout string
	}{
		{
			name:     "missing input dir",
			args:     func(*testing.T) []string { return nil },
			wantCode: exitUsage,
		},
		{
			name:       "negative max columns",
			args:       func(*testing.T) []string { return []string{"--input-dir=in", "--max-columns=-1"} },
			wantCode:   exitUsage,
			wantStderr: "max-columns must be non-negative",
		},
		{
			name:     "help",
			args:     func(*testing.T) []string { return []string{"--help"} },
			wantCode: exitOK,
		},
		{
			name: "clean run",
			args: func(t *testing.T) []string {
				c := newTestCfg(t, map[string]string{"a.csv": goodCSV})
				return []string{
					"--input-dir=" + c.InputDir,
					"--retrieved=" + c.RetrievedPath,
					"--unretrieved=" + c.UnretrievedPath,
				}
			},
			wantCode:   exitOK,
			wantStdout: "TOTAL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := start(context.Background(), tt.args(t), &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d (stderr: %s)", tt.wantCode, code, stderr.String())
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("Expected stderr to contain %q, got %q", tt.wantStderr, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("Expected stdout to contain %q, got %q", tt.wantStdout, stdout.String())
			}
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	quietLogs(t)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		files    map[string]string
		modify   func(c *cfg.Cfg)
		wantCode int
	}{
		{
			name:     "all files processed",
			ctx:      context.Background(),
			files:    map[string]string{"a.csv": goodCSV},
			wantCode: exitOK,
		},
		{
			name:     "skipped file",
			ctx:      context.Background(),
			files:    map[string]string{"a.csv": goodCSV, "b.csv": badCSV},
			wantCode: exitFailure,
		},
		{
			name:     "abort on error",
			ctx:      context.Background(),
			files:    map[string]string{"a.csv": badCSV},
			modify:   func(c *cfg.Cfg) { c.OnError = cfg.OnErrorAbort },
			wantCode: exitFailure,
		},
		{
			name:     "interrupted",
			ctx:      cancelled,
			files:    map[string]string{"a.csv": goodCSV},
			wantCode: exitInterrupted,
		},
		{
			name:     "missing input dir",
			ctx:      context.Background(),
			modify:   func(c *cfg.Cfg) { c.InputDir = filepath.Join(c.InputDir, "missing") },
			wantCode: exitFailure,
		},
		{
			name:     "unknown encoding",
			ctx:      context.Background(),
			modify:   func(c *cfg.Cfg) { c.Encoding = "no-such-encoding" },
			wantCode: exitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCfg(t, tt.files)
			if tt.modify != nil {
				tt.modify(c)
			}

			var stdout bytes.Buffer
			if code := run(tt.ctx, c, &stdout); code != tt.wantCode {
				t.Errorf("Expected exit code %d, got %d", tt.wantCode, code)
			}
		})
	}
}

func TestRun_RecordsLedger(t *testing.T) {
	quietLogs(t)

	c := newTestCfg(t, map[string]string{"a.csv": goodCSV, "b.csv": badCSV})
	c.LedgerPath = filepath.Join(t.TempDir(), "ledger.db")

	var stdout bytes.Buffer
	if code := run(context.Background(), c, &stdout); code != exitFailure {
		t.Fatalf("Expected exit code %d, got %d", exitFailure, code)
	}

	ledgerRun, files := readLedgerRun(t, c.LedgerPath)
	if ledgerRun.Status != database.RunStatusPartial {
		t.Errorf("Expected status %q, got %q", database.RunStatusPartial, ledgerRun.Status)
	}
	if ledgerRun.FinishedAt == nil {
		t.Error("Expected run to be finished")
	}
	if ledgerRun.InputDir != c.InputDir {
		t.Errorf("Expected input dir %q, got %q", c.InputDir, ledgerRun.InputDir)
	}

	if len(files) != 2 {
		t.Fatalf("Expected 2 file results, got %d", len(files))
	}
	if files[0].Error != "" || files[0].Retrieved != 1 || files[0].Unretrieved != 1 {
		t.Errorf("Unexpected result for a.csv: %+v", files[0])
	}
	if files[1].Error == "" {
		t.Errorf("Expected b.csv to carry an error: %+v", files[1])
	}
}

func TestRun_LedgerFinishedWhenOutputFails(t *testing.T) {
	quietLogs(t)

	c := newTestCfg(t, map[string]string{"a.csv": goodCSV})
	c.LedgerPath = filepath.Join(t.TempDir(), "ledger.db")
	c.RetrievedPath = filepath.Join(t.TempDir(), "missing", "retrieved.csv")

	var stdout bytes.Buffer
	if code := run(context.Background(), c, &stdout); code != exitFailure {
		t.Fatalf("Expected exit code %d, got %d", exitFailure, code)
	}

	ledgerRun, files := readLedgerRun(t, c.LedgerPath)
	if ledgerRun.Status != database.RunStatusFailed {
		t.Errorf("Expected status %q, got %q", database.RunStatusFailed, ledgerRun.Status)
	}
	if ledgerRun.FinishedAt == nil {
		t.Error("Expected run to be finished")
	}
	if len(files) != 0 {
		t.Errorf("Expected no file results, got %d", len(files))
	}
}

func TestRun_LedgerFinishedWhenInterrupted(t *testing.T) {
	quietLogs(t)

	c := newTestCfg(t, map[string]string{"a.csv": goodCSV})
	c.LedgerPath = filepath.Join(t.TempDir(), "ledger.db")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	if code := run(ctx, c, &stdout); code != exitInterrupted {
		t.Fatalf("Expected exit code %d, got %d", exitInterrupted, code)
	}

	ledgerRun, _ := readLedgerRun(t, c.LedgerPath)
	if ledgerRun.Status != database.RunStatusFailed {
		t.Errorf("Expected status %q, got %q", database.RunStatusFailed, ledgerRun.Status)
	}
}
