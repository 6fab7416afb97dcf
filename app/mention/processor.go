package mention

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/text/encoding"
)

// Recorder receives the outcome of every processed file.
type Recorder interface {
	RecordFile(ctx context.Context, result FileResult) error
}

type nopRecorder struct{}

func (nopRecorder) RecordFile(context.Context, FileResult) error { return nil }

type ProcessorOptions struct {
	Encoding     encoding.Encoding
	AbortOnError bool
}

// Processor runs the read, repair, filter and write steps over every CSV
// file of a directory, one file at a time.
type Processor struct {
	profile  *Profile
	filterer *Filterer
	writer   *OutputWriter
	recorder Recorder
	opts     ProcessorOptions
}

func NewProcessor(profile *Profile, writer *OutputWriter, recorder Recorder, opts ProcessorOptions) *Processor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Processor{
		profile:  profile,
		filterer: NewFilterer(profile),
		writer:   writer,
		recorder: recorder,
		opts:     opts,
	}
}

// Run processes every *.csv file directly inside inputDir in lexical order.
// A file that fails is logged and skipped unless AbortOnError is set.
// Output errors always stop the run.
func (p *Processor) Run(ctx context.Context, inputDir string) (*RunResult, error) {
	files, err := ListInputFiles(inputDir)
	if err != nil {
		return nil, err
	}

	slog.Info("Processing input directory", "dir", inputDir, "files", len(files))

	result := &RunResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fileResult := p.processFile(path)
		result.add(fileResult)

		if err := p.recorder.RecordFile(ctx, fileResult); err != nil {
			slog.Warn("Failed to record file result", "file", path, "error", err)
		}

		if fileResult.Failed() {
			if p.opts.AbortOnError || errors.Is(fileResult.Err, ErrOutput) {
				return result, fmt.Errorf("failed to process %s: %w", path, fileResult.Err)
			}
			slog.Error("Skipping file", "file", path, "error", fileResult.Err)
			continue
		}

		slog.Info("File processed",
			"file", path,
			"rows", fileResult.RowsRead,
			"deleted", fileResult.Deleted,
			"retrieved", fileResult.Retrieved,
			"unretrieved", fileResult.Unretrieved,
			"duration", fileResult.ProcessDuration,
		)
	}

	return result, nil
}

// ListInputFiles returns the regular *.csv files directly inside dir,
// sorted by name.
func ListInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match("*.csv", entry.Name()); ok {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

func (p *Processor) processFile(path string) FileResult {
	start := time.Now()
	result := FileResult{Path: path, ProcessedAt: start}

	err := p.process(path, &result)
	result.Err = err
	result.ProcessDuration = time.Since(start)
	return result
}

func (p *Processor) process(path string, result *FileResult) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	table, err := ReadTable(file, p.opts.Encoding)
	if err != nil {
		return err
	}
	result.ColumnsBefore = table.Width()
	result.RowsRead = len(table.Rows)

	result.DroppedColumns = RepairColumns(table, p.profile.MaxColumns, p.profile.RepairLimit())
	for i, column := range result.DroppedColumns {
		slog.Info("Column dropped",
			"file", path,
			"column", column,
			"columns", result.ColumnsBefore-i-1,
		)
	}
	result.ColumnsAfter = table.Width()

	partition, err := p.filterer.Run(table)
	if err != nil {
		return err
	}
	result.Deleted = partition.Deleted
	result.Retrieved = len(partition.Retrieved)
	result.Unretrieved = len(partition.Unretrieved)

	if p.writer.HeaderWritten() && !slices.Equal(p.writer.Header(), table.Header) {
		result.HeaderMismatch = true
		slog.Warn("Header differs from the emitted header, rows may not line up",
			"file", path,
			"columns", table.Width(),
			"emitted_columns", len(p.writer.Header()),
		)
	}

	return p.writer.Write(table.Header, partition)
}
