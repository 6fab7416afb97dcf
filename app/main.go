package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/lysyi3m/mention-filter/app/cfg"
	"github.com/lysyi3m/mention-filter/app/mention"
)

const (
	exitOK          = 0
	exitFailure     = 1 // run failed or files were skipped
	exitUsage       = 2
	exitInterrupted = 130
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := start(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// start parses args and runs the filter, returning the process exit code.
func start(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	appCfg, err := cfg.Load(args)
	if err != nil {
		// go-flags prints its own parse errors
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}
	if appCfg == nil {
		// Help was shown
		return exitOK
	}

	setupLogging(appCfg.Debug, stderr)

	return run(ctx, appCfg, stdout)
}

func setupLogging(debug bool, w io.Writer) {
	level := new(slog.LevelVar)
	level.Set(slog.LevelInfo)
	if debug {
		level.Set(slog.LevelDebug)
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func run(ctx context.Context, appCfg *cfg.Cfg, stdout io.Writer) int {
	slog.Info("Starting mention filter", "version", appCfg.Version, "input_dir", appCfg.InputDir)

	profile, err := loadProfile(appCfg)
	if err != nil {
		slog.Error("Failed to load profile", "error", err)
		return exitFailure
	}
	slog.Debug("Profile loaded",
		"keywords", profile.Keywords,
		"max_columns", profile.MaxColumns,
		"max_repair_iterations", profile.RepairLimit(),
	)

	enc, err := mention.LookupEncoding(appCfg.Encoding)
	if err != nil {
		slog.Error("Invalid input encoding", "error", err)
		return exitFailure
	}

	var ledger *runLedger
	if appCfg.LedgerPath != "" {
		ledger, err = openLedger(ctx, appCfg.LedgerPath, appCfg.InputDir, profile)
		if err != nil {
			slog.Error("Failed to open ledger", "path", appCfg.LedgerPath, "error", err)
			return exitFailure
		}
		defer ledger.Close()
		slog.Info("Recording run in ledger", "path", appCfg.LedgerPath, "run_id", ledger.runID)
	}

	writer, err := mention.NewOutputWriter(appCfg.RetrievedPath, appCfg.UnretrievedPath)
	if err != nil {
		slog.Error("Failed to create output files", "error", err)
		ledger.finish(ctx, nil, err)
		return exitFailure
	}

	processor := mention.NewProcessor(profile, writer, ledger.recorder(), mention.ProcessorOptions{
		Encoding:     enc,
		AbortOnError: appCfg.OnError == cfg.OnErrorAbort,
	})

	result, runErr := processor.Run(ctx, appCfg.InputDir)
	if err := writer.Close(); err != nil && runErr == nil {
		runErr = err
	}

	ledger.finish(ctx, result, runErr)

	if result != nil {
		if err := mention.WriteSummary(stdout, result); err != nil {
			slog.Warn("Failed to write summary", "error", err)
		}
	}

	return exitCode(result, runErr)
}

func exitCode(result *mention.RunResult, runErr error) int {
	switch {
	case errors.Is(runErr, context.Canceled):
		slog.Warn("Run interrupted")
		return exitInterrupted
	case runErr != nil:
		slog.Error("Run failed", "error", runErr)
		return exitFailure
	case result.Failed > 0:
		slog.Warn("Run finished with skipped files", "failed", result.Failed)
		return exitFailure
	}

	slog.Info("Run finished",
		"files", len(result.Files),
		"retrieved", result.Retrieved,
		"unretrieved", result.Unretrieved,
		"deleted", result.Deleted,
	)
	return exitOK
}

func loadProfile(appCfg *cfg.Cfg) (*mention.Profile, error) {
	profile := mention.DefaultProfile()
	if appCfg.ProfilePath != "" {
		loaded, err := mention.LoadProfile(appCfg.ProfilePath)
		if err != nil {
			return nil, err
		}
		profile = loaded
	}

	profile.Override(appCfg.Keywords, appCfg.MaxColumns, appCfg.MaxRepairIterations)
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile: %w", err)
	}
	return profile, nil
}
