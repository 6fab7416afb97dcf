package cfg

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/jessevdk/go-flags"
)

// ErrInvalidOption marks values go-flags accepted but the filter cannot use.
var ErrInvalidOption = errors.New("invalid option")

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Input configuration
	InputDir    string `long:"input-dir" env:"INPUT_DIR" description:"Directory containing mention CSV exports (required)" required:"true"`
	Encoding    string `long:"encoding" env:"INPUT_ENCODING" default:"utf-8" description:"Text encoding of the input files (e.g., utf-8, utf-16, windows-1252)"`
	ProfilePath string `long:"profile" env:"PROFILE" description:"YAML filter profile with keywords and column limits (optional)"`

	// Matching overrides
	Keywords            []string `long:"keyword" description:"Keyword to match in mention content; repeat to add more (overrides the profile list)"`
	MaxColumns          int      `long:"max-columns" env:"MAX_COLUMNS" description:"Expected column count; extra leading columns are dropped (overrides the profile)"`
	MaxRepairIterations *int     `long:"max-repair-iterations" env:"MAX_REPAIR_ITERATIONS" description:"Maximum number of leading columns dropped per file, 0 disables repair (overrides the profile)"`

	// Output configuration
	RetrievedPath   string `long:"retrieved" env:"RETRIEVED_PATH" default:"retrieved.csv" description:"Output file for mentions matching a keyword"`
	UnretrievedPath string `long:"unretrieved" env:"UNRETRIEVED_PATH" default:"unretrieved.csv" description:"Output file for all other mentions"`
	OnError         string `long:"on-error" env:"ON_ERROR" default:"skip" choice:"skip" choice:"abort" description:"What to do when an input file cannot be processed"`
	LedgerPath      string `long:"ledger" env:"LEDGER_PATH" description:"SQLite file recording run and per-file results (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args (without the program name) and environment variables.
// It returns nil, nil when help was requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		InputDir:            raw.InputDir,
		Encoding:            raw.Encoding,
		ProfilePath:         raw.ProfilePath,
		Keywords:            raw.Keywords,
		MaxColumns:          raw.MaxColumns,
		MaxRepairIterations: raw.MaxRepairIterations,
		RetrievedPath:       raw.RetrievedPath,
		UnretrievedPath:     raw.UnretrievedPath,
		OnError:             raw.OnError,
		LedgerPath:          raw.LedgerPath,
		Debug:               raw.Debug,
		Version:             GetVersion(),
	}

	if cfg.MaxColumns < 0 {
		return nil, fmt.Errorf("%w: max-columns must be non-negative", ErrInvalidOption)
	}
	if cfg.MaxRepairIterations != nil && *cfg.MaxRepairIterations < 0 {
		return nil, fmt.Errorf("%w: max-repair-iterations must be non-negative", ErrInvalidOption)
	}

	return cfg, nil
}
