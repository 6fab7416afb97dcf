package cfg

type Cfg struct {
	// Input configuration
	InputDir    string
	Encoding    string
	ProfilePath string

	// Matching overrides (empty, zero or nil values defer to the profile)
	Keywords            []string
	MaxColumns          int
	MaxRepairIterations *int

	// Output configuration
	RetrievedPath   string
	UnretrievedPath string
	OnError         string
	LedgerPath      string

	// Application metadata
	Debug   bool
	Version string
}

const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)
