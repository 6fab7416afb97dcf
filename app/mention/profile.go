package mention

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultURLField            = "Mention URL"
	DefaultContentField        = "Mention Content"
	DefaultDeletedMarker       = "Deleted or"
	DefaultMaxColumns          = 52
	DefaultMaxRepairIterations = 20
)

// DefaultKeywords is the reopening/restriction keyword set the filter was
// built for.
var DefaultKeywords = []string{
	"reopen",
	"stay-at-home",
	"lockdown",
	"safer at home",
	"shutdown",
	"shelter-in-place",
	"restriction",
	"#StayHome",
}

var (
	ErrNoKeywords         = errors.New("at least one keyword is required")
	ErrBlankKeyword       = errors.New("keywords must not be blank")
	ErrBlankField         = errors.New("url_field and content_field are required")
	ErrInvalidMaxColumns  = errors.New("max_columns must be at least 1")
	ErrInvalidRepairLimit = errors.New("max_repair_iterations must be non-negative")
)

// Profile holds the dataset-specific matching parameters.
type Profile struct {
	Keywords            []string `yaml:"keywords"`
	URLField            string   `yaml:"url_field"`
	ContentField        string   `yaml:"content_field"`
	DeletedMarker       string   `yaml:"deleted_marker"`
	MaxColumns          int      `yaml:"max_columns"`
	MaxRepairIterations *int     `yaml:"max_repair_iterations"`
}

func DefaultProfile() *Profile {
	p := &Profile{}
	p.setDefaults()
	return p
}

// LoadProfile reads a YAML profile. Keys left out of the file keep their
// defaults.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	profile.setDefaults()

	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("invalid profile %s: %w", path, err)
	}

	return &profile, nil
}

func (p *Profile) setDefaults() {
	if p.Keywords == nil {
		p.Keywords = append([]string(nil), DefaultKeywords...)
	}
	if p.URLField == "" {
		p.URLField = DefaultURLField
	}
	if p.ContentField == "" {
		p.ContentField = DefaultContentField
	}
	if p.DeletedMarker == "" {
		p.DeletedMarker = DefaultDeletedMarker
	}
	if p.MaxColumns == 0 {
		p.MaxColumns = DefaultMaxColumns
	}
	if p.MaxRepairIterations == nil {
		n := DefaultMaxRepairIterations
		p.MaxRepairIterations = &n
	}
	p.Keywords = dedupe(p.Keywords)
}

// Override replaces profile values with command-line values. Empty
// keywords, a zero maxColumns and a nil maxRepairIterations keep the
// profile's values; an explicit zero maxRepairIterations disables repair.
func (p *Profile) Override(keywords []string, maxColumns int, maxRepairIterations *int) {
	if len(keywords) > 0 {
		p.Keywords = dedupe(keywords)
	}
	if maxColumns > 0 {
		p.MaxColumns = maxColumns
	}
	if maxRepairIterations != nil {
		n := *maxRepairIterations
		p.MaxRepairIterations = &n
	}
}

func (p *Profile) RepairLimit() int {
	if p.MaxRepairIterations == nil {
		return DefaultMaxRepairIterations
	}
	return *p.MaxRepairIterations
}

func (p *Profile) Validate() error {
	if len(p.Keywords) == 0 {
		return ErrNoKeywords
	}
	for _, keyword := range p.Keywords {
		if strings.TrimSpace(keyword) == "" {
			return ErrBlankKeyword
		}
	}
	if strings.TrimSpace(p.URLField) == "" || strings.TrimSpace(p.ContentField) == "" {
		return ErrBlankField
	}
	if p.MaxColumns < 1 {
		return ErrInvalidMaxColumns
	}
	if p.RepairLimit() < 0 {
		return ErrInvalidRepairLimit
	}
	return nil
}

func dedupe(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	unique := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if seen[keyword] {
			continue
		}
		seen[keyword] = true
		unique = append(unique, keyword)
	}
	return unique
}
