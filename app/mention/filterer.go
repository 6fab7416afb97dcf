package mention

import (
	"fmt"
	"strings"
)

type Filterer struct {
	profile *Profile
}

func NewFilterer(profile *Profile) *Filterer {
	return &Filterer{profile: profile}
}

// Run removes deleted mentions and splits the rest by keyword match on the
// content column. Row order is preserved within each side.
func (f *Filterer) Run(t *Table) (*Partition, error) {
	urlIdx := t.ColumnIndex(f.profile.URLField)
	if urlIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f.profile.URLField)
	}
	contentIdx := t.ColumnIndex(f.profile.ContentField)
	if contentIdx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrMissingColumn, f.profile.ContentField)
	}

	partition := &Partition{}
	for _, row := range t.Rows {
		if f.isDeleted(row[urlIdx]) {
			partition.Deleted++
			continue
		}

		if _, ok := f.Match(row[contentIdx]); ok {
			partition.Retrieved = append(partition.Retrieved, row)
		} else {
			partition.Unretrieved = append(partition.Unretrieved, row)
		}
	}

	return partition, nil
}

// Match reports the first keyword contained in content. Matching is
// case-sensitive; empty content never matches.
func (f *Filterer) Match(content string) (string, bool) {
	if content == "" {
		return "", false
	}
	for _, keyword := range f.profile.Keywords {
		if strings.Contains(content, keyword) {
			return keyword, true
		}
	}
	return "", false
}

func (f *Filterer) isDeleted(url string) bool {
	return url != "" && strings.Contains(url, f.profile.DeletedMarker)
}
