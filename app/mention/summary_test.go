package mention

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWriteSummary(t *testing.T) {
	result := &RunResult{}
	result.add(FileResult{
		Path:           "/data/a.csv",
		DroppedColumns: []string{"x", "y"},
		RowsRead:       10,
		Deleted:        1,
		Retrieved:      4,
		Unretrieved:    5,
	})
	result.add(FileResult{
		Path:     "/data/提及.csv",
		RowsRead: 3,
		Err:      errors.New("boom"),
	})
	result.add(FileResult{
		Path:           "/data/c.csv",
		RowsRead:       2,
		Unretrieved:    2,
		HeaderMismatch: true,
	})

	var buf bytes.Buffer
	if err := WriteSummary(&buf, result); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("Expected 5 lines, got %d:\n%s", len(lines), buf.String())
	}

	if !strings.HasPrefix(lines[0], "FILE") {
		t.Errorf("Expected header line, got %q", lines[0])
	}
	if !strings.Contains(lines[2], "failed: boom") {
		t.Errorf("Expected failure status, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "ok (header mismatch)") {
		t.Errorf("Expected header mismatch status, got %q", lines[3])
	}
	if !strings.Contains(lines[4], "1 failed") {
		t.Errorf("Expected failure count in totals, got %q", lines[4])
	}

	// The DROPPED column starts at the same display offset on every file line.
	offset := strings.Index(lines[0], "DROPPED")
	for _, line := range lines[1:4] {
		name := strings.Fields(line)[0]
		rest := line[len(name):]
		start := len(name) + len(rest) - len(strings.TrimLeft(rest, " "))
		if got := runewidth.StringWidth(line[:start]); got != offset {
			t.Errorf("Line %q: expected second column at %d, got %d", line, offset, got)
		}
	}

	if result.Retrieved != 4 || result.Unretrieved != 7 || result.Deleted != 1 || result.Failed != 1 {
		t.Errorf("Unexpected totals: %+v", result)
	}
}
