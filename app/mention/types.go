package mention

import (
	"errors"
	"time"
)

// Table is one mention export loaded into memory. Every row has exactly
// len(Header) cells; an empty cell stands for a missing value.
type Table struct {
	Header []string
	Rows   [][]string
}

// Width returns the current column count.
func (t *Table) Width() int {
	return len(t.Header)
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, column := range t.Header {
		if column == name {
			return i
		}
	}
	return -1
}

type Partition struct {
	Retrieved   [][]string
	Unretrieved [][]string
	Deleted     int
}

// Total is the number of rows left after deleted mentions were removed.
func (p *Partition) Total() int {
	return len(p.Retrieved) + len(p.Unretrieved)
}

type FileResult struct {
	Path            string
	ColumnsBefore   int
	ColumnsAfter    int
	DroppedColumns  []string
	RowsRead        int
	Deleted         int
	Retrieved       int
	Unretrieved     int
	HeaderMismatch  bool
	Err             error
	ProcessedAt     time.Time
	ProcessDuration time.Duration
}

func (r *FileResult) Failed() bool {
	return r.Err != nil
}

type RunResult struct {
	Files       []FileResult
	Failed      int
	Deleted     int
	Retrieved   int
	Unretrieved int
}

func (r *RunResult) add(result FileResult) {
	r.Files = append(r.Files, result)
	if result.Failed() {
		r.Failed++
		return
	}
	r.Deleted += result.Deleted
	r.Retrieved += result.Retrieved
	r.Unretrieved += result.Unretrieved
}

var (
	ErrEmptyFile     = errors.New("file has no header row")
	ErrMalformedRow  = errors.New("row has more fields than the header")
	ErrMissingColumn = errors.New("required column is missing")
	ErrOutput        = errors.New("failed to write output")
)
