package mention

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// WriteSummary prints one aligned line per processed file followed by a
// totals line. Widths are measured in terminal cells so wide file names
// keep the columns straight.
func WriteSummary(w io.Writer, result *RunResult) error {
	header := []string{"FILE", "DROPPED", "ROWS", "DELETED", "RETRIEVED", "UNRETRIEVED", "STATUS"}
	lines := [][]string{header}

	rows := 0
	for _, file := range result.Files {
		rows += file.RowsRead
		status := "ok"
		switch {
		case file.Failed():
			status = "failed: " + file.Err.Error()
		case file.HeaderMismatch:
			status = "ok (header mismatch)"
		}
		lines = append(lines, []string{
			filepath.Base(file.Path),
			strconv.Itoa(len(file.DroppedColumns)),
			strconv.Itoa(file.RowsRead),
			strconv.Itoa(file.Deleted),
			strconv.Itoa(file.Retrieved),
			strconv.Itoa(file.Unretrieved),
			status,
		})
	}
	lines = append(lines, []string{
		"TOTAL",
		"",
		strconv.Itoa(rows),
		strconv.Itoa(result.Deleted),
		strconv.Itoa(result.Retrieved),
		strconv.Itoa(result.Unretrieved),
		fmt.Sprintf("%d failed", result.Failed),
	})

	widths := make([]int, len(header))
	for _, line := range lines {
		for i, cell := range line {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}

	for _, line := range lines {
		cells := make([]string, len(line))
		for i, cell := range line {
			if i == len(line)-1 {
				cells[i] = cell
				continue
			}
			cells[i] = runewidth.FillRight(cell, widths[i])
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}
	return nil
}
