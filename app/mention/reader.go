package mention

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// LookupEncoding resolves an encoding label such as "utf-8", "utf-16le" or
// "windows-1252".
func LookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return unicode.UTF8, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// ReadTable loads a CSV export, using the first record as the header.
// Rows shorter than the header are padded with empty cells.
func ReadTable(r io.Reader, enc encoding.Encoding) (*Table, error) {
	if enc == nil {
		enc = unicode.UTF8
	}
	// A byte order mark wins over the configured encoding and is never
	// part of the first header cell.
	decoded := transform.NewReader(r, unicode.BOMOverride(enc.NewDecoder()))

	// Quotes are only special at the start of a field, so a mention like
	// He said "reopen" today reads as plain text.
	quotes := &quoteTracker{r: decoded}
	reader := csv.NewReader(quotes)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Header: header}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		if len(record) > len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w (%d > %d)", line, ErrMalformedRow, len(record), len(header))
		}
		for len(record) < len(header) {
			record = append(record, "")
		}
		table.Rows = append(table.Rows, record)
	}

	if quotes.open() {
		return nil, fmt.Errorf("failed to read row: file ends inside a quoted field: %w", csv.ErrQuote)
	}

	return table, nil
}

type quoteState int

const (
	fieldStart quoteState = iota
	unquotedField
	quotedField
	quoteInQuotedField
)

// quoteTracker follows the bytes handed to a lazy csv.Reader and remembers
// whether the input stopped inside a quoted field, which the lazy reader
// would otherwise accept as one long final field.
type quoteTracker struct {
	r     io.Reader
	state quoteState
}

func (q *quoteTracker) Read(p []byte) (int, error) {
	n, err := q.r.Read(p)
	for _, b := range p[:n] {
		q.step(b)
	}
	return n, err
}

func (q *quoteTracker) step(b byte) {
	switch q.state {
	case fieldStart:
		switch b {
		case '"':
			q.state = quotedField
		case ',', '\n':
		default:
			q.state = unquotedField
		}
	case unquotedField:
		if b == ',' || b == '\n' {
			q.state = fieldStart
		}
	case quotedField:
		if b == '"' {
			q.state = quoteInQuotedField
		}
	case quoteInQuotedField:
		switch b {
		case ',', '\n':
			q.state = fieldStart
		case '\r':
		default:
			// "" is an escaped quote; anything else is kept literally and
			// the field stays quoted.
			q.state = quotedField
		}
	}
}

func (q *quoteTracker) open() bool {
	return q.state == quotedField
}
