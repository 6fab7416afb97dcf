package mention

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"slices"
)

// OutputWriter appends partitions to the retrieved and unretrieved files.
// The header goes out once, with the first table written.
type OutputWriter struct {
	retrieved   *csvSink
	unretrieved *csvSink

	header        []string
	headerWritten bool
}

type csvSink struct {
	file   *os.File
	buf    *bufio.Writer
	writer *csv.Writer
}

// NewOutputWriter creates both output files, truncating existing content.
func NewOutputWriter(retrievedPath, unretrievedPath string) (*OutputWriter, error) {
	retrieved, err := newCSVSink(retrievedPath)
	if err != nil {
		return nil, err
	}
	unretrieved, err := newCSVSink(unretrievedPath)
	if err != nil {
		retrieved.close()
		return nil, err
	}

	return &OutputWriter{
		retrieved:   retrieved,
		unretrieved: unretrieved,
	}, nil
}

func newCSVSink(path string) (*csvSink, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}
	buf := bufio.NewWriterSize(file, 1<<20)
	return &csvSink{
		file:   file,
		buf:    buf,
		writer: csv.NewWriter(buf),
	}, nil
}

// Write appends one table's partition. The first call also writes header
// to both files.
func (w *OutputWriter) Write(header []string, partition *Partition) error {
	if !w.headerWritten {
		if err := w.retrieved.write(header); err != nil {
			return err
		}
		if err := w.unretrieved.write(header); err != nil {
			return err
		}
		w.header = slices.Clone(header)
		w.headerWritten = true
	}

	for _, row := range partition.Retrieved {
		if err := w.retrieved.write(row); err != nil {
			return err
		}
	}
	for _, row := range partition.Unretrieved {
		if err := w.unretrieved.write(row); err != nil {
			return err
		}
	}

	if err := w.retrieved.flush(); err != nil {
		return err
	}
	return w.unretrieved.flush()
}

// Header returns the header that was emitted, or nil before the first Write.
func (w *OutputWriter) Header() []string {
	return w.header
}

func (w *OutputWriter) HeaderWritten() bool {
	return w.headerWritten
}

// Close flushes and closes both files. It is safe to call more than once.
func (w *OutputWriter) Close() error {
	return errors.Join(w.retrieved.close(), w.unretrieved.close())
}

func (s *csvSink) write(record []string) error {
	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, s.file.Name(), err)
	}
	return nil
}

func (s *csvSink) flush() error {
	s.writer.Flush()
	if err := s.writer.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, s.file.Name(), err)
	}
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOutput, s.file.Name(), err)
	}
	return nil
}

func (s *csvSink) close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.flush()
	closeErr := s.file.Close()
	s.file = nil
	if closeErr != nil {
		closeErr = fmt.Errorf("%w: %w", ErrOutput, closeErr)
	}
	return errors.Join(flushErr, closeErr)
}
