// Package writer provides generic, streaming output writers.
package writer

import (
	"encoding/csv"
	"os"
)

// CSVWriter streams rows of type T to a CSV file, converting each row with
// rowFunc. It is left open across many WriteRow calls so a caller can flush
// results as they become available instead of buffering a whole result set
// in memory first.
type CSVWriter[T any] struct {
	f       *os.File
	w       *csv.Writer
	rowFunc func(T) []string
}

// NewCSVWriter creates path, writes header, and returns a writer ready for
// WriteRow calls.
func NewCSVWriter[T any](path string, header []string, rowFunc func(T) []string) (*CSVWriter[T], error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	return &CSVWriter[T]{f: f, w: w, rowFunc: rowFunc}, nil
}

// WriteRow appends one row.
func (c *CSVWriter[T]) WriteRow(row T) error {
	return c.w.Write(c.rowFunc(row))
}

// Flush pushes buffered rows to the underlying file.
func (c *CSVWriter[T]) Flush() error {
	c.w.Flush()
	return c.w.Error()
}

// Close flushes and closes the file. Safe to call on every exit path,
// including error paths, since os.File.Close is idempotent-safe to call
// once and csv.Writer.Flush is a no-op on an empty buffer.
func (c *CSVWriter[T]) Close() error {
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		c.f.Close()
		return err
	}
	return c.f.Close()
}
