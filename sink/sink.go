// SPDX-License-Identifier: MIT

package sink

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rostro36/evodiff/engine"
)

// Output file names inside a run directory.
const (
	FASTAFile    = "generated_samples_string.fasta"
	CSVFile      = "generated_samples_string.csv"
	ManifestFile = "manifest.yaml"

	// HeaderPrefix precedes the request index in FASTA headers.
	HeaderPrefix = "SEQUENCE_"

	generatedGlob = "generated*"
)

// FASTA writes each sequence as ">SEQUENCE_<index>" followed by one line.
type FASTA struct {
	w *bufio.Writer
}

// NewFASTA returns a FASTA sink over w. Call Flush when done.
func NewFASTA(w io.Writer) *FASTA { return &FASTA{w: bufio.NewWriter(w)} }

// Emit implements engine.Sink.
func (f *FASTA) Emit(index int, text string) error {
	_, err := fmt.Fprintf(f.w, ">%s%d\n%s\n", HeaderPrefix, index, text)

	return err
}

// Flush writes buffered output.
func (f *FASTA) Flush() error { return f.w.Flush() }

// CSV writes one sequence per row, in emission order.
type CSV struct {
	w *csv.Writer
}

// NewCSV returns a CSV sink over w. Call Flush when done.
func NewCSV(w io.Writer) *CSV { return &CSV{w: csv.NewWriter(w)} }

// Emit implements engine.Sink.
func (c *CSV) Emit(_ int, text string) error { return c.w.Write([]string{text}) }

// Flush writes buffered output.
func (c *CSV) Flush() error {
	c.w.Flush()

	return c.w.Error()
}

// Multi fans one emission out to several sinks, stopping at the first error.
type Multi []engine.Sink

// Emit implements engine.Sink.
func (m Multi) Emit(index int, text string) error {
	for _, s := range m {
		if err := s.Emit(index, text); err != nil {
			return err
		}
	}

	return nil
}

// Dir appends FASTA and CSV output to the standard files of a directory.
type Dir struct {
	path  string
	files []*os.File
	fasta *FASTA
	csv   *CSV
}

// OpenDir creates dir if needed and opens its output files for appending.
func OpenDir(dir string) (*Dir, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	d := &Dir{path: dir}
	for _, name := range []string{FASTAFile, CSVFile} {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			_ = d.Close()

			return nil, fmt.Errorf("sink: %w", err)
		}
		d.files = append(d.files, f)
	}
	d.fasta = NewFASTA(d.files[0])
	d.csv = NewCSV(d.files[1])

	return d, nil
}

// Path returns the directory.
func (d *Dir) Path() string { return d.path }

// Emit implements engine.Sink.
func (d *Dir) Emit(index int, text string) error {
	if err := d.fasta.Emit(index, text); err != nil {
		return err
	}

	return d.csv.Emit(index, text)
}

// Close flushes and closes both files.
func (d *Dir) Close() error {
	var errs []error
	if d.fasta != nil {
		errs = append(errs, d.fasta.Flush(), d.csv.Flush())
	}
	for _, f := range d.files {
		errs = append(errs, f.Close())
	}
	d.files = nil

	return errors.Join(errs...)
}

// Reset removes previous generated output files from dir and returns their
// names.
func Reset(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, generatedGlob))
	if err != nil {
		return nil, fmt.Errorf("sink: %w", err)
	}
	var removed []string
	for _, m := range matches {
		if err = os.Remove(m); err != nil {
			return removed, fmt.Errorf("sink: %w", err)
		}
		removed = append(removed, m)
	}

	return removed, nil
}

var (
	_ engine.Sink = (*FASTA)(nil)
	_ engine.Sink = (*CSV)(nil)
	_ engine.Sink = Multi(nil)
	_ engine.Sink = (*Dir)(nil)
)
