// SPDX-License-Identifier: MIT

package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

// LengthSource supplies one target length per requested output. The engine
// calls it sequentially from the run's master RNG, so draws are reproducible.
type LengthSource interface {
	Length(rng *rand.Rand) (int, error)
}

// LengthFunc adapts a function to LengthSource.
type LengthFunc func(rng *rand.Rand) (int, error)

// Length calls f(rng).
func (f LengthFunc) Length(rng *rand.Rand) (int, error) { return f(rng) }

// Fixed always returns n. A non-positive n is reported per request by the
// engine, not here.
type Fixed int

// Length returns the fixed value.
func (n Fixed) Length(*rand.Rand) (int, error) { return int(n), nil }

// Empirical draws uniformly from observed lengths, e.g. the sequence lengths
// of a training corpus.
type Empirical struct {
	lengths []int
}

// NewEmpirical copies lengths into a new source.
func NewEmpirical(lengths []int) (*Empirical, error) {
	if len(lengths) == 0 {
		return nil, ErrNoLengths
	}

	return &Empirical{lengths: append([]int(nil), lengths...)}, nil
}

// Len returns the number of observations.
func (e *Empirical) Len() int { return len(e.lengths) }

// Length returns one observation chosen uniformly at random.
func (e *Empirical) Length(rng *rand.Rand) (int, error) {
	return e.lengths[rng.Intn(len(e.lengths))], nil
}

// ReadLengthTable parses a CSV table of lengths. The length is taken from the
// column named "length" when a header row is present, otherwise from the
// last column. Blank lines are skipped.
//
// Stage 1: read all records.
// Stage 2: locate the length column.
// Stage 3: parse each value as an integer.
func ReadLengthTable(r io.Reader) (*Empirical, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		recs    [][]string
		err     error
		col     = -1
		start   int
		lengths []int
	)
	if recs, err = cr.ReadAll(); err != nil {
		return nil, fmt.Errorf("ReadLengthTable: %w: %w", ErrLengthTable, err)
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("ReadLengthTable: %w", ErrNoLengths)
	}

	for i, name := range recs[0] {
		if strings.EqualFold(strings.TrimSpace(name), "length") {
			col, start = i, 1
			break
		}
	}

	for i := start; i < len(recs); i++ {
		rec := recs[i]
		c := col
		if c < 0 {
			c = len(rec) - 1
		}
		if c >= len(rec) {
			return nil, fmt.Errorf("ReadLengthTable: row %d: %w", i+1, ErrLengthTable)
		}
		n, perr := strconv.Atoi(strings.TrimSpace(rec[c]))
		if perr != nil {
			return nil, fmt.Errorf("ReadLengthTable: row %d: %w", i+1, errors.Join(ErrLengthTable, perr))
		}
		lengths = append(lengths, n)
	}

	return NewEmpirical(lengths)
}
