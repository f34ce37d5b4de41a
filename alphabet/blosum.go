// SPDX-License-Identifier: MIT

package alphabet

import (
	"bufio"
	_ "embed"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rostro36/evodiff/matrix"
)

//go:embed blosum62.txt
var blosum62Text string

// ScoreTable is a symmetric substitution score table over a set of runes,
// as published in NCBI matrix files.
type ScoreTable struct {
	symbols []rune
	index   map[rune]int
	scores  []float64 // row-major len(symbols)²
}

// ParseScoreTable reads an NCBI-layout score matrix: '#' comment lines, a
// header of column symbols, then one row per symbol whose first field is the
// row symbol. The table must be square over the header and symmetric.
//
// Errors: ErrScoreTable (wrapped with the offending line).
// Complexity: O(n²) for n symbols.
func ParseScoreTable(r io.Reader) (*ScoreTable, error) {
	var (
		sc     = bufio.NewScanner(r)
		t      = &ScoreTable{index: make(map[rune]int)}
		line   string
		fields []string
		lineNo int
		rowsIn int
	)
	for sc.Scan() {
		lineNo++
		line = strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields = strings.Fields(line)
		if t.symbols == nil { // header
			for _, f := range fields {
				rs := []rune(f)
				if len(rs) != 1 {
					return nil, fmt.Errorf("ParseScoreTable: line %d header %q: %w", lineNo, f, ErrScoreTable)
				}
				if _, dup := t.index[rs[0]]; dup {
					return nil, fmt.Errorf("ParseScoreTable: line %d duplicate %q: %w", lineNo, f, ErrScoreTable)
				}
				t.index[rs[0]] = len(t.symbols)
				t.symbols = append(t.symbols, rs[0])
			}
			t.scores = make([]float64, len(t.symbols)*len(t.symbols))
			continue
		}

		n := len(t.symbols)
		if len(fields) != n+1 {
			return nil, fmt.Errorf("ParseScoreTable: line %d has %d fields, want %d: %w", lineNo, len(fields), n+1, ErrScoreTable)
		}
		rs := []rune(fields[0])
		row, ok := t.index[rs[0]]
		if len(rs) != 1 || !ok || row != rowsIn {
			return nil, fmt.Errorf("ParseScoreTable: line %d row label %q: %w", lineNo, fields[0], ErrScoreTable)
		}
		for j, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("ParseScoreTable: line %d column %d: %w", lineNo, j, ErrScoreTable)
			}
			t.scores[row*n+j] = v
		}
		rowsIn++
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("ParseScoreTable: %w", err)
	}
	if t.symbols == nil || rowsIn != len(t.symbols) {
		return nil, fmt.Errorf("ParseScoreTable: %d rows for %d symbols: %w", rowsIn, len(t.symbols), ErrScoreTable)
	}

	n := len(t.symbols)
	var i, j int
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			if t.scores[i*n+j] != t.scores[j*n+i] {
				return nil, fmt.Errorf("ParseScoreTable: %q/%q asymmetric: %w", t.symbols[i], t.symbols[j], ErrScoreTable)
			}
		}
	}

	return t, nil
}

// BLOSUM62 returns the embedded BLOSUM62 table, extended with J, O and U rows.
func BLOSUM62() *ScoreTable {
	t, err := ParseScoreTable(strings.NewReader(blosum62Text))
	if err != nil {
		panic(err) // embedded asset
	}

	return t
}

// Symbols returns the table's symbols in file order.
func (t *ScoreTable) Symbols() string { return string(t.symbols) }

// Score returns the substitution score of a against b.
func (t *ScoreTable) Score(a, b rune) (float64, error) {
	i, ok := t.index[a]
	if !ok {
		return 0, fmt.Errorf("Score(%q): %w", a, ErrUnknownSymbol)
	}
	j, ok := t.index[b]
	if !ok {
		return 0, fmt.Errorf("Score(%q): %w", b, ErrUnknownSymbol)
	}

	return t.scores[i*len(t.symbols)+j], nil
}

// SimilarityKernel reorders the table to the alphabet's K standard symbols,
// turns each row into a distribution with a softmax and balances the result
// to a doubly stochastic K×K matrix with Sinkhorn iterations. A symmetric
// table yields a symmetric kernel, so the uniform distribution is stationary.
//
// Errors: ErrUnknownSymbol if a standard symbol is absent from the table;
// matrix errors from the balancing step.
// Complexity: O(iter·K²).
func (a *Alphabet) SimilarityKernel(t *ScoreTable) (*matrix.Dense, error) {
	k := a.k
	raw, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, fmt.Errorf("SimilarityKernel: %w", err)
	}

	var (
		i, j int
		v    float64
	)
	for i = 0; i < k; i++ {
		for j = 0; j < k; j++ {
			if v, err = t.Score(a.symbols[i], a.symbols[j]); err != nil {
				return nil, fmt.Errorf("SimilarityKernel: %w", err)
			}
			_ = raw.Set(i, j, v)
		}
	}

	soft, err := matrix.SoftmaxRows(raw)
	if err != nil {
		return nil, fmt.Errorf("SimilarityKernel: %w", err)
	}
	ds, err := matrix.Sinkhorn(soft, matrix.DefaultSinkhornTol, matrix.DefaultSinkhornIter)
	if err != nil {
		return nil, fmt.Errorf("SimilarityKernel: %w", err)
	}

	return ds.(*matrix.Dense), nil
}
