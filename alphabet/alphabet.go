// SPDX-License-Identifier: MIT

package alphabet

import (
	"fmt"
	"strings"

	"github.com/rostro36/evodiff/matrix"
)

// Default special symbols, in vocabulary order after the standard symbols.
const (
	DefaultGap   = '-'
	DefaultStop  = '*'
	DefaultMask  = '#'
	DefaultStart = '@'
	DefaultPad   = '!'
)

// Protein symbol sets. The six trailing standard symbols are ambiguity or
// rare residue codes that may appear in inputs but are never generated.
const (
	CanonicalResidues    = "ACDEFGHIKLMNPQRSTVWY"
	NonStandardResidues  = "BZXJOU"
	ProteinStandard      = CanonicalResidues + NonStandardResidues
	ProteinReservedCount = len(NonStandardResidues)
)

// Specials names the structural symbols appended after the standard block.
// A zero Gap rune means the alphabet carries no gap symbol.
type Specials struct {
	Gap   rune
	Stop  rune
	Mask  rune
	Start rune
	Pad   rune
}

// DefaultSpecials returns the protein vocabulary specials: gap, stop, mask,
// start and pad.
func DefaultSpecials() Specials {
	return Specials{Gap: DefaultGap, Stop: DefaultStop, Mask: DefaultMask, Start: DefaultStart, Pad: DefaultPad}
}

// Alphabet maps symbols to token indices and back.
//
// Layout of the vocabulary:
//
//	[0, K-reserved)   generatable standard symbols
//	[K-reserved, K)   reserved standard symbols (non-standard residues)
//	[K, Size())       specials: optional gap, stop, mask, start, pad
//
// An Alphabet is immutable after New and safe for concurrent use.
type Alphabet struct {
	symbols  []rune
	index    map[rune]int
	k        int
	reserved int

	gapID, stopID, maskID, startID, padID int
}

// Option customizes New.
type Option func(*Specials)

// WithSpecials replaces the default special symbols.
func WithSpecials(s Specials) Option {
	return func(dst *Specials) { *dst = s }
}

// New builds an alphabet from the standard symbols (K = rune count of
// standard) whose last reserved entries are never generation targets.
//
// Errors: ErrTooFewSymbols, ErrReservedCount, ErrDuplicateSymbol.
// Complexity: O(Size()).
func New(standard string, reserved int, opts ...Option) (*Alphabet, error) {
	std := []rune(standard)
	if len(std) < 2 {
		return nil, fmt.Errorf("New: %w", ErrTooFewSymbols)
	}
	if reserved < 0 || reserved >= len(std) {
		return nil, fmt.Errorf("New: reserved=%d of K=%d: %w", reserved, len(std), ErrReservedCount)
	}

	a := &Alphabet{k: len(std), reserved: reserved, gapID: -1}
	sp := DefaultSpecials()
	for _, opt := range opts {
		opt(&sp)
	}

	a.symbols = append(a.symbols, std...)
	if sp.Gap != 0 {
		a.gapID = len(a.symbols)
		a.symbols = append(a.symbols, sp.Gap)
	}
	a.stopID = len(a.symbols)
	a.symbols = append(a.symbols, sp.Stop)
	a.maskID = len(a.symbols)
	a.symbols = append(a.symbols, sp.Mask)
	a.startID = len(a.symbols)
	a.symbols = append(a.symbols, sp.Start)
	a.padID = len(a.symbols)
	a.symbols = append(a.symbols, sp.Pad)

	a.index = make(map[rune]int, len(a.symbols))
	for i, r := range a.symbols {
		if _, dup := a.index[r]; dup {
			return nil, fmt.Errorf("New: symbol %q: %w", r, ErrDuplicateSymbol)
		}
		a.index[r] = i
	}

	return a, nil
}

// Protein returns the default protein alphabet: 20 canonical residues,
// six reserved non-standard residues and the default specials.
func Protein() *Alphabet {
	a, err := New(ProteinStandard, ProteinReservedCount)
	if err != nil {
		panic(err) // constant inputs
	}

	return a
}

// Size is the full vocabulary size, standard plus special symbols.
func (a *Alphabet) Size() int { return len(a.symbols) }

// K is the count of standard symbols.
func (a *Alphabet) K() int { return a.k }

// Reserved is the count of trailing standard symbols excluded from generation.
func (a *Alphabet) Reserved() int { return a.reserved }

// Generatable is the count of leading standard symbols eligible as output.
func (a *Alphabet) Generatable() int { return a.k - a.reserved }

// MaskID returns the mask token index.
func (a *Alphabet) MaskID() int { return a.maskID }

// PadID returns the pad token index.
func (a *Alphabet) PadID() int { return a.padID }

// StartID returns the start token index.
func (a *Alphabet) StartID() int { return a.startID }

// StopID returns the stop token index.
func (a *Alphabet) StopID() int { return a.stopID }

// GapID returns the gap token index, and false when the alphabet has none.
func (a *Alphabet) GapID() (int, bool) { return a.gapID, a.gapID >= 0 }

// IsStandard reports whether id is one of the K standard symbols.
func (a *Alphabet) IsStandard(id int) bool { return id >= 0 && id < a.k }

// IsGeneratable reports whether id may appear in generated content.
func (a *Alphabet) IsGeneratable(id int) bool { return id >= 0 && id < a.k-a.reserved }

// Standard returns the standard symbols as a string.
func (a *Alphabet) Standard() string { return string(a.symbols[:a.k]) }

// Symbol returns the rune for a token index.
func (a *Alphabet) Symbol(id int) (rune, error) {
	if id < 0 || id >= len(a.symbols) {
		return 0, fmt.Errorf("Symbol(%d): %w", id, ErrIndexOutOfRange)
	}

	return a.symbols[id], nil
}

// ID returns the token index of a rune.
func (a *Alphabet) ID(r rune) (int, error) {
	id, ok := a.index[r]
	if !ok {
		return 0, fmt.Errorf("ID(%q): %w", r, ErrUnknownSymbol)
	}

	return id, nil
}

// Encode maps a symbol string to token indices.
// Errors: ErrUnknownSymbol with the offending offset.
// Complexity: O(len(s)).
func (a *Alphabet) Encode(s string) ([]int, error) {
	out := make([]int, 0, len(s))
	var (
		pos int
		r   rune
	)
	for pos, r = range s {
		id, ok := a.index[r]
		if !ok {
			return nil, fmt.Errorf("Encode: offset %d symbol %q: %w", pos, r, ErrUnknownSymbol)
		}
		out = append(out, id)
	}

	return out, nil
}

// Decode renders token indices as a symbol string. Specials render as their
// own runes; callers strip start/stop framing before decoding content.
// Errors: ErrIndexOutOfRange.
// Complexity: O(len(ids)).
func (a *Alphabet) Decode(ids []int) (string, error) {
	var sb strings.Builder
	sb.Grow(len(ids))
	for i, id := range ids {
		if id < 0 || id >= len(a.symbols) {
			return "", fmt.Errorf("Decode: position %d id %d: %w", i, id, ErrIndexOutOfRange)
		}
		sb.WriteRune(a.symbols[id])
	}

	return sb.String(), nil
}

// OneHot returns a len(ids)×K indicator matrix; row i has a single 1 at
// column ids[i]. Every id must be a standard symbol.
// Errors: ErrIndexOutOfRange (also for an empty ids slice).
// Complexity: O(len(ids)·K).
func (a *Alphabet) OneHot(ids []int) (*matrix.Dense, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("OneHot: empty input: %w", ErrIndexOutOfRange)
	}
	m, err := matrix.NewDense(len(ids), a.k)
	if err != nil {
		return nil, fmt.Errorf("OneHot: %w", err)
	}
	for i, id := range ids {
		if !a.IsStandard(id) {
			return nil, fmt.Errorf("OneHot: position %d id %d: %w", i, id, ErrIndexOutOfRange)
		}
		if err = m.Set(i, id, 1); err != nil {
			return nil, fmt.Errorf("OneHot: %w", err)
		}
	}

	return m, nil
}
