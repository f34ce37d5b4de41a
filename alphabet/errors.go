// SPDX-License-Identifier: MIT

package alphabet

import "errors"

// Sentinel errors for alphabet construction and token mapping.
// Callers match them with errors.Is; messages carry the "alphabet:" prefix.
var (
	// ErrTooFewSymbols indicates fewer than two standard symbols were supplied.
	ErrTooFewSymbols = errors.New("alphabet: need at least two standard symbols")

	// ErrDuplicateSymbol indicates the same rune appears twice among standard
	// and special symbols.
	ErrDuplicateSymbol = errors.New("alphabet: duplicate symbol")

	// ErrReservedCount indicates the reserved trailing subset is negative or
	// leaves no generatable symbol.
	ErrReservedCount = errors.New("alphabet: invalid reserved symbol count")

	// ErrUnknownSymbol indicates a rune that is not part of the alphabet.
	ErrUnknownSymbol = errors.New("alphabet: unknown symbol")

	// ErrIndexOutOfRange indicates a token index outside [0, Size()) or, for
	// OneHot, outside [0, K()).
	ErrIndexOutOfRange = errors.New("alphabet: token index out of range")

	// ErrScoreTable indicates a malformed substitution score table.
	ErrScoreTable = errors.New("alphabet: malformed score table")
)
