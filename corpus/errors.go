// SPDX-License-Identifier: MIT

package corpus

import "errors"

var (
	// ErrFASTA indicates malformed FASTA input.
	ErrFASTA = errors.New("corpus: malformed FASTA")

	// ErrEmptyCorpus indicates a corpus without any usable residue.
	ErrEmptyCorpus = errors.New("corpus: empty corpus")

	// ErrSubsetSize indicates a subset larger than the corpus or non-positive.
	ErrSubsetSize = errors.New("corpus: invalid subset size")
)
