// SPDX-License-Identifier: MIT

// Package alphabet maps protein symbols to token indices and back.
//
// The vocabulary is laid out as K standard symbols followed by structural
// specials (gap, stop, mask, start, pad). The trailing Reserved() standard
// symbols are non-standard residue codes (B, Z, X, J, O, U for proteins):
// they can be encoded and may appear in intermediate diffusion states but
// are never emitted as generated content.
//
// The package also embeds an extended BLOSUM62 table and turns it into the
// doubly stochastic similarity kernel used by similarity-weighted corruption
// schedules:
//
//	a := alphabet.Protein()
//	S, err := a.SimilarityKernel(alphabet.BLOSUM62())
package alphabet
