package alphabet_test

import (
	"strings"
	"testing"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProteinLayout pins the default vocabulary layout.
func TestProteinLayout(t *testing.T) {
	a := alphabet.Protein()

	assert.Equal(t, 26, a.K())
	assert.Equal(t, 6, a.Reserved())
	assert.Equal(t, 20, a.Generatable())
	assert.Equal(t, 31, a.Size())

	gap, ok := a.GapID()
	require.True(t, ok)
	assert.Equal(t, 26, gap)
	assert.Equal(t, 27, a.StopID())
	assert.Equal(t, 28, a.MaskID())
	assert.Equal(t, 29, a.StartID())
	assert.Equal(t, 30, a.PadID())

	for _, id := range []int{a.MaskID(), a.PadID(), a.StartID(), a.StopID()} {
		assert.False(t, a.IsStandard(id))
		assert.False(t, a.IsGeneratable(id))
	}
	assert.True(t, a.IsStandard(25))     // U
	assert.False(t, a.IsGeneratable(25)) // reserved
}

// TestEncodeDecodeRoundTrip covers standard and special symbols.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := alphabet.Protein()
	in := "@MKTAYIAKQRQISFVKSHFSRQ*"

	ids, err := a.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, a.StartID(), ids[0])
	assert.Equal(t, a.StopID(), ids[len(ids)-1])

	out, err := a.Decode(ids)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

// TestEncodeUnknown reports the first unknown rune.
func TestEncodeUnknown(t *testing.T) {
	_, err := alphabet.Protein().Encode("ACDx")
	require.ErrorIs(t, err, alphabet.ErrUnknownSymbol)
	assert.Contains(t, err.Error(), "offset 3")
}

// TestDecodeOutOfRange rejects ids beyond the vocabulary.
func TestDecodeOutOfRange(t *testing.T) {
	a := alphabet.Protein()
	_, err := a.Decode([]int{0, a.Size()})
	require.ErrorIs(t, err, alphabet.ErrIndexOutOfRange)

	_, err = a.Symbol(-1)
	require.ErrorIs(t, err, alphabet.ErrIndexOutOfRange)
}

// TestOneHot builds K-wide indicator rows and rejects specials.
func TestOneHot(t *testing.T) {
	a := alphabet.Protein()
	ids, err := a.Encode("CAW")
	require.NoError(t, err)

	m, err := a.OneHot(ids)
	require.NoError(t, err)
	require.Equal(t, 3, m.Rows())
	require.Equal(t, a.K(), m.Cols())
	require.NoError(t, matrix.ValidateRowStochastic(m, 0))

	for i, id := range ids {
		v, _ := m.At(i, id)
		assert.Equal(t, 1.0, v)
	}

	_, err = a.OneHot([]int{a.MaskID()})
	require.ErrorIs(t, err, alphabet.ErrIndexOutOfRange)
}

// TestNewValidation exercises construction failures.
func TestNewValidation(t *testing.T) {
	_, err := alphabet.New("A", 0)
	require.ErrorIs(t, err, alphabet.ErrTooFewSymbols)

	_, err = alphabet.New("ABCD", 4)
	require.ErrorIs(t, err, alphabet.ErrReservedCount)

	_, err = alphabet.New("ABCD", -1)
	require.ErrorIs(t, err, alphabet.ErrReservedCount)

	_, err = alphabet.New("AB#", 0) // collides with the default mask
	require.ErrorIs(t, err, alphabet.ErrDuplicateSymbol)
}

// TestCustomSpecialsWithoutGap drops the gap slot.
func TestCustomSpecialsWithoutGap(t *testing.T) {
	a, err := alphabet.New("ABCD", 0, alphabet.WithSpecials(alphabet.Specials{
		Stop: '*', Mask: '#', Start: '@', Pad: '!',
	}))
	require.NoError(t, err)

	_, ok := a.GapID()
	assert.False(t, ok)
	assert.Equal(t, 8, a.Size())
	assert.Equal(t, 4, a.StopID())
	assert.Equal(t, "ABCD", a.Standard())
}

// TestBLOSUM62Table checks a few published scores and the extension rows.
func TestBLOSUM62Table(t *testing.T) {
	tbl := alphabet.BLOSUM62()

	cases := []struct {
		a, b rune
		want float64
	}{
		{'A', 'A', 4},
		{'W', 'W', 11},
		{'C', 'C', 9},
		{'I', 'L', 2},
		{'D', 'E', 2},
		{'U', 'C', 9}, // selenocysteine scored as cysteine
		{'O', 'K', 5}, // pyrrolysine scored as lysine
		{'J', 'I', 3},
	}
	for _, c := range cases {
		got, err := tbl.Score(c.a, c.b)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "%c/%c", c.a, c.b)
	}

	for _, r := range alphabet.ProteinStandard {
		assert.True(t, strings.ContainsRune(tbl.Symbols(), r), "missing %c", r)
	}
}

// TestParseScoreTableErrors rejects malformed inputs.
func TestParseScoreTableErrors(t *testing.T) {
	cases := map[string]string{
		"asymmetric":   "  A B\nA 1 2\nB 3 1\n",
		"short row":    "  A B\nA 1\nB 2 1\n",
		"missing rows": "  A B\nA 1 2\n",
		"bad number":   "  A B\nA 1 x\nB 2 1\n",
		"empty":        "# nothing\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := alphabet.ParseScoreTable(strings.NewReader(in))
			require.ErrorIs(t, err, alphabet.ErrScoreTable)
		})
	}
}

// TestSimilarityKernelDoublyStochastic verifies the balanced kernel.
func TestSimilarityKernelDoublyStochastic(t *testing.T) {
	a := alphabet.Protein()

	s, err := a.SimilarityKernel(alphabet.BLOSUM62())
	require.NoError(t, err)
	require.Equal(t, a.K(), s.Rows())
	require.NoError(t, matrix.ValidateRowStochastic(s, 1e-9))

	st, err := matrix.T(s)
	require.NoError(t, err)
	require.NoError(t, matrix.ValidateRowStochastic(st, 1e-9))
	require.NoError(t, matrix.ValidateSymmetric(s, 1e-9))

	// Similar residues corrupt into each other more often than dissimilar ones.
	iID, _ := a.ID('I')
	lID, _ := a.ID('L')
	wID, _ := a.ID('W')
	il, _ := s.At(iID, lID)
	iw, _ := s.At(iID, wID)
	assert.Greater(t, il, iw)
}

// TestSimilarityKernelUnknownSymbol fails when the table lacks a symbol.
func TestSimilarityKernelUnknownSymbol(t *testing.T) {
	a, err := alphabet.New("AQ1", 0)
	require.NoError(t, err)

	_, err = a.SimilarityKernel(alphabet.BLOSUM62())
	require.ErrorIs(t, err, alphabet.ErrUnknownSymbol)
}
