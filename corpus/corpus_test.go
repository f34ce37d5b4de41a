package corpus_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rostro36/evodiff/alphabet"
	"github.com/rostro36/evodiff/corpus"
	"github.com/rostro36/evodiff/decode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `; uniref test split
>UniRef50_A0A001 first
MKV
LLA

>UniRef50_A0A002
AC-D
>empty
`

func TestReadFASTA(t *testing.T) {
	recs, err := corpus.ReadFASTA(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, []corpus.Record{
		{Name: "UniRef50_A0A001 first", Seq: "MKVLLA"},
		{Name: "UniRef50_A0A002", Seq: "AC-D"},
		{Name: "empty", Seq: ""},
	}, recs)

	_, err = corpus.ReadFASTA(strings.NewReader("MKV\n>x\nA\n"))
	require.ErrorIs(t, err, corpus.ErrFASTA)

	recs, err = corpus.ReadFASTA(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestWriteFASTARoundTrip(t *testing.T) {
	in := []corpus.Record{{Name: "a", Seq: "MKV"}, {Name: "b", Seq: "W"}}
	var buf bytes.Buffer
	require.NoError(t, corpus.WriteFASTA(&buf, in))
	assert.Equal(t, ">a\nMKV\n>b\nW\n", buf.String())

	out, err := corpus.ReadFASTA(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMarginals(t *testing.T) {
	a, err := alphabet.New("ABCD", 0)
	require.NoError(t, err)

	m, err := corpus.Marginals(a, []corpus.Record{{Seq: "AAB"}, {Seq: "A-C"}})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0.6, 0.2, 0.2, 0}, m, 1e-12)

	_, err = corpus.Marginals(a, []corpus.Record{{Name: "bad", Seq: "AZ"}})
	require.ErrorIs(t, err, alphabet.ErrUnknownSymbol)
	_, err = corpus.Marginals(a, []corpus.Record{{Seq: "--"}})
	require.ErrorIs(t, err, corpus.ErrEmptyCorpus)
}

func TestMarginalsFeedReference(t *testing.T) {
	a := alphabet.Protein()
	m, err := corpus.Marginals(a, []corpus.Record{{Seq: "MKVLLAW"}})
	require.NoError(t, err)
	require.Len(t, m, a.K())

	_, err = decode.NewReference(a, m)
	require.NoError(t, err)
}

func TestLengthsAndSubset(t *testing.T) {
	recs := []corpus.Record{{Name: "a", Seq: "M"}, {Name: "b", Seq: "MK"}, {Name: "c", Seq: "MKV"}}
	assert.Equal(t, []int{1, 2, 3}, corpus.Lengths(recs))

	sub, err := corpus.Subset(recs, 2, decode.NewRNG(4))
	require.NoError(t, err)
	require.Len(t, sub, 2)
	assert.NotEqual(t, sub[0].Name, sub[1].Name)

	again, err := corpus.Subset(recs, 2, decode.NewRNG(4))
	require.NoError(t, err)
	assert.Equal(t, sub, again)

	_, err = corpus.Subset(recs, 4, decode.NewRNG(4))
	require.ErrorIs(t, err, corpus.ErrSubsetSize)
	_, err = corpus.Subset(recs, 0, decode.NewRNG(4))
	require.ErrorIs(t, err, corpus.ErrSubsetSize)
}
