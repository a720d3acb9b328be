package algebra

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeededReaderDeterministic(t *testing.T) {
	a := NewSeededReader([]byte("seed"))
	b := NewSeededReader([]byte("seed"))
	other := NewSeededReader([]byte("other seed"))

	bufA := make([]byte, 100)
	bufB := make([]byte, 100)
	bufO := make([]byte, 100)
	n, err := a.Read(bufA)
	require.NoError(t, err)
	require.Equal(t, 100, n)

	// reads of any size continue the same stream
	b.Read(bufB[:7])
	b.Read(bufB[7:40])
	b.Read(bufB[40:])
	require.Equal(t, bufA, bufB)

	other.Read(bufO)
	require.False(t, bytes.Equal(bufA, bufO))

	// the first block is the tagged hash of the key and a zero counter
	key := taggedHash(seededReaderTag, []byte("seed"))
	first := taggedHash(seededReaderTag, key[:], make([]byte, 8))
	require.Equal(t, first[:], bufA[:32])
}

func TestRandomSampling(t *testing.T) {
	p := mustBig("0x17")
	r := mustBig("0x3")
	fp := MustField(p)
	rd := NewSeededReader([]byte("sampling"))

	seen := make(map[uint64]bool)
	for i := 0; i < 500; i++ {
		e, err := fp.Random(rd)
		require.NoError(t, err)
		v := e.Canonical()
		require.Less(t, v.Limb(0), uint64(23))
		seen[v.Limb(0)] = true
	}
	// every residue shows up
	require.Len(t, seen, 23)

	params := &CurveParams{
		Name: "toy23", Modulus: "0x17", Order: "0x3", A: "0", B: "3",
		GeneratorX: "0", GeneratorY: "7", Cofactor: "8",
	}
	c := MustCurve(params)
	require.Equal(t, 0, c.order.Big().Cmp(r))

	offSubgroup := 0
	for i := 0; i < 100; i++ {
		k, err := c.RandomScalar(rd)
		require.NoError(t, err)
		require.Less(t, k.Limb(0), uint64(3))

		q, err := c.RandomPoint(rd)
		require.NoError(t, err)
		require.True(t, q.IsInSubgroup())

		s, err := c.RandomCurvePoint(rd)
		require.NoError(t, err)
		require.True(t, s.IsOnCurve())
		if !s.IsInSubgroup() {
			offSubgroup++
		}
		cleared := s.ClearCofactor()
		require.True(t, cleared.IsInSubgroup())
	}
	require.Positive(t, offSubgroup)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, ErrInvalidLength
}

func TestRandomReaderError(t *testing.T) {
	fp := MustField(mustBig("0x65"))
	_, err := fp.Random(failingReader{})
	require.ErrorIs(t, err, ErrInvalidLength)
}
