package algebra

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const seededReaderTag = "algebra/seeded-reader"

// SeededReader is a deterministic byte stream: block i is the tagged
// SHA-256 of the seed and the big-endian counter i. It is meant for
// reproducible sampling in tests and benchmarks, not for secrets.
type SeededReader struct {
	key     [32]byte
	counter uint64
	buf     [32]byte
	off     int
}

// NewSeededReader returns a reader whose output depends only on seed.
func NewSeededReader(seed []byte) *SeededReader {
	return &SeededReader{
		key: taggedHash(seededReaderTag, seed),
		off: 32,
	}
}

// Read fills p and never fails.
func (r *SeededReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if r.off == len(r.buf) {
			var ctr [8]byte
			binary.BigEndian.PutUint64(ctr[:], r.counter)
			r.counter++
			r.buf = taggedHash(seededReaderTag, r.key[:], ctr[:])
			r.off = 0
		}
		k := copy(p[n:], r.buf[r.off:])
		r.off += k
		n += k
	}
	return n, nil
}

// RandomScalar samples a uniform scalar in [0, r) from rd.
func (c *Curve) RandomScalar(rd io.Reader) (Int, error) {
	e, err := c.fr.Random(rd)
	if err != nil {
		return Int{}, errors.Wrap(err, "sampling scalar")
	}
	return e.Canonical(), nil
}

// RandomPoint samples a uniform point of the prime-order subgroup as k*G.
func (c *Curve) RandomPoint(rd io.Reader) (Affine, error) {
	k, err := c.RandomScalar(rd)
	if err != nil {
		return Affine{}, err
	}
	var p Jacobian
	p.ScalarMulAffine(&c.gen, &k)
	return p.ToAffine(), nil
}

// RandomCurvePoint samples a point on the curve by trying random x until
// x^3 + ax + b is a square. The result need not lie in the prime-order
// subgroup; ClearCofactor maps it there.
func (c *Curve) RandomCurvePoint(rd io.Reader) (Affine, error) {
	var sign [1]byte
	for {
		x, err := c.fp.Random(rd)
		if err != nil {
			return Affine{}, errors.Wrap(err, "sampling point")
		}
		if _, err := io.ReadFull(rd, sign[:]); err != nil {
			return Affine{}, errors.Wrap(err, "sampling point")
		}
		if p, ok := c.AffineFromX(&x, sign[0]&1 == 1); ok {
			return p, nil
		}
	}
}
