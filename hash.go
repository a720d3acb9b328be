package algebra

import (
	"crypto/hmac"
	"hash"
	"sync"

	sha256simd "github.com/minio/sha256-simd"
)

// tagPrefixes caches SHA256(tag) per tag string.
var tagPrefixes sync.Map

func tagPrefix(tag string) [32]byte {
	if v, ok := tagPrefixes.Load(tag); ok {
		return v.([32]byte)
	}
	h := sha256simd.Sum256([]byte(tag))
	tagPrefixes.Store(tag, h)
	return h
}

// taggedHash computes SHA256(SHA256(tag) || SHA256(tag) || msg...).
func taggedHash(tag string, msg ...[]byte) [32]byte {
	prefix := tagPrefix(tag)
	h := sha256simd.New()
	h.Write(prefix[:])
	h.Write(prefix[:])
	for _, m := range msg {
		h.Write(m)
	}
	var out [32]byte
	h.Sum(out[:0])
	return out
}

// HMACDRBG is the HMAC-SHA256 generator of RFC 6979 section 3.2. After
// seeding, Read returns the concatenated V blocks. Like SeededReader it is
// deterministic, so it suits derivation from public inputs only.
type HMACDRBG struct {
	k, v [32]byte
	buf  [32]byte
	off  int
}

// NewHMACDRBG seeds a generator with K = 0, V = 1...1 and two update
// rounds over seed.
func NewHMACDRBG(seed []byte) *HMACDRBG {
	d := &HMACDRBG{off: 32}
	for i := range d.v {
		d.v[i] = 0x01
	}
	d.update(0x00, seed)
	d.update(0x01, seed)
	return d
}

func (d *HMACDRBG) mac() hash.Hash {
	return hmac.New(sha256simd.New, d.k[:])
}

// update sets K = HMAC_K(V || sep || seed) and V = HMAC_K(V).
func (d *HMACDRBG) update(sep byte, seed []byte) {
	m := d.mac()
	m.Write(d.v[:])
	m.Write([]byte{sep})
	m.Write(seed)
	m.Sum(d.k[:0])
	m = d.mac()
	m.Write(d.v[:])
	m.Sum(d.v[:0])
}

// Reseed discards buffered output and advances K and V, as RFC 6979 does
// when a candidate nonce is rejected.
func (d *HMACDRBG) Reseed() {
	d.update(0x00, nil)
	d.off = len(d.buf)
}

// Read fills p and never fails.
func (d *HMACDRBG) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if d.off == len(d.buf) {
			m := d.mac()
			m.Write(d.v[:])
			m.Sum(d.v[:0])
			d.buf = d.v
			d.off = 0
		}
		k := copy(p[n:], d.buf[d.off:])
		d.off += k
		n += k
	}
	return n, nil
}

// HashToElement maps (tag, msg) to a field element by rejection sampling
// from an HMACDRBG seeded with the tagged hash of msg. The result is
// uniform but the running time depends on the input.
func (f *Field) HashToElement(tag string, msg []byte) Element {
	seed := taggedHash(tag, msg)
	e, err := f.Random(NewHMACDRBG(seed[:]))
	if err != nil {
		// HMACDRBG.Read does not fail
		panic(err)
	}
	return e
}

// HashToScalar maps (tag, msg) to a scalar in [0, r).
func (c *Curve) HashToScalar(tag string, msg []byte) Int {
	e := c.fr.HashToElement(tag, msg)
	return e.Canonical()
}

// HashToCurve maps (tag, msg) to a point of the prime-order subgroup by
// try-and-increment on x followed by cofactor clearing. It is not one of
// the constant-time hash-to-curve suites and the result can be the
// identity when the sampled point has small order.
func (c *Curve) HashToCurve(tag string, msg []byte) Affine {
	seed := taggedHash(tag, msg)
	p, err := c.RandomCurvePoint(NewHMACDRBG(seed[:]))
	if err != nil {
		panic(err)
	}
	return p.ClearCofactor()
}
