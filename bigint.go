package algebra

import (
	"math/big"
	"math/bits"
	"strings"

	"github.com/holiman/uint256"
	fasthex "github.com/tmthrgd/go-hex"
)

// MaxLimbs is the widest Int supported. It is twice the widest field so the
// double-width product of two field-sized integers still fits.
const MaxLimbs = 12

// Int is a fixed-width unsigned integer of n little-endian 64-bit limbs.
//
// The width is part of the value: carries and borrows are reported relative
// to it and every limb below the width is significant. Limbs at or above the
// width are always zero. When two operands have different widths the result
// takes the larger one.
type Int struct {
	d [MaxLimbs]uint64
	n int
}

// NewInt returns the zero integer with the given number of limbs.
func NewInt(limbs int) Int {
	if limbs < 1 || limbs > MaxLimbs {
		panic("algebra: limb count out of range")
	}
	return Int{n: limbs}
}

// IntFromUint64 returns v as an integer with the given number of limbs.
func IntFromUint64(limbs int, v uint64) Int {
	z := NewInt(limbs)
	z.d[0] = v
	return z
}

// IntFromLimbs builds an integer from little-endian limbs.
func IntFromLimbs(limbs ...uint64) Int {
	z := NewInt(len(limbs))
	copy(z.d[:], limbs)
	return z
}

// IntFromBig converts b into an integer of the given width. It reports false
// when b is negative or does not fit.
func IntFromBig(limbs int, b *big.Int) (Int, bool) {
	z := NewInt(limbs)
	ok := z.SetBig(b)
	return z, ok
}

// IntFromHex parses a big-endian hex string, with or without a 0x prefix.
func IntFromHex(limbs int, s string) (Int, bool) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	buf, err := fasthex.DecodeString(s)
	if err != nil {
		return Int{}, false
	}
	z := NewInt(limbs)
	if !z.SetBytes(buf) {
		return Int{}, false
	}
	return z, true
}

// Limbs returns the width of z in 64-bit words.
func (z *Int) Limbs() int {
	return z.n
}

// Limb returns the i-th least significant limb.
func (z *Int) Limb(i int) uint64 {
	return z.d[i]
}

// SetLimb sets the i-th least significant limb. i must be below the width.
func (z *Int) SetLimb(i int, v uint64) {
	if i >= z.n {
		panic("algebra: limb index out of range")
	}
	z.d[i] = v
}

// SetUint64 sets z to v keeping its width (one limb if z is unsized).
func (z *Int) SetUint64(v uint64) {
	n := z.n
	if n == 0 {
		n = 1
	}
	*z = Int{n: n}
	z.d[0] = v
}

// Resize returns a copy of z with a different width. It reports false when
// significant limbs would be dropped.
func (z *Int) Resize(limbs int) (Int, bool) {
	r := NewInt(limbs)
	copy(r.d[:limbs], z.d[:limbs])
	for i := limbs; i < z.n; i++ {
		if z.d[i] != 0 {
			return r, false
		}
	}
	return r, true
}

func maxWidth(a, b *Int) int {
	if a.n > b.n {
		return a.n
	}
	return b.n
}

// AddCarry sets z = a + b and returns the carry out of the top limb.
func (z *Int) AddCarry(a, b *Int) uint64 {
	n := maxWidth(a, b)
	var carry uint64
	for i := 0; i < n; i++ {
		z.d[i], carry = bits.Add64(a.d[i], b.d[i], carry)
	}
	z.clearFrom(n)
	z.n = n
	return carry
}

// SubBorrow sets z = a - b and returns the borrow out of the top limb.
func (z *Int) SubBorrow(a, b *Int) uint64 {
	n := maxWidth(a, b)
	var borrow uint64
	for i := 0; i < n; i++ {
		z.d[i], borrow = bits.Sub64(a.d[i], b.d[i], borrow)
	}
	z.clearFrom(n)
	z.n = n
	return borrow
}

// AddUint64 sets z = a + v and returns the carry.
func (z *Int) AddUint64(a *Int, v uint64) uint64 {
	n := a.n
	carry := v
	for i := 0; i < n; i++ {
		z.d[i], carry = bits.Add64(a.d[i], carry, 0)
	}
	z.clearFrom(n)
	z.n = n
	return carry
}

// SubUint64 sets z = a - v and returns the borrow.
func (z *Int) SubUint64(a *Int, v uint64) uint64 {
	n := a.n
	borrow := v
	for i := 0; i < n; i++ {
		z.d[i], borrow = bits.Sub64(a.d[i], borrow, 0)
	}
	z.clearFrom(n)
	z.n = n
	return borrow
}

// MulWide returns the full product of a and b split into its low and high
// halves, each as wide as the wider operand.
func MulWide(a, b *Int) (lo, hi Int) {
	n := maxWidth(a, b)
	if 2*n > MaxLimbs {
		panic("algebra: product wider than MaxLimbs")
	}
	var t [MaxLimbs]uint64
	for i := 0; i < n; i++ {
		var carry uint64
		for j := 0; j < n; j++ {
			// (carry, t[i+j]) = t[i+j] + a[j]*b[i] + carry
			hi, lo := bits.Mul64(a.d[j], b.d[i])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			t[i+j] = lo
			carry = hi
		}
		t[i+n] = carry
	}
	lo = NewInt(n)
	hi = NewInt(n)
	copy(lo.d[:n], t[:n])
	copy(hi.d[:n], t[n:2*n])
	return lo, hi
}

// MulLow sets z to the low half of a * b.
func (z *Int) MulLow(a, b *Int) {
	n := maxWidth(a, b)
	var t [MaxLimbs]uint64
	for i := 0; i < n; i++ {
		var carry uint64
		for j := 0; i+j < n; j++ {
			hi, lo := bits.Mul64(a.d[j], b.d[i])
			var c uint64
			lo, c = bits.Add64(lo, t[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			t[i+j] = lo
			carry = hi
		}
	}
	z.d = t
	z.n = n
}

// Lsh sets z = a << s, discarding bits shifted past the width.
func (z *Int) Lsh(a *Int, s uint) {
	n := a.n
	limbs := int(s / 64)
	sh := s % 64
	var t [MaxLimbs]uint64
	for i := n - 1; i >= limbs; i-- {
		t[i] = a.d[i-limbs] << sh
		if sh != 0 && i-limbs-1 >= 0 {
			t[i] |= a.d[i-limbs-1] >> (64 - sh)
		}
	}
	z.d = t
	z.n = n
}

// Rsh sets z = a >> s.
func (z *Int) Rsh(a *Int, s uint) {
	n := a.n
	limbs := int(s / 64)
	sh := s % 64
	var t [MaxLimbs]uint64
	for i := 0; i+limbs < n; i++ {
		t[i] = a.d[i+limbs] >> sh
		if sh != 0 && i+limbs+1 < n {
			t[i] |= a.d[i+limbs+1] << (64 - sh)
		}
	}
	z.d = t
	z.n = n
}

// div2 halves z in place, shifting carry into the top bit of the width.
func (z *Int) div2(carry uint64) {
	for i := 0; i < z.n; i++ {
		next := carry
		if i+1 < z.n {
			next = z.d[i+1]
		}
		z.d[i] = z.d[i]>>1 | next<<63
	}
}

// BitLen returns the index of the highest set bit plus one, or 0 for zero.
func (z *Int) BitLen() int {
	for i := z.n - 1; i >= 0; i-- {
		if z.d[i] != 0 {
			return i*64 + bits.Len64(z.d[i])
		}
	}
	return 0
}

// Bit returns bit i of z.
func (z *Int) Bit(i int) uint {
	if i < 0 || i >= z.n*64 {
		return 0
	}
	return uint(z.d[i/64]>>(uint(i)%64)) & 1
}

// Window returns width bits of z starting at bit offset. width is at most 64.
func (z *Int) Window(offset, width uint) uint64 {
	limb := int(offset / 64)
	if limb >= z.n || width == 0 {
		return 0
	}
	sh := offset % 64
	w := z.d[limb] >> sh
	if sh != 0 && limb+1 < z.n {
		w |= z.d[limb+1] << (64 - sh)
	}
	if width < 64 {
		w &= 1<<width - 1
	}
	return w
}

// Cmp compares z and a as integers, most significant limb first.
func (z *Int) Cmp(a *Int) int {
	for i := maxWidth(z, a) - 1; i >= 0; i-- {
		switch {
		case z.d[i] > a.d[i]:
			return 1
		case z.d[i] < a.d[i]:
			return -1
		}
	}
	return 0
}

// Equal reports whether z and a hold the same integer.
func (z *Int) Equal(a *Int) bool {
	return z.Cmp(a) == 0
}

// IsZero reports whether z is zero.
func (z *Int) IsZero() bool {
	var acc uint64
	for i := 0; i < z.n; i++ {
		acc |= z.d[i]
	}
	return acc == 0
}

// IsOne reports whether z is one.
func (z *Int) IsOne() bool {
	if z.d[0] != 1 {
		return false
	}
	for i := 1; i < z.n; i++ {
		if z.d[i] != 0 {
			return false
		}
	}
	return true
}

// IsOdd reports whether the lowest bit is set.
func (z *Int) IsOdd() bool {
	return z.d[0]&1 == 1
}

func (z *Int) clearFrom(n int) {
	for i := n; i < MaxLimbs; i++ {
		z.d[i] = 0
	}
}

// SetBytes sets z from a big-endian buffer, keeping its width. It reports
// false if the value does not fit.
func (z *Int) SetBytes(buf []byte) bool {
	if z.n == 0 {
		z.n = (len(buf) + 7) / 8
		if z.n == 0 {
			z.n = 1
		}
		if z.n > MaxLimbs {
			return false
		}
	}
	var t [MaxLimbs]uint64
	for i := 0; i < len(buf); i++ {
		b := buf[len(buf)-1-i]
		if b == 0 {
			continue
		}
		if i/8 >= z.n {
			return false
		}
		t[i/8] |= uint64(b) << (8 * uint(i%8))
	}
	z.d = t
	return true
}

// FillBytes writes z into buf as a big-endian number, zero-padding on the
// left. It panics if z does not fit.
func (z *Int) FillBytes(buf []byte) []byte {
	for i := range buf {
		buf[i] = 0
	}
	for i := 0; i < z.n*8; i++ {
		b := byte(z.d[i/8] >> (8 * uint(i%8)))
		if i >= len(buf) {
			if b != 0 {
				panic("algebra: buffer too small")
			}
			continue
		}
		buf[len(buf)-1-i] = b
	}
	return buf
}

// Bytes returns the big-endian encoding of z over its full width.
func (z *Int) Bytes() []byte {
	return z.FillBytes(make([]byte, z.n*8))
}

// SetBig sets z to b keeping its width. It reports false when b is negative
// or too large.
func (z *Int) SetBig(b *big.Int) bool {
	if b.Sign() < 0 {
		return false
	}
	if z.n == 0 {
		z.n = (b.BitLen() + 63) / 64
		if z.n == 0 {
			z.n = 1
		}
		if z.n > MaxLimbs {
			return false
		}
	}
	if b.BitLen() > z.n*64 {
		return false
	}
	return z.SetBytes(b.Bytes())
}

// Big returns z as a big.Int.
func (z *Int) Big() *big.Int {
	return new(big.Int).SetBytes(z.Bytes())
}

// SetUint256 sets z to u with a width of four limbs.
func (z *Int) SetUint256(u *uint256.Int) {
	*z = NewInt(4)
	copy(z.d[:4], u[:])
}

// Uint256 converts z into a uint256.Int. It reports false if z does not fit
// in 256 bits.
func (z *Int) Uint256() (*uint256.Int, bool) {
	var u uint256.Int
	for i := 4; i < z.n; i++ {
		if z.d[i] != 0 {
			return &u, false
		}
	}
	copy(u[:], z.d[:4])
	return &u, true
}

// String returns z in 0x-prefixed big-endian hex without leading zero bytes.
func (z *Int) String() string {
	buf := z.Bytes()
	i := 0
	for i < len(buf)-1 && buf[i] == 0 {
		i++
	}
	return "0x" + fasthex.EncodeToString(buf[i:])
}
