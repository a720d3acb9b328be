package algebra

import (
	"io"
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxFieldLimbs is the widest modulus supported, in 64-bit limbs.
const MaxFieldLimbs = MaxLimbs / 2

var (
	// ErrModulusEven is returned for an even modulus.
	ErrModulusEven = errors.New("modulus must be odd")
	// ErrModulusTooLarge is returned when the modulus exceeds MaxFieldLimbs.
	ErrModulusTooLarge = errors.New("modulus too large")
	// ErrModulusNotPrime is returned when the modulus fails a primality test.
	ErrModulusNotPrime = errors.New("modulus is not prime")
)

// Arithmetic selects the Montgomery multiplication routine of a field.
type Arithmetic int

const (
	// ArithmeticAuto picks the fastest routine available for the limb count.
	ArithmeticAuto Arithmetic = iota
	// ArithmeticPortable is the generic CIOS routine for any limb count.
	ArithmeticPortable
	// ArithmeticFixed4 is the unrolled routine for four-limb moduli.
	ArithmeticFixed4
)

func (a Arithmetic) String() string {
	switch a {
	case ArithmeticPortable:
		return "portable"
	case ArithmeticFixed4:
		return "fixed4"
	default:
		return "auto"
	}
}

// FieldOption configures NewField.
type FieldOption func(*fieldConfig)

type fieldConfig struct {
	arith Arithmetic
	name  string
}

// WithArithmetic forces a multiplication routine.
func WithArithmetic(a Arithmetic) FieldOption {
	return func(c *fieldConfig) {
		c.arith = a
	}
}

// WithFieldName sets the name used in logs.
func WithFieldName(name string) FieldOption {
	return func(c *fieldConfig) {
		c.name = name
	}
}

// Field holds the constants of a prime field in Montgomery form. All of
// them are derived once by NewField and never modified afterwards.
type Field struct {
	name    string
	modulus Int
	limbs   int
	bits    int
	byteLen int
	arith   Arithmetic

	// inv = -p^-1 mod 2^64
	inv uint64
	// r = R mod p, the Montgomery form of one
	r Int
	// r2 = R^2 mod p
	r2 Int

	// p - 1 = 2^twoAdicity * trace
	twoAdicity        uint
	trace             Int
	traceMinusOneDiv2 Int
	pMinusOneDiv2     Int
	pMinusTwo         Int

	// nonResidue is the smallest quadratic non-residue, rootOfUnity is
	// nonResidue^trace, a primitive 2^twoAdicity-th root of unity. Both are
	// stored in Montgomery form.
	nonResidue  Int
	rootOfUnity Int
}

// NewField derives the Montgomery constants for the odd prime modulus.
func NewField(modulus *big.Int, opts ...FieldOption) (*Field, error) {
	cfg := fieldConfig{}
	for _, o := range opts {
		o(&cfg)
	}

	if modulus.Sign() <= 0 || modulus.Bit(0) == 0 {
		return nil, errors.Wrapf(ErrModulusEven, "modulus %s", modulus)
	}
	if modulus.Cmp(big.NewInt(3)) < 0 {
		return nil, errors.Wrapf(ErrModulusNotPrime, "modulus %s", modulus)
	}
	limbs := (modulus.BitLen() + 63) / 64
	if limbs > MaxFieldLimbs {
		return nil, errors.Wrapf(ErrModulusTooLarge, "%d bits", modulus.BitLen())
	}
	if !modulus.ProbablyPrime(20) {
		return nil, errors.Wrapf(ErrModulusNotPrime, "modulus %s", modulus)
	}

	f := &Field{
		name:    cfg.name,
		limbs:   limbs,
		bits:    modulus.BitLen(),
		byteLen: (modulus.BitLen() + 7) / 8,
		arith:   cfg.arith,
	}
	f.modulus, _ = IntFromBig(limbs, modulus)

	switch f.arith {
	case ArithmeticAuto:
		if limbs == 4 {
			f.arith = ArithmeticFixed4
		} else {
			f.arith = ArithmeticPortable
		}
	case ArithmeticFixed4:
		if limbs != 4 {
			return nil, errors.Errorf("fixed4 arithmetic needs a 4-limb modulus, have %d", limbs)
		}
	}

	// Newton iteration for p^-1 mod 2^64: each step doubles the number of
	// correct low bits, starting from 3 for any odd p.
	p0 := f.modulus.d[0]
	x := p0
	for i := 0; i < 5; i++ {
		x *= 2 - p0*x
	}
	f.inv = -x

	R := new(big.Int).Lsh(big.NewInt(1), uint(64*limbs))
	R.Mod(R, modulus)
	f.r, _ = IntFromBig(limbs, R)
	R2 := new(big.Int).Mul(R, R)
	R2.Mod(R2, modulus)
	f.r2, _ = IntFromBig(limbs, R2)

	pm1 := new(big.Int).Sub(modulus, big.NewInt(1))
	s := pm1.TrailingZeroBits()
	t := new(big.Int).Rsh(pm1, s)
	f.twoAdicity = s
	f.trace, _ = IntFromBig(limbs, t)
	f.traceMinusOneDiv2, _ = IntFromBig(limbs, new(big.Int).Rsh(new(big.Int).Sub(t, big.NewInt(1)), 1))
	f.pMinusOneDiv2, _ = IntFromBig(limbs, new(big.Int).Rsh(pm1, 1))
	f.pMinusTwo, _ = IntFromBig(limbs, new(big.Int).Sub(modulus, big.NewInt(2)))

	qnr := big.NewInt(2)
	for big.Jacobi(qnr, modulus) != -1 {
		qnr.Add(qnr, big.NewInt(1))
	}
	f.nonResidue = f.toMont(qnr)
	f.rootOfUnity = f.toMont(new(big.Int).Exp(qnr, t, modulus))

	logger().Debug("field constructed",
		zap.String("name", f.name),
		zap.Int("bits", f.bits),
		zap.Int("limbs", f.limbs),
		zap.Stringer("arithmetic", f.arith),
		zap.Uint("twoAdicity", f.twoAdicity),
		zap.Uint64("inv", f.inv),
	)
	return f, nil
}

// MustField is like NewField but panics on error.
func MustField(modulus *big.Int, opts ...FieldOption) *Field {
	f, err := NewField(modulus, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) toMont(v *big.Int) Int {
	x, _ := IntFromBig(f.limbs, new(big.Int).Mod(v, f.modulus.Big()))
	var r Int
	f.montMul(&r, &x, &f.r2)
	return r
}

// Modulus returns p.
func (f *Field) Modulus() Int { return f.modulus }

// Limbs returns the number of 64-bit limbs of an element.
func (f *Field) Limbs() int { return f.limbs }

// Bits returns the bit length of p.
func (f *Field) Bits() int { return f.bits }

// ByteLen returns the size of the canonical byte encoding.
func (f *Field) ByteLen() int { return f.byteLen }

// TwoAdicity returns the largest s with 2^s | p-1.
func (f *Field) TwoAdicity() uint { return f.twoAdicity }

// Arithmetic returns the multiplication routine in use.
func (f *Field) Arithmetic() Arithmetic { return f.arith }

// Name returns the name given with WithFieldName.
func (f *Field) Name() string { return f.name }

// RootOfUnity returns the primitive 2^TwoAdicity-th root of unity used by Sqrt.
func (f *Field) RootOfUnity() Element {
	return Element{f: f, v: f.rootOfUnity}
}

// NonResidue returns the smallest quadratic non-residue.
func (f *Field) NonResidue() Element {
	return Element{f: f, v: f.nonResidue}
}

// Zero returns the additive identity.
func (f *Field) Zero() Element {
	return Element{f: f, v: NewInt(f.limbs)}
}

// One returns the multiplicative identity.
func (f *Field) One() Element {
	return Element{f: f, v: f.r}
}

// FromCanonical converts x into Montgomery form. It reports false if x >= p.
func (f *Field) FromCanonical(x *Int) (Element, bool) {
	v, ok := x.Resize(f.limbs)
	if !ok || v.Cmp(&f.modulus) >= 0 {
		return Element{}, false
	}
	e := Element{f: f}
	f.montMul(&e.v, &v, &f.r2)
	return e, true
}

// FromUint64 returns v mod p.
func (f *Field) FromUint64(v uint64) Element {
	if f.limbs == 1 && v >= f.modulus.d[0] {
		v %= f.modulus.d[0]
	}
	x := IntFromUint64(f.limbs, v)
	e := Element{f: f}
	f.montMul(&e.v, &x, &f.r2)
	return e
}

// FromBig returns v mod p. Negative values are reduced into [0, p).
func (f *Field) FromBig(v *big.Int) Element {
	return Element{f: f, v: f.toMont(v)}
}

// Random samples a uniform element by rejection from rd.
func (f *Field) Random(rd io.Reader) (Element, error) {
	buf := make([]byte, f.byteLen)
	excess := uint(f.byteLen*8 - f.bits)
	for {
		if _, err := io.ReadFull(rd, buf); err != nil {
			return Element{}, errors.Wrap(err, "sampling field element")
		}
		buf[0] &= 0xff >> excess
		x := NewInt(f.limbs)
		x.SetBytes(buf)
		if e, ok := f.FromCanonical(&x); ok {
			return e, nil
		}
	}
}

// Element is a residue modulo the prime of its Field, stored in Montgomery
// form in the range [0, p). The zero value is not usable; obtain elements
// from a Field. Operands of a binary operation must belong to the same Field.
type Element struct {
	f *Field
	v Int
}

// Field returns the field e belongs to.
func (e *Element) Field() *Field {
	return e.f
}

// Set sets r = a.
func (r *Element) Set(a *Element) {
	*r = *a
}

// SetZero sets r to zero in field f.
func (r *Element) SetZero(f *Field) {
	*r = f.Zero()
}

// SetOne sets r to one in field f.
func (r *Element) SetOne(f *Field) {
	*r = f.One()
}

// Add sets r = a + b.
func (r *Element) Add(a, b *Element) {
	f := a.f
	var t Int
	carry := t.AddCarry(&a.v, &b.v)
	if carry != 0 || t.Cmp(&f.modulus) >= 0 {
		t.SubBorrow(&t, &f.modulus)
	}
	r.f = f
	r.v = t
}

// Double sets r = 2a.
func (r *Element) Double(a *Element) {
	r.Add(a, a)
}

// Sub sets r = a - b.
func (r *Element) Sub(a, b *Element) {
	f := a.f
	var t Int
	if t.SubBorrow(&a.v, &b.v) != 0 {
		t.AddCarry(&t, &f.modulus)
	}
	r.f = f
	r.v = t
}

// Neg sets r = -a.
func (r *Element) Neg(a *Element) {
	f := a.f
	if a.v.IsZero() {
		r.f = f
		r.v = a.v
		return
	}
	var t Int
	t.SubBorrow(&f.modulus, &a.v)
	r.f = f
	r.v = t
}

// Mul sets r = a * b.
func (r *Element) Mul(a, b *Element) {
	f := a.f
	f.montMul(&r.v, &a.v, &b.v)
	r.f = f
}

// Square sets r = a^2.
func (r *Element) Square(a *Element) {
	f := a.f
	f.montMul(&r.v, &a.v, &a.v)
	r.f = f
}

// MulUint64 sets r = a * v for a small constant v.
func (r *Element) MulUint64(a *Element, v uint64) {
	c := a.f.FromUint64(v)
	r.Mul(a, &c)
}

// Exp sets r = a^e by left-to-right square-and-multiply.
func (r *Element) Exp(a *Element, e *Int) {
	f := a.f
	acc := f.One()
	base := *a
	for i := e.BitLen() - 1; i >= 0; i-- {
		acc.Square(&acc)
		if e.Bit(i) == 1 {
			acc.Mul(&acc, &base)
		}
	}
	*r = acc
}

// Inverse sets r = a^-1 using the binary extended Euclidean algorithm and
// reports whether a was invertible. It runs in variable time. If a is zero,
// r is left unchanged.
func (r *Element) Inverse(a *Element) bool {
	f := a.f
	if a.v.IsZero() {
		return false
	}

	// Invariants: b*a = u*R^2 and c*a = v*R^2 (mod p) on the raw
	// representatives, so the result lands in Montgomery form.
	u := a.v
	v := f.modulus
	b := f.r2
	c := NewInt(f.limbs)

	for !u.IsOne() && !v.IsOne() {
		for !u.IsOdd() {
			u.div2(0)
			f.halve(&b)
		}
		for !v.IsOdd() {
			v.div2(0)
			f.halve(&c)
		}
		if v.Cmp(&u) < 0 {
			u.SubBorrow(&u, &v)
			f.subMod(&b, &b, &c)
		} else {
			v.SubBorrow(&v, &u)
			f.subMod(&c, &c, &b)
		}
	}

	r.f = f
	if u.IsOne() {
		r.v = b
	} else {
		r.v = c
	}
	return true
}

// InverseFermat sets r = a^(p-2) and reports whether a was invertible. It is
// much slower than Inverse and kept as an independent reference.
func (r *Element) InverseFermat(a *Element) bool {
	if a.v.IsZero() {
		return false
	}
	r.Exp(a, &a.f.pMinusTwo)
	return true
}

// halve sets x = x/2 mod p for x in [0, p).
func (f *Field) halve(x *Int) {
	var carry uint64
	if x.IsOdd() {
		carry = x.AddCarry(x, &f.modulus)
	}
	x.div2(carry)
}

// subMod sets z = a - b mod p for a, b in [0, p).
func (f *Field) subMod(z, a, b *Int) {
	if z.SubBorrow(a, b) != 0 {
		z.AddCarry(z, &f.modulus)
	}
}

// Legendre returns 0 for zero, 1 for a non-zero square and -1 otherwise.
func (e *Element) Legendre() int {
	if e.v.IsZero() {
		return 0
	}
	var s Element
	s.Exp(e, &e.f.pMinusOneDiv2)
	if s.IsOne() {
		return 1
	}
	return -1
}

// Equal reports whether e and a are the same residue.
func (e *Element) Equal(a *Element) bool {
	return e.v.Equal(&a.v)
}

// IsZero reports whether e is zero.
func (e *Element) IsZero() bool {
	return e.v.IsZero()
}

// IsOne reports whether e is one.
func (e *Element) IsOne() bool {
	return e.v.Equal(&e.f.r)
}

// Canonical returns the integer in [0, p) that e represents.
func (e *Element) Canonical() Int {
	one := IntFromUint64(e.f.limbs, 1)
	var x Int
	e.f.montMul(&x, &e.v, &one)
	return x
}

// Big returns the canonical value of e.
func (e *Element) Big() *big.Int {
	x := e.Canonical()
	return x.Big()
}

// IsLexicographicallyLargest reports whether e > (p-1)/2.
func (e *Element) IsLexicographicallyLargest() bool {
	x := e.Canonical()
	return x.Cmp(&e.f.pMinusOneDiv2) > 0
}

// String returns the canonical value in hex.
func (e *Element) String() string {
	if e.f == nil {
		return "<nil>"
	}
	x := e.Canonical()
	return x.String()
}

// montMul sets z = x*y*R^-1 mod p.
func (f *Field) montMul(z, x, y *Int) {
	if f.arith == ArithmeticFixed4 {
		montMul4(z, x, y, f)
		return
	}
	montMulPortable(z, x, y, f)
}

// reduceOnce subtracts p from the n-limb value t (with extra top word hi)
// when t >= p, leaving the result in z.
func (f *Field) reduceOnce(z *Int, t *[MaxLimbs]uint64, hi uint64) {
	n := f.limbs
	var s [MaxLimbs]uint64
	var borrow uint64
	for i := 0; i < n; i++ {
		s[i], borrow = bits.Sub64(t[i], f.modulus.d[i], borrow)
	}
	// t >= p when the top word absorbs the borrow
	_, borrow = bits.Sub64(hi, 0, borrow)
	if borrow == 0 {
		*t = s
	}
	z.d = *t
	z.clearFrom(n)
	z.n = n
}
