package algebra

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrSingularCurve is returned when 4a^3 + 27b^2 = 0.
	ErrSingularCurve = errors.New("curve is singular")
	// ErrBadGenerator is returned when the generator is not on the curve or
	// does not have the declared order.
	ErrBadGenerator = errors.New("generator is invalid")
	// ErrNoEndomorphism is returned when GLV is requested for a curve that
	// does not admit it.
	ErrNoEndomorphism = errors.New("curve has no usable endomorphism")
)

// Curve is a short Weierstrass curve y^2 = x^3 + a*x + b together with its
// base field, the scalar field of its prime-order subgroup and the
// generator of that subgroup. A Curve is immutable and safe for concurrent
// use.
type Curve struct {
	name     string
	fp       *Field
	fr       *Field
	a, b     Element
	aIsZero  bool
	gen      Affine
	cofactor Int
	order    Int
	glv      *glvParams
	cfg      Config
	tables   *TableCache
}

// NewCurve validates params and derives every constant of the curve.
func NewCurve(params *CurveParams, opts ...Option) (*Curve, error) {
	pp, err := params.parse()
	if err != nil {
		return nil, err
	}
	fp, err := NewField(pp.p, WithFieldName(params.Name+"/base"))
	if err != nil {
		return nil, errors.Wrapf(err, "curve %q base field", params.Name)
	}
	fr, err := NewField(pp.r, WithFieldName(params.Name+"/scalar"))
	if err != nil {
		return nil, errors.Wrapf(err, "curve %q scalar field", params.Name)
	}
	return newCurve(params, pp, fp, fr, opts...)
}

// NewCurveWithFields is NewCurve with caller-built fields, so the same
// curve can be instantiated over different multiplication routines.
func NewCurveWithFields(params *CurveParams, fp, fr *Field, opts ...Option) (*Curve, error) {
	pp, err := params.parse()
	if err != nil {
		return nil, err
	}
	if fp.modulus.Big().Cmp(pp.p) != 0 || fr.modulus.Big().Cmp(pp.r) != 0 {
		return nil, errors.Errorf("curve %q: field moduli do not match params", params.Name)
	}
	return newCurve(params, pp, fp, fr, opts...)
}

func newCurve(params *CurveParams, pp *parsedParams, fp, fr *Field, opts ...Option) (*Curve, error) {
	c := &Curve{
		name:  params.Name,
		fp:    fp,
		fr:    fr,
		a:     fp.FromBig(pp.a),
		b:     fp.FromBig(pp.b),
		order: fr.modulus,
		cfg:   DefaultConfig(),
	}
	c.aIsZero = c.a.IsZero()
	for _, o := range opts {
		o(&c.cfg)
	}
	c.cfg.normalize()

	// 4a^3 + 27b^2 != 0
	disc := new(big.Int).Exp(pp.a, big.NewInt(3), pp.p)
	disc.Mul(disc, big.NewInt(4))
	b2 := new(big.Int).Mul(pp.b, pp.b)
	b2.Mul(b2, big.NewInt(27))
	disc.Add(disc, b2).Mod(disc, pp.p)
	if disc.Sign() == 0 {
		return nil, errors.Wrapf(ErrSingularCurve, "curve %q", c.name)
	}

	hLimbs := (pp.h.BitLen() + 63) / 64
	if hLimbs == 0 {
		hLimbs = 1
	}
	if hLimbs > MaxLimbs {
		return nil, errors.Errorf("curve %q: cofactor too large", c.name)
	}
	c.cofactor, _ = IntFromBig(hLimbs, pp.h)

	c.gen = Affine{c: c, x: fp.FromBig(pp.gx), y: fp.FromBig(pp.gy)}
	if !c.gen.IsOnCurve() {
		return nil, errors.Wrapf(ErrBadGenerator, "curve %q: not on curve", c.name)
	}
	var rg Jacobian
	rg.ScalarMulAffine(&c.gen, &c.order)
	if !rg.IsInfinity() {
		return nil, errors.Wrapf(ErrBadGenerator, "curve %q: order mismatch", c.name)
	}

	if params.Endomorphism {
		g, err := newGLV(c)
		if err != nil {
			return nil, errors.Wrapf(err, "curve %q", c.name)
		}
		c.glv = g
	}

	c.tables = NewTableCache(c.cfg.TableCacheSize)

	logger().Debug("curve constructed",
		zap.String("name", c.name),
		zap.Int("baseBits", fp.bits),
		zap.Int("scalarBits", fr.bits),
		zap.Bool("aIsZero", c.aIsZero),
		zap.Stringer("cofactor", &c.cofactor),
		zap.Bool("glv", c.glv != nil),
	)
	return c, nil
}

// MustCurve is like NewCurve but panics on error.
func MustCurve(params *CurveParams, opts ...Option) *Curve {
	c, err := NewCurve(params, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the curve name.
func (c *Curve) Name() string { return c.name }

// BaseField returns the field the coordinates live in.
func (c *Curve) BaseField() *Field { return c.fp }

// ScalarField returns the field of integers modulo the subgroup order.
func (c *Curve) ScalarField() *Field { return c.fr }

// A returns the coefficient a.
func (c *Curve) A() Element { return c.a }

// B returns the coefficient b.
func (c *Curve) B() Element { return c.b }

// Order returns the prime order of the subgroup.
func (c *Curve) Order() Int { return c.order }

// Cofactor returns the curve order divided by the subgroup order.
func (c *Curve) Cofactor() Int { return c.cofactor }

// Generator returns the subgroup generator.
func (c *Curve) Generator() Affine { return c.gen }

// HasEndomorphism reports whether GLV decomposition is available.
func (c *Curve) HasEndomorphism() bool { return c.glv != nil }

// Config returns the runtime configuration.
func (c *Curve) Config() Config { return c.cfg }

// Tables returns the curve's fixed-base table cache.
func (c *Curve) Tables() *TableCache { return c.tables }

// ScalarLimbs returns the width of a scalar of this curve.
func (c *Curve) ScalarLimbs() int { return c.fr.limbs }

// ScalarFromUint64 returns v as a scalar of this curve's width.
func (c *Curve) ScalarFromUint64(v uint64) Int {
	return IntFromUint64(c.fr.limbs, v)
}

// ScalarFromBig returns v mod r as a scalar.
func (c *Curve) ScalarFromBig(v *big.Int) Int {
	e := c.fr.FromBig(v)
	return e.Canonical()
}

// Infinity returns the affine identity.
func (c *Curve) Infinity() Affine {
	return Affine{c: c, x: c.fp.Zero(), y: c.fp.Zero(), infinity: true}
}

// Identity returns the Jacobian identity.
func (c *Curve) Identity() Jacobian {
	var r Jacobian
	r.SetInfinity(c)
	return r
}

// NewAffine returns the point (x, y) after checking that it is on the curve
// and in the prime-order subgroup.
func (c *Curve) NewAffine(x, y *Element) (Affine, error) {
	p := c.NewAffineUnchecked(x, y)
	if !p.IsOnCurve() {
		return Affine{}, decodeError(ErrNotOnCurve, "point is not on the curve")
	}
	if !p.IsInSubgroup() {
		return Affine{}, decodeError(ErrNotInSubgroup, "point is not in the prime-order subgroup")
	}
	return p, nil
}

// NewAffineUnchecked returns the point (x, y) without validation.
func (c *Curve) NewAffineUnchecked(x, y *Element) Affine {
	return Affine{c: c, x: *x, y: *y}
}

// AffineFromX returns the point with abscissa x. It picks the
// lexicographically largest y when greatest is set and the smallest
// otherwise. It reports false when x^3 + ax + b is not a square. The point
// is not checked for subgroup membership.
func (c *Curve) AffineFromX(x *Element, greatest bool) (Affine, bool) {
	var rhs Element
	c.rhs(&rhs, x)
	var y Element
	if !y.Sqrt(&rhs) {
		return Affine{}, false
	}
	var negY Element
	negY.Neg(&y)
	if y.IsLexicographicallyLargest() != greatest && !y.IsZero() {
		y = negY
	}
	return Affine{c: c, x: *x, y: y}, true
}

// rhs sets r = x^3 + a*x + b.
func (c *Curve) rhs(r, x *Element) {
	var t Element
	t.Square(x)
	if !c.aIsZero {
		t.Add(&t, &c.a)
	}
	t.Mul(&t, x)
	t.Add(&t, &c.b)
	*r = t
}
