package algebra

import "math/bits"

// Affine is a curve point (x, y) or the point at infinity.
type Affine struct {
	c        *Curve
	x, y     Element
	infinity bool
}

// Jacobian is a curve point (X, Y, Z) standing for the affine point
// (X/Z^2, Y/Z^3). Z = 0 is the identity.
type Jacobian struct {
	c       *Curve
	x, y, z Element
}

// Curve returns the curve the point belongs to.
func (p *Affine) Curve() *Curve { return p.c }

// X returns the affine abscissa. It is zero for the point at infinity.
func (p *Affine) X() Element { return p.x }

// Y returns the affine ordinate. It is zero for the point at infinity.
func (p *Affine) Y() Element { return p.y }

// IsInfinity reports whether p is the identity.
func (p *Affine) IsInfinity() bool { return p.infinity }

// SetInfinity sets r to the identity of curve c.
func (r *Affine) SetInfinity(c *Curve) {
	*r = c.Infinity()
}

// Neg sets r = -a.
func (r *Affine) Neg(a *Affine) {
	r.c = a.c
	r.infinity = a.infinity
	r.x = a.x
	r.y.Neg(&a.y)
}

// Equal reports whether p and q are the same point.
func (p *Affine) Equal(q *Affine) bool {
	if p.infinity || q.infinity {
		return p.infinity == q.infinity
	}
	return p.x.Equal(&q.x) && p.y.Equal(&q.y)
}

// IsOnCurve reports whether p satisfies the curve equation. The point at
// infinity is on every curve.
func (p *Affine) IsOnCurve() bool {
	if p.infinity {
		return true
	}
	var lhs, rhs Element
	lhs.Square(&p.y)
	p.c.rhs(&rhs, &p.x)
	return lhs.Equal(&rhs)
}

// IsInSubgroup reports whether r*p is the identity, r being the subgroup
// order. It does not check the curve equation; call IsOnCurve as well for
// untrusted input.
func (p *Affine) IsInSubgroup() bool {
	if p.infinity {
		return true
	}
	if p.c.cofactor.IsOne() {
		return true
	}
	var t Jacobian
	t.ScalarMulAffine(p, &p.c.order)
	return t.IsInfinity()
}

// ScalarMul returns k*p.
func (p *Affine) ScalarMul(k *Int) Jacobian {
	var r Jacobian
	r.ScalarMulAffine(p, k)
	return r
}

// ClearCofactor returns h*p, which lies in the prime-order subgroup for any
// point on the curve.
func (p *Affine) ClearCofactor() Affine {
	var r Jacobian
	r.ScalarMulAffine(p, &p.c.cofactor)
	return r.ToAffine()
}

// String formats the point for debugging.
func (p *Affine) String() string {
	if p.infinity {
		return "(inf)"
	}
	return "(" + p.x.String() + ", " + p.y.String() + ")"
}

// Curve returns the curve the point belongs to.
func (p *Jacobian) Curve() *Curve { return p.c }

// SetInfinity sets r to the identity of curve c, represented as (1, 1, 0).
func (r *Jacobian) SetInfinity(c *Curve) {
	r.c = c
	r.x = c.fp.One()
	r.y = c.fp.One()
	r.z = c.fp.Zero()
}

// IsInfinity reports whether Z = 0.
func (p *Jacobian) IsInfinity() bool {
	return p.z.IsZero()
}

// SetAffine sets r to the Jacobian form of a with Z = 1.
func (r *Jacobian) SetAffine(a *Affine) {
	if a.infinity {
		r.SetInfinity(a.c)
		return
	}
	r.c = a.c
	r.x = a.x
	r.y = a.y
	r.z = a.c.fp.One()
}

// ToAffine returns the affine form of p using one field inversion.
func (p *Jacobian) ToAffine() Affine {
	if p.IsInfinity() {
		return p.c.Infinity()
	}
	var zinv, zinv2, zinv3 Element
	zinv.Inverse(&p.z)
	zinv2.Square(&zinv)
	zinv3.Mul(&zinv2, &zinv)

	r := Affine{c: p.c}
	r.x.Mul(&p.x, &zinv2)
	r.y.Mul(&p.y, &zinv3)
	return r
}

// Neg sets r = -a.
func (r *Jacobian) Neg(a *Jacobian) {
	r.c = a.c
	r.x = a.x
	r.y.Neg(&a.y)
	r.z = a.z
}

// Equal reports whether p and q are the same point, comparing
// X1*Z2^2 = X2*Z1^2 and Y1*Z2^3 = Y2*Z1^3.
func (p *Jacobian) Equal(q *Jacobian) bool {
	if p.IsInfinity() || q.IsInfinity() {
		return p.IsInfinity() == q.IsInfinity()
	}
	var z1z1, z2z2, u1, u2, s1, s2 Element
	z1z1.Square(&p.z)
	z2z2.Square(&q.z)
	u1.Mul(&p.x, &z2z2)
	u2.Mul(&q.x, &z1z1)
	if !u1.Equal(&u2) {
		return false
	}
	s1.Mul(&p.y, &q.z)
	s1.Mul(&s1, &z2z2)
	s2.Mul(&q.y, &p.z)
	s2.Mul(&s2, &z1z1)
	return s1.Equal(&s2)
}

// EqualAffine reports whether p equals the affine point q.
func (p *Jacobian) EqualAffine(q *Affine) bool {
	var t Jacobian
	t.SetAffine(q)
	return p.Equal(&t)
}

// IsOnCurve reports whether p satisfies Y^2 = X^3 + a*X*Z^4 + b*Z^6.
func (p *Jacobian) IsOnCurve() bool {
	if p.IsInfinity() {
		return true
	}
	var y2, x3, z2, z4, z6, t Element
	y2.Square(&p.y)
	x3.Square(&p.x)
	x3.Mul(&x3, &p.x)
	z2.Square(&p.z)
	z4.Square(&z2)
	z6.Mul(&z4, &z2)
	if !p.c.aIsZero {
		t.Mul(&p.c.a, &p.x)
		t.Mul(&t, &z4)
		x3.Add(&x3, &t)
	}
	t.Mul(&p.c.b, &z6)
	x3.Add(&x3, &t)
	return y2.Equal(&x3)
}

// IsInSubgroup reports whether r*p is the identity.
func (p *Jacobian) IsInSubgroup() bool {
	if p.IsInfinity() || p.c.cofactor.IsOne() {
		return true
	}
	var t Jacobian
	t.ScalarMul(p, &p.c.order)
	return t.IsInfinity()
}

// Double sets r = 2a.
func (r *Jacobian) Double(a *Jacobian) {
	c := a.c
	if a.IsInfinity() || a.y.IsZero() {
		r.SetInfinity(c)
		return
	}
	if c.aIsZero {
		r.doubleA0(a)
		return
	}

	// dbl-2007-bl
	var xx, yy, yyyy, zz, s, m, t, x3, y3, z3 Element

	// XX = X1^2, YY = Y1^2, YYYY = YY^2, ZZ = Z1^2
	xx.Square(&a.x)
	yy.Square(&a.y)
	yyyy.Square(&yy)
	zz.Square(&a.z)

	// S = 2*((X1+YY)^2 - XX - YYYY)
	s.Add(&a.x, &yy)
	s.Square(&s)
	s.Sub(&s, &xx)
	s.Sub(&s, &yyyy)
	s.Double(&s)

	// M = 3*XX + a*ZZ^2
	m.Double(&xx)
	m.Add(&m, &xx)
	t.Square(&zz)
	t.Mul(&t, &c.a)
	m.Add(&m, &t)

	// X3 = M^2 - 2*S
	x3.Square(&m)
	x3.Sub(&x3, &s)
	x3.Sub(&x3, &s)

	// Y3 = M*(S - X3) - 8*YYYY
	y3.Sub(&s, &x3)
	y3.Mul(&y3, &m)
	yyyy.Double(&yyyy)
	yyyy.Double(&yyyy)
	yyyy.Double(&yyyy)
	y3.Sub(&y3, &yyyy)

	// Z3 = (Y1+Z1)^2 - YY - ZZ
	z3.Add(&a.y, &a.z)
	z3.Square(&z3)
	z3.Sub(&z3, &yy)
	z3.Sub(&z3, &zz)

	r.c = c
	r.x, r.y, r.z = x3, y3, z3
}

// doubleA0 is dbl-2009-l, one multiplication cheaper for a = 0.
func (r *Jacobian) doubleA0(a *Jacobian) {
	var aa, bb, cc, d, e, f, x3, y3, z3 Element

	// A = X1^2, B = Y1^2, C = B^2
	aa.Square(&a.x)
	bb.Square(&a.y)
	cc.Square(&bb)

	// D = 2*((X1+B)^2 - A - C)
	d.Add(&a.x, &bb)
	d.Square(&d)
	d.Sub(&d, &aa)
	d.Sub(&d, &cc)
	d.Double(&d)

	// E = 3*A, F = E^2
	e.Double(&aa)
	e.Add(&e, &aa)
	f.Square(&e)

	// Z3 = 2*Y1*Z1
	z3.Mul(&a.y, &a.z)
	z3.Double(&z3)

	// X3 = F - 2*D
	x3.Sub(&f, &d)
	x3.Sub(&x3, &d)

	// Y3 = E*(D - X3) - 8*C
	y3.Sub(&d, &x3)
	y3.Mul(&y3, &e)
	cc.Double(&cc)
	cc.Double(&cc)
	cc.Double(&cc)
	y3.Sub(&y3, &cc)

	r.c = a.c
	r.x, r.y, r.z = x3, y3, z3
}

// Add sets r = a + b.
func (r *Jacobian) Add(a, b *Jacobian) {
	if a.IsInfinity() {
		*r = *b
		return
	}
	if b.IsInfinity() {
		*r = *a
		return
	}

	// add-2007-bl
	var z1z1, z2z2, u1, u2, s1, s2, h, i, j, rr, v, x3, y3, z3 Element

	// z1z1 = Z1^2, z2z2 = Z2^2
	z1z1.Square(&a.z)
	z2z2.Square(&b.z)

	// u1 = X1*z2z2, u2 = X2*z1z1
	u1.Mul(&a.x, &z2z2)
	u2.Mul(&b.x, &z1z1)

	// s1 = Y1*Z2*z2z2, s2 = Y2*Z1*z1z1
	s1.Mul(&a.y, &b.z)
	s1.Mul(&s1, &z2z2)
	s2.Mul(&b.y, &a.z)
	s2.Mul(&s2, &z1z1)

	if u1.Equal(&u2) {
		if s1.Equal(&s2) {
			r.Double(a)
		} else {
			r.SetInfinity(a.c)
		}
		return
	}

	// h = u2 - u1, i = (2h)^2, j = h*i
	h.Sub(&u2, &u1)
	i.Double(&h)
	i.Square(&i)
	j.Mul(&h, &i)

	// rr = 2*(s2 - s1), v = u1*i
	rr.Sub(&s2, &s1)
	rr.Double(&rr)
	v.Mul(&u1, &i)

	// X3 = rr^2 - j - 2v
	x3.Square(&rr)
	x3.Sub(&x3, &j)
	x3.Sub(&x3, &v)
	x3.Sub(&x3, &v)

	// Y3 = rr*(v - X3) - 2*s1*j
	y3.Sub(&v, &x3)
	y3.Mul(&y3, &rr)
	s1.Mul(&s1, &j)
	s1.Double(&s1)
	y3.Sub(&y3, &s1)

	// Z3 = ((Z1+Z2)^2 - z1z1 - z2z2)*h
	z3.Add(&a.z, &b.z)
	z3.Square(&z3)
	z3.Sub(&z3, &z1z1)
	z3.Sub(&z3, &z2z2)
	z3.Mul(&z3, &h)

	r.c = a.c
	r.x, r.y, r.z = x3, y3, z3
}

// AddMixed sets r = a + b for an affine b, saving the multiplications that
// Z2 = 1 makes trivial.
func (r *Jacobian) AddMixed(a *Jacobian, b *Affine) {
	if b.infinity {
		*r = *a
		return
	}
	if a.IsInfinity() {
		r.SetAffine(b)
		return
	}

	// madd-2007-bl
	var z1z1, u2, s2, h, hh, i, j, rr, v, x3, y3, z3 Element

	// z1z1 = Z1^2, u2 = X2*z1z1, s2 = Y2*Z1*z1z1
	z1z1.Square(&a.z)
	u2.Mul(&b.x, &z1z1)
	s2.Mul(&b.y, &a.z)
	s2.Mul(&s2, &z1z1)

	if a.x.Equal(&u2) {
		if a.y.Equal(&s2) {
			r.Double(a)
		} else {
			r.SetInfinity(a.c)
		}
		return
	}

	// h = u2 - X1, hh = h^2, i = 4*hh, j = h*i
	h.Sub(&u2, &a.x)
	hh.Square(&h)
	i.Double(&hh)
	i.Double(&i)
	j.Mul(&h, &i)

	// rr = 2*(s2 - Y1), v = X1*i
	rr.Sub(&s2, &a.y)
	rr.Double(&rr)
	v.Mul(&a.x, &i)

	// X3 = rr^2 - j - 2v
	x3.Square(&rr)
	x3.Sub(&x3, &j)
	x3.Sub(&x3, &v)
	x3.Sub(&x3, &v)

	// Y3 = rr*(v - X3) - 2*Y1*j
	y3.Sub(&v, &x3)
	y3.Mul(&y3, &rr)
	j.Mul(&j, &a.y)
	j.Double(&j)
	y3.Sub(&y3, &j)

	// Z3 = (Z1+h)^2 - z1z1 - hh
	z3.Add(&a.z, &h)
	z3.Square(&z3)
	z3.Sub(&z3, &z1z1)
	z3.Sub(&z3, &hh)

	r.c = a.c
	r.x, r.y, r.z = x3, y3, z3
}

// ScalarMul sets r = k*a by left-to-right double-and-add. The loop always
// covers the bit length of the subgroup order, or of k if that is longer.
func (r *Jacobian) ScalarMul(a *Jacobian, k *Int) {
	c := a.c
	n := c.order.BitLen()
	if kb := k.BitLen(); kb > n {
		n = kb
	}
	base := *a
	acc := c.Identity()
	for i := n - 1; i >= 0; i-- {
		acc.Double(&acc)
		if k.Bit(i) == 1 {
			acc.Add(&acc, &base)
		}
	}
	*r = acc
}

// mulUint64 sets r = k*a for a small k, iterating only over the bits of k.
func (r *Jacobian) mulUint64(a *Jacobian, k uint64) {
	base := *a
	acc := a.c.Identity()
	for i := bits.Len64(k) - 1; i >= 0; i-- {
		acc.Double(&acc)
		if k>>uint(i)&1 == 1 {
			acc.Add(&acc, &base)
		}
	}
	*r = acc
}

// ScalarMulAffine sets r = k*a for an affine a.
func (r *Jacobian) ScalarMulAffine(a *Affine, k *Int) {
	c := a.c
	n := c.order.BitLen()
	if kb := k.BitLen(); kb > n {
		n = kb
	}
	base := *a
	acc := c.Identity()
	for i := n - 1; i >= 0; i-- {
		acc.Double(&acc)
		if k.Bit(i) == 1 {
			acc.AddMixed(&acc, &base)
		}
	}
	*r = acc
}

// BatchToAffine converts points to affine form sharing one field inversion.
func (c *Curve) BatchToAffine(points []Jacobian) []Affine {
	out := make([]Affine, len(points))
	zs := make([]Element, len(points))
	for i := range points {
		zs[i] = points[i].z
	}
	BatchInvert(zs)
	for i := range points {
		p := &points[i]
		if p.IsInfinity() {
			out[i] = c.Infinity()
			continue
		}
		var zinv2, zinv3 Element
		zinv2.Square(&zs[i])
		zinv3.Mul(&zinv2, &zs[i])
		out[i].c = c
		out[i].x.Mul(&p.x, &zinv2)
		out[i].y.Mul(&p.y, &zinv3)
	}
	return out
}
