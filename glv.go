package algebra

import (
	"math/big"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// glvParams holds the constants of the endomorphism (x, y) -> (beta*x, y),
// which acts on the subgroup as multiplication by lambda.
type glvParams struct {
	beta   Element
	lambda Element

	// Short basis (a1, b1), (a2, b2) of the lattice of (a, b) with
	// a + b*lambda = 0 mod r.
	a1, b1, a2, b2 *big.Int

	// g1 = round(2^m * |b2| / r) and g2 = round(2^m * |b1| / r) with
	// m = 64 * scalar limbs, so that c1 = round(b2*k/r) and
	// c2 = round(-b1*k/r) are the high halves of k*g1 and k*g2.
	g1, g2       Int
	c1Neg, c2Neg bool

	// nb1 = -b1 mod r, nb2 = -b2 mod r
	nb1, nb2 Element

	halfOrder Int
}

// cubeRootOfUnity returns a non-trivial cube root of unity mod m, or nil.
func cubeRootOfUnity(m *big.Int) *big.Int {
	e := new(big.Int).Sub(m, big.NewInt(1))
	if new(big.Int).Mod(e, big.NewInt(3)).Sign() != 0 {
		return nil
	}
	e.Div(e, big.NewInt(3))
	one := big.NewInt(1)
	for g := int64(2); g < 1000; g++ {
		w := new(big.Int).Exp(big.NewInt(g), e, m)
		if w.Cmp(one) != 0 {
			return w
		}
	}
	return nil
}

func newGLV(c *Curve) (*glvParams, error) {
	if !c.aIsZero {
		return nil, errors.Wrap(ErrNoEndomorphism, "a != 0")
	}
	p := c.fp.modulus.Big()
	r := c.order.Big()
	betaB := cubeRootOfUnity(p)
	lambdaB := cubeRootOfUnity(r)
	if betaB == nil || lambdaB == nil {
		return nil, errors.Wrap(ErrNoEndomorphism, "no cube root of unity")
	}
	beta := c.fp.FromBig(betaB)

	// Pick the lambda matching beta on the generator.
	endoG := Affine{c: c, y: c.gen.y}
	endoG.x.Mul(&beta, &c.gen.x)
	matched := false
	for _, cand := range []*big.Int{lambdaB, new(big.Int).Exp(lambdaB, big.NewInt(2), r)} {
		k, _ := IntFromBig(c.fr.limbs, cand)
		var t Jacobian
		t.ScalarMulAffine(&c.gen, &k)
		if t.EqualAffine(&endoG) {
			lambdaB = cand
			matched = true
			break
		}
	}
	if !matched {
		return nil, errors.Wrap(ErrNoEndomorphism, "no lambda matches beta")
	}

	g := &glvParams{
		beta:   beta,
		lambda: c.fr.FromBig(lambdaB),
	}
	g.a1, g.b1, g.a2, g.b2 = glvBasis(r, lambdaB)

	m := uint(64 * c.fr.limbs)
	round := func(b *big.Int) Int {
		v := new(big.Int).Abs(b)
		v.Lsh(v, m)
		v.Add(v, new(big.Int).Rsh(r, 1))
		v.Div(v, r)
		out, ok := IntFromBig(c.fr.limbs, v)
		if !ok {
			panic("algebra: GLV rounding constant overflows")
		}
		return out
	}
	g.g1 = round(g.b2)
	g.c1Neg = g.b2.Sign() < 0
	g.g2 = round(g.b1)
	g.c2Neg = g.b1.Sign() > 0

	g.nb1 = c.fr.FromBig(new(big.Int).Neg(g.b1))
	g.nb2 = c.fr.FromBig(new(big.Int).Neg(g.b2))
	g.halfOrder, _ = IntFromBig(c.fr.limbs, new(big.Int).Rsh(r, 1))

	logger().Debug("glv basis",
		zap.String("curve", c.name),
		zap.Stringer("a1", g.a1), zap.Stringer("b1", g.b1),
		zap.Stringer("a2", g.a2), zap.Stringer("b2", g.b2),
	)
	return g, nil
}

// glvBasis runs the extended Euclidean algorithm on (r, lambda) and returns
// two short vectors (a, b) with a + b*lambda = 0 mod r.
func glvBasis(r, lambda *big.Int) (a1, b1, a2, b2 *big.Int) {
	// rs[i] = s_i*r + ts[i]*lambda
	rs := []*big.Int{new(big.Int).Set(r), new(big.Int).Set(lambda)}
	ts := []*big.Int{big.NewInt(0), big.NewInt(1)}
	for rs[len(rs)-1].Sign() != 0 {
		i := len(rs) - 1
		q := new(big.Int).Div(rs[i-1], rs[i])
		rn := new(big.Int).Sub(rs[i-1], new(big.Int).Mul(q, rs[i]))
		tn := new(big.Int).Sub(ts[i-1], new(big.Int).Mul(q, ts[i]))
		rs = append(rs, rn)
		ts = append(ts, tn)
	}

	// l is the largest index with rs[l] >= sqrt(r)
	l := 0
	for i := range rs {
		sq := new(big.Int).Mul(rs[i], rs[i])
		if sq.Cmp(r) >= 0 {
			l = i
		}
	}

	a1 = new(big.Int).Set(rs[l+1])
	b1 = new(big.Int).Neg(ts[l+1])

	a2 = new(big.Int).Set(rs[l])
	b2 = new(big.Int).Neg(ts[l])
	if l+2 < len(rs) {
		a3 := rs[l+2]
		b3 := new(big.Int).Neg(ts[l+2])
		if norm2(a3, b3).Cmp(norm2(a2, b2)) < 0 {
			a2, b2 = new(big.Int).Set(a3), b3
		}
	}
	return a1, b1, a2, b2
}

func norm2(a, b *big.Int) *big.Int {
	n := new(big.Int).Mul(a, a)
	return n.Add(n, new(big.Int).Mul(b, b))
}

// Endomorphism returns (beta*x, y), which equals lambda*p for points in the
// prime-order subgroup. It panics if the curve has no endomorphism.
func (c *Curve) Endomorphism(p *Affine) Affine {
	if c.glv == nil {
		panic("algebra: curve has no endomorphism")
	}
	if p.infinity {
		return *p
	}
	r := *p
	r.x.Mul(&c.glv.beta, &p.x)
	return r
}

// Lambda returns the eigenvalue of the endomorphism on the subgroup.
func (c *Curve) Lambda() Element {
	if c.glv == nil {
		panic("algebra: curve has no endomorphism")
	}
	return c.glv.lambda
}

// SplitScalar decomposes k into k1, k2 of roughly half the bit length of r
// such that k = (-1)^neg1*k1 + (-1)^neg2*k2*lambda mod r.
func (c *Curve) SplitScalar(k *Int) (k1, k2 Int, neg1, neg2 bool) {
	g := c.glv
	if g == nil {
		panic("algebra: curve has no endomorphism")
	}
	fr := c.fr

	ke, ok := fr.FromCanonical(k)
	if !ok {
		ke = fr.FromBig(k.Big())
	}
	kc := ke.Canonical()

	c1 := g.roundedQuotient(fr, &kc, &g.g1, g.c1Neg)
	c2 := g.roundedQuotient(fr, &kc, &g.g2, g.c2Neg)

	// k2 = -c1*b1 - c2*b2
	var k2e, t Element
	k2e.Mul(&c1, &g.nb1)
	t.Mul(&c2, &g.nb2)
	k2e.Add(&k2e, &t)

	// k1 = k - k2*lambda
	var k1e Element
	t.Mul(&k2e, &g.lambda)
	k1e.Sub(&ke, &t)

	k1 = k1e.Canonical()
	if k1.Cmp(&g.halfOrder) > 0 {
		k1e.Neg(&k1e)
		k1 = k1e.Canonical()
		neg1 = true
	}
	k2 = k2e.Canonical()
	if k2.Cmp(&g.halfOrder) > 0 {
		k2e.Neg(&k2e)
		k2 = k2e.Canonical()
		neg2 = true
	}
	return k1, k2, neg1, neg2
}

// roundedQuotient returns (-1)^neg * round(k*gc / 2^m) as a scalar.
func (g *glvParams) roundedQuotient(fr *Field, k, gc *Int, neg bool) Element {
	lo, hi := MulWide(k, gc)
	if lo.Bit(lo.n*64-1) == 1 {
		hi.AddUint64(&hi, 1)
	}
	e, ok := fr.FromCanonical(&hi)
	if !ok {
		e = fr.FromBig(hi.Big())
	}
	if neg {
		e.Neg(&e)
	}
	return e
}

// ScalarMulGLV returns k*p using the endomorphism and a joint
// double-and-add over the two half-length scalars. p must be in the
// prime-order subgroup.
func (c *Curve) ScalarMulGLV(p *Affine, k *Int) Jacobian {
	k1, k2, neg1, neg2 := c.SplitScalar(k)

	p1 := *p
	if neg1 {
		p1.Neg(&p1)
	}
	p2 := c.Endomorphism(p)
	if neg2 {
		p2.Neg(&p2)
	}
	var p12 Jacobian
	p12.SetAffine(&p1)
	p12.AddMixed(&p12, &p2)

	n := k1.BitLen()
	if b := k2.BitLen(); b > n {
		n = b
	}
	acc := c.Identity()
	for i := n - 1; i >= 0; i-- {
		acc.Double(&acc)
		switch k1.Bit(i)<<1 | k2.Bit(i) {
		case 3:
			acc.Add(&acc, &p12)
		case 2:
			acc.AddMixed(&acc, &p1)
		case 1:
			acc.AddMixed(&acc, &p2)
		}
	}
	return acc
}

// BatchScalarMulGLV sets bases[i] = scalars[i] * bases[i] by splitting each
// scalar, running one batched wNAF multiplication over the 2n half-length
// pairs and combining the halves with one batched addition. Every base must
// be in the prime-order subgroup.
func (c *Curve) BatchScalarMulGLV(bases []Affine, scalars []Int, w uint) {
	if len(bases) != len(scalars) {
		panic("algebra: bases and scalars differ in length")
	}
	n := len(bases)
	pts := make([]Affine, 2*n)
	ks := make([]Int, 2*n)
	for i := range bases {
		k1, k2, neg1, neg2 := c.SplitScalar(&scalars[i])
		pts[i] = bases[i]
		if neg1 {
			pts[i].Neg(&pts[i])
		}
		pts[n+i] = c.Endomorphism(&bases[i])
		if neg2 {
			pts[n+i].Neg(&pts[n+i])
		}
		ks[i], ks[n+i] = k1, k2
	}
	c.BatchScalarMulInPlace(pts, ks, w)

	pairs := make([]IndexPair, n)
	for i := range pairs {
		pairs[i] = IndexPair{Dst: i, Src: i}
	}
	c.BatchAddInPlace(pts[:n], pts[n:], pairs)
	copy(bases, pts[:n])
}
