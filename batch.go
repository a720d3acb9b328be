package algebra

import (
	"github.com/bits-and-blooms/bitset"
)

// BatchInvert replaces every non-zero element of a with its inverse using a
// single field inversion (Montgomery's trick). Zero elements are left as
// they are.
func BatchInvert(a []Element) {
	n := len(a)
	if n == 0 {
		return
	}
	var f *Field
	for i := range a {
		if a[i].f != nil {
			f = a[i].f
			break
		}
	}
	if f == nil {
		return
	}

	// s_i = product of the non-zero a_j with j < i
	s := make([]Element, n)
	acc := f.One()
	for i := 0; i < n; i++ {
		s[i] = acc
		if !a[i].IsZero() {
			acc.Mul(&acc, &a[i])
		}
	}

	// u = (product of all non-zero a_i)^-1
	var u Element
	u.Inverse(&acc)

	// Loop backwards to make it an in-place algorithm.
	for i := n - 1; i >= 0; i-- {
		if a[i].IsZero() {
			continue
		}
		var inv Element
		inv.Mul(&u, &s[i])
		u.Mul(&u, &a[i])
		a[i] = inv
	}
}

// IndexPair names a destination entry and a source entry of a batched
// addition.
type IndexPair struct {
	Dst, Src int
}

// BatchDoubleInPlace doubles bases[i] for every i in index using the affine
// formula with one shared inversion. Points at infinity and points with
// y = 0 cannot take part in the shared inversion; they are handled
// individually. Indices must be distinct.
func (c *Curve) BatchDoubleInPlace(bases []Affine, index []int) {
	if len(index) == 0 {
		return
	}
	fp := c.fp
	safe := bitset.New(uint(len(index)))

	// First pass: scratch[k] = product of the denominators 2y before k.
	scratch := make([]Element, len(index))
	acc := fp.One()
	for k, i := range index {
		p := &bases[i]
		if p.infinity {
			continue
		}
		if p.y.IsZero() {
			*p = c.Infinity()
			continue
		}
		safe.Set(uint(k))
		scratch[k] = acc
		var d Element
		d.Double(&p.y)
		acc.Mul(&acc, &d)
	}
	if safe.None() {
		return
	}

	var inv Element
	inv.Inverse(&acc)

	// Second pass: unwind the inverses and apply
	// lambda = (3x^2 + a) / 2y, x3 = lambda^2 - 2x, y3 = lambda*(x - x3) - y.
	for k := len(index) - 1; k >= 0; k-- {
		if !safe.Test(uint(k)) {
			continue
		}
		p := &bases[index[k]]
		var dinv, d, lambda, x3, y3 Element
		dinv.Mul(&inv, &scratch[k])
		d.Double(&p.y)
		inv.Mul(&inv, &d)

		lambda.Square(&p.x)
		lambda.MulUint64(&lambda, 3)
		if !c.aIsZero {
			lambda.Add(&lambda, &c.a)
		}
		lambda.Mul(&lambda, &dinv)

		x3.Square(&lambda)
		x3.Sub(&x3, &p.x)
		x3.Sub(&x3, &p.x)

		y3.Sub(&p.x, &x3)
		y3.Mul(&y3, &lambda)
		y3.Sub(&y3, &p.y)

		p.x, p.y = x3, y3
	}
}

// BatchAddInPlace sets bases[pair.Dst] += other[pair.Src] for every pair
// with one shared inversion. Destinations must be distinct. Pairs involving
// the point at infinity, equal points or opposite points are resolved
// individually with the Jacobian group law.
func (c *Curve) BatchAddInPlace(bases, other []Affine, pairs []IndexPair) {
	if len(pairs) == 0 {
		return
	}
	fp := c.fp
	safe := bitset.New(uint(len(pairs)))

	scratch := make([]Element, len(pairs))
	acc := fp.One()
	for k, pr := range pairs {
		p := &bases[pr.Dst]
		q := &other[pr.Src]
		if p.infinity || q.infinity || p.x.Equal(&q.x) {
			addAffineSlow(p, q)
			continue
		}
		safe.Set(uint(k))
		scratch[k] = acc
		var d Element
		d.Sub(&q.x, &p.x)
		acc.Mul(&acc, &d)
	}
	if safe.None() {
		return
	}

	var inv Element
	inv.Inverse(&acc)

	// lambda = (y2 - y1) / (x2 - x1), x3 = lambda^2 - x1 - x2,
	// y3 = lambda*(x1 - x3) - y1
	for k := len(pairs) - 1; k >= 0; k-- {
		if !safe.Test(uint(k)) {
			continue
		}
		p := &bases[pairs[k].Dst]
		q := &other[pairs[k].Src]
		var dinv, d, lambda, x3, y3 Element
		dinv.Mul(&inv, &scratch[k])
		d.Sub(&q.x, &p.x)
		inv.Mul(&inv, &d)

		lambda.Sub(&q.y, &p.y)
		lambda.Mul(&lambda, &dinv)

		x3.Square(&lambda)
		x3.Sub(&x3, &p.x)
		x3.Sub(&x3, &q.x)

		y3.Sub(&p.x, &x3)
		y3.Mul(&y3, &lambda)
		y3.Sub(&y3, &p.y)

		p.x, p.y = x3, y3
	}
}

// addAffineSlow sets p = p + q through the Jacobian group law.
func addAffineSlow(p, q *Affine) {
	var j Jacobian
	j.SetAffine(p)
	j.AddMixed(&j, q)
	*p = j.ToAffine()
}
