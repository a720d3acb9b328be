package algebra

// Sqrt sets r to a square root of a using Tonelli-Shanks and reports whether
// one exists. Either root may be returned; callers that need a canonical
// choice compare against its negation. r is left unchanged when a is a
// non-residue.
func (r *Element) Sqrt(a *Element) bool {
	f := a.f
	if a.IsZero() {
		*r = f.Zero()
		return true
	}
	if a.Legendre() != 1 {
		return false
	}

	// z = c^t, a generator of the 2-Sylow subgroup
	z := f.RootOfUnity()

	// w = a^((t-1)/2)
	var w Element
	w.Exp(a, &f.traceMinusOneDiv2)

	// x = a*w = a^((t+1)/2)
	var x Element
	x.Mul(a, &w)

	// b = x*w = a^t
	var b Element
	b.Mul(&x, &w)

	v := f.twoAdicity
	for !b.IsOne() {
		// least k with b^(2^k) = 1
		k := uint(0)
		b2k := b
		for !b2k.IsOne() {
			b2k.Square(&b2k)
			k++
		}

		// w = z^(2^(v-k-1))
		w = z
		for j := uint(0); j < v-k-1; j++ {
			w.Square(&w)
		}

		z.Square(&w)
		b.Mul(&b, &z)
		x.Mul(&x, &w)
		v = k
	}

	*r = x
	return true
}
