package algebra

import (
	"math/bits"

	"lukechampine.com/uint128"
)

// montMulPortable is word-serial Montgomery multiplication (CIOS) for any
// limb count. Each outer step folds in one limb of y, then clears the lowest
// word of the accumulator by adding a multiple of p and shifting down a word.
// The accumulator stays below 2p, so one conditional subtraction finishes.
func montMulPortable(z, x, y *Int, f *Field) {
	n := f.limbs
	p := &f.modulus.d
	var t [MaxLimbs]uint64
	var t1 uint64

	for i := 0; i < n; i++ {
		// t += x * y[i]
		var c uint64
		for j := 0; j < n; j++ {
			acc := uint128.From64(x.d[j]).Mul64(y.d[i]).Add64(t[j]).Add64(c)
			t[j] = acc.Lo
			c = acc.Hi
		}
		acc := uint128.From64(t[n]).Add64(c)
		t[n] = acc.Lo
		t1 = acc.Hi

		// m = t[0] * -p^-1 mod 2^64, so t + m*p is divisible by 2^64
		m := t[0] * f.inv
		acc = uint128.From64(m).Mul64(p[0]).Add64(t[0])
		c = acc.Hi
		for j := 1; j < n; j++ {
			acc = uint128.From64(m).Mul64(p[j]).Add64(t[j]).Add64(c)
			t[j-1] = acc.Lo
			c = acc.Hi
		}
		acc = uint128.From64(t[n]).Add64(c)
		t[n-1] = acc.Lo
		t[n] = t1 + acc.Hi
	}

	hi := t[n]
	t[n] = 0
	f.reduceOnce(z, &t, hi)
}

// montMul4 is montMulPortable specialised to four limbs with the loops
// unrolled over fixed-size arrays.
func montMul4(z, x, y *Int, f *Field) {
	p0, p1, p2, p3 := f.modulus.d[0], f.modulus.d[1], f.modulus.d[2], f.modulus.d[3]
	x0, x1, x2, x3 := x.d[0], x.d[1], x.d[2], x.d[3]
	inv := f.inv
	var t0, t1, t2, t3, t4 uint64

	for i := 0; i < 4; i++ {
		yi := y.d[i]
		var c, t5 uint64

		// t += x * y[i]
		t0, c = madd(x0, yi, t0, 0)
		t1, c = madd(x1, yi, t1, c)
		t2, c = madd(x2, yi, t2, c)
		t3, c = madd(x3, yi, t3, c)
		t4, t5 = bits.Add64(t4, c, 0)

		// t = (t + m*p) / 2^64
		m := t0 * inv
		_, c = madd(m, p0, t0, 0)
		t0, c = madd(m, p1, t1, c)
		t1, c = madd(m, p2, t2, c)
		t2, c = madd(m, p3, t3, c)
		t3, c = bits.Add64(t4, c, 0)
		t4 = t5 + c
	}

	var s0, s1, s2, s3, borrow uint64
	s0, borrow = bits.Sub64(t0, p0, 0)
	s1, borrow = bits.Sub64(t1, p1, borrow)
	s2, borrow = bits.Sub64(t2, p2, borrow)
	s3, borrow = bits.Sub64(t3, p3, borrow)
	_, borrow = bits.Sub64(t4, 0, borrow)
	if borrow == 0 {
		t0, t1, t2, t3 = s0, s1, s2, s3
	}

	*z = Int{n: 4}
	z.d[0], z.d[1], z.d[2], z.d[3] = t0, t1, t2, t3
}

// madd returns the low and high words of a*b + c + d.
func madd(a, b, c, d uint64) (lo, hi uint64) {
	hi, lo = bits.Mul64(a, b)
	var carry uint64
	lo, carry = bits.Add64(lo, c, 0)
	hi += carry
	lo, carry = bits.Add64(lo, d, 0)
	hi += carry
	return lo, hi
}
