package algebra_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"algebra.mleku.dev"
	"algebra.mleku.dev/curves"
)

// msmInput returns n subgroup points, built by stepping from a random start
// by a random stride, and n random scalars.
func msmInput(t testing.TB, c *algebra.Curve, n int, seed string) ([]algebra.Affine, []algebra.Int) {
	rd := algebra.NewSeededReader([]byte(seed))
	start, err := c.RandomPoint(rd)
	require.NoError(t, err)
	stride, err := c.RandomPoint(rd)
	require.NoError(t, err)

	jac := make([]Jacobian, n)
	var acc Jacobian
	acc.SetAffine(&start)
	for i := range jac {
		jac[i] = acc
		acc.AddMixed(&acc, &stride)
	}
	points := c.BatchToAffine(jac)

	scalars := make([]algebra.Int, n)
	for i := range scalars {
		scalars[i], err = c.RandomScalar(rd)
		require.NoError(t, err)
	}
	return points, scalars
}

func TestMultiScalarMulMatchesNaive(t *testing.T) {
	tests := []struct {
		curve string
		n     int
		long  bool
	}{
		{"bn254", 0, false},
		{"bn254", 1, false},
		{"bn254", 2, false},
		{"bn254", 100, false},
		{"bls12_381", 33, false},
		{"secp256k1", 64, false},
		{"p256", 40, false},
		{"toy101", 10000, false},
		{"bn254", 10000, true},
	}
	for _, tc := range tests {
		t.Run(tc.curve, func(t *testing.T) {
			if tc.long && testing.Short() {
				t.Skip("skipping large multi-scalar multiplication in short mode")
			}
			c, err := curves.Load(tc.curve)
			require.NoError(t, err)
			points, scalars := msmInput(t, c, tc.n, "msm-"+tc.curve)

			want := c.NaiveMultiScalarMul(points, scalars)
			for _, s := range []algebra.MSMStrategy{algebra.StrategyJacobian, algebra.StrategyBatchAffine} {
				got := c.MultiScalarMul(points, scalars, algebra.WithStrategy(s))
				require.True(t, want.Equal(&got), "n=%d strategy %s", tc.n, s)
			}
			if tc.n == 0 {
				require.True(t, want.IsInfinity())
			}
		})
	}
}

func TestMultiScalarMulOptions(t *testing.T) {
	c := curves.BLS12377()
	points, scalars := msmInput(t, c, 50, "msm-options")
	want := c.NaiveMultiScalarMul(points, scalars)

	for _, w := range []uint{1, 2, 5, 8, 13} {
		for _, workers := range []int{1, 3, 64} {
			for _, s := range []algebra.MSMStrategy{algebra.StrategyJacobian, algebra.StrategyBatchAffine} {
				got := c.MultiScalarMul(points, scalars,
					algebra.WithWindow(w),
					algebra.WithWorkers(workers),
					algebra.WithStrategy(s),
				)
				require.True(t, want.Equal(&got), "window %d workers %d strategy %s", w, workers, s)
			}
		}
	}

	require.Panics(t, func() { c.MultiScalarMul(points, scalars, algebra.WithWindow(21)) })
	require.Panics(t, func() { c.MultiScalarMul(points, scalars[1:]) })
	require.Panics(t, func() { c.NaiveMultiScalarMul(points[1:], scalars) })
}

func TestMultiScalarMulEdgeInputs(t *testing.T) {
	c := curves.Toy103()
	g := c.Generator()
	order := c.Order()

	// repeated points, infinity, zero and out-of-range scalars
	points := []algebra.Affine{g, g, c.Infinity(), g, g}
	var negG algebra.Affine
	negG.Neg(&g)
	points = append(points, negG)

	wide := algebra.IntFromLimbs(^uint64(0), 3)
	scalars := []algebra.Int{
		c.ScalarFromUint64(5),
		c.ScalarFromUint64(0),
		c.ScalarFromUint64(7),
		order,
		wide,
		c.ScalarFromUint64(5),
	}
	want := c.NaiveMultiScalarMul(points, scalars)
	for _, s := range []algebra.MSMStrategy{algebra.StrategyJacobian, algebra.StrategyBatchAffine} {
		got := c.MultiScalarMul(points, scalars, algebra.WithStrategy(s))
		require.True(t, want.Equal(&got), "strategy %s", s)
	}

	// every term cancels
	cancel := c.MultiScalarMul([]algebra.Affine{g, negG}, []algebra.Int{c.ScalarFromUint64(9), c.ScalarFromUint64(9)})
	require.True(t, cancel.IsInfinity())
}

func TestCurveDefaultStrategy(t *testing.T) {
	p, err := curves.Params("bn254")
	require.NoError(t, err)
	c, err := algebra.NewCurve(p, algebra.WithDefaultStrategy(algebra.StrategyBatchAffine), algebra.WithDefaultWorkers(2))
	require.NoError(t, err)
	require.Equal(t, algebra.StrategyBatchAffine, c.Config().Strategy)
	require.Equal(t, 2, c.Config().Workers)

	points, scalars := msmInput(t, c, 70, "msm-default")
	want := c.NaiveMultiScalarMul(points, scalars)
	got := c.MultiScalarMul(points, scalars)
	require.True(t, want.Equal(&got))
}

func TestPippengerWindow(t *testing.T) {
	tests := []struct {
		n    int
		want uint
	}{
		{1, 3},
		{31, 3},
		{32, 5},
		{1 << 10, 8},
		{1 << 16, 13},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, algebra.PippengerWindow(tc.n), "n=%d", tc.n)
	}
	require.Equal(t, uint(3), algebra.FixedBaseWindow(10))
	require.Equal(t, uint(6), algebra.FixedBaseWindow(1<<10))
}

func TestFixedBaseTable(t *testing.T) {
	c := curves.BN254()
	g := c.Generator()
	rd := algebra.NewSeededReader([]byte("fixed-base"))

	for _, w := range []uint{1, 4, 7} {
		tbl := c.NewFixedBaseTable(&g, w)
		require.Equal(t, w, tbl.Window())
		base := tbl.Base()
		require.True(t, base.Equal(&g))

		scalars := make([]algebra.Int, 20)
		for i := range scalars {
			var err error
			scalars[i], err = c.RandomScalar(rd)
			require.NoError(t, err)
		}
		scalars[0] = c.ScalarFromUint64(0)
		scalars[1] = c.Order()
		scalars[1].SubUint64(&scalars[1], 1)

		batch := tbl.BatchMul(scalars)
		for i := range scalars {
			want := g.ScalarMul(&scalars[i])
			got := tbl.Mul(&scalars[i])
			require.True(t, want.Equal(&got), "window %d index %d", w, i)
			require.True(t, want.EqualAffine(&batch[i]), "batch window %d index %d", w, i)
		}
	}

	require.Panics(t, func() { c.NewFixedBaseTable(&g, 0) })
}

func TestFixedBaseTableWideScalars(t *testing.T) {
	c := curves.Toy101()
	fp := c.BaseField()
	x, y := fp.FromUint64(2), fp.FromUint64(25)
	// order 106, outside the subgroup of order 53
	outside := c.NewAffineUnchecked(&x, &y)
	g := c.Generator()

	scalars := []algebra.Int{
		algebra.IntFromUint64(1, 53),
		algebra.IntFromUint64(1, 64),
		algebra.IntFromUint64(1, 107),
		algebra.IntFromUint64(1, 1000),
		algebra.IntFromLimbs(^uint64(0), 3),
		algebra.IntFromLimbs(5, 0, 1),
	}
	for _, base := range []algebra.Affine{outside, g} {
		for _, w := range []uint{1, 2, 3, 5} {
			tbl := c.NewFixedBaseTable(&base, w)
			batch := tbl.BatchMul(scalars)
			for i := range scalars {
				want := base.ScalarMul(&scalars[i])
				got := tbl.Mul(&scalars[i])
				require.True(t, want.Equal(&got), "%s window %d scalar %s", base.String(), w, scalars[i].String())
				require.True(t, want.EqualAffine(&batch[i]))
			}
		}
	}
}

func TestFixedBaseMSM(t *testing.T) {
	p, err := curves.Params("secp256k1")
	require.NoError(t, err)
	// one worker fills the cache in base order
	c, err := algebra.NewCurve(p, algebra.WithTableCacheSize(4), algebra.WithDefaultWorkers(1))
	require.NoError(t, err)

	points, scalars := msmInput(t, c, 6, "fixed-msm")
	// a repeated base shares its cached table
	points[5] = points[0]

	m := c.NewFixedBaseMSM(points, 4)
	require.Equal(t, 6, m.Len())
	want := c.NaiveMultiScalarMul(points, scalars)
	got := m.MultiScalarMul(scalars)
	require.True(t, want.Equal(&got))

	// base 0 is evicted by base 4 before it repeats
	hits, misses := c.Tables().Stats()
	require.Equal(t, uint64(0), hits)
	require.Equal(t, uint64(6), misses)

	// a second instance over the last bases finds them cached
	m2 := c.NewFixedBaseMSM(points[2:5], 4)
	hits2, _ := c.Tables().Stats()
	require.Equal(t, hits+3, hits2)

	got = m2.MultiScalarMul(scalars[2:5])
	want = c.NaiveMultiScalarMul(points[2:5], scalars[2:5])
	require.True(t, want.Equal(&got))

	empty := c.NewFixedBaseMSM(nil, 0)
	id := empty.MultiScalarMul(nil)
	require.True(t, id.IsInfinity())
	require.Panics(t, func() { m.MultiScalarMul(scalars[:2]) })
}

func BenchmarkMultiScalarMul(b *testing.B) {
	c := curves.BN254()
	for _, n := range []int{1 << 8, 1 << 12} {
		points, scalars := msmInput(b, c, n, "bench")
		for _, s := range []algebra.MSMStrategy{algebra.StrategyJacobian, algebra.StrategyBatchAffine} {
			b.Run(s.String(), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					c.MultiScalarMul(points, scalars, algebra.WithStrategy(s))
				}
			})
		}
	}
}

func BenchmarkFixedBaseMSM(b *testing.B) {
	c := curves.BN254()
	points, scalars := msmInput(b, c, 256, "bench")
	m := c.NewFixedBaseMSM(points, 0)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m.MultiScalarMul(scalars)
	}
}
