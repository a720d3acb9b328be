package algebra

import (
	"math/bits"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MSMStrategy selects how Pippenger bucket sums are accumulated.
type MSMStrategy int

const (
	// StrategyJacobian adds each point into its bucket with mixed
	// Jacobian-affine additions.
	StrategyJacobian MSMStrategy = iota
	// StrategyBatchAffine sums buckets with affine additions sharing one
	// inversion per reduction level.
	StrategyBatchAffine
)

func (s MSMStrategy) String() string {
	switch s {
	case StrategyBatchAffine:
		return "batch-affine"
	default:
		return "jacobian"
	}
}

// lnWithoutFloats approximates ln(n) as ceil(log2(n)) * 69/100.
func lnWithoutFloats(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n-1)) * 69 / 100
}

// PippengerWindow returns the default window width for n points.
func PippengerWindow(n int) uint {
	if n < 32 {
		return 3
	}
	return uint(lnWithoutFloats(n) + 2)
}

// MultiScalarMul returns sum(scalars[i] * points[i]) with Pippenger's bucket
// method. It panics if the slices differ in length and returns the identity
// for empty input.
func (c *Curve) MultiScalarMul(points []Affine, scalars []Int, opts ...MSMOption) Jacobian {
	if len(points) != len(scalars) {
		panic("algebra: points and scalars differ in length")
	}
	if len(points) == 0 {
		return c.Identity()
	}

	cfg := msmConfig{
		workers:  c.cfg.Workers,
		strategy: c.cfg.Strategy,
	}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.workers < 1 {
		cfg.workers = 1
	}
	if cfg.window == 0 {
		cfg.window = PippengerWindow(len(points))
	}
	if cfg.window > 20 {
		panic("algebra: pippenger window too large")
	}

	numBits := c.order.BitLen()
	for i := range scalars {
		if b := scalars[i].BitLen(); b > numBits {
			numBits = b
		}
	}
	w := cfg.window
	windows := (numBits + int(w) - 1) / int(w)

	logger().Debug("msm",
		zap.Int("n", len(points)),
		zap.Uint("window", w),
		zap.Int("windows", windows),
		zap.Stringer("strategy", cfg.strategy),
		zap.Int("workers", cfg.workers),
	)

	sums := make([]Jacobian, windows)
	for j := range sums {
		offset := uint(j) * w
		switch cfg.strategy {
		case StrategyBatchAffine:
			sums[j] = c.windowSumBatchAffine(points, scalars, offset, w)
		default:
			sums[j] = c.windowSum(points, scalars, offset, w, cfg.workers)
		}
	}

	// Combine windows highest first, shifting by w doublings between them.
	acc := sums[windows-1]
	for j := windows - 2; j >= 0; j-- {
		for k := uint(0); k < w; k++ {
			acc.Double(&acc)
		}
		acc.Add(&acc, &sums[j])
	}
	return acc
}

// windowSum returns sum(digit_i * points[i]) for the w-bit digits at offset.
// The buckets 1..2^w-1 are split into contiguous ranges, one per worker, so
// no two workers touch the same bucket.
func (c *Curve) windowSum(points []Affine, scalars []Int, offset, w uint, workers int) Jacobian {
	numBuckets := 1<<w - 1
	if workers > numBuckets {
		workers = numBuckets
	}
	per := (numBuckets + workers - 1) / workers
	partial := make([]Jacobian, workers)

	var g errgroup.Group
	for t := 0; t < workers; t++ {
		t := t
		lo := 1 + t*per
		hi := min(lo+per, numBuckets+1)
		if lo >= hi {
			partial[t] = c.Identity()
			continue
		}
		g.Go(func() error {
			partial[t] = c.bucketRangeSum(points, scalars, offset, w, uint64(lo), uint64(hi))
			return nil
		})
	}
	g.Wait()

	acc := c.Identity()
	for t := range partial {
		acc.Add(&acc, &partial[t])
	}
	return acc
}

// bucketRangeSum accumulates the points whose digit falls in [lo, hi) and
// returns sum(d * bucket[d]) over that range.
func (c *Curve) bucketRangeSum(points []Affine, scalars []Int, offset, w uint, lo, hi uint64) Jacobian {
	buckets := make([]Jacobian, hi-lo)
	for i := range buckets {
		buckets[i] = c.Identity()
	}
	for i := range points {
		d := scalars[i].Window(offset, w)
		if d < lo || d >= hi {
			continue
		}
		buckets[d-lo].AddMixed(&buckets[d-lo], &points[i])
	}
	return c.reduceBuckets(buckets, lo)
}

// reduceBuckets returns sum((lo+i) * buckets[i]) with a running sum from
// the top bucket down: each bucket is counted once per index at or below it.
func (c *Curve) reduceBuckets(buckets []Jacobian, lo uint64) Jacobian {
	running := c.Identity()
	total := c.Identity()
	for i := len(buckets) - 1; i >= 0; i-- {
		running.Add(&running, &buckets[i])
		total.Add(&total, &running)
	}
	// total = sum((i+1) * buckets[i]); the range starts at lo, not 1.
	if lo > 1 {
		var shift Jacobian
		shift.mulUint64(&running, lo-1)
		total.Add(&total, &shift)
	}
	return total
}

// NaiveMultiScalarMul returns sum(scalars[i] * points[i]) one term at a
// time. It is the reference the fast methods are checked against.
func (c *Curve) NaiveMultiScalarMul(points []Affine, scalars []Int) Jacobian {
	if len(points) != len(scalars) {
		panic("algebra: points and scalars differ in length")
	}
	acc := c.Identity()
	for i := range points {
		var t Jacobian
		t.ScalarMulAffine(&points[i], &scalars[i])
		acc.Add(&acc, &t)
	}
	return acc
}
