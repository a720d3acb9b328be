package algebra

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// At or above this many buckets the sums are multiplied by r with
	// BatchScalarMulInPlace, below it one at a time.
	batchSubgroupMinBuckets = 16
	batchSubgroupWindow     = 4
)

// subgroupCheckBuckets returns the largest power-of-two bucket count and
// the matching number of rounds such that rounds * buckets * costPerBucket
// stays below n while every round still halves the chance of a miss at
// least log2(buckets) times.
func subgroupCheckBuckets(securityBits, n, costPerBucket int) (buckets, rounds int) {
	roundsFor := func(logBuckets int) int { return (securityBits-1)/logBuckets + 1 }
	logBuckets := 1
	for roundsFor(logBuckets)*costPerBucket*(1<<logBuckets) < n && roundsFor(logBuckets) > 1 {
		logBuckets++
	}
	return 1 << logBuckets, roundsFor(logBuckets)
}

// BatchVerifyInSubgroup checks that every point lies in the prime-order
// subgroup, with a false-accept probability of at most 2^-securityBits.
// Each round assigns the points to random buckets drawn from rd, sums the
// buckets with shared-inversion additions and multiplies every sum by the
// group order. A point outside the subgroup survives a round only if its
// torsion component cancels inside its bucket.
//
// Points must already satisfy the curve equation. The result is a
// DecodeError of kind ErrNotInSubgroup when the check fails, or the wrapped
// reader error.
func (c *Curve) BatchVerifyInSubgroup(points []Affine, securityBits int, rd io.Reader) error {
	if securityBits <= 0 {
		panic("algebra: security bits must be positive")
	}
	if len(points) == 0 || c.cofactor.IsOne() {
		return nil
	}
	numBuckets, rounds := subgroupCheckBuckets(securityBits, len(points), c.order.BitLen())
	logger().Debug("batch subgroup check",
		zap.String("curve", c.name),
		zap.Int("n", len(points)),
		zap.Int("buckets", numBuckets),
		zap.Int("rounds", rounds),
	)

	raw := make([]byte, 4*len(points))
	assign := make([]int, len(points))
	mask := uint32(numBuckets - 1)
	for round := 0; round < rounds; round++ {
		if _, err := io.ReadFull(rd, raw); err != nil {
			return errors.Wrap(err, "sampling bucket assignment")
		}
		for i := range assign {
			assign[i] = int(binary.LittleEndian.Uint32(raw[4*i:]) & mask)
		}
		sums := c.batchBucketedAdd(points, assign, numBuckets)
		if !c.allTimesOrderVanish(sums) {
			return decodeError(ErrNotInSubgroup, "batch contains a point outside the prime-order subgroup")
		}
	}
	return nil
}

// allTimesOrderVanish reports whether r * p is the identity for every p.
// sums is overwritten.
func (c *Curve) allTimesOrderVanish(sums []Affine) bool {
	if len(sums) < batchSubgroupMinBuckets {
		for i := range sums {
			if !sums[i].IsInSubgroup() {
				return false
			}
		}
		return true
	}
	scalars := make([]Int, len(sums))
	for i := range scalars {
		scalars[i] = c.order
	}
	c.BatchScalarMulInPlace(sums, scalars, batchSubgroupWindow)
	for i := range sums {
		if !sums[i].infinity {
			return false
		}
	}
	return true
}
