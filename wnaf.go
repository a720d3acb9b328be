package algebra

import (
	"math"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NoOp is the opcode of an entry that takes no part in a round of batched
// scalar multiplication because its scalar has no digit there.
const NoOp int16 = math.MinInt16

// MinWindow and MaxWindow bound the wNAF window width.
const (
	MinWindow = 2
	MaxWindow = 15
)

func checkWindow(w uint) {
	if w < MinWindow || w > MaxWindow {
		panic("algebra: wNAF window out of range")
	}
}

// WNAF returns the width-w non-adjacent form of k, least significant digit
// first. Every digit is zero or odd with absolute value below 2^(w-1), and
// any w consecutive digits hold at most one non-zero value. The last digit
// is non-zero; zero has no digits.
func WNAF(k *Int, w uint) []int16 {
	checkWindow(w)
	width := k.n + 1
	if width > MaxLimbs {
		width = MaxLimbs
	}
	if width < 1 {
		width = 1
	}
	e, _ := k.Resize(width)

	full := uint64(1) << w
	half := full >> 1
	digits := make([]int16, 0, k.BitLen()+1)
	for !e.IsZero() {
		var d int16
		if e.IsOdd() {
			m := e.d[0] & (full - 1)
			if m >= half {
				d = int16(int64(m) - int64(full))
				e.AddUint64(&e, full-m)
			} else {
				d = int16(m)
				e.SubUint64(&e, m)
			}
		}
		digits = append(digits, d)
		e.Rsh(&e, 1)
	}
	return digits
}

// BatchWNAFOpcodes recodes every scalar and transposes the digits into
// rounds: ops[j][i] is digit j of scalar i, or NoOp past its last digit.
func BatchWNAFOpcodes(scalars []Int, w uint) [][]int16 {
	digits := make([][]int16, len(scalars))
	rounds := 0
	for i := range scalars {
		digits[i] = WNAF(&scalars[i], w)
		if len(digits[i]) > rounds {
			rounds = len(digits[i])
		}
	}
	ops := make([][]int16, rounds)
	for j := range ops {
		row := make([]int16, len(scalars))
		for i, d := range digits {
			if j < len(d) {
				row[i] = d[j]
			} else {
				row[i] = NoOp
			}
		}
		ops[j] = row
	}
	return ops
}

// BatchWNAFTables returns the odd multiples 1P, 3P, ..., (2^(w-1)-1)P of
// every base, 2^(w-2) entries per base laid out contiguously. Entry
// i*2^(w-2) + |d|/2 serves digit d of base i.
func (c *Curve) BatchWNAFTables(bases []Affine, w uint) []Affine {
	checkWindow(w)
	half := 1 << (w - 2)
	jac := make([]Jacobian, len(bases)*half)
	for i := range bases {
		var p, p2 Jacobian
		p.SetAffine(&bases[i])
		p2.Double(&p)
		row := jac[i*half : (i+1)*half]
		row[0] = p
		for k := 1; k < half; k++ {
			row[k].Add(&row[k-1], &p2)
		}
	}
	return c.BatchToAffine(jac)
}

// BatchScalarMulInPlace sets bases[i] = scalars[i] * bases[i] using width-w
// wNAF with shared-inversion affine doubling and addition each round. The
// batch is split into chunks of Config.BatchChunk entries processed in
// parallel.
func (c *Curve) BatchScalarMulInPlace(bases []Affine, scalars []Int, w uint) {
	if len(bases) != len(scalars) {
		panic("algebra: bases and scalars differ in length")
	}
	checkWindow(w)
	chunk := c.cfg.BatchChunk
	if len(bases) <= chunk || c.cfg.Workers == 1 {
		c.batchScalarMulChunk(bases, scalars, w)
		return
	}

	logger().Debug("batch scalar mul",
		zap.Int("n", len(bases)),
		zap.Uint("window", w),
		zap.Int("chunk", chunk),
		zap.Int("workers", c.cfg.Workers),
	)
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for lo := 0; lo < len(bases); lo += chunk {
		hi := min(lo+chunk, len(bases))
		b, s := bases[lo:hi], scalars[lo:hi]
		g.Go(func() error {
			c.batchScalarMulChunk(b, s, w)
			return nil
		})
	}
	g.Wait()
}

func (c *Curve) batchScalarMulChunk(bases []Affine, scalars []Int, w uint) {
	ops := BatchWNAFOpcodes(scalars, w)
	tables := c.BatchWNAFTables(bases, w)
	half := 1 << (w - 2)

	for i := range bases {
		bases[i] = c.Infinity()
	}

	n := len(bases)
	doubles := make([]int, 0, n)
	addends := make([]Affine, 0, n)
	pairs := make([]IndexPair, 0, n)
	for j := len(ops) - 1; j >= 0; j-- {
		doubles = doubles[:0]
		addends = addends[:0]
		pairs = pairs[:0]
		for i, op := range ops[j] {
			if op == NoOp {
				continue
			}
			doubles = append(doubles, i)
			if op == 0 {
				continue
			}
			idx := int(op)
			t := tables[i*half+abs(idx)/2]
			if idx < 0 {
				t.Neg(&t)
			}
			pairs = append(pairs, IndexPair{Dst: i, Src: len(addends)})
			addends = append(addends, t)
		}
		c.BatchDoubleInPlace(bases, doubles)
		c.BatchAddInPlace(bases, addends, pairs)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
