package algebra

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FixedBaseWindow returns the default table window for n scalars.
func FixedBaseWindow(n int) uint {
	if n < 32 {
		return 3
	}
	return uint(lnWithoutFloats(n))
}

// FixedBaseTable holds rows[o][i] = i * 2^(o*w) * base for every window o
// of a scalar, so multiplying base by a scalar takes one table lookup and
// one addition per window and no doublings.
type FixedBaseTable struct {
	c      *Curve
	base   Affine
	window uint
	rows   [][]Affine
	// top = 2^(rows*window) * base, for scalar bits above the table
	top Affine
}

// NewFixedBaseTable precomputes the table of base for windows of w bits
// covering the subgroup order. Rows are filled in parallel.
func (c *Curve) NewFixedBaseTable(base *Affine, w uint) *FixedBaseTable {
	if w == 0 || w > 20 {
		panic("algebra: fixed-base window out of range")
	}
	bits := c.order.BitLen()
	outer := (bits + int(w) - 1) / int(w)
	inner := 1 << w

	// rowBase[o] = 2^(o*w) * base
	rowBase := make([]Jacobian, outer)
	rowBase[0].SetAffine(base)
	for o := 1; o < outer; o++ {
		rowBase[o] = rowBase[o-1]
		for k := uint(0); k < w; k++ {
			rowBase[o].Double(&rowBase[o])
		}
	}

	t := &FixedBaseTable{
		c:      c,
		base:   *base,
		window: w,
		rows:   make([][]Affine, outer),
	}
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	var top Jacobian
	top.Double(&rowBase[outer-1])
	for k := uint(1); k < w; k++ {
		top.Double(&top)
	}
	t.top = top.ToAffine()
	for o := 0; o < outer; o++ {
		o := o
		g.Go(func() error {
			row := make([]Jacobian, inner)
			row[0] = c.Identity()
			for i := 1; i < inner; i++ {
				row[i].Add(&row[i-1], &rowBase[o])
			}
			t.rows[o] = c.BatchToAffine(row)
			return nil
		})
	}
	g.Wait()

	logger().Debug("fixed-base table",
		zap.String("curve", c.name),
		zap.Uint("window", w),
		zap.Int("rows", outer),
		zap.Int("entries", outer*inner),
	)
	return t
}

// Window returns the table window width.
func (t *FixedBaseTable) Window() uint { return t.window }

// Base returns the point the table was built for.
func (t *FixedBaseTable) Base() Affine { return t.base }

// Mul returns k * base. Bits of k above the table are handled by a
// double-and-add on 2^(rows*window) * base, so the result is exact for
// any base and any scalar width.
func (t *FixedBaseTable) Mul(k *Int) Jacobian {
	acc := t.c.Identity()
	for o := range t.rows {
		d := k.Window(uint(o)*t.window, t.window)
		if d != 0 {
			acc.AddMixed(&acc, &t.rows[o][d])
		}
	}
	covered := uint(len(t.rows)) * t.window
	if k.BitLen() > int(covered) {
		var hi Int
		hi.Rsh(k, covered)
		var p Jacobian
		p.ScalarMulAffine(&t.top, &hi)
		acc.Add(&acc, &p)
	}
	return acc
}

// BatchMul returns scalars[i] * base for every scalar, normalized to affine
// with one shared inversion.
func (t *FixedBaseTable) BatchMul(scalars []Int) []Affine {
	out := make([]Jacobian, len(scalars))
	var g errgroup.Group
	g.SetLimit(t.c.cfg.Workers)
	chunk := max(1, (len(scalars)+t.c.cfg.Workers-1)/t.c.cfg.Workers)
	for lo := 0; lo < len(scalars); lo += chunk {
		lo := lo
		hi := min(lo+chunk, len(scalars))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				out[i] = t.Mul(&scalars[i])
			}
			return nil
		})
	}
	g.Wait()
	return t.c.BatchToAffine(out)
}

// FixedBaseMSM evaluates sum(scalars[i] * bases[i]) for a fixed set of
// bases using one precomputed table per base.
type FixedBaseMSM struct {
	c      *Curve
	tables []*FixedBaseTable
}

// NewFixedBaseMSM builds, or fetches from the curve's table cache, the
// tables of every base. A zero window selects FixedBaseWindow(len(bases)).
func (c *Curve) NewFixedBaseMSM(bases []Affine, w uint) *FixedBaseMSM {
	if w == 0 {
		w = FixedBaseWindow(len(bases))
	}
	m := &FixedBaseMSM{c: c, tables: make([]*FixedBaseTable, len(bases))}
	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i := range bases {
		i := i
		g.Go(func() error {
			m.tables[i] = c.tables.Get(&bases[i], w)
			return nil
		})
	}
	g.Wait()
	return m
}

// Len returns the number of bases.
func (m *FixedBaseMSM) Len() int { return len(m.tables) }

// MultiScalarMul returns sum(scalars[i] * bases[i]) using only table
// lookups and additions. It panics if the number of scalars differs from
// the number of bases.
func (m *FixedBaseMSM) MultiScalarMul(scalars []Int) Jacobian {
	c := m.c
	if len(scalars) != len(m.tables) {
		panic("algebra: bases and scalars differ in length")
	}
	if len(scalars) == 0 {
		return c.Identity()
	}
	workers := min(c.cfg.Workers, len(scalars))
	chunk := (len(scalars) + workers - 1) / workers
	partial := make([]Jacobian, workers)
	var g errgroup.Group
	for t := 0; t < workers; t++ {
		t := t
		lo := t * chunk
		hi := min(lo+chunk, len(scalars))
		g.Go(func() error {
			acc := c.Identity()
			for i := lo; i < hi; i++ {
				p := m.tables[i].Mul(&scalars[i])
				acc.Add(&acc, &p)
			}
			partial[t] = acc
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
