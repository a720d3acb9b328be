package algebra

// batchBucketedAdd returns, for every bucket b < numBuckets, the sum of the
// points with assign[i] == b, in affine form. Entries with a negative
// assignment are skipped. All buckets live in one flat slice; each level
// adds neighbouring entries of every bucket pairwise with one shared
// inversion, halving every bucket, until each holds at most one point.
func (c *Curve) batchBucketedAdd(points []Affine, assign []int, numBuckets int) []Affine {
	// Counting sort of the points by bucket.
	counts := make([]int, numBuckets)
	for i := range points {
		if b := assign[i]; b >= 0 && !points[i].infinity {
			counts[b]++
		}
	}
	start := make([]int, numBuckets+1)
	for b := 0; b < numBuckets; b++ {
		start[b+1] = start[b] + counts[b]
	}
	flat := make([]Affine, start[numBuckets])
	fill := make([]int, numBuckets)
	copy(fill, start[:numBuckets])
	for i := range points {
		b := assign[i]
		if b < 0 || points[i].infinity {
			continue
		}
		flat[fill[b]] = points[i]
		fill[b]++
	}

	// sizes[b] is the number of live entries at the front of bucket b.
	sizes := counts
	pairs := make([]IndexPair, 0, len(flat)/2)
	for {
		pairs = pairs[:0]
		for b := 0; b < numBuckets; b++ {
			base := start[b]
			for j := 0; j+1 < sizes[b]; j += 2 {
				pairs = append(pairs, IndexPair{Dst: base + j, Src: base + j + 1})
			}
		}
		if len(pairs) == 0 {
			break
		}
		c.BatchAddInPlace(flat, flat, pairs)

		// Compact: the sums sit at even offsets, an odd tail stays last.
		for b := 0; b < numBuckets; b++ {
			base, n := start[b], sizes[b]
			k := 0
			for j := 0; j < n; j += 2 {
				flat[base+k] = flat[base+j]
				k++
			}
			sizes[b] = k
		}
	}

	out := make([]Affine, numBuckets)
	for b := 0; b < numBuckets; b++ {
		if sizes[b] == 0 {
			out[b] = c.Infinity()
			continue
		}
		out[b] = flat[start[b]]
	}
	return out
}

// windowSumBatchAffine is windowSum with bucket sums computed in affine
// form by batchBucketedAdd.
func (c *Curve) windowSumBatchAffine(points []Affine, scalars []Int, offset, w uint) Jacobian {
	numBuckets := 1<<w - 1
	assign := make([]int, len(points))
	for i := range points {
		assign[i] = int(scalars[i].Window(offset, w)) - 1
	}
	sums := c.batchBucketedAdd(points, assign, numBuckets)

	buckets := make([]Jacobian, numBuckets)
	for b := range sums {
		buckets[b].SetAffine(&sums[b])
	}
	return c.reduceBuckets(buckets, 1)
}
