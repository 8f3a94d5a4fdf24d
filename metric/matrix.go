package metric

import (
	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

// BuildMatrix materialises f's pre-stored value-difference matrix for
// storable metrics (§4.2 "Matrix pre-storing"): a symmetric sparse map
// keyed by (valueA, valueB) over every pair of distinct values, each entry
// being Distance(f.Metric, a, b, threshold, f.Range()), so pairs below the
// frequency threshold are stored with the value Distance gives them. It is a
// no-op for non-storable metrics, and never overwrites an existing matrix
// (including one loaded from disk).
func BuildMatrix(f *feature.Feature, threshold int) {
	if !f.Metric.IsStorable() || f.Matrix != nil {
		return
	}

	values := f.Values()
	m := make(map[[2]hashing.ID]float64)
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			a, b := values[i], values[j]
			d := Distance(f.Metric, a, b, threshold, f.Range())
			key := pairKey(a.ID(), b.ID())
			m[key] = d
		}
	}
	f.Matrix = m
}

// pairKey canonicalises a (valueA, valueB) pair so the matrix is addressed
// symmetrically regardless of argument order.
func pairKey(a, b hashing.ID) [2]hashing.ID {
	if a <= b {
		return [2]hashing.ID{a, b}
	}
	return [2]hashing.ID{b, a}
}

// MatrixLookup returns the cached distance for (a, b) if present.
func MatrixLookup(f *feature.Feature, a, b hashing.ID) (float64, bool) {
	if f.Matrix == nil {
		return 0, false
	}
	v, ok := f.Matrix[pairKey(a, b)]
	return v, ok
}

// DistanceFor computes the distance between a and b for feature f, using
// the pre-stored matrix when one exists and falling back to a direct
// Distance call (and the threshold rule) otherwise.
func DistanceFor(f *feature.Feature, a, b ValueView, threshold int) float64 {
	if a.ID() == b.ID() && a.ID() != hashing.Unknown {
		return 0
	}
	if f.Metric.IsStorable() {
		if d, ok := MatrixLookup(f, a.ID(), b.ID()); ok {
			return d
		}
	}
	return Distance(f.Metric, a, b, threshold, f.Range())
}
