// Package stats computes the per-feature statistical weights of C4: entropy,
// information gain, gain ratio, chi-square, shared variance and standard
// deviation, plus equal-population numeric binning.
package stats

import (
	"math"
	"sort"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

const epsilon = 1e-9

// DefaultBinSize is BIN_SIZE's default (§6).
const DefaultBinSize = 20

// pseudoValue is one (symbolic-value or numeric-bin) row of the contingency
// table the symbolic formulas operate over.
type pseudoValue struct {
	n     int
	freqs map[hashing.ID]int
}

// DatabaseEntropy computes H(T) over the global target distribution.
func DatabaseEntropy(t *feature.Targets) float64 {
	total := 0
	for _, tv := range t.All() {
		total += tv.Freq()
	}
	if total == 0 {
		return 0
	}
	var h float64
	for _, tv := range t.All() {
		p := float64(tv.Freq()) / float64(total)
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// Compute fills in f's InfoGain, GainRatio, Chi2, SharedVariance and StdDev
// fields from its current values and targets t. binSize controls numeric
// binning (§4.1 "Numeric features"); it is ignored for symbolic features.
func Compute(f *feature.Feature, t *feature.Targets, binSize int) {
	if binSize <= 0 {
		binSize = DefaultBinSize
	}

	hT := DatabaseEntropy(t)
	nClasses := t.Len()

	var pv []pseudoValue
	if f.Metric.IsNumeric() {
		pv = binValues(f, binSize)
	} else {
		for _, v := range f.Values() {
			pv = append(pv, pseudoValue{n: v.Freq(), freqs: v.ClassFreqs()})
		}
	}

	n := 0
	for _, p := range pv {
		n += p.n
	}

	ig, split := infoGainAndSplit(hT, pv, n)
	gr := 0.0
	if split >= epsilon {
		gr = ig / split
	} else {
		ig = 0
	}

	chi2 := chiSquare(pv, t, n)
	sv := 0.0
	denom := min(nClasses, len(pv)) - 1
	if denom > 0 && n > 0 {
		sv = chi2 / (float64(n) * float64(denom))
	}

	sd := standardDeviation(f)

	f.InfoGain = math.Max(ig, 0)
	f.GainRatio = gr
	f.Chi2 = chi2
	f.SharedVariance = sv
	f.StdDev = sd
	f.ClearStale()
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// infoGainAndSplit computes H(T) - H(T|F) (floored at 0 by the caller) and
// the split information -sum (n_v/N) log2(n_v/N).
func infoGainAndSplit(hT float64, pv []pseudoValue, n int) (ig, split float64) {
	if n == 0 {
		return 0, 0
	}
	var hTF float64
	for _, p := range pv {
		if p.n == 0 {
			continue
		}
		pv := float64(p.n) / float64(n)
		var hv float64
		for _, c := range p.freqs {
			if c == 0 {
				continue
			}
			pc := float64(c) / float64(p.n)
			hv -= pc * math.Log2(pc)
		}
		hTF += pv * hv
		split -= pv * math.Log2(pv)
	}
	ig = hT - hTF
	return ig, split
}

// chiSquare computes chi-square over the |values| x |classes| contingency
// table; cells with zero expected count are skipped rather than
// contributing (§4.1).
func chiSquare(pv []pseudoValue, t *feature.Targets, n int) float64 {
	if n == 0 {
		return 0
	}
	targets := t.All()
	colTotal := make(map[hashing.ID]int, len(targets))
	for _, tv := range targets {
		var c int
		for _, p := range pv {
			c += p.freqs[tv.ID()]
		}
		colTotal[tv.ID()] = c
	}

	var chi2 float64
	for _, p := range pv {
		if p.n == 0 {
			continue
		}
		for _, tv := range targets {
			expected := float64(p.n) * float64(colTotal[tv.ID()]) / float64(n)
			if expected <= 0 {
				continue
			}
			observed := float64(p.freqs[tv.ID()])
			diff := observed - expected
			chi2 += diff * diff / expected
		}
	}
	return chi2
}

// standardDeviation follows the Open Question resolution documented in
// SPEC_FULL.md §9: population-style sigma computed directly against the raw
// sum of the distinct numeric values (not frequency-weighted), over the
// distinct value set; 0 for symbolic features.
func standardDeviation(f *feature.Feature) float64 {
	if !f.Metric.IsNumeric() {
		return 0
	}
	values := f.Values()
	if len(values) == 0 {
		return 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v.Numeric()
		sumSq += v.Numeric() * v.Numeric()
	}
	n := float64(len(values))
	mean := sum / n
	return math.Sqrt(sumSq/n - mean*mean)
}

// binValues groups a numeric feature's values into binSize equal-population
// bins sorted by value, summing class distributions within each bin.
func binValues(f *feature.Feature, binSize int) []pseudoValue {
	values := f.Values()
	sort.Slice(values, func(i, j int) bool { return values[i].Numeric() < values[j].Numeric() })

	if binSize > len(values) {
		binSize = len(values)
	}
	if binSize == 0 {
		return nil
	}

	out := make([]pseudoValue, 0, binSize)
	n := len(values)
	per := n / binSize
	rem := n % binSize
	idx := 0
	for b := 0; b < binSize; b++ {
		count := per
		if b < rem {
			count++
		}
		p := pseudoValue{freqs: make(map[hashing.ID]int)}
		for i := 0; i < count; i++ {
			v := values[idx]
			p.n += v.Freq()
			for id, c := range v.ClassFreqs() {
				p.freqs[id] += c
			}
			idx++
		}
		out = append(out, p)
	}
	return out
}
