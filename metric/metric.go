// Package metric implements the pairwise feature-value distance/similarity
// functions of C3: Overlap, Numeric, Euclidean, ValueDiff (MVDM), Jeffrey,
// Jensen-Shannon, Levenshtein, Dice, Cosine and DotProduct.
//
// Metric functions never import package feature's concrete Value type —
// they operate against the small ValueView interface below, which
// feature.Value satisfies, so the two packages can be wired together (C2
// selects a metric.Kind per Feature) without an import cycle.
package metric

import (
	"math"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

// Kind re-exports feature.MetricType so callers outside feature/metric don't
// need to import feature just to name a metric.
type Kind = feature.MetricType

const (
	Overlap       = feature.Overlap
	Numeric       = feature.Numeric
	Euclidean     = feature.Euclidean
	ValueDiff     = feature.ValueDiff
	Jeffrey       = feature.Jeffrey
	JensenShannon = feature.JensenShannon
	Levenshtein   = feature.Levenshtein
	Dice          = feature.Dice
	Cosine        = feature.Cosine
	DotProduct    = feature.DotProduct
)

// ValueView is the minimal read surface a metric function needs from a
// feature value. feature.Value implements this.
type ValueView interface {
	ID() hashing.ID
	String() string
	Numeric() float64
	Freq() int
	ClassFreqs() map[hashing.ID]int
}

const epsilon = 1e-9

// LargeSentinel is the "very far" distance DotProduct returns after
// subtracting a saturated dot product; exported so callers (the tester, C6)
// can detect the "switch to Cosine" guard condition from §4.4.
const LargeSentinel = 1e18

// Distance computes the per-feature distance/similarity contribution between
// a and b under kind. threshold is MVD_LIMIT (§6): for storable metrics, if
// either operand's frequency is below it, the distance is forced to 1.0.
// numRange is (max-min) for numeric features, ignored otherwise.
func Distance(kind Kind, a, b ValueView, threshold int, numRange float64) float64 {
	if a.ID() == b.ID() && a.ID() != hashing.Unknown {
		return 0
	}

	if kind.IsStorable() {
		if a.Freq() < threshold || b.Freq() < threshold {
			return 1.0
		}
	}

	switch kind {
	case Overlap:
		return overlap(a, b)
	case Numeric:
		return numericDist(a, b, numRange)
	case Euclidean:
		return euclideanDist(a, b, numRange)
	case ValueDiff:
		return valueDiff(a, b)
	case Jeffrey:
		return jeffrey(a, b)
	case JensenShannon:
		return jensenShannon(a, b)
	case Levenshtein:
		return float64(levenshtein(a.String(), b.String()))
	case Dice:
		return dice(a.String(), b.String())
	default:
		return overlap(a, b)
	}
}

func overlap(a, b ValueView) float64 {
	if a.ID() == b.ID() {
		return 0
	}
	return 1
}

func numericDist(a, b ValueView, numRange float64) float64 {
	if numRange == 0 {
		numRange = 1
	}
	return math.Abs(a.Numeric()-b.Numeric()) / numRange
}

func euclideanDist(a, b ValueView, numRange float64) float64 {
	if numRange == 0 {
		numRange = 1
	}
	av, bv := a.Numeric(), b.Numeric()
	return math.Sqrt(math.Abs(av*av-bv*bv)) / numRange
}

// probVectors returns {target: p(target|value)} for both operands, computed
// over the union of targets either has seen any mass for.
func probVectors(a, b ValueView) (pa, pb map[hashing.ID]float64, ids []hashing.ID) {
	fa, fb := a.ClassFreqs(), b.ClassFreqs()
	ta, tb := sumInt(fa), sumInt(fb)
	seen := make(map[hashing.ID]bool, len(fa)+len(fb))
	for id := range fa {
		seen[id] = true
	}
	for id := range fb {
		seen[id] = true
	}
	pa = make(map[hashing.ID]float64, len(seen))
	pb = make(map[hashing.ID]float64, len(seen))
	for id := range seen {
		ids = append(ids, id)
		if ta > 0 {
			pa[id] = float64(fa[id]) / float64(ta)
		}
		if tb > 0 {
			pb[id] = float64(fb[id]) / float64(tb)
		}
	}
	return pa, pb, ids
}

func sumInt(m map[hashing.ID]int) int {
	s := 0
	for _, v := range m {
		s += v
	}
	return s
}

// valueDiff is the Modified Value Difference Metric: half the L1 distance
// between the per-value class-probability vectors.
func valueDiff(a, b ValueView) float64 {
	pa, pb, ids := probVectors(a, b)
	var l1 float64
	for _, id := range ids {
		l1 += math.Abs(pa[id] - pb[id])
	}
	return l1 / 2
}

// jeffrey is a symmetric KL-like divergence: sum p*log(p/m) + q*log(q/m)
// with m the per-component average, halved.
func jeffrey(a, b ValueView) float64 {
	pa, pb, ids := probVectors(a, b)
	var d float64
	for _, id := range ids {
		p, q := pa[id], pb[id]
		m := (p + q) / 2
		if m <= 0 {
			continue
		}
		if p > 0 {
			d += p * math.Log(p/m)
		}
		if q > 0 {
			d += q * math.Log(q/m)
		}
	}
	return d / 2
}

// jensenShannon is the standard JS divergence between the two probability
// vectors, halved as specified.
func jensenShannon(a, b ValueView) float64 {
	pa, pb, ids := probVectors(a, b)
	var d float64
	for _, id := range ids {
		p, q := pa[id], pb[id]
		m := (p + q) / 2
		if m <= 0 {
			continue
		}
		if p > 0 {
			d += 0.5 * p * math.Log(p/m)
		}
		if q > 0 {
			d += 0.5 * q * math.Log(q/m)
		}
	}
	return d / 2
}

// levenshtein is edit distance with insertion/deletion/substitution/
// transposition, unit costs (Damerau-Levenshtein).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			del := d[i-1][j] + 1
			ins := d[i][j-1] + 1
			sub := d[i-1][j-1] + cost
			best := del
			if ins < best {
				best = ins
			}
			if sub < best {
				best = sub
			}
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				if t := d[i-2][j-2] + cost; t < best {
					best = t
				}
			}
			d[i][j] = best
		}
	}
	return d[la][lb]
}

// bigrams returns the character bigram multiset of s, falling back to
// unigrams when len(s) <= 1 as specified.
func bigrams(s string) map[string]int {
	r := []rune(s)
	out := make(map[string]int)
	if len(r) <= 1 {
		out[s]++
		return out
	}
	for i := 0; i < len(r)-1; i++ {
		out[string(r[i:i+2])]++
	}
	return out
}

func dice(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	na, nb := 0, 0
	for _, c := range ba {
		na += c
	}
	for _, c := range bb {
		nb += c
	}
	inter := 0
	for k, c := range ba {
		if d, ok := bb[k]; ok {
			if c < d {
				inter += c
			} else {
				inter += d
			}
		}
	}
	denom := na + nb
	if denom == 0 {
		return 0
	}
	return 1 - 2*float64(inter)/float64(denom)
}

// VectorCosineDistance computes 1 - weighted cosine similarity over an
// entire instance pair, per §4.2's note that similarity metrics "compute a
// single vector-level figure over the entire instance" rather than
// accumulating per feature.
func VectorCosineDistance(weights, a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		w := weights[i]
		dot += w * a[i] * b[i]
		na += w * a[i] * a[i]
		nb += w * b[i] * b[i]
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom < epsilon {
		return 1
	}
	return 1 - dot/denom
}

// VectorDotProduct returns LargeSentinel - (weighted dot product), a
// monotone "distance" form of the raw dot product per §4.2. Callers must
// check for a saturated result (a dot product of LargeSentinel or more,
// which makes the returned value <= 0) per §4.4's numeric-similarity guard
// and fall back to Cosine.
func VectorDotProduct(weights, a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += weights[i] * a[i] * b[i]
	}
	return LargeSentinel - dot
}
