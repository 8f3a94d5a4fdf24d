package feature

import (
	"github.com/wlattner/mbl/hashing"
	"github.com/wlattner/mbl/mblerr"
)

// MetricType names a per-feature distance/similarity function (C3). The
// concrete implementations live in package metric; this type is just the
// selector, so package feature does not import metric (metric imports
// feature, and its distance functions take the small ValueView interface
// that feature.Value satisfies).
type MetricType int

const (
	Overlap MetricType = iota
	Numeric
	Euclidean
	ValueDiff
	Jeffrey
	JensenShannon
	Levenshtein
	Dice
	Cosine
	DotProduct
)

// IsNumeric reports whether values of this metric are floating point numbers
// rather than symbolic strings.
func (m MetricType) IsNumeric() bool {
	return m == Numeric || m == Euclidean
}

// IsStorable reports whether the metric supports a pre-stored value-pair
// matrix cache.
func (m MetricType) IsStorable() bool {
	switch m {
	case ValueDiff, Jeffrey, JensenShannon, Levenshtein, Dice, DotProduct:
		return true
	default:
		return false
	}
}

// IsSimilarity reports whether the metric is a whole-vector similarity
// measure rather than a per-feature additive distance.
func (m MetricType) IsSimilarity() bool {
	return m == Cosine || m == DotProduct
}

func (m MetricType) String() string {
	switch m {
	case Overlap:
		return "Overlap"
	case Numeric:
		return "Numeric"
	case Euclidean:
		return "Euclidean"
	case ValueDiff:
		return "ValueDiff"
	case Jeffrey:
		return "Jeffrey"
	case JensenShannon:
		return "JSDiv"
	case Levenshtein:
		return "Levenshtein"
	case Dice:
		return "Dice"
	case Cosine:
		return "Cosine"
	case DotProduct:
		return "DotProduct"
	default:
		return "Unknown"
	}
}

// Value is an interned, symbolic-or-numeric feature value. It carries the
// training frequency and the aggregated ClassDistribution of targets seen
// co-occurring with it at its owning Feature, and satisfies metric.ValueView
// so the metric package can compute distances without importing this one.
type Value struct {
	id     hashing.ID
	str    string
	num    float64
	isNum  bool
	freq   int
	Dist   *ClassDistribution
}

// UnknownValue is the shared, non-owning sentinel used for test-time values
// absent from the training lexicon (§3 Instance). Its distance to any known
// value is metric-defined (generally the maximum distance).
var UnknownValue = &Value{id: hashing.Unknown, str: "?", Dist: NewClassDistribution()}

// NewValue constructs an interned Value. Numeric features pass isNum=true
// and a parsed num; symbolic features carry only str.
func NewValue(id hashing.ID, str string, num float64, isNum bool) *Value {
	return &Value{id: id, str: str, num: num, isNum: isNum, Dist: NewClassDistribution()}
}

func (v *Value) ID() hashing.ID   { return v.id }
func (v *Value) String() string   { return v.str }
func (v *Value) Numeric() float64 { return v.num }
func (v *Value) Freq() int        { return v.freq }

// ClassFreqs returns the {target: frequency} map backing Dist, used by
// metric.ValueView implementations for probability-vector metrics.
func (v *Value) ClassFreqs() map[hashing.ID]int {
	out := make(map[hashing.ID]int, len(v.Dist.entries))
	for id, e := range v.Dist.entries {
		out[id] = e.freq
	}
	return out
}

// bump adjusts this value's own frequency counter (distinct from the class
// distribution total, which is target-keyed); used by add/hide/unhide.
func (v *Value) bump(n int) {
	v.freq += n
	if v.freq < 0 {
		v.freq = 0
	}
}

// Feature holds one column of the schema: its interned values, its metric,
// its weight fields, its numeric range, and its optional pre-stored matrix.
type Feature struct {
	Index   int
	Name    string
	Metric  MetricType
	Ignored bool

	lex    *hashing.Lexicon
	values map[hashing.ID]*Value
	order  []hashing.ID // first-seen order, stable for deterministic iteration

	// weights, computed lazily by package stats
	InfoGain       float64
	GainRatio      float64
	Chi2           float64
	SharedVariance float64
	StdDev         float64
	Weight         float64 // the weight actually used for distance (selected by mblconfig.Weighting)
	stale          bool

	// numeric range
	Min, Max float64

	// pre-stored value-difference matrix (C3); nil until materialised
	Matrix       map[[2]hashing.ID]float64
	matrixLocked bool // true when loaded from disk: metric changes are rejected
}

// NewFeature returns an empty feature bound to lex for value interning.
func NewFeature(index int, name string, lex *hashing.Lexicon) *Feature {
	return &Feature{
		Index:  index,
		Name:   name,
		lex:    lex,
		values: make(map[hashing.ID]*Value),
		stale:  true,
	}
}

// Intern returns the Value for s (numeric features also parse num),
// interning it and tracking min/max if this is the first reference.
func (f *Feature) Intern(id hashing.ID, s string, num float64, isNum bool) *Value {
	v, ok := f.values[id]
	if !ok {
		v = NewValue(id, s, num, isNum)
		f.values[id] = v
		f.order = append(f.order, id)
		if isNum {
			if len(f.order) == 1 || num < f.Min {
				f.Min = num
			}
			if len(f.order) == 1 || num > f.Max {
				f.Max = num
			}
		}
	}
	f.stale = true
	return v
}

// Restore overwrites value id's frequency and class distribution wholesale;
// used by package persist when reconstructing a feature's value table from a
// serialized instance-base file (the value must already have been created by
// Intern).
func (f *Feature) Restore(id hashing.ID, freq int, dist *ClassDistribution) {
	if v, ok := f.values[id]; ok {
		v.freq = freq
		v.Dist = dist
	}
}

// Lookup returns the interned Value for id, or (UnknownValue, false).
func (f *Feature) Lookup(id hashing.ID) (*Value, bool) {
	v, ok := f.values[id]
	if !ok {
		return UnknownValue, false
	}
	return v, true
}

// Values returns every interned value in stable first-seen order.
func (f *Feature) Values() []*Value {
	out := make([]*Value, len(f.order))
	for i, id := range f.order {
		out[i] = f.values[id]
	}
	return out
}

// NumValues returns the number of distinct values seen for this feature.
func (f *Feature) NumValues() int { return len(f.order) }

// Range returns (max - min), or 1 when max equals min, to avoid division by
// zero for a degenerate single-valued numeric feature.
func (f *Feature) Range() float64 {
	r := f.Max - f.Min
	if r == 0 {
		return 1
	}
	return r
}

// MarkStale flags this feature's cached statistics, permutation weight, and
// matrix as needing recomputation; called after any training mutation or
// metric change.
func (f *Feature) MarkStale() {
	f.stale = true
	if !f.matrixLocked {
		f.Matrix = nil
	}
}

// Stale reports whether statistics need recomputing.
func (f *Feature) Stale() bool { return f.stale }

// ClearStale marks statistics as up to date; called by package stats after
// recomputation.
func (f *Feature) ClearStale() { f.stale = false }

// SetMetric changes the feature's metric, returning a MetricLockedError if
// the matrix was loaded from disk (§4.2 "attempts to change the metric then
// fail with a metric-locked error").
func (f *Feature) SetMetric(m MetricType) error {
	if f.matrixLocked {
		return &mblerr.MetricLockedError{Feature: f.Index}
	}
	f.Metric = m
	f.MarkStale()
	return nil
}

// LockMatrix marks the pre-stored matrix as loaded-from-disk and therefore
// immutable; used by package persist on load.
func (f *Feature) LockMatrix(m map[[2]hashing.ID]float64) {
	f.Matrix = m
	f.matrixLocked = true
}

// Hide decrements the frequency of value id and of target tv (used for
// leave-one-out); Unhide is the inverse (positive n).
func (f *Feature) Hide(id hashing.ID, target hashing.ID) {
	f.adjust(id, target, -1)
}

func (f *Feature) Unhide(id hashing.ID, target hashing.ID) {
	f.adjust(id, target, 1)
}

func (f *Feature) adjust(id hashing.ID, target hashing.ID, n int) {
	v, ok := f.values[id]
	if !ok {
		return
	}
	v.bump(n)
	v.Dist.AddN(target, n)
	f.MarkStale()
}
