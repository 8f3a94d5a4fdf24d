// Package tester implements the distance walker of C6: it drives the
// instance trie (C5) under a running-distance cutoff, feeding candidates to
// the best-k aggregator (C7). The walk is written as a plain recursive
// descent rather than the cooperative iterator-stack machine the original
// engine used (§5 "Suspension points... can be rewritten as either a
// recursive call... or a generator"); Go's call stack plays that role.
package tester

import (
	"math"

	"github.com/wlattner/mbl/bestk"
	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/metric"
)

const epsilon = 1e-9

// Query is a test instance resolved to feature.Value references (original,
// un-permuted feature order); unseen values are feature.UnknownValue.
type Query struct {
	Values []*feature.Value
}

// Tester walks one InstanceBase for one Query.
type Tester struct {
	IB         *instancebase.InstanceBase
	Features   []*feature.Feature // original feature order, indexed by feature.Index
	MVDLimit   int
	WeightedKNN bool // exemplar-weight search mode (§4.4)
}

// Search performs the full k-NN walk from the trie root, starting at level
// L (0 for a full search; >0 when resuming inside a TRIBL subtree), and
// fills best with the neighbours it finds.
func (t *Tester) Search(q Query, start instancebase.NodeID, level int, best *bestk.BestArray) {
	if len(t.Features) > 0 && t.globalMetric().IsSimilarity() {
		t.searchSimilarity(q, start, level, best, t.matchedPrefix(q, level))
		return
	}
	if t.WeightedKNN {
		t.searchWeighted(q, start, level, 0, best)
		return
	}
	t.searchDistance(q, start, level, 0, best)
}

// globalMetric reports the metric used by the first effective feature in
// the permutation, standing in for GLOBAL_METRIC when every effective
// feature shares one metric (the similarity metrics Cosine/DotProduct are
// only meaningful when applied uniformly across numeric features, per the
// §4.2 metric table).
func (t *Tester) globalMetric() feature.MetricType {
	for _, idx := range t.IB.Permutation {
		return t.Features[idx].Metric
	}
	return feature.Overlap
}

// searchDistance is the additive, incrementally-pruned walk for ordinary
// distance metrics (§4.4 steps 1-7).
func (t *Tester) searchDistance(q Query, node instancebase.NodeID, level int, running float64, best *bestk.BestArray) {
	if level == t.IB.Effective {
		if dist := t.IB.Node(node).Dist; dist != nil && !dist.IsEmpty() {
			best.AddResult(running, dist)
		}
		return
	}

	origIdx := t.IB.Permutation[level]
	f := t.Features[origIdx]
	qv := q.Values[origIdx]

	for _, childFV := range t.IB.SortedChildren(node) {
		tau := best.Threshold()
		child, _ := t.IB.Child(node, childFV)
		childVal, _ := f.Lookup(childFV)

		d := f.Weight * metric.DistanceFor(f, qv, childVal, t.MVDLimit)
		next := running + d
		if next > tau+epsilon {
			continue // prune: §4.4 step 4
		}
		t.searchDistance(q, child, level+1, next, best)
	}
}

// searchWeighted implements the exemplar-weight variant (§4.4): per leaf,
// each target present contributes a singleton distribution at a distance
// scaled down by that target's accumulated exemplar weight (instancebase.Add
// merges each Instance's exemplar weight, default 1.0, into this same leaf
// distribution), and no incremental pruning is attempted.
func (t *Tester) searchWeighted(q Query, node instancebase.NodeID, level int, running float64, best *bestk.BestArray) {
	if level == t.IB.Effective {
		dist := t.IB.Node(node).Dist
		if dist == nil {
			return
		}
		for _, target := range dist.Targets() {
			freq := dist.Freq(target)
			w := dist.Weight(target)
			d := running / (w + epsilon)
			singleton := feature.NewClassDistribution()
			singleton.AddN(target, freq)
			best.AddResult(d, singleton)
		}
		return
	}

	origIdx := t.IB.Permutation[level]
	f := t.Features[origIdx]
	qv := q.Values[origIdx]

	for _, childFV := range t.IB.SortedChildren(node) {
		child, _ := t.IB.Child(node, childFV)
		childVal, _ := f.Lookup(childFV)
		d := f.Weight * metric.DistanceFor(f, qv, childVal, t.MVDLimit)
		t.searchWeighted(q, child, level+1, running+d, best)
	}
}

// searchSimilarity implements the whole-vector similarity variant (§4.4):
// every leaf of the visited subtree is enumerated and scored once, since
// Cosine/DotProduct aren't additive across features.
func (t *Tester) searchSimilarity(q Query, node instancebase.NodeID, level int, best *bestk.BestArray, path []*feature.Value) {
	if level == t.IB.Effective {
		dist := t.IB.Node(node).Dist
		if dist == nil || dist.IsEmpty() {
			return
		}
		d := t.similarityDistance(q, path)
		best.AddResult(d, dist)
		return
	}

	origIdx := t.IB.Permutation[level]
	f := t.Features[origIdx]
	for _, childFV := range t.IB.SortedChildren(node) {
		child, _ := t.IB.Child(node, childFV)
		childVal, _ := f.Lookup(childFV)
		t.searchSimilarity(q, child, level+1, best, append(path, childVal))
	}
}

func (t *Tester) similarityDistance(q Query, path []*feature.Value) float64 {
	a := make([]float64, t.IB.Effective)
	b := make([]float64, t.IB.Effective)
	w := make([]float64, t.IB.Effective)
	for level := 0; level < t.IB.Effective; level++ {
		origIdx := t.IB.Permutation[level]
		f := t.Features[origIdx]
		a[level] = q.Values[origIdx].Numeric()
		b[level] = path[level].Numeric()
		w[level] = f.Weight
	}
	if t.globalMetric() == feature.DotProduct {
		d := metric.VectorDotProduct(w, a, b)
		if d <= 0 {
			// saturated: §4.4 numeric-similarity guard
			return math.Inf(1)
		}
		return d
	}
	return metric.VectorCosineDistance(w, a, b)
}

// ExactMatchDistance returns a zero-distance BestArray entry for a known
// leaf distribution, used by the exact-match policy (§4.7) when the caller
// has already located the leaf via InstanceBase.ExactMatch.
func ExactMatchDistance(best *bestk.BestArray, dist *feature.ClassDistribution) {
	best.AddResult(0, dist)
}

// IGTreeClassify walks matching exact children only, as far as possible,
// returning the default target and distribution of the node where the walk
// stopped, plus the depth reached (§4.3 IGTREE, E4).
func IGTreeClassify(ib *instancebase.InstanceBase, q Query) (target hashing.ID, dist *feature.ClassDistribution, depth int, matchedLeaf bool) {
	cur := ib.Root()
	level := 0
	for level < ib.Effective {
		origIdx := ib.Permutation[level]
		fv := q.Values[origIdx].ID()
		child, ok := ib.Child(cur, fv)
		if !ok {
			break
		}
		cur = child
		level++
	}
	def, hasDef := ib.Default(cur)
	return def, ib.Dist(cur), level, hasDef && level == ib.Effective
}

// TriblSearch implements TRIBL (§4.3): walk matching children for the first
// T levels; if that walk succeeds, k-NN inside the remaining subtree,
// otherwise return the stopping node's default.
func (t *Tester) TriblSearch(q Query, best *bestk.BestArray) (fellBack bool, node instancebase.NodeID, depth int) {
	cur := t.IB.Root()
	level := 0
	for level < t.IB.TriblOffset {
		origIdx := t.IB.Permutation[level]
		fv := q.Values[origIdx].ID()
		child, ok := t.IB.Child(cur, fv)
		if !ok {
			return true, cur, level
		}
		cur = child
		level++
	}
	t.searchFrom(q, cur, level, best)
	return false, cur, level
}

// Tribl2Search implements TRIBL2 (§4.3): walk matching children as far as
// possible; if the walk reaches a genuine leaf, that is an exact match,
// otherwise k-NN inside the subtree rooted where the walk stopped.
func (t *Tester) Tribl2Search(q Query, best *bestk.BestArray) (exact bool, node instancebase.NodeID, depth int) {
	cur := t.IB.Root()
	level := 0
	for level < t.IB.Effective {
		origIdx := t.IB.Permutation[level]
		fv := q.Values[origIdx].ID()
		child, ok := t.IB.Child(cur, fv)
		if !ok {
			break
		}
		cur = child
		level++
	}
	if level == t.IB.Effective {
		return true, cur, level
	}
	t.searchFrom(q, cur, level, best)
	return false, cur, level
}

// searchFrom dispatches into the appropriate search mode starting from an
// arbitrary (node, level), used by TRIBL/TRIBL2 to resume k-NN partway down
// the trie.
func (t *Tester) searchFrom(q Query, node instancebase.NodeID, level int, best *bestk.BestArray) {
	switch {
	case t.globalMetric().IsSimilarity():
		t.searchSimilarity(q, node, level, best, t.matchedPrefix(q, level))
	case t.WeightedKNN:
		t.searchWeighted(q, node, level, 0, best)
	default:
		t.searchDistance(q, node, level, 0, best)
	}
}

// matchedPrefix seeds similarityDistance's path with the query's own values
// for the levels already walked by an exact-match descent (TRIBL/TRIBL2):
// since those levels matched the query exactly, path[0:level] and
// q.Values at the corresponding permuted indices are identical. Without
// this, resuming searchSimilarity with a nil path at level>0 leaves path
// shorter than t.IB.Effective, so similarityDistance's path[level] indexing
// runs off the end (or reads the wrong, unshifted level).
func (t *Tester) matchedPrefix(q Query, level int) []*feature.Value {
	if level == 0 {
		return nil
	}
	path := make([]*feature.Value, level, t.IB.Effective)
	for lvl := 0; lvl < level; lvl++ {
		origIdx := t.IB.Permutation[lvl]
		path[lvl] = q.Values[origIdx]
	}
	return path
}
