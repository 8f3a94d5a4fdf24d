// Package bestk implements the bounded "distance bins" structure (C7) that
// the tester (C6) feeds candidate neighbours into, and the flat NeighborSet
// view the voting component (C8) consumes.
package bestk

import (
	"math"
	"sort"

	"github.com/wlattner/mbl/feature"
)

const epsilon = 1e-9

// Bin holds every neighbour found at one distance (within epsilon).
type Bin struct {
	Distance float64
	Dist     *feature.ClassDistribution
}

// BestArray is an ordered, ascending-by-distance sequence of at most k
// distinct-distance bins (§4.5).
type BestArray struct {
	bins     []*Bin
	k        int
	maxBests int
}

// New returns an empty BestArray configured for k neighbours. maxBests
// (MAXBESTS, default 500) is stored, raised to k when smaller; the bin count
// itself is bounded by k (see trim).
func New(k, maxBests int) *BestArray {
	if k < 1 {
		k = 1
	}
	if maxBests < k {
		maxBests = k
	}
	return &BestArray{k: k, maxBests: maxBests}
}

// AddResult merges dist into the bin at distance d (creating one if needed),
// then trims to keep only the smallest k distinct distances. It returns the
// new threshold tau: the distance of the k-th bin, or +Inf if fewer than k
// distinct distances have been seen.
func (b *BestArray) AddResult(d float64, dist *feature.ClassDistribution) float64 {
	if bin := b.find(d); bin != nil {
		bin.Dist.Merge(dist)
	} else {
		b.insert(d, dist.Clone())
	}
	b.trim()
	return b.Threshold()
}

func (b *BestArray) find(d float64) *Bin {
	for _, bin := range b.bins {
		if math.Abs(bin.Distance-d) < epsilon {
			return bin
		}
	}
	return nil
}

func (b *BestArray) insert(d float64, dist *feature.ClassDistribution) {
	i := sort.Search(len(b.bins), func(i int) bool { return b.bins[i].Distance >= d })
	b.bins = append(b.bins, nil)
	copy(b.bins[i+1:], b.bins[i:])
	b.bins[i] = &Bin{Distance: d, Dist: dist}
}

// trim keeps only the k smallest distinct distances, evicting (and
// discarding the distribution of) every farther bin immediately (§4.5,
// invariant #6: the array always equals the k nearest distinct distances).
// maxBests is not consulted here: New raises it to k when smaller, so
// b.k <= b.maxBests always holds and k alone bounds the bin count.
func (b *BestArray) trim() {
	if len(b.bins) > b.k {
		b.bins = b.bins[:b.k]
	}
}

// Threshold returns tau: the distance of the k-th bin, or +Inf if fewer
// than k distinct distances are present.
func (b *BestArray) Threshold() float64 {
	if len(b.bins) < b.k {
		return math.Inf(1)
	}
	return b.bins[b.k-1].Distance
}

// Len returns the number of distinct distance bins currently held.
func (b *BestArray) Len() int { return len(b.bins) }

// Bins returns the bins in ascending-distance order; callers must not
// mutate the returned slice.
func (b *BestArray) Bins() []*Bin { return b.bins }

// NeighborSet is a flat, sorted-by-distance view over a BestArray, consumed
// by the voting component.
type NeighborSet struct {
	Neighbors []*Bin
}

// InitNeighborSet copies b's bins into a flat NeighborSet in ascending-
// distance order.
func InitNeighborSet(b *BestArray) *NeighborSet {
	out := make([]*Bin, len(b.bins))
	copy(out, b.bins)
	return &NeighborSet{Neighbors: out}
}

// AddToNeighborSet appends bin n (the k+1-th, on tie re-test) without
// recomputing the rest of the set (§4.5 addToNeighborSet).
func (n *NeighborSet) AddToNeighborSet(bin *Bin) {
	n.Neighbors = append(n.Neighbors, bin)
}
