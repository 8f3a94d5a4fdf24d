// Package instancebase implements the indexed instance base of C5: a trie
// keyed by a feature permutation, aggregating class distributions at every
// node, with four algorithmic variants sharing the same shape (IB1, IGTREE,
// TRIBL, TRIBL2). Nodes are arena-allocated and addressed by index (§9
// "shared, possibly-cyclic pointers... replace with arena-allocated nodes
// addressed by indices"); there are no parent back-pointers, matching §9's
// note that search levels are tracked by an explicit stack instead.
package instancebase

import (
	"sort"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

// Algorithm selects one of the four trie variants (§4.3).
type Algorithm int

const (
	IB1 Algorithm = iota
	IGTree
	Tribl
	Tribl2
)

// NodeID addresses a Node in the arena.
type NodeID int32

// NoNode is the "doesn't exist" NodeID sentinel; it must never be used to
// address an allocated node. Node 0 is always the root, so NoNode is -1
// rather than the zero value to avoid aliasing root.
const NoNode NodeID = -1

// Node is one trie node. Children is a plain Go map with no iteration order;
// callers that need deterministic iteration should use SortedChildren.
type Node struct {
	Children map[hashing.ID]NodeID
	Dist     *feature.ClassDistribution // aggregate; nil when non-persistent
	Default  hashing.ID
	HasDef   bool
	Leaf     bool
	Samples  int
}

// Instance is a fixed-length vector of feature value IDs (in original,
// un-permuted feature order) plus a target, an exemplar weight and an
// occurrence count, matching §3 Instance.
type Instance struct {
	Values      []hashing.ID
	Target      hashing.ID
	Weight      float64 // exemplar weight, default 1.0
	Occurrences int     // >= 1
}

// InstanceBase is the arena-backed trie plus the permutation it was built
// with.
type InstanceBase struct {
	arena       []Node
	root        NodeID
	Algorithm   Algorithm
	Permutation []int // effective position -> original feature index
	Effective   int   // E, count of non-ignored features
	Persistent  bool  // KEEP_DISTRIBUTIONS: retain per-node aggregate distributions
	TriblOffset int   // T for Tribl
	pruned      bool
}

// New returns an empty InstanceBase ready for Add calls.
func New(alg Algorithm, permutation []int, persistent bool, triblOffset int) *InstanceBase {
	ib := &InstanceBase{
		Algorithm:   alg,
		Permutation: permutation,
		Effective:   len(permutation),
		Persistent:  persistent,
		TriblOffset: triblOffset,
	}
	ib.root = ib.newNode()
	return ib
}

func (ib *InstanceBase) newNode() NodeID {
	n := Node{Children: make(map[hashing.ID]NodeID)}
	if ib.Persistent {
		n.Dist = feature.NewClassDistribution()
	}
	ib.arena = append(ib.arena, n)
	return NodeID(len(ib.arena) - 1)
}

// Root returns the root node's ID.
func (ib *InstanceBase) Root() NodeID { return ib.root }

// Node returns a pointer to the node addressed by id, valid until the next
// structural mutation (Add/Prune) reallocates the arena slice.
func (ib *InstanceBase) Node(id NodeID) *Node { return &ib.arena[id] }

// SortedChildren returns id's children sorted ascending by FeatureValue ID,
// satisfying §3's "ordering of keys in the child map is by FeatureValue ID"
// invariant. Go's built-in map already gives O(1) lookup by key, which is
// what the original C++ engine's optional "hashed index" existed to provide
// on top of an ordered tree map — so HASHED_TREE collapses to a no-op here.
func (ib *InstanceBase) SortedChildren(id NodeID) []hashing.ID {
	n := &ib.arena[id]
	keys := make([]hashing.ID, 0, len(n.Children))
	for k := range n.Children {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Child returns the child of id reached by value fv, if any.
func (ib *InstanceBase) Child(id NodeID, fv hashing.ID) (NodeID, bool) {
	c, ok := ib.arena[id].Children[fv]
	return c, ok
}

// NewChild allocates a fresh node, links it as parent's child reached by fv,
// and returns its NodeID. Used by package persist to rebuild a trie
// node-by-node from a serialized file, bypassing Add's value-permutation
// walk.
func (ib *InstanceBase) NewChild(parent NodeID, fv hashing.ID) NodeID {
	child := ib.newNode()
	ib.arena[parent].Children[fv] = child
	return child
}

// SetNode overwrites node id's Leaf, Default/HasDef, Samples and Dist
// fields wholesale; used by package persist when reconstructing a trie from
// a serialized file.
func (ib *InstanceBase) SetNode(id NodeID, leaf bool, def hashing.ID, hasDef bool, samples int, dist *feature.ClassDistribution) {
	n := &ib.arena[id]
	n.Leaf, n.Default, n.HasDef, n.Samples, n.Dist = leaf, def, hasDef, samples, dist
}

// Add walks the trie, creating nodes as needed along inst's permuted
// feature values, and merges inst.Target into the leaf's distribution with
// its exemplar weight. It reports deviatingWeight=true when inst collides
// with an existing leaf whose exemplar weight differs (§4.3 Add).
func (ib *InstanceBase) Add(inst Instance) (deviatingWeight bool) {
	weight := inst.Weight
	if weight == 0 {
		weight = 1.0
	}

	cur := ib.root
	for level := 0; level < ib.Effective; level++ {
		fv := inst.Values[ib.Permutation[level]]
		if ib.Persistent {
			ib.arena[cur].Dist.AddN(inst.Target, inst.Occurrences)
		}
		ib.arena[cur].Samples += inst.Occurrences

		child, ok := ib.arena[cur].Children[fv]
		if !ok {
			child = ib.newNode()
			ib.arena[cur].Children[fv] = child
		}
		cur = child
	}

	leaf := &ib.arena[cur]
	leaf.Leaf = true
	leaf.Samples += inst.Occurrences
	if leaf.Dist == nil {
		leaf.Dist = feature.NewClassDistribution()
	} else if leaf.Dist.Total() > 0 && leaf.Dist.WeightTotal() != float64(leaf.Dist.Total())*weight {
		deviatingWeight = true
	}
	leaf.Dist.AddWeighted(inst.Target, inst.Occurrences, weight)
	return deviatingWeight
}

// Hide decrements (Unhide increments) the leaf distribution matching inst,
// and every ancestor's aggregate in persistent mode, for leave-one-out.
func (ib *InstanceBase) Hide(inst Instance) { ib.adjust(inst, -1) }
func (ib *InstanceBase) Unhide(inst Instance) { ib.adjust(inst, 1) }

func (ib *InstanceBase) adjust(inst Instance, sign int) {
	weight := inst.Weight
	if weight == 0 {
		weight = 1.0
	}
	n := sign * inst.Occurrences
	cur := ib.root
	for level := 0; level < ib.Effective; level++ {
		fv := inst.Values[ib.Permutation[level]]
		if ib.Persistent {
			ib.arena[cur].Dist.AddN(inst.Target, n)
		}
		ib.arena[cur].Samples += n
		child, ok := ib.arena[cur].Children[fv]
		if !ok {
			return
		}
		cur = child
	}
	leaf := &ib.arena[cur]
	leaf.Samples += n
	if leaf.Dist != nil {
		leaf.Dist.AddWeighted(inst.Target, n, weight)
	}
}

// ExactMatch traverses matching edges for inst; if the walk reaches depth E
// and the leaf has a non-empty distribution, it is returned.
func (ib *InstanceBase) ExactMatch(values []hashing.ID) (*feature.ClassDistribution, bool) {
	cur := ib.root
	for level := 0; level < ib.Effective; level++ {
		fv := values[ib.Permutation[level]]
		child, ok := ib.arena[cur].Children[fv]
		if !ok {
			return nil, false
		}
		cur = child
	}
	leaf := &ib.arena[cur]
	if leaf.Dist == nil || leaf.Dist.IsEmpty() {
		return nil, false
	}
	return leaf.Dist, true
}

// AssignDefaults recomputes every node's argmax target from its aggregate
// distribution (§4.3). It requires Persistent distributions; tieBreakFreq
// should be targets.Freq.
func (ib *InstanceBase) AssignDefaults(tieBreakFreq func(hashing.ID) int) {
	for i := range ib.arena {
		n := &ib.arena[i]
		if n.Dist == nil {
			continue
		}
		if best, ok := n.Dist.ArgMax(tieBreakFreq); ok {
			n.Default, n.HasDef = best, true
		}
	}
}

// Default returns node id's assigned default target.
func (ib *InstanceBase) Default(id NodeID) (hashing.ID, bool) {
	n := &ib.arena[id]
	return n.Default, n.HasDef
}

// Dist returns node id's aggregate distribution, nil in non-persistent mode.
func (ib *InstanceBase) Dist(id NodeID) *feature.ClassDistribution {
	return ib.arena[id].Dist
}

// Leaves returns every leaf NodeID reachable from id's subtree, used by the
// tester's similarity-metric and exemplar-weighted enumeration modes that
// cannot prune incrementally (§4.4).
func (ib *InstanceBase) Leaves(id NodeID) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(cur NodeID) {
		n := &ib.arena[cur]
		if n.Leaf && len(n.Children) == 0 {
			out = append(out, cur)
			return
		}
		for _, child := range ib.SortedChildren(cur) {
			walk(n.Children[child])
		}
	}
	walk(id)
	return out
}
