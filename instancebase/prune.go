package instancebase

import "github.com/wlattner/mbl/hashing"

// Prune performs the IGTREE collapse (§4.3, §8 invariant 7): after
// AssignDefaults has run, any child whose default target equals its
// parent's default and which (after recursively pruning its own children
// first) has no children of its own is removed. This is the decision-tree
// fast path's compression step; it is only meaningful for Algorithm ==
// IGTree, but is safe to call unconditionally.
func (ib *InstanceBase) Prune(tieBreakFreq func(hashing.ID) int) {
	ib.AssignDefaults(tieBreakFreq)
	ib.pruneNode(ib.root)
	ib.pruned = true
}

// pruneNode recursively prunes cur's subtree and returns true if cur itself
// now qualifies for removal by its own parent (no children left).
func (ib *InstanceBase) pruneNode(cur NodeID) bool {
	n := &ib.arena[cur]
	parentDefault, hasDef := n.Default, n.HasDef

	for _, fv := range ib.SortedChildren(cur) {
		child := n.Children[fv]
		childCollapsed := ib.pruneNode(child)
		cn := &ib.arena[child]
		if childCollapsed && hasDef && cn.HasDef && cn.Default == parentDefault {
			delete(n.Children, fv)
		}
	}

	return len(n.Children) == 0
}

// Pruned reports whether Prune has run.
func (ib *InstanceBase) Pruned() bool { return ib.pruned }
