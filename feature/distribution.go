package feature

import "github.com/wlattner/mbl/hashing"

// entry is one (frequency, weight) pair for a target inside a ClassDistribution.
type entry struct {
	freq   int
	weight float64
}

// ClassDistribution maps target IDs to a (frequency, weight) pair and keeps a
// running total so callers never need to re-sum it. In the unweighted form
// (the default, used while building the trie) weight always mirrors freq; the
// weighted form is used transiently during voting (C8), where weight carries
// an independent decayed contribution.
type ClassDistribution struct {
	entries  map[hashing.ID]*entry
	total    int
	wTotal   float64
	weighted bool
}

// NewClassDistribution returns an empty unweighted distribution.
func NewClassDistribution() *ClassDistribution {
	return &ClassDistribution{entries: make(map[hashing.ID]*entry)}
}

// NewWeightedClassDistribution returns an empty distribution whose weight
// field is independent of frequency, for use by the voting component.
func NewWeightedClassDistribution() *ClassDistribution {
	return &ClassDistribution{entries: make(map[hashing.ID]*entry), weighted: true}
}

// Add increments target's frequency by one (and, in unweighted mode, its
// weight by one).
func (d *ClassDistribution) Add(target hashing.ID) {
	d.AddN(target, 1)
}

// AddN increments target's frequency by n, n may be negative (Hide).
func (d *ClassDistribution) AddN(target hashing.ID, n int) {
	e, ok := d.entries[target]
	if !ok {
		e = &entry{}
		d.entries[target] = e
	}
	old := e.freq
	e.freq += n
	if e.freq < 0 {
		e.freq = 0
	}
	delta := e.freq - old
	d.total += delta
	if !d.weighted {
		e.weight += float64(delta)
		d.wTotal += float64(delta)
	}
}

// AddWeighted increments target's frequency by n and its weight by n*w,
// letting weight diverge from frequency to apply a per-instance exemplar
// weight (default 1.0) to an otherwise-unweighted distribution. Used by
// instancebase.Add to merge an Instance's exemplar weight into its leaf
// (§4.3 Add).
func (d *ClassDistribution) AddWeighted(target hashing.ID, n int, w float64) {
	e, ok := d.entries[target]
	if !ok {
		e = &entry{}
		d.entries[target] = e
	}
	old := e.freq
	e.freq += n
	if e.freq < 0 {
		e.freq = 0
	}
	d.total += e.freq - old
	e.weight += float64(n) * w
	d.wTotal += float64(n) * w
}

// AddWeight adds w to target's independent weight, used by the voting
// component to accumulate decayed neighbour contributions. Target need not
// already carry a frequency entry.
func (d *ClassDistribution) AddWeight(target hashing.ID, w float64) {
	e, ok := d.entries[target]
	if !ok {
		e = &entry{}
		d.entries[target] = e
	}
	e.weight += w
	d.wTotal += w
}

// Merge adds every entry of other into d.
func (d *ClassDistribution) Merge(other *ClassDistribution) {
	for id, e := range other.entries {
		d.AddN(id, e.freq)
		if d.weighted {
			d.AddWeight(id, e.weight)
		}
	}
}

// Freq returns the stored frequency for target (0 if absent).
func (d *ClassDistribution) Freq(target hashing.ID) int {
	if e, ok := d.entries[target]; ok {
		return e.freq
	}
	return 0
}

// Weight returns the stored weight for target (0 if absent).
func (d *ClassDistribution) Weight(target hashing.ID) float64 {
	if e, ok := d.entries[target]; ok {
		return e.weight
	}
	return 0
}

// Total returns the summed frequency across all targets.
func (d *ClassDistribution) Total() int { return d.total }

// WeightTotal returns the summed weight across all targets.
func (d *ClassDistribution) WeightTotal() float64 { return d.wTotal }

// Targets returns every target ID with a non-zero entry, in no particular
// order; callers that need determinism should sort the result.
func (d *ClassDistribution) Targets() []hashing.ID {
	ids := make([]hashing.ID, 0, len(d.entries))
	for id := range d.entries {
		ids = append(ids, id)
	}
	return ids
}

// SetWeight overwrites target's weight directly (used by vote's
// normalization passes, which replace rather than accumulate weight).
func (d *ClassDistribution) SetWeight(target hashing.ID, w float64) {
	e, ok := d.entries[target]
	if !ok {
		e = &entry{}
		d.entries[target] = e
	}
	d.wTotal += w - e.weight
	e.weight = w
}

// Remove deletes target's entry entirely (used by vote's beam trimming).
func (d *ClassDistribution) Remove(target hashing.ID) {
	if e, ok := d.entries[target]; ok {
		d.total -= e.freq
		d.wTotal -= e.weight
		delete(d.entries, target)
	}
}

// IsEmpty reports whether the distribution has no mass at all.
func (d *ClassDistribution) IsEmpty() bool {
	for _, e := range d.entries {
		if e.freq != 0 || e.weight != 0 {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of d.
func (d *ClassDistribution) Clone() *ClassDistribution {
	c := &ClassDistribution{
		entries:  make(map[hashing.ID]*entry, len(d.entries)),
		total:    d.total,
		wTotal:   d.wTotal,
		weighted: d.weighted,
	}
	for id, e := range d.entries {
		ec := *e
		c.entries[id] = &ec
	}
	return c
}

// ArgMax returns the target with the highest weight, using tieBreakFreq (the
// Targets registry's global frequency table) to break ties, as specified by
// C5's assign_defaults. ok is false when the distribution is empty.
func (d *ClassDistribution) ArgMax(tieBreakFreq func(hashing.ID) int) (best hashing.ID, ok bool) {
	bestW := -1.0
	bestFreq := -1
	found := false
	// deterministic order: lowest target ID first among equal weight/freq
	ids := d.Targets()
	sortIDs(ids)
	for _, id := range ids {
		e := d.entries[id]
		w := e.weight
		if !found || w > bestW {
			best, bestW, bestFreq, found = id, w, tieBreakFreq(id), true
			continue
		}
		if w == bestW {
			f := tieBreakFreq(id)
			if f > bestFreq {
				best, bestFreq = id, f
			}
		}
	}
	return best, found
}

func sortIDs(ids []hashing.ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}
