package feature

import "github.com/wlattner/mbl/hashing"

// TargetValue is an interned class label.
type TargetValue struct {
	id   hashing.ID
	name string
	freq int
}

func (t *TargetValue) ID() hashing.ID { return t.id }
func (t *TargetValue) Name() string   { return t.name }
func (t *TargetValue) Freq() int      { return t.freq }

// Targets is the registry of every TargetValue plus the majority-class
// pointer used to break voting ties.
type Targets struct {
	lex     *hashing.Lexicon
	byID    map[hashing.ID]*TargetValue
	order   []hashing.ID
	majority hashing.ID
	hasMaj  bool
}

// NewTargets returns an empty registry backed by lex.
func NewTargets(lex *hashing.Lexicon) *Targets {
	return &Targets{lex: lex, byID: make(map[hashing.ID]*TargetValue)}
}

// Intern interns name and bumps its frequency by one.
func (t *Targets) Intern(name string) *TargetValue {
	id := t.lex.Intern(name)
	tv, ok := t.byID[id]
	if !ok {
		tv = &TargetValue{id: id, name: name}
		t.byID[id] = tv
		t.order = append(t.order, id)
	}
	tv.freq++
	t.recomputeMajority()
	return tv
}

// SetFreq overwrites target id's global frequency directly; used by package
// persist when restoring a saved registry, where the file already carries
// the exact count.
func (t *Targets) SetFreq(id hashing.ID, freq int) {
	if tv, ok := t.byID[id]; ok {
		tv.freq = freq
		t.recomputeMajority()
	}
}

// Hide/Unhide adjust a target's frequency for leave-one-out without removing
// it from the registry (§4.3 hide/unhide).
func (t *Targets) Hide(id hashing.ID) {
	if tv, ok := t.byID[id]; ok {
		tv.freq--
		if tv.freq < 0 {
			tv.freq = 0
		}
	}
	t.recomputeMajority()
}

func (t *Targets) Unhide(id hashing.ID) {
	if tv, ok := t.byID[id]; ok {
		tv.freq++
	}
	t.recomputeMajority()
}

func (t *Targets) recomputeMajority() {
	best := -1
	var bestID hashing.ID
	for _, id := range t.order {
		f := t.byID[id].freq
		if f > best {
			best, bestID = f, id
		}
	}
	if best >= 0 {
		t.majority, t.hasMaj = bestID, true
	}
}

// Majority returns the registry-wide majority class, used as a fallback
// prediction and as the IGTREE root default.
func (t *Targets) Majority() (hashing.ID, bool) {
	return t.majority, t.hasMaj
}

// Freq returns the global frequency of target id, used by ArgMax tie-break
// and by vote's tie-break rule (1) "higher global TargetValue frequency".
func (t *Targets) Freq(id hashing.ID) int {
	if tv, ok := t.byID[id]; ok {
		return tv.freq
	}
	return 0
}

// Lookup returns the TargetValue for id.
func (t *Targets) Lookup(id hashing.ID) (*TargetValue, bool) {
	tv, ok := t.byID[id]
	return tv, ok
}

// All returns every TargetValue in first-seen order.
func (t *Targets) All() []*TargetValue {
	out := make([]*TargetValue, len(t.order))
	for i, id := range t.order {
		out[i] = t.byID[id]
	}
	return out
}

// Len returns the number of distinct target classes.
func (t *Targets) Len() int { return len(t.order) }
