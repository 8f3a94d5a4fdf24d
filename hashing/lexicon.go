// Package hashing interns feature and target strings into dense integer IDs,
// giving O(1) lookup in both directions. It is the foundation every other
// package builds on: Feature values, Target values and trie edges are all
// addressed by the IDs a Lexicon hands out, never by the strings themselves.
package hashing

// ID is a dense, 0-based identifier assigned in first-seen order.
type ID int

// Unknown is the sentinel ID for a value never interned (a test-time value
// absent from the training lexicon). It never collides with a real ID.
const Unknown ID = -1

// Lexicon interns strings to IDs and back. It is not safe for concurrent
// writes; concurrent reads (Lookup, String) are safe once learning has
// stopped, matching the shared-during-classify rule in the concurrency model.
type Lexicon struct {
	byString map[string]ID
	byID     []string
}

// NewLexicon returns an empty, ready-to-use Lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{byString: make(map[string]ID)}
}

// Intern returns the ID for s, assigning a new one if s hasn't been seen.
func (l *Lexicon) Intern(s string) ID {
	if id, ok := l.byString[s]; ok {
		return id
	}
	id := ID(len(l.byID))
	l.byString[s] = id
	l.byID = append(l.byID, s)
	return id
}

// Lookup returns the ID for s without interning it; ok is false and the ID
// is Unknown when s has never been seen.
func (l *Lexicon) Lookup(s string) (id ID, ok bool) {
	id, ok = l.byString[s]
	if !ok {
		return Unknown, false
	}
	return id, true
}

// String returns the interned string for id. Panics if id is out of range;
// callers must only pass IDs this Lexicon itself has handed out.
func (l *Lexicon) String(id ID) string {
	return l.byID[int(id)]
}

// Len returns the number of distinct strings interned so far.
func (l *Lexicon) Len() int {
	return len(l.byID)
}
