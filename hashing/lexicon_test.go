package hashing

import "testing"

func TestInternAssignsStableIDs(t *testing.T) {
	lex := NewLexicon()

	a := lex.Intern("red")
	b := lex.Intern("blue")
	a2 := lex.Intern("red")

	if a != a2 {
		t.Fatalf("interning the same string twice gave different IDs: %d vs %d", a, a2)
	}
	if a == b {
		t.Fatalf("distinct strings got the same ID")
	}
	if lex.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", lex.Len())
	}
}

func TestInternFirstSeenOrder(t *testing.T) {
	lex := NewLexicon()
	first := lex.Intern("a")
	second := lex.Intern("b")

	if first != 0 || second != 1 {
		t.Fatalf("expected first-seen IDs 0,1, got %d,%d", first, second)
	}
}

func TestLookupUnknown(t *testing.T) {
	lex := NewLexicon()
	lex.Intern("known")

	id, ok := lex.Lookup("never-seen")
	if ok {
		t.Fatalf("Lookup of an uninterned string reported ok=true")
	}
	if id != Unknown {
		t.Fatalf("Lookup of an uninterned string returned %d, want Unknown", id)
	}
}

func TestStringRoundTrip(t *testing.T) {
	lex := NewLexicon()
	id := lex.Intern("hello")

	if got := lex.String(id); got != "hello" {
		t.Fatalf("String(%d) = %q, want %q", id, got, "hello")
	}
}
