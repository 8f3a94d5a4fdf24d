package feature

import (
	"testing"

	"github.com/wlattner/mbl/hashing"
)

func TestTargetsInternTracksFrequencyAndMajority(t *testing.T) {
	lex := hashing.NewLexicon()
	targets := NewTargets(lex)

	targets.Intern("yes")
	targets.Intern("yes")
	targets.Intern("no")

	maj, ok := targets.Majority()
	if !ok {
		t.Fatalf("Majority() reported ok=false on a non-empty registry")
	}
	yes, _ := lex.Lookup("yes")
	if maj != yes {
		t.Fatalf("Majority() = %v, want the ID for %q", maj, "yes")
	}
}

func TestTargetsHideUnhide(t *testing.T) {
	lex := hashing.NewLexicon()
	targets := NewTargets(lex)
	tv := targets.Intern("yes")

	targets.Hide(tv.ID())
	if targets.Freq(tv.ID()) != 0 {
		t.Fatalf("Freq after Hide = %d, want 0", targets.Freq(tv.ID()))
	}

	targets.Unhide(tv.ID())
	if targets.Freq(tv.ID()) != 1 {
		t.Fatalf("Freq after Unhide = %d, want 1", targets.Freq(tv.ID()))
	}
}

func TestTargetsSetFreqRecomputesMajority(t *testing.T) {
	lex := hashing.NewLexicon()
	targets := NewTargets(lex)
	a := targets.Intern("a")
	b := targets.Intern("b")

	targets.SetFreq(a.ID(), 1)
	targets.SetFreq(b.ID(), 10)

	maj, _ := targets.Majority()
	if maj != b.ID() {
		t.Fatalf("Majority() after SetFreq = %v, want %v", maj, b.ID())
	}
}

func TestTargetsAllPreservesFirstSeenOrder(t *testing.T) {
	lex := hashing.NewLexicon()
	targets := NewTargets(lex)
	targets.Intern("first")
	targets.Intern("second")

	all := targets.All()
	if len(all) != 2 || all[0].Name() != "first" || all[1].Name() != "second" {
		t.Fatalf("All() = %v, want [first second] in order", all)
	}
}
