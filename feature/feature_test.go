package feature

import (
	"testing"

	"github.com/wlattner/mbl/hashing"
)

func TestFeatureInternTracksRange(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "age", lex)

	f.Intern(lex.Intern("3"), "3", 3, true)
	f.Intern(lex.Intern("9"), "9", 9, true)
	f.Intern(lex.Intern("1"), "1", 1, true)

	if f.Min != 1 || f.Max != 9 {
		t.Fatalf("Min/Max = %v/%v, want 1/9", f.Min, f.Max)
	}
	if f.NumValues() != 3 {
		t.Fatalf("NumValues() = %d, want 3", f.NumValues())
	}
}

func TestFeatureLookupUnknown(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "color", lex)
	known := lex.Intern("red")
	f.Intern(known, "red", 0, false)

	v, ok := f.Lookup(hashing.Unknown)
	if ok {
		t.Fatalf("Lookup of an unknown ID reported ok=true")
	}
	if v != UnknownValue {
		t.Fatalf("Lookup of an unknown ID did not return the shared UnknownValue sentinel")
	}
}

func TestFeatureHideUnhideRoundTrips(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "color", lex)
	val := lex.Intern("red")
	target := lex.Intern("yes")
	f.Intern(val, "red", 0, false)

	f.Unhide(val, target)
	f.Unhide(val, target)
	v, _ := f.Lookup(val)
	if v.Freq() != 2 {
		t.Fatalf("Freq() after two Unhides = %d, want 2", v.Freq())
	}

	f.Hide(val, target)
	if v.Freq() != 1 {
		t.Fatalf("Freq() after Hide = %d, want 1", v.Freq())
	}
}

func TestSetMetricRejectedWhenMatrixLocked(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "color", lex)
	f.LockMatrix(map[[2]hashing.ID]float64{})

	if err := f.SetMetric(Jeffrey); err == nil {
		t.Fatalf("SetMetric on a locked matrix succeeded, want a MetricLockedError")
	}
}

func TestMarkStaleRespectsMatrixLock(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "color", lex)
	m := map[[2]hashing.ID]float64{{0, 1}: 0.5}
	f.LockMatrix(m)

	f.MarkStale()
	if f.Matrix == nil {
		t.Fatalf("MarkStale cleared a locked matrix, want it preserved")
	}
}

func TestRangeFloorsAtOneForDegenerateFeature(t *testing.T) {
	lex := hashing.NewLexicon()
	f := NewFeature(0, "constant", lex)
	f.Min, f.Max = 5, 5

	if got := f.Range(); got != 1 {
		t.Fatalf("Range() for a zero-spread feature = %v, want 1", got)
	}
}
