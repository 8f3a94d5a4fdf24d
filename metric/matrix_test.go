package metric

import (
	"testing"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

func TestBuildMatrixSkipsNonStorableMetric(t *testing.T) {
	lex := hashing.NewLexicon()
	f := feature.NewFeature(0, "color", lex)
	f.Metric = feature.Overlap
	f.Intern(lex.Intern("red"), "red", 0, false)
	f.Intern(lex.Intern("blue"), "blue", 0, false)

	BuildMatrix(f, 0)
	if f.Matrix != nil {
		t.Fatalf("BuildMatrix populated a matrix for a non-storable metric")
	}
}

func TestBuildMatrixIsSymmetricallyAddressable(t *testing.T) {
	lex := hashing.NewLexicon()
	f := feature.NewFeature(0, "color", lex)
	f.Metric = feature.ValueDiff
	a := lex.Intern("red")
	b := lex.Intern("blue")
	va := f.Intern(a, "red", 0, false)
	vb := f.Intern(b, "blue", 0, false)
	va.Dist.Add(lex.Intern("yes"))
	vb.Dist.Add(lex.Intern("no"))

	BuildMatrix(f, 0)

	d1, ok1 := MatrixLookup(f, a, b)
	d2, ok2 := MatrixLookup(f, b, a)
	if !ok1 || !ok2 {
		t.Fatalf("MatrixLookup missing an entry for a stored pair, in either order")
	}
	if d1 != d2 {
		t.Fatalf("MatrixLookup(a,b) = %v but MatrixLookup(b,a) = %v, want equal", d1, d2)
	}
}

func TestBuildMatrixDoesNotOverwriteLockedMatrix(t *testing.T) {
	lex := hashing.NewLexicon()
	f := feature.NewFeature(0, "color", lex)
	f.Metric = feature.ValueDiff
	f.Intern(lex.Intern("red"), "red", 0, false)
	original := map[[2]hashing.ID]float64{{0, 0}: 0.42}
	f.LockMatrix(original)

	BuildMatrix(f, 0)

	if len(f.Matrix) != 1 {
		t.Fatalf("BuildMatrix overwrote a locked matrix")
	}
}

func TestDistanceForFallsBackWithoutMatrix(t *testing.T) {
	lex := hashing.NewLexicon()
	f := feature.NewFeature(0, "color", lex)
	f.Metric = feature.Overlap
	a := lex.Intern("red")
	b := lex.Intern("blue")
	va := f.Intern(a, "red", 0, false)
	vb := f.Intern(b, "blue", 0, false)

	d := DistanceFor(f, va, vb, 0)
	if d != 1 {
		t.Fatalf("DistanceFor fallback Overlap distance = %v, want 1", d)
	}
}
