package feature

import (
	"testing"

	"github.com/wlattner/mbl/hashing"
)

func TestClassDistributionAddAndFreq(t *testing.T) {
	d := NewClassDistribution()
	d.Add(1)
	d.Add(1)
	d.Add(2)

	if d.Freq(1) != 2 {
		t.Fatalf("Freq(1) = %d, want 2", d.Freq(1))
	}
	if d.Total() != 3 {
		t.Fatalf("Total() = %d, want 3", d.Total())
	}
}

func TestClassDistributionAddNNeverGoesNegative(t *testing.T) {
	d := NewClassDistribution()
	d.Add(1)
	d.AddN(1, -5)

	if d.Freq(1) != 0 {
		t.Fatalf("Freq(1) after over-subtracting = %d, want 0 (floored)", d.Freq(1))
	}
}

func TestClassDistributionMerge(t *testing.T) {
	a := NewClassDistribution()
	a.Add(1)
	b := NewClassDistribution()
	b.Add(1)
	b.Add(2)

	a.Merge(b)

	if a.Freq(1) != 2 || a.Freq(2) != 1 {
		t.Fatalf("Merge gave Freq(1)=%d, Freq(2)=%d, want 2,1", a.Freq(1), a.Freq(2))
	}
}

func TestAddWeightedDivergesWeightFromFrequency(t *testing.T) {
	d := NewClassDistribution()
	d.AddWeighted(1, 2, 3.0)

	if d.Freq(1) != 2 {
		t.Fatalf("Freq(1) = %d, want 2 (unscaled occurrence count)", d.Freq(1))
	}
	if d.Weight(1) != 6.0 {
		t.Fatalf("Weight(1) = %v, want 6.0 (n * w)", d.Weight(1))
	}
	if d.Total() != 2 {
		t.Fatalf("Total() = %d, want 2", d.Total())
	}
	if d.WeightTotal() != 6.0 {
		t.Fatalf("WeightTotal() = %v, want 6.0", d.WeightTotal())
	}
}

func TestWeightedDistributionSetWeightAndRemove(t *testing.T) {
	d := NewWeightedClassDistribution()
	d.AddWeight(1, 0.5)
	d.AddWeight(2, 0.25)

	d.SetWeight(1, 0.75)
	if d.Weight(1) != 0.75 {
		t.Fatalf("Weight(1) after SetWeight = %v, want 0.75", d.Weight(1))
	}
	if got, want := d.WeightTotal(), 1.0; got != want {
		t.Fatalf("WeightTotal() = %v, want %v", got, want)
	}

	d.Remove(2)
	if !d.IsEmpty() && d.Weight(2) != 0 {
		t.Fatalf("Remove(2) left a non-zero weight behind")
	}
}

func TestArgMaxBreaksTiesByGlobalFrequency(t *testing.T) {
	d := NewWeightedClassDistribution()
	d.AddWeight(1, 1.0)
	d.AddWeight(2, 1.0)

	freq := map[hashing.ID]int{1: 5, 2: 9}
	best, ok := d.ArgMax(func(id hashing.ID) int { return freq[id] })
	if !ok {
		t.Fatalf("ArgMax on a non-empty distribution returned ok=false")
	}
	if best != 2 {
		t.Fatalf("ArgMax tie-break chose %d, want 2 (higher global frequency)", best)
	}
}

func TestArgMaxEmptyDistribution(t *testing.T) {
	d := NewClassDistribution()
	if _, ok := d.ArgMax(func(hashing.ID) int { return 0 }); ok {
		t.Fatalf("ArgMax on an empty distribution reported ok=true")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	d := NewClassDistribution()
	d.Add(1)

	c := d.Clone()
	c.Add(1)

	if d.Freq(1) == c.Freq(1) {
		t.Fatalf("Clone shares state with the original: both report Freq(1)=%d", d.Freq(1))
	}
}
