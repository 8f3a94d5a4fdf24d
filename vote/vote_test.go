package vote

import (
	"math"
	"testing"

	"github.com/wlattner/mbl/bestk"
	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

type neighbor struct {
	dist   float64
	target hashing.ID
	freq   int
}

func neighborSet(pairs ...neighbor) *bestk.NeighborSet {
	best := bestk.New(len(pairs), 50)
	for _, p := range pairs {
		d := feature.NewClassDistribution()
		d.AddN(p.target, p.freq)
		best.AddResult(p.dist, d)
	}
	return bestk.InitNeighborSet(best)
}

func noFreq(hashing.ID) int { return 0 }

func TestVoteZeroDecayIsUnweightedMajority(t *testing.T) {
	ns := neighborSet(
		neighbor{0, 1, 1},
		neighbor{1, 1, 1},
		neighbor{2, 2, 1},
	)

	spec := &Spec{Decay: DecayZero, Seed: -1}
	res := Vote(ns, spec, noFreq)

	if res.Best != 1 {
		t.Fatalf("Vote with DecayZero chose %v, want target 1 (2 of 3 votes)", res.Best)
	}
}

func TestVoteInvDistFavorsCloserNeighbor(t *testing.T) {
	ns := neighborSet(
		neighbor{0.01, 1, 1},
		neighbor{10.0, 2, 1},
	)

	spec := &Spec{Decay: DecayInvDist, Seed: -1}
	res := Vote(ns, spec, noFreq)

	if res.Best != 1 {
		t.Fatalf("Vote with DecayInvDist chose %v, want the much closer target 1", res.Best)
	}
}

func TestVoteConfidenceSumsToWeightShareOfWinner(t *testing.T) {
	ns := neighborSet(
		neighbor{0, 1, 3},
		neighbor{0, 2, 1},
	)

	spec := &Spec{Decay: DecayZero, Seed: -1}
	res := Vote(ns, spec, noFreq)

	want := 0.75
	if math.Abs(res.Confidence-want) > 1e-9 {
		t.Fatalf("Confidence = %v, want %v", res.Confidence, want)
	}
}

func TestVoteTieBreaksByGlobalFrequency(t *testing.T) {
	ns := neighborSet(
		neighbor{0, 1, 1},
		neighbor{0, 2, 1},
	)

	freq := map[hashing.ID]int{1: 2, 2: 9}
	spec := &Spec{Decay: DecayZero, Seed: -1}
	res := Vote(ns, spec, func(id hashing.ID) int { return freq[id] })

	if !res.Tied {
		t.Fatalf("Vote did not report Tied for an equal-weight pair")
	}
	if res.Best != 2 {
		t.Fatalf("tie-break chose %v, want 2 (higher global frequency)", res.Best)
	}
}

func TestVoteProbabilityNormalizationSumsToOne(t *testing.T) {
	ns := neighborSet(
		neighbor{0, 1, 3},
		neighbor{0, 2, 1},
	)

	spec := &Spec{Decay: DecayZero, Normalization: NormProbability, Seed: -1}
	res := Vote(ns, spec, noFreq)

	var sum float64
	for _, id := range res.Dist.Targets() {
		sum += res.Dist.Weight(id)
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("post-normalization weight total = %v, want 1.0", sum)
	}
}

func TestVoteBeamTrimsToSize(t *testing.T) {
	ns := neighborSet(
		neighbor{0, 1, 1},
		neighbor{0, 2, 5},
		neighbor{0, 3, 3},
	)

	spec := &Spec{Decay: DecayZero, BeamSize: 1, Seed: -1}
	res := Vote(ns, spec, noFreq)

	if len(res.Dist.Targets()) != 1 {
		t.Fatalf("BeamSize=1 left %d targets, want 1", len(res.Dist.Targets()))
	}
	if res.Best != 2 {
		t.Fatalf("Best = %v, want 2 (the highest-weight target)", res.Best)
	}
}
