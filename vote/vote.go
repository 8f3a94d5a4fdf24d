// Package vote implements the neighbour-to-prediction aggregator (C8): a
// decay-weighted merge of neighbour distributions, normalization and tie
// handling.
package vote

import (
	"math"
	"math/rand"
	"sort"

	"github.com/wlattner/mbl/bestk"
	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

const epsilon = 1e-9

// Decay selects the per-neighbour weighting function (§4.6).
type Decay int

const (
	DecayZero Decay = iota
	DecayInvDist
	DecayInvLinear
	DecayExp
)

// Normalization selects the post-merge normalization mode (§4.6).
type Normalization int

const (
	NormNone Normalization = iota
	NormProbability
	NormAddFactor
	NormLogProbability
)

// Spec bundles every knob the voting component needs.
type Spec struct {
	Decay         Decay
	ExpAlpha      float64
	ExpBeta       float64
	Normalization Normalization
	NormFactor    float64
	BeamSize      int
	Seed          int64 // -1 disables random tie-break
	rng           *rand.Rand
}

// RNG lazily constructs (and caches) the tie-break RNG if Seed >= 0.
func (s *Spec) RNG() *rand.Rand {
	if s.Seed < 0 {
		return nil
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(s.Seed))
	}
	return s.rng
}

// Result is the outcome of a vote.
type Result struct {
	Best       hashing.ID
	Dist       *feature.ClassDistribution // weighted, post-normalization
	Confidence float64
	Tied       bool // true if Best was chosen among a tie at the top weight
}

// neighborWeight computes w_k for the k-th (0-indexed) neighbour at
// distance d, given the full sorted distance list for InvLinear's min/max.
func neighborWeight(spec *Spec, k int, d float64, distances []float64) float64 {
	switch spec.Decay {
	case DecayZero:
		return 1.0
	case DecayInvDist:
		return 1.0 / (d + epsilon)
	case DecayInvLinear:
		if k == 0 || len(distances) < 2 {
			return 1.0
		}
		dMin, dMax := distances[0], distances[len(distances)-1]
		if dMax-dMin < epsilon {
			return 1.0
		}
		return (dMax - d) / (dMax - dMin)
	case DecayExp:
		w := math.Exp(-spec.ExpAlpha * math.Pow(d, spec.ExpBeta))
		if w < epsilon {
			return epsilon // §9 Open Question: floor applied uniformly
		}
		return w
	default:
		return 1.0
	}
}

// Vote merges ns's neighbours into a weighted class distribution and picks
// the winning target. targetFreq supplies the global TargetValue frequency
// used for tie-break rule (1).
func Vote(ns *bestk.NeighborSet, spec *Spec, targetFreq func(hashing.ID) int) Result {
	R := feature.NewWeightedClassDistribution()

	distances := make([]float64, len(ns.Neighbors))
	for i, n := range ns.Neighbors {
		distances[i] = n.Distance
	}

	for k, n := range ns.Neighbors {
		w := neighborWeight(spec, k, n.Distance, distances)
		for _, target := range n.Dist.Targets() {
			R.AddWeight(target, w*float64(n.Dist.Freq(target)))
		}
	}

	normalize(R, spec)

	best, tied := argMaxWithTie(R, targetFreq, spec.RNG())

	conf := 0.0
	if total := R.WeightTotal(); total > 0 {
		conf = R.Weight(best) / total
	}

	if spec.BeamSize > 0 {
		beam(R, spec.BeamSize)
	}

	return Result{Best: best, Dist: R, Confidence: conf, Tied: tied}
}

// normalize applies spec.Normalization to R in place. Beam and any
// normalization other than None are mutually exclusive (§4.6); the caller
// (the experiment, which owns config validation) is expected to have
// already forced Normalization to NormNone when BeamSize > 0. This function
// re-enforces it defensively.
func normalize(R *feature.ClassDistribution, spec *Spec) {
	mode := spec.Normalization
	if spec.BeamSize > 0 {
		mode = NormNone
	}

	switch mode {
	case NormNone:
		return
	case NormProbability:
		probabilityNormalize(R)
	case NormAddFactor:
		for _, id := range R.Targets() {
			R.AddWeight(id, spec.NormFactor)
		}
		probabilityNormalize(R)
	case NormLogProbability:
		for _, id := range R.Targets() {
			R.SetWeight(id, math.Log(1+R.Weight(id)))
		}
		probabilityNormalize(R)
	}
}

func probabilityNormalize(R *feature.ClassDistribution) {
	total := R.WeightTotal()
	if total <= 0 {
		return
	}
	for _, id := range R.Targets() {
		R.SetWeight(id, R.Weight(id)/total)
	}
}

// argMaxWithTie finds the best-weight target, tie-breaking by (1) higher
// global frequency, (2) uniform random if seeded, else (3) lowest target ID.
func argMaxWithTie(R *feature.ClassDistribution, targetFreq func(hashing.ID) int, rng *rand.Rand) (hashing.ID, bool) {
	ids := R.Targets()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	bestW := math.Inf(-1)
	var tied []hashing.ID
	for _, id := range ids {
		w := R.Weight(id)
		if w > bestW+epsilon {
			bestW = w
			tied = []hashing.ID{id}
		} else if w >= bestW-epsilon {
			tied = append(tied, id)
		}
	}

	if len(tied) <= 1 {
		if len(tied) == 1 {
			return tied[0], false
		}
		return hashing.Unknown, false
	}

	bestFreq := -1
	var freqTied []hashing.ID
	for _, id := range tied {
		f := targetFreq(id)
		if f > bestFreq {
			bestFreq = f
			freqTied = []hashing.ID{id}
		} else if f == bestFreq {
			freqTied = append(freqTied, id)
		}
	}
	if len(freqTied) == 1 {
		return freqTied[0], true
	}
	if rng != nil {
		return freqTied[rng.Intn(len(freqTied))], true
	}
	return freqTied[0], true // deterministic: lowest TargetValue ID (already sorted)
}

// beam trims R to its top-beamSize entries by weight.
func beam(R *feature.ClassDistribution, beamSize int) {
	ids := R.Targets()
	sort.Slice(ids, func(i, j int) bool { return R.Weight(ids[i]) > R.Weight(ids[j]) })
	if beamSize >= len(ids) {
		return
	}
	for _, id := range ids[beamSize:] {
		R.Remove(id)
	}
}
