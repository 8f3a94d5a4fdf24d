package stats

import (
	"errors"
	"sort"

	"github.com/wlattner/mbl/feature"
)

// Weighting selects which statistic feeds Feature.Weight (§4.1 "Weighting
// selection").
type Weighting int

const (
	WeightNone Weighting = iota
	WeightGainRatio
	WeightInfoGain
	WeightChi2
	WeightSharedVariance
	WeightStdDev
	WeightUserDefined
)

// ErrUserWeightsRequired is returned by ApplyWeighting(WeightUserDefined, ...)
// when no user weight file has been loaded.
var ErrUserWeightsRequired = errors.New("stats: WeightUserDefined requires user weights to be loaded first")

// ApplyWeighting sets every non-ignored feature's Weight field from the
// statistic named by w; ignored features always get weight 0. userWeights
// is only consulted when w is WeightUserDefined (its presence, per §4.1,
// "locks" the weighting to UserDefined — enforcing that belongs to the
// caller/experiment, not this function).
func ApplyWeighting(features []*feature.Feature, w Weighting, userWeights map[int]float64) error {
	if w == WeightUserDefined && userWeights == nil {
		return ErrUserWeightsRequired
	}
	for _, f := range features {
		if f.Ignored {
			f.Weight = 0
			continue
		}
		switch w {
		case WeightNone:
			f.Weight = 1
		case WeightGainRatio:
			f.Weight = f.GainRatio
		case WeightInfoGain:
			f.Weight = f.InfoGain
		case WeightChi2:
			f.Weight = f.Chi2
		case WeightSharedVariance:
			f.Weight = f.SharedVariance
		case WeightStdDev:
			f.Weight = f.StdDev
		case WeightUserDefined:
			f.Weight = userWeights[f.Index]
		default:
			f.Weight = 1
		}
	}
	return nil
}

// OrderCriterion names a TREE_ORDER tag (§4.1 "Permutation").
type OrderCriterion int

const (
	OrderDataFile OrderCriterion = iota // original schema order
	OrderNone                          // alias for OrderDataFile
	OrderInfoGain
	OrderGainRatio
	OrderInfoGainSplit // IG weighted by split info
	OrderGainRatioSplit
	OrderChi2
	OrderSharedVariance
	OrderStdDev
	OrderInvValueCount // 1/|V|
)

func orderScore(f *feature.Feature, crit OrderCriterion) float64 {
	switch crit {
	case OrderInfoGain:
		return f.InfoGain
	case OrderGainRatio:
		return f.GainRatio
	case OrderInfoGainSplit:
		return f.InfoGain * splitWeight(f)
	case OrderGainRatioSplit:
		return f.GainRatio * splitWeight(f)
	case OrderChi2:
		return f.Chi2
	case OrderSharedVariance:
		return f.SharedVariance
	case OrderStdDev:
		return f.StdDev
	case OrderInvValueCount:
		if f.NumValues() == 0 {
			return 0
		}
		return 1 / float64(f.NumValues())
	default:
		return 0
	}
}

// splitWeight approximates the per-feature split-information factor used by
// the *Split permutation criteria, derived from NumValues since the raw
// split info isn't retained on Feature after Compute returns.
func splitWeight(f *feature.Feature) float64 {
	if f.NumValues() <= 1 {
		return 1
	}
	return 1 / float64(f.NumValues())
}

// Permute computes the permutation (§3 "Permutation"): effective-feature
// position -> original feature index, most discriminative first, ignored
// features placed at the tail, ties broken by original index.
func Permute(features []*feature.Feature, crit OrderCriterion) []int {
	idx := make([]int, len(features))
	for i := range idx {
		idx[i] = i
	}

	if crit == OrderDataFile || crit == OrderNone {
		sort.SliceStable(idx, func(i, j int) bool {
			return features[idx[i]].Ignored != features[idx[j]].Ignored && features[idx[j]].Ignored
		})
		return idx
	}

	sort.SliceStable(idx, func(i, j int) bool {
		fi, fj := features[idx[i]], features[idx[j]]
		if fi.Ignored != fj.Ignored {
			return fj.Ignored // non-ignored first
		}
		if fi.Ignored {
			return idx[i] < idx[j]
		}
		si, sj := orderScore(fi, crit), orderScore(fj, crit)
		if si != sj {
			return si > sj
		}
		return idx[i] < idx[j]
	})
	return idx
}

// NumEffective returns the count of non-ignored features, the "effective"
// feature count E from §3.
func NumEffective(features []*feature.Feature) int {
	n := 0
	for _, f := range features {
		if !f.Ignored {
			n++
		}
	}
	return n
}
