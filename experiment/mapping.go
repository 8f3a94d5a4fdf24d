package experiment

import (
	"strings"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/vote"
)

// metricFromTag maps a mblconfig.MetricTag string (GLOBAL_METRIC/METRICS
// values, §6) onto the concrete feature.MetricType enum.
func metricFromTag(tag string) feature.MetricType {
	switch strings.ToUpper(tag) {
	case "O", "OVERLAP":
		return feature.Overlap
	case "N", "NUMERIC":
		return feature.Numeric
	case "EUCLIDEAN", "EU":
		return feature.Euclidean
	case "MVDM", "VALUEDIFF":
		return feature.ValueDiff
	case "JEFFREY", "J":
		return feature.Jeffrey
	case "JS", "JENSENSHANNON":
		return feature.JensenShannon
	case "LEVENSHTEIN", "LEV":
		return feature.Levenshtein
	case "DICE", "D":
		return feature.Dice
	case "COSINE", "C":
		return feature.Cosine
	case "DOT", "DOTPRODUCT":
		return feature.DotProduct
	default:
		return feature.Overlap
	}
}

// algorithmFromOptions maps the experiment's configured ALGORITHM tag
// (carried as a plain field on Options in the CLI layer, see cmd/mbl) onto
// instancebase.Algorithm. Absent an explicit tag, IB1 is the default (§4.3).
func algorithmFromOptions(opt *mblconfig.Options) instancebase.Algorithm {
	switch strings.ToUpper(string(opt.Algorithm)) {
	case "IGTREE":
		return instancebase.IGTree
	case "TRIBL":
		return instancebase.Tribl
	case "TRIBL2":
		return instancebase.Tribl2
	default:
		return instancebase.IB1
	}
}

func decayFromTag(tag mblconfig.DecayTag) vote.Decay {
	switch strings.ToUpper(string(tag)) {
	case "INVDIST", "ID":
		return vote.DecayInvDist
	case "INVLINEAR", "IL":
		return vote.DecayInvLinear
	case "EXPDECAY", "ED":
		return vote.DecayExp
	default:
		return vote.DecayZero
	}
}

func normFromTag(tag mblconfig.NormTag) vote.Normalization {
	switch strings.ToUpper(string(tag)) {
	case "PROBABILITYDISTRIBUTION", "PROBABILITY":
		return vote.NormProbability
	case "ADDFACTOR":
		return vote.NormAddFactor
	case "LOGPROBABILITY":
		return vote.NormLogProbability
	default:
		return vote.NormNone
	}
}
