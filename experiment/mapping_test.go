package experiment

import (
	"testing"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/vote"
)

func TestMetricFromTagRecognizesSynonyms(t *testing.T) {
	cases := map[string]feature.MetricType{
		"MVDM":     feature.ValueDiff,
		"euclidean": feature.Euclidean,
		"JS":       feature.JensenShannon,
		"bogus":    feature.Overlap,
	}
	for tag, want := range cases {
		if got := metricFromTag(tag); got != want {
			t.Fatalf("metricFromTag(%q) = %v, want %v", tag, got, want)
		}
	}
}

func TestAlgorithmFromOptionsReadsAlgorithmField(t *testing.T) {
	opt := mblconfig.New()
	opt.Algorithm = "IGTree"
	if got := algorithmFromOptions(opt); got != instancebase.IGTree {
		t.Fatalf("algorithmFromOptions(IGTree) = %v, want IGTree", got)
	}

	opt.Algorithm = "unknown"
	if got := algorithmFromOptions(opt); got != instancebase.IB1 {
		t.Fatalf("algorithmFromOptions(unrecognized) = %v, want IB1 default", got)
	}
}

func TestDecayFromTagDefaultsToZero(t *testing.T) {
	if got := decayFromTag("nonsense"); got != vote.DecayZero {
		t.Fatalf("decayFromTag(nonsense) = %v, want DecayZero", got)
	}
	if got := decayFromTag("ExpDecay"); got != vote.DecayExp {
		t.Fatalf("decayFromTag(ExpDecay) = %v, want DecayExp", got)
	}
}

func TestNormFromTagRecognizesProbability(t *testing.T) {
	if got := normFromTag("Probability"); got != vote.NormProbability {
		t.Fatalf("normFromTag(Probability) = %v, want NormProbability", got)
	}
}
