package experiment

import (
	"testing"

	"github.com/wlattner/mbl/mblconfig"
)

// weatherLines is a small, fully symbolic training set where outlook=overcast
// always plays, giving a clean majority signal to assert against.
var weatherLines = []string{
	"sunny hot high weak no",
	"sunny hot high strong no",
	"overcast hot high weak yes",
	"rain mild high weak yes",
	"rain cool normal weak yes",
	"rain cool normal strong no",
	"overcast cool normal strong yes",
	"sunny mild high weak no",
	"sunny cool normal weak yes",
	"rain mild normal weak yes",
	"sunny mild normal strong yes",
	"overcast mild high strong yes",
	"overcast hot normal weak yes",
	"rain mild high strong no",
}

func newLearnedExperiment(t *testing.T) *Experiment {
	t.Helper()
	opt := mblconfig.New()
	exp := New(opt)
	if err := exp.Learn(weatherLines); err != nil {
		t.Fatalf("Learn failed: %v", err)
	}
	return exp
}

func TestLearnFreezesOptions(t *testing.T) {
	exp := newLearnedExperiment(t)
	if exp.Opt.State() != mblconfig.StateReady {
		t.Fatalf("Opt.State() after Learn = %v, want StateReady", exp.Opt.State())
	}
}

func TestLearnBuildsExpectedSchema(t *testing.T) {
	exp := newLearnedExperiment(t)
	if len(exp.Features) != 4 {
		t.Fatalf("len(Features) = %d, want 4", len(exp.Features))
	}
	if exp.Targets.Len() != 2 {
		t.Fatalf("Targets.Len() = %d, want 2", exp.Targets.Len())
	}
}

func TestLearnRejectsCallOutsideLearningState(t *testing.T) {
	exp := newLearnedExperiment(t)
	if err := exp.Learn(weatherLines); err == nil {
		t.Fatalf("second Learn call after Freeze succeeded, want a StateError")
	}
}

func TestClassifyExactTrainingRowReturnsItsClass(t *testing.T) {
	exp := newLearnedExperiment(t)

	res, err := exp.Classify("overcast hot high weak")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if res.Class != "yes" {
		t.Fatalf("Classify(overcast,...) = %q, want yes", res.Class)
	}
}

func TestClassifyRejectsWrongFieldCount(t *testing.T) {
	exp := newLearnedExperiment(t)
	if _, err := exp.Classify("sunny hot"); err == nil {
		t.Fatalf("Classify with too few fields succeeded, want a SchemaError")
	}
}

func TestClassifyBeforeLearnIsRejected(t *testing.T) {
	opt := mblconfig.New()
	exp := New(opt)
	if _, err := exp.Classify("sunny hot high weak"); err == nil {
		t.Fatalf("Classify before Learn succeeded, want a StateError")
	}
}

func TestClassifyUnknownValueStillReturnsAPrediction(t *testing.T) {
	exp := newLearnedExperiment(t)
	res, err := exp.Classify("foggy hot high weak")
	if err != nil {
		t.Fatalf("Classify with an unseen feature value failed: %v", err)
	}
	if res.Class == "" {
		t.Fatalf("Classify with an unseen feature value returned an empty class")
	}
}

func TestClassifyBatchPreservesInputOrder(t *testing.T) {
	exp := newLearnedExperiment(t)
	lines := []string{
		"overcast hot high weak",
		"sunny hot high strong",
		"rain cool normal weak",
	}

	results, err := exp.ClassifyBatch(lines, 3)
	if err != nil {
		t.Fatalf("ClassifyBatch failed: %v", err)
	}
	if len(results) != len(lines) {
		t.Fatalf("ClassifyBatch returned %d results, want %d", len(results), len(lines))
	}
	if results[0].Class != "yes" {
		t.Fatalf("ClassifyBatch result[0] = %q, want yes (overcast always plays)", results[0].Class)
	}
}

func TestLoadUserWeightsMarksIgnoredFeatures(t *testing.T) {
	opt := mblconfig.New()
	exp := New(opt)
	exp.ensureFeatures(2)
	exp.LoadUserWeights(map[int]float64{0: 1.0}, map[int]bool{1: true})

	if !exp.Features[1].Ignored {
		t.Fatalf("LoadUserWeights did not mark feature 1 ignored")
	}
}
