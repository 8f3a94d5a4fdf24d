package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
)

func TestWriteThenReadWeightsRoundTrips(t *testing.T) {
	lex := hashing.NewLexicon()
	a := feature.NewFeature(0, "a", lex)
	a.Weight = 0.75
	b := feature.NewFeature(1, "b", lex)
	b.Ignored = true

	var buf bytes.Buffer
	if err := WriteWeights(&buf, []*feature.Feature{a, b}); err != nil {
		t.Fatalf("WriteWeights failed: %v", err)
	}

	weights, ignore, err := ReadWeights(&buf)
	if err != nil {
		t.Fatalf("ReadWeights failed: %v", err)
	}
	if weights[0] != 0.75 {
		t.Fatalf("weights[0] = %v, want 0.75", weights[0])
	}
	if !ignore[1] {
		t.Fatalf("ignore[1] = false, want true")
	}
}

func TestReadWeightsSkipsComments(t *testing.T) {
	r := strings.NewReader("# a comment\n0\t1.5\n")
	weights, _, err := ReadWeights(r)
	if err != nil {
		t.Fatalf("ReadWeights failed: %v", err)
	}
	if weights[0] != 1.5 {
		t.Fatalf("weights[0] = %v, want 1.5", weights[0])
	}
}

func TestReadWeightsRejectsMalformedLine(t *testing.T) {
	r := strings.NewReader("0 1 2\n")
	if _, _, err := ReadWeights(r); err == nil {
		t.Fatalf("ReadWeights of a 3-field line succeeded, want an error")
	}
}
