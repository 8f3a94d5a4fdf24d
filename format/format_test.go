package format

import (
	"testing"

	"github.com/wlattner/mbl/mblconfig"
)

func TestSplitColumnsUsesWhitespace(t *testing.T) {
	fields, err := Split(mblconfig.FormatColumns, 0, "sunny  hot  high  weak  no")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"sunny", "hot", "high", "weak", "no"}
	if len(fields) != len(want) {
		t.Fatalf("Split returned %v, want %v", fields, want)
	}
}

func TestSplitTabbedPreservesEmptyFields(t *testing.T) {
	fields, err := Split(mblconfig.FormatTabbed, 0, "a\t\tb")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(fields) != 3 || fields[1] != "" {
		t.Fatalf("Split(Tabbed) = %v, want [a  b] with an empty middle field", fields)
	}
}

func TestSplitARFFSkipsHeaderLines(t *testing.T) {
	fields, err := Split(mblconfig.FormatARFF, 0, "@attribute foo string")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if fields != nil {
		t.Fatalf("Split(ARFF) on a header line returned %v, want nil", fields)
	}
}

func TestSplitARFFDataLineIsCSV(t *testing.T) {
	fields, err := Split(mblconfig.FormatARFF, 0, "sunny, hot, yes")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"sunny", "hot", "yes"}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Split(ARFF) = %v, want %v", fields, want)
		}
	}
}

func TestSplitCompactRequiresFLength(t *testing.T) {
	if _, err := Split(mblconfig.FormatCompact, 0, "abcdef"); err == nil {
		t.Fatalf("Split(Compact) with FLENGTH=0 succeeded, want a SchemaError")
	}
}

func TestSplitCompactRejectsMismatchedLength(t *testing.T) {
	if _, err := Split(mblconfig.FormatCompact, 3, "abcde"); err == nil {
		t.Fatalf("Split(Compact) with a line length not a multiple of FLENGTH succeeded")
	}
}

func TestSplitCompactSlicesFixedWidth(t *testing.T) {
	fields, err := Split(mblconfig.FormatCompact, 3, "redbluyes")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"red", "blu", "yes"}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Split(Compact) = %v, want %v", fields, want)
		}
	}
}

func TestSplitSparseStripsParens(t *testing.T) {
	fields, err := Split(mblconfig.FormatSparse, 0, "(1 red) (3 hot) yes")
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	want := []string{"1", "red", "3", "hot", "yes"}
	if len(fields) != len(want) {
		t.Fatalf("Split(Sparse) = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("Split(Sparse)[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestExpandSparseFillsDefaultForUnmentionedIndices(t *testing.T) {
	tokens := []string{"1", "red", "yes"}
	fields, err := ExpandSparse(tokens, 3, "?")
	if err != nil {
		t.Fatalf("ExpandSparse failed: %v", err)
	}
	want := []string{"?", "red", "?", "yes"}
	if len(fields) != len(want) {
		t.Fatalf("ExpandSparse = %v, want %v", fields, want)
	}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("ExpandSparse[%d] = %q, want %q", i, fields[i], want[i])
		}
	}
}

func TestExpandSparseRejectsOutOfRangeIndex(t *testing.T) {
	tokens := []string{"9", "red", "yes"}
	if _, err := ExpandSparse(tokens, 3, "?"); err == nil {
		t.Fatalf("ExpandSparse with an out-of-range index succeeded, want an error")
	}
}

func TestExpandSparseRejectsUnmatchedPair(t *testing.T) {
	tokens := []string{"1", "red", "2", "yes"}
	if _, err := ExpandSparse(tokens, 3, "?"); err == nil {
		t.Fatalf("ExpandSparse with an unmatched (index value) pair succeeded, want an error")
	}
}
