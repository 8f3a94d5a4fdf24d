// Package format tokenizes a raw input line into fields under the small set
// of INPUTFORMAT tags the classify API actually exercises (§4.8 of
// SPEC_FULL.md). Tokenization beyond this is explicitly an external
// collaborator per spec.md §1; this package exists only so the CLI and
// tests have one concrete, working reader to call.
package format

import (
	"strconv"
	"strings"

	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/mblerr"
)

// Split tokenizes line into its raw field strings under f, returning a
// SchemaError if the line can't be tokenized at all (e.g. a Compact line
// whose length is not a multiple of flength).
func Split(f mblconfig.InputFormat, flength int, line string) ([]string, error) {
	switch f {
	case mblconfig.FormatTabbed:
		return strings.Split(line, "\t"), nil
	case mblconfig.FormatARFF:
		if strings.HasPrefix(strings.TrimSpace(line), "@") {
			return nil, nil // header line, caller skips
		}
		return splitCSV(line), nil
	case mblconfig.FormatCompact:
		return splitCompact(line, flength)
	case mblconfig.FormatSparse, mblconfig.FormatSparseBin:
		return splitSparseTokens(line), nil
	case mblconfig.FormatC45:
		// Non-goal per SPEC_FULL.md §4.8: falls back to Columns; no warning
		// is emitted.
		fallthrough
	case mblconfig.FormatColumns, mblconfig.FormatAuto:
		return strings.Fields(line), nil
	default:
		return strings.Fields(line), nil
	}
}

func splitCSV(line string) []string {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func splitCompact(line string, flength int) ([]string, error) {
	if flength <= 0 {
		return nil, &mblerr.SchemaError{Msg: "FLENGTH must be set for Compact format"}
	}
	if len(line)%flength != 0 {
		return nil, &mblerr.SchemaError{Msg: "line length not a multiple of FLENGTH"}
	}
	n := len(line) / flength
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = strings.TrimSpace(line[i*flength : (i+1)*flength])
	}
	return out, nil
}

// splitSparseTokens splits a sparse line "(idx val) (idx val) ... target"
// into raw whitespace tokens; ExpandSparse below interprets them.
func splitSparseTokens(line string) []string {
	line = strings.NewReplacer("(", " ", ")", " ").Replace(line)
	return strings.Fields(line)
}

// ExpandSparse turns sparse (index, value) pairs plus a trailing target into
// a full nFeatures-wide field slice, filling unmentioned positions with
// defaultValue, per §4.8.
func ExpandSparse(tokens []string, nFeatures int, defaultValue string) ([]string, error) {
	if len(tokens) < 1 {
		return nil, &mblerr.SchemaError{Msg: "empty sparse line"}
	}
	target := tokens[len(tokens)-1]
	pairs := tokens[:len(tokens)-1]
	if len(pairs)%2 != 0 {
		return nil, &mblerr.SchemaError{Msg: "sparse line has an unmatched (index value) pair"}
	}

	out := make([]string, nFeatures)
	for i := range out {
		out[i] = defaultValue
	}
	for i := 0; i < len(pairs); i += 2 {
		idx, err := strconv.Atoi(pairs[i])
		if err != nil || idx < 0 || idx >= nFeatures {
			return nil, &mblerr.SchemaError{Msg: "sparse index out of range: " + pairs[i]}
		}
		out[idx] = pairs[i+1]
	}
	return append(out, target), nil
}
