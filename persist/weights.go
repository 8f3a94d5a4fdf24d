// Package persist reads and writes the on-disk representations of §6: the
// per-feature weight file and the full instance-base file. Both are line
// oriented text formats, read with bufio.Scanner and written with
// fmt.Fprintf, matching the plain-text reporting idiom of the rest of this
// codebase rather than a binary encoding -- the instance-base file is meant
// to be inspected and hand-edited, the way the teacher's own -oc/report
// output is.
package persist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/mblerr"
)

// WriteWeights writes one "<feature_index>\t<weight>" line per feature, in
// index order. A feature whose Ignored flag is set writes "Ignore" instead
// of a numeric weight (§6).
func WriteWeights(w io.Writer, features []*feature.Feature) error {
	bw := bufio.NewWriter(w)
	for _, f := range features {
		if f.Ignored {
			if _, err := fmt.Fprintf(bw, "%d\tIgnore\n", f.Index); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(bw, "%d\t%v\n", f.Index, f.Weight); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadWeights parses a weight file, returning {feature index: weight}. A
// "#"-prefixed line is a comment; "Ignore" as the value marks that feature
// ignored by the caller.
func ReadWeights(r io.Reader) (weights map[int]float64, ignore map[int]bool, err error) {
	weights = make(map[int]float64)
	ignore = make(map[int]bool)

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, nil, &mblerr.SerialError{Msg: fmt.Sprintf("weight file line %d: expected 2 fields, got %d", lineNo, len(fields))}
		}
		idx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, nil, &mblerr.SerialError{Msg: fmt.Sprintf("weight file line %d: bad feature index %q", lineNo, fields[0])}
		}
		if strings.EqualFold(fields[1], "Ignore") {
			ignore[idx] = true
			continue
		}
		v, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, nil, &mblerr.SerialError{Msg: fmt.Sprintf("weight file line %d: bad weight %q", lineNo, fields[1])}
		}
		weights[idx] = v
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	return weights, ignore, nil
}
