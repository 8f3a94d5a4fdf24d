package persist

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/hashing"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/mblerr"
)

// MinVersion is the oldest instance-base file format this package accepts;
// the header fields below (Permutation, Numeric, Ranges, Bin_Size) did not
// exist before it (§6 "reject version < 4").
const MinVersion = 4

// CurrentVersion is written by WriteInstanceBase. Bumped to 7 when the
// Features section (per-value frequency and class distribution) was added.
const CurrentVersion = 7

// Header carries everything outside the trie body of an instance-base file.
type Header struct {
	Version     int
	Algorithm   instancebase.Algorithm
	Persistent  bool
	Hashed      bool
	Permutation []int
	Numeric     map[int]bool
	Min, Max    map[int]float64
	BinSize     int
}

// WriteInstanceBase serialises hdr, lex, targets, features and ib as a §6
// instance-base file. In hashed mode the lexicon string table is omitted and
// leaves carry bare numeric IDs only, matching HASHED_TREE's smaller,
// non-human-readable form; in textual mode every interned string is written
// so the file is self-contained. Each feature's value table (per-value
// frequency and class distribution) is always written, in both modes,
// because the storable metrics (ValueDiff, Jeffrey, JensenShannon,
// Levenshtein, Dice) need it to reproduce their training-time distances
// after a load (§4.2, invariant #8).
func WriteInstanceBase(w io.Writer, hdr Header, lex *hashing.Lexicon, targets *feature.Targets, features []*feature.Feature, ib *instancebase.InstanceBase) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "Version: %d\n", CurrentVersion)
	fmt.Fprintf(bw, "Algorithm: %s\n", algorithmName(hdr.Algorithm))
	fmt.Fprintf(bw, "KeepDistributions: %v\n", hdr.Persistent)
	fmt.Fprintf(bw, "Hashed: %v\n", hdr.Hashed)
	fmt.Fprintf(bw, "Bin_Size: %d\n", hdr.BinSize)

	fmt.Fprintf(bw, "Permutation:")
	for _, p := range hdr.Permutation {
		fmt.Fprintf(bw, " %d", p)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Numeric:")
	for idx := range hdr.Numeric {
		fmt.Fprintf(bw, " %d", idx)
	}
	fmt.Fprintln(bw)

	fmt.Fprintf(bw, "Ranges:")
	for idx := range hdr.Numeric {
		fmt.Fprintf(bw, " %d %v %v", idx, hdr.Min[idx], hdr.Max[idx])
	}
	fmt.Fprintln(bw)

	if !hdr.Hashed {
		fmt.Fprintf(bw, "Lexicon: %d\n", lex.Len())
		for id := 0; id < lex.Len(); id++ {
			fmt.Fprintf(bw, "%d\t%s\n", id, lex.String(hashing.ID(id)))
		}
	}

	all := targets.All()
	fmt.Fprintf(bw, "Targets: %d\n", len(all))
	for _, tv := range all {
		fmt.Fprintf(bw, "%d\t%s\t%d\n", tv.ID(), tv.Name(), tv.Freq())
	}

	fmt.Fprintf(bw, "Features: %d\n", len(features))
	for _, f := range features {
		writeFeature(bw, f)
	}

	fmt.Fprintln(bw, "Instancebase:")
	writeNode(bw, ib, ib.Root())
	fmt.Fprintln(bw)

	return bw.Flush()
}

func algorithmName(a instancebase.Algorithm) string {
	switch a {
	case instancebase.IB1:
		return "IB1"
	case instancebase.IGTree:
		return "IGTree"
	case instancebase.Tribl:
		return "TRIBL"
	case instancebase.Tribl2:
		return "TRIBL2"
	default:
		return "IB1"
	}
}

func parseAlgorithmName(s string) instancebase.Algorithm {
	switch strings.ToUpper(s) {
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

// writeNode prints "(default hasDef samples leaf [dist] fv (child) fv (child)...)"
// recursively, a direct text rendering of the arena Node.
func writeNode(bw *bufio.Writer, ib *instancebase.InstanceBase, id instancebase.NodeID) {
	n := ib.Node(id)
	def, hasDef := ib.Default(id)

	fmt.Fprintf(bw, "(%d %v %d %v [", def, hasDef, n.Samples, n.Leaf)
	writeDist(bw, n.Dist)
	fmt.Fprint(bw, "]")

	for _, fv := range ib.SortedChildren(id) {
		child, _ := ib.Child(id, fv)
		fmt.Fprintf(bw, " %d ", fv)
		writeNode(bw, ib, child)
	}
	fmt.Fprint(bw, ")")
}

// writeFeature prints "Feature: index metric numValues" followed by one line
// per interned value: "id  str  num  isNum  freq  [dist]", so a loaded
// Feature can reproduce Value.ClassFreqs() exactly (§4.2).
func writeFeature(bw *bufio.Writer, f *feature.Feature) {
	values := f.Values()
	fmt.Fprintf(bw, "Feature: %d\t%d\t%d\n", f.Index, int(f.Metric), len(values))
	for _, v := range values {
		fmt.Fprintf(bw, "%d\t%s\t%v\t%v\t%d\t", v.ID(), v.String(), v.Numeric(), f.Metric.IsNumeric(), v.Freq())
		writeDist(bw, v.Dist)
		fmt.Fprintln(bw)
	}
}

// writeDist prints a ClassDistribution as "t:f,t:f,...", the same shape
// writeNode uses for trie-node distributions.
func writeDist(bw *bufio.Writer, dist *feature.ClassDistribution) {
	if dist == nil {
		return
	}
	targets := dist.Targets()
	sortTargets(targets)
	for i, t := range targets {
		if i > 0 {
			fmt.Fprint(bw, ",")
		}
		fmt.Fprintf(bw, "%d:%d", t, dist.Freq(t))
	}
}

func sortTargets(ids []hashing.ID) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j] < ids[j-1]; j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// ReadInstanceBase parses a §6 instance-base file written by
// WriteInstanceBase. It rejects any file whose Version is below MinVersion
// (§6 "reject version < 4"). The returned features carry each value's
// restored frequency and ClassDistribution, so a loaded Experiment can
// compute the same storable-metric (ValueDiff/Jeffrey/JensenShannon/
// Levenshtein/Dice) distances it would have at training time.
func ReadInstanceBase(r io.Reader) (Header, *hashing.Lexicon, *feature.Targets, []*feature.Feature, *instancebase.InstanceBase, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 64*1024*1024)

	hdr := Header{Numeric: make(map[int]bool), Min: make(map[int]float64), Max: make(map[int]float64)}
	lex := hashing.NewLexicon()
	targets := feature.NewTargets(lex)

	line, ok := nextLine(sc)
	if !ok {
		return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "empty instance-base file"}
	}
	v, err := headerInt(line, "Version")
	if err != nil {
		return hdr, nil, nil, nil, nil, err
	}
	hdr.Version = v
	if hdr.Version < MinVersion {
		return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: fmt.Sprintf("instance-base version %d is older than the minimum supported version %d", hdr.Version, MinVersion)}
	}

	line, _ = nextLine(sc)
	hdr.Algorithm = parseAlgorithmName(headerValue(line, "Algorithm"))

	line, _ = nextLine(sc)
	hdr.Persistent = headerValue(line, "KeepDistributions") == "true"

	line, _ = nextLine(sc)
	hdr.Hashed = headerValue(line, "Hashed") == "true"

	line, _ = nextLine(sc)
	if n, err := headerInt(line, "Bin_Size"); err == nil {
		hdr.BinSize = n
	}

	line, _ = nextLine(sc)
	for _, tok := range strings.Fields(headerValue(line, "Permutation")) {
		n, _ := strconv.Atoi(tok)
		hdr.Permutation = append(hdr.Permutation, n)
	}

	line, _ = nextLine(sc)
	for _, tok := range strings.Fields(headerValue(line, "Numeric")) {
		n, _ := strconv.Atoi(tok)
		hdr.Numeric[n] = true
	}

	line, _ = nextLine(sc)
	rangeFields := strings.Fields(headerValue(line, "Ranges"))
	for i := 0; i+2 < len(rangeFields); i += 3 {
		idx, _ := strconv.Atoi(rangeFields[i])
		mn, _ := strconv.ParseFloat(rangeFields[i+1], 64)
		mx, _ := strconv.ParseFloat(rangeFields[i+2], 64)
		hdr.Min[idx], hdr.Max[idx] = mn, mx
	}

	if !hdr.Hashed {
		line, _ = nextLine(sc)
		n, err := headerInt(line, "Lexicon")
		if err != nil {
			return hdr, nil, nil, nil, nil, err
		}
		for i := 0; i < n; i++ {
			l, ok := nextLine(sc)
			if !ok {
				return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "truncated lexicon section"}
			}
			parts := strings.SplitN(l, "\t", 2)
			if len(parts) != 2 {
				return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "malformed lexicon line: " + l}
			}
			lex.Intern(parts[1])
		}
	}

	line, _ = nextLine(sc)
	nt, err := headerInt(line, "Targets")
	if err != nil {
		return hdr, nil, nil, nil, nil, err
	}
	for i := 0; i < nt; i++ {
		l, ok := nextLine(sc)
		if !ok {
			return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "truncated targets section"}
		}
		parts := strings.SplitN(l, "\t", 3)
		if len(parts) != 3 {
			return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "malformed target line: " + l}
		}
		freq, _ := strconv.Atoi(parts[2])
		tv := targets.Intern(parts[1])
		targets.SetFreq(tv.ID(), freq)
	}

	line, _ = nextLine(sc)
	nf, err := headerInt(line, "Features")
	if err != nil {
		return hdr, nil, nil, nil, nil, err
	}
	features := make([]*feature.Feature, nf)
	for i := 0; i < nf; i++ {
		f, err := readFeature(sc, lex)
		if err != nil {
			return hdr, nil, nil, nil, nil, err
		}
		if f.Index < 0 || f.Index >= nf {
			return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: fmt.Sprintf("feature index %d out of range [0,%d)", f.Index, nf)}
		}
		features[f.Index] = f
	}

	if _, ok = nextLine(sc); !ok {
		return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "missing Instancebase: marker"}
	}

	bodyLine, ok := nextLine(sc)
	if !ok {
		return hdr, nil, nil, nil, nil, &mblerr.SerialError{Msg: "missing trie body"}
	}

	ib := instancebase.New(hdr.Algorithm, hdr.Permutation, hdr.Persistent, 0)
	p := &parser{s: bodyLine}
	if err := p.parseNode(ib, ib.Root()); err != nil {
		return hdr, nil, nil, nil, nil, err
	}

	return hdr, lex, targets, features, ib, sc.Err()
}

// readFeature parses one "Feature: index metric numValues" header line plus
// its numValues value lines, rebuilding the Feature's value table exactly
// (§4.2, invariant #8).
func readFeature(sc *bufio.Scanner, lex *hashing.Lexicon) (*feature.Feature, error) {
	line, ok := nextLine(sc)
	if !ok {
		return nil, &mblerr.SerialError{Msg: "truncated features section"}
	}
	fields := strings.Fields(headerValue(line, "Feature"))
	if len(fields) != 3 {
		return nil, &mblerr.SerialError{Msg: "malformed Feature line: " + line}
	}
	idx, err1 := strconv.Atoi(fields[0])
	metricInt, err2 := strconv.Atoi(fields[1])
	numValues, err3 := strconv.Atoi(fields[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, &mblerr.SerialError{Msg: "malformed Feature line: " + line}
	}

	f := feature.NewFeature(idx, "", lex)
	f.Metric = feature.MetricType(metricInt)

	for i := 0; i < numValues; i++ {
		l, ok := nextLine(sc)
		if !ok {
			return nil, &mblerr.SerialError{Msg: "truncated feature value table"}
		}
		parts := strings.SplitN(l, "\t", 6)
		if len(parts) != 6 {
			return nil, &mblerr.SerialError{Msg: "malformed feature value line: " + l}
		}
		id, errID := strconv.Atoi(parts[0])
		num, errNum := strconv.ParseFloat(parts[2], 64)
		freq, errFreq := strconv.Atoi(parts[4])
		if errID != nil || errNum != nil || errFreq != nil {
			return nil, &mblerr.SerialError{Msg: "malformed feature value line: " + l}
		}
		isNum := parts[3] == "true"

		f.Intern(hashing.ID(id), parts[1], num, isNum)
		dist := feature.NewClassDistribution()
		for _, pair := range strings.Split(parts[5], ",") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			t, _ := strconv.Atoi(kv[0])
			fq, _ := strconv.Atoi(kv[1])
			dist.AddN(hashing.ID(t), fq)
		}
		f.Restore(hashing.ID(id), freq, dist)
	}
	f.ClearStale()
	return f, nil
}

func nextLine(sc *bufio.Scanner) (string, bool) {
	if !sc.Scan() {
		return "", false
	}
	return sc.Text(), true
}

func headerValue(line, key string) string {
	prefix := key + ":"
	if !strings.HasPrefix(line, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix))
}

func headerInt(line, key string) (int, error) {
	v := headerValue(line, key)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &mblerr.SerialError{Msg: fmt.Sprintf("expected %s: <int>, got %q", key, line)}
	}
	return n, nil
}

// parser walks the "( ... )" trie body text with a simple recursive-descent
// reader over an in-memory string, matching the shape written by writeNode.
type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t') {
		p.pos++
	}
}

func (p *parser) token() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ' ' && p.s[p.pos] != '(' && p.s[p.pos] != ')' && p.s[p.pos] != '[' {
		p.pos++
	}
	return p.s[start:p.pos]
}

func (p *parser) expect(b byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != b {
		return &mblerr.SerialError{Msg: fmt.Sprintf("instance-base body: expected %q at offset %d", b, p.pos)}
	}
	p.pos++
	return nil
}

// parseNode consumes one "(default hasDef samples leaf [dist] children...)"
// group and installs it at id.
func (p *parser) parseNode(ib *instancebase.InstanceBase, id instancebase.NodeID) error {
	if err := p.expect('('); err != nil {
		return err
	}

	defTok := p.token()
	def, _ := strconv.Atoi(defTok)
	hasDefTok := p.token()
	samplesTok := p.token()
	samples, _ := strconv.Atoi(samplesTok)
	leafTok := p.token()
	leaf := leafTok == "true"

	if err := p.expect('['); err != nil {
		return err
	}
	distStart := p.pos
	for p.pos < len(p.s) && p.s[p.pos] != ']' {
		p.pos++
	}
	distBody := p.s[distStart:p.pos]
	if err := p.expect(']'); err != nil {
		return err
	}

	var dist *feature.ClassDistribution
	if distBody != "" {
		dist = feature.NewClassDistribution()
		for _, pair := range strings.Split(distBody, ",") {
			kv := strings.SplitN(pair, ":", 2)
			if len(kv) != 2 {
				continue
			}
			t, _ := strconv.Atoi(kv[0])
			f, _ := strconv.Atoi(kv[1])
			dist.AddN(hashing.ID(t), f)
		}
	}
	ib.SetNode(id, leaf, hashing.ID(def), hasDefTok == "true", samples, dist)

	for {
		p.skipSpace()
		if p.pos >= len(p.s) || p.s[p.pos] == ')' {
			break
		}
		fvTok := p.token()
		fv, err := strconv.Atoi(fvTok)
		if err != nil {
			return &mblerr.SerialError{Msg: "instance-base body: bad child feature value " + fvTok}
		}
		child := ib.NewChild(id, hashing.ID(fv))
		if err := p.parseNode(ib, child); err != nil {
			return err
		}
	}

	return p.expect(')')
}
