package experiment

import (
	"time"

	"github.com/google/uuid"

	"github.com/wlattner/mbl/bestk"
	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/format"
	"github.com/wlattner/mbl/hashing"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/mblerr"
	"github.com/wlattner/mbl/telemetry"
	"github.com/wlattner/mbl/tester"
	"github.com/wlattner/mbl/vote"
)

// Clone returns a shallow copy of e suitable for a single concurrent
// classify worker: the lexicon, feature/target registries, trie and matrix
// cache stay shared and read-only; only voteSpec's RNG seed is made private,
// offset by workerIndex (§5 "each clone seeds from the configured seed plus
// its worker index").
func (e *Experiment) Clone(workerIndex int) *Experiment {
	c := *e
	spec := e.voteSpec
	if spec.Seed >= 0 {
		spec.Seed += int64(workerIndex)
	}
	c.voteSpec = spec
	return &c
}

// resolveValues parses one already-tokenized, target-stripped field set
// into feature.Value references (original feature order), UnknownValue for
// anything absent from the training lexicon.
func (e *Experiment) resolveValues(fields []string) []*feature.Value {
	values := make([]*feature.Value, len(e.Features))
	for i, raw := range fields {
		f := e.Features[i]
		id, ok := e.Lex.Lookup(raw)
		if !ok {
			values[i] = feature.UnknownValue
			continue
		}
		v, ok := f.Lookup(id)
		if !ok {
			values[i] = feature.UnknownValue
			continue
		}
		values[i] = v
	}
	return values
}

// Classify tokenizes line, resolves it against the trained instance base
// and returns the predicted class (§6 "Classify API"). e must be in
// StateReady or StateTesting (BeginTesting/EndTesting bracket a batch).
func (e *Experiment) Classify(line string) (Result, error) {
	if e.Opt.State() == mblconfig.StateLearning {
		return Result{}, &mblconfig.StateError{Op: "classify", Phase: e.Opt.State()}
	}

	fields, err := format.Split(e.Opt.InputFormat, e.Opt.FLength, line)
	if err != nil {
		return Result{}, err
	}
	if fields == nil {
		return Result{}, &mblerr.SchemaError{Msg: "no classifiable fields on this line"}
	}

	// A classify-time line carries only feature fields (no target column);
	// any target position stripping already happened in Learn's training
	// file, so Classify's schema check is a plain feature-count match.
	if len(fields) != len(e.Features) {
		return Result{}, &mblerr.SchemaError{Msg: "wrong number of fields"}
	}

	values := e.resolveValues(fields)
	q := tester.Query{Values: values}

	exactMatch := e.Opt.ExactMatch && !e.Opt.Verbosity[mblconfig.VNearN]

	best := bestk.New(e.Opt.Neighbors, e.Opt.MaxBests)

	if exactMatch {
		ids := make([]hashing.ID, len(values))
		for i, v := range values {
			ids[i] = v.ID()
		}
		if dist, ok := e.IB.ExactMatch(ids); ok {
			tester.ExactMatchDistance(best, dist)
			return e.finish(best)
		}
	}

	t := &tester.Tester{IB: e.IB, Features: e.Features, MVDLimit: e.Opt.MVDLimit}
	t.Search(q, e.IB.Root(), 0, best)

	return e.finish(best)
}

func (e *Experiment) finish(best *bestk.BestArray) (Result, error) {
	ns := bestk.InitNeighborSet(best)
	spec := e.voteSpec
	res := vote.Vote(ns, &spec, e.Targets.Freq)

	tv, _ := e.Targets.Lookup(res.Best)
	out := Result{Confidence: res.Confidence}
	if tv != nil {
		out.Class = tv.Name()
	}
	if e.Opt.Verbosity[mblconfig.VNearN] {
		for _, n := range ns.Neighbors {
			out.Distances = append(out.Distances, n.Distance)
		}
	}
	telemetry.RowsClassified.WithLabelValues(algorithmLabel(e.IB.Algorithm)).Inc()
	return out, nil
}

func algorithmLabel(a instancebase.Algorithm) string {
	switch a {
	case instancebase.IGTree:
		return "igtree"
	case instancebase.Tribl:
		return "tribl"
	case instancebase.Tribl2:
		return "tribl2"
	default:
		return "ib1"
	}
}

// ClassifyBatch classifies every line in lines concurrently across nWorkers
// clones, using the same bounded channel worker pool shape as the teacher's
// forest.Fit (in/out channels, a feeder goroutine, a draining loop here).
// Each worker carries a uuid.New()-derived identity purely for tracing
// (telemetry logs can tag a line with which worker classified it); the RNG
// seed offset itself is the plain loop index, which is what actually has to
// stay distinct and reproducible run to run.
func (e *Experiment) ClassifyBatch(lines []string, nWorkers int) ([]Result, error) {
	if err := e.Opt.BeginTesting(); err != nil {
		return nil, err
	}
	defer e.Opt.EndTesting()

	start := time.Now()
	defer func() { telemetry.ClassifyDuration.Observe(time.Since(start).Seconds()) }()

	if nWorkers < 1 {
		nWorkers = 1
	}

	type job struct {
		idx  int
		line string
	}
	type outcome struct {
		idx int
		res Result
		err error
	}

	in := make(chan job)
	out := make(chan outcome)

	for w := 0; w < nWorkers; w++ {
		clone := e.Clone(w)
		workerID := uuid.New()
		go func(c *Experiment, id uuid.UUID) {
			for j := range in {
				r, err := c.Classify(j.line)
				if err != nil {
					telemetry.RowsSkipped.WithLabelValues(err.Error()).Inc()
				}
				out <- outcome{idx: j.idx, res: r, err: err}
			}
			_ = id // worker identity, surfaced through logging at the cmd/mbl layer
		}(clone, workerID)
	}

	go func() {
		for i, line := range lines {
			in <- job{idx: i, line: line}
		}
		close(in)
	}()

	results := make([]Result, len(lines))
	var firstErr error
	for range lines {
		o := <-out
		if o.err != nil && firstErr == nil {
			firstErr = o.err
		}
		results[o.idx] = o.res
	}

	return results, firstErr
}
