// Package experiment implements the driver of C9: it owns C1-C8 end to end
// through the examine -> prepare -> learn -> classify lifecycle, and exposes
// the Classify/ClassifyBatch API a caller actually needs. Configuration is
// taken from a *mblconfig.Options passed to New.
package experiment

import (
	"strconv"

	"github.com/wlattner/mbl/feature"
	"github.com/wlattner/mbl/format"
	"github.com/wlattner/mbl/hashing"
	"github.com/wlattner/mbl/instancebase"
	"github.com/wlattner/mbl/mblconfig"
	"github.com/wlattner/mbl/mblerr"
	"github.com/wlattner/mbl/stats"
	"github.com/wlattner/mbl/tester"
	"github.com/wlattner/mbl/telemetry"
	"github.com/wlattner/mbl/vote"
)

// Result is one classification outcome (§6 "Classify API").
type Result struct {
	Class      string
	Confidence float64
	Distances  []float64 // NearN verbosity support; empty unless requested
}

// Experiment is the top-level handle: it owns the lexicon, feature/target
// registries, the trie and the derived vote.Spec, and walks the Learning ->
// Ready -> Testing state machine in lockstep with its Options.
type Experiment struct {
	Opt      *mblconfig.Options
	Lex      *hashing.Lexicon
	Features []*feature.Feature
	Targets  *feature.Targets
	IB       *instancebase.InstanceBase

	permutation []int
	voteSpec    vote.Spec
	userWeights map[int]float64
	warnings    []mblerr.Warning
}

// New returns an Experiment driven by opt. opt must still be in
// mblconfig.StateLearning; schema (feature count) is discovered lazily from
// the first line Learn sees.
func New(opt *mblconfig.Options) *Experiment {
	lex := hashing.NewLexicon()
	return &Experiment{
		Opt:     opt,
		Lex:     lex,
		Targets: feature.NewTargets(lex),
	}
}

// Warnings returns every DataWarn collected so far (§7).
func (e *Experiment) Warnings() []mblerr.Warning { return e.warnings }

func (e *Experiment) warn(line int, msg string) {
	w := mblerr.Warning{Line: line, Msg: msg}
	e.warnings = append(e.warnings, w)
	telemetry.RowsSkipped.WithLabelValues(msg).Inc()
}

// ensureFeatures lazily allocates e.Features once the field count of the
// first well-formed row is known.
func (e *Experiment) ensureFeatures(n int) {
	if e.Features != nil {
		return
	}
	e.Features = make([]*feature.Feature, n)
	for i := range e.Features {
		e.Features[i] = feature.NewFeature(i, "", e.Lex)
		e.Features[i].Metric = metricFromTag(string(e.Opt.GlobalMetric))
		if tag, ok := e.Opt.PerFeature[i]; ok {
			e.Features[i].Metric = metricFromTag(string(tag))
		}
	}
}

// targetPosition resolves TARGET_POS (-1 meaning "last") against n fields.
func targetPosition(n, pos int) int {
	if pos < 0 {
		return n - 1
	}
	return pos
}

// Learn tokenizes and interns every line, building the instance base (§4.3
// add). It must be called while Opt is still in StateLearning.
func (e *Experiment) Learn(lines []string) error {
	if e.Opt.State() != mblconfig.StateLearning {
		return &mblconfig.StateError{Op: "learn", Phase: e.Opt.State()}
	}

	type row struct {
		values []hashing.ID
		target hashing.ID
	}
	var rows []row

	for lineNo, line := range lines {
		if line == "" {
			continue
		}
		fields, err := format.Split(e.Opt.InputFormat, e.Opt.FLength, line)
		if err != nil {
			e.warn(lineNo+1, err.Error())
			continue
		}
		if fields == nil {
			continue // header/comment line, e.g. ARFF metadata
		}

		tPos := targetPosition(len(fields), e.Opt.TargetPos)
		if tPos < 0 || tPos >= len(fields) {
			e.warn(lineNo+1, "target position out of range")
			continue
		}

		e.ensureFeatures(len(fields) - 1)
		if len(fields)-1 != len(e.Features) {
			e.warn(lineNo+1, "wrong number of fields")
			continue
		}

		values := make([]hashing.ID, len(e.Features))
		fi := 0
		bad := false
		for i, raw := range fields {
			if i == tPos {
				continue
			}
			f := e.Features[fi]
			if f.Metric.IsNumeric() {
				if !isNumeric(raw) {
					e.warn(lineNo+1, "non-numeric value in numeric feature "+f.Name)
					bad = true
					break
				}
			}
			id := e.Lex.Intern(raw)
			var num float64
			isNum := f.Metric.IsNumeric()
			if isNum {
				num = parseFloatOrZero(raw)
			}
			f.Intern(id, raw, num, isNum)
			values[fi] = id
			fi++
		}
		if bad {
			continue
		}

		tv := e.Targets.Intern(fields[tPos])
		for _, f := range e.Features {
			f.Unhide(values[f.Index], tv.ID())
		}
		rows = append(rows, row{values: values, target: tv.ID()})
		telemetry.RowsLearned.Inc()
	}

	if err := e.computeStatsAndPermutation(); err != nil {
		return err
	}

	alg := algorithmFromOptions(e.Opt)
	ib := instancebase.New(alg, e.permutation, e.Opt.KeepDistributions || alg != instancebase.IB1, e.Opt.TriblOffset)
	for _, r := range rows {
		ib.Add(instancebase.Instance{Values: r.values, Target: r.target, Occurrences: 1})
	}
	if alg == instancebase.IGTree {
		ib.Prune(e.Targets.Freq)
	} else if e.Opt.KeepDistributions {
		ib.AssignDefaults(e.Targets.Freq)
	}
	e.IB = ib

	e.Opt.Freeze()
	return nil
}

func (e *Experiment) computeStatsAndPermutation() error {
	for _, f := range e.Features {
		stats.Compute(f, e.Targets, e.Opt.BinSize)
	}
	if err := stats.ApplyWeighting(e.Features, e.Opt.Weighting, e.userWeights); err != nil {
		return err
	}

	full := stats.Permute(e.Features, e.Opt.TreeOrder)
	eff := stats.NumEffective(e.Features)
	e.permutation = full[:eff]

	e.voteSpec = vote.Spec{
		Decay:         decayFromTag(e.Opt.Decay),
		ExpAlpha:      e.Opt.DecayParamA,
		ExpBeta:       e.Opt.DecayParamB,
		Normalization: normFromTag(e.Opt.Normalization),
		NormFactor:    e.Opt.NormFactor,
		BeamSize:      e.Opt.BeamSize,
		Seed:          e.Opt.Seed,
	}
	return nil
}

// LoadUserWeights installs a weight file parsed by package persist as the
// feature weights used by WeightUserDefined; must be called before Learn.
func (e *Experiment) LoadUserWeights(weights map[int]float64, ignore map[int]bool) {
	e.userWeights = weights
	if e.Features == nil {
		return
	}
	for idx := range ignore {
		if idx < len(e.Features) {
			e.Features[idx].Ignored = true
		}
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func parseFloatOrZero(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
