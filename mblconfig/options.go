// Package mblconfig holds the engine's configuration surface: the `KEY:
// value` option setter of §6 and the Learning -> Ready -> Testing state
// machine of §5 that freezes it.
package mblconfig

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wlattner/mbl/stats"
)

// InputFormat names an INPUTFORMAT tag.
type InputFormat int

const (
	FormatAuto InputFormat = iota
	FormatC45
	FormatColumns
	FormatTabbed
	FormatARFF
	FormatCompact
	FormatSparse
	FormatSparseBin
)

// State is the Learning -> Ready -> Testing state machine (§5).
type State int

const (
	StateLearning State = iota
	StateReady
	StateTesting
)

// Options is the full, mutable-until-frozen configuration surface. New
// returns it populated with the documented default for every field; the
// zero value does not carry those defaults.
type Options struct {
	InputFormat InputFormat
	FLength     int
	TargetPos   int // -1 means "last"

	Algorithm     AlgorithmTag
	GlobalMetric  MetricTag
	PerFeature    map[int]MetricTag // METRICS overrides

	Weighting  stats.Weighting
	TreeOrder  stats.OrderCriterion

	Neighbors int

	Decay        DecayTag
	DecayParamA  float64
	DecayParamB  float64

	Normalization   NormTag
	NormFactor      float64
	BeamSize        int

	MaxBests  int
	BinSize   int
	MVDLimit  int
	TriblOffset int
	IGThreshold int
	IB2Offset   int

	Seed               int64
	KeepDistributions  bool
	ExactMatch         bool
	HashedTree         bool
	Progress           int
	ClipFactor         int

	Verbosity map[Verbosity]bool

	state State
}

// MetricTag, DecayTag, NormTag mirror the feature.MetricType/vote.Decay/
// vote.Normalization enums as string-keyed config tags so this package
// doesn't need to import feature/vote just to parse option strings; the
// experiment package (C9), which does import both, maps these to the real
// enums when it freezes Options.
type MetricTag string
type DecayTag string
type NormTag string

// AlgorithmTag names one of the four instance-base variants (§4.3).
type AlgorithmTag string

// Verbosity enumerates the verbosity flags of §6.
type Verbosity int

const (
	VSilent Verbosity = iota
	VOptions
	VFeatureW
	VVDMatrix
	VExact
	VDistance
	VDistribution
	VNearN
	VConfMatrix
	VConfidence
	VMatchDepth
)

// New returns Options populated with every documented default.
func New() *Options {
	return &Options{
		TargetPos:   -1,
		Algorithm:   "IB1",
		GlobalMetric: "Overlap",
		PerFeature:  make(map[int]MetricTag),
		Weighting:   stats.WeightGainRatio,
		TreeOrder:   stats.OrderGainRatio,
		Neighbors:   1,
		Decay:       "Zero",
		Normalization: "None",
		NormFactor:  1,
		MaxBests:    500,
		BinSize:     stats.DefaultBinSize,
		MVDLimit:    1,
		Seed:        -1,
		ClipFactor:  10,
		Verbosity:   make(map[Verbosity]bool),
		state:       StateLearning,
	}
}

// State returns the current phase.
func (o *Options) State() State { return o.state }

// Freeze transitions Learning -> Ready, after which Set returns a
// StateError (§9 "freeze = transition the experiment state machine").
func (o *Options) Freeze() { o.state = StateReady }

// BeginTesting transitions Ready -> Testing; EndTesting returns to Ready
// (§5 "Testing transitions back to Ready on completion").
func (o *Options) BeginTesting() error {
	if o.state != StateReady {
		return &StateError{Op: "classify", Phase: o.state}
	}
	o.state = StateTesting
	return nil
}

func (o *Options) EndTesting() { o.state = StateReady }

// Set applies one `KEY: value` option (§6). It returns ConfigError for an
// unknown key or invalid value.
func (o *Options) Set(key, value string) error {
	if o.state != StateLearning {
		return &StateError{Op: "set " + key, Phase: o.state}
	}

	key = strings.ToUpper(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	switch key {
	case "ALGORITHM":
		o.Algorithm = AlgorithmTag(value)
	case "INPUTFORMAT":
		f, err := parseInputFormat(value)
		if err != nil {
			return err
		}
		o.InputFormat = f
	case "FLENGTH":
		return setInt(value, &o.FLength, key)
	case "TARGET_POS":
		return setInt(value, &o.TargetPos, key)
	case "GLOBAL_METRIC":
		o.GlobalMetric = MetricTag(value)
	case "METRICS":
		return o.setPerFeatureMetrics(value)
	case "WEIGHTING":
		w, err := parseWeighting(value)
		if err != nil {
			return err
		}
		o.Weighting = w
	case "TREE_ORDER":
		ord, err := parseOrder(value)
		if err != nil {
			return err
		}
		o.TreeOrder = ord
	case "NEIGHBORS":
		return setInt(value, &o.Neighbors, key)
	case "DECAY":
		o.Decay = DecayTag(value)
	case "DECAYPARAM_A":
		return setFloat(value, &o.DecayParamA, key)
	case "DECAYPARAM_B":
		return setFloat(value, &o.DecayParamB, key)
	case "NORMALISATION", "NORMALIZATION":
		o.Normalization = NormTag(value)
	case "NORM_FACTOR":
		return setFloat(value, &o.NormFactor, key)
	case "BEAM_SIZE":
		return setInt(value, &o.BeamSize, key)
	case "MAXBESTS":
		return setInt(value, &o.MaxBests, key)
	case "BIN_SIZE":
		return setInt(value, &o.BinSize, key)
	case "MVD_LIMIT":
		return setInt(value, &o.MVDLimit, key)
	case "TRIBL_OFFSET":
		return setInt(value, &o.TriblOffset, key)
	case "IG_THRESHOLD":
		return setInt(value, &o.IGThreshold, key)
	case "IB2_OFFSET":
		return setInt(value, &o.IB2Offset, key)
	case "SEED":
		var s int
		if err := setInt(value, &s, key); err != nil {
			return err
		}
		o.Seed = int64(s)
	case "KEEP_DISTRIBUTIONS":
		return setBool(value, &o.KeepDistributions, key)
	case "EXACT_MATCH":
		return setBool(value, &o.ExactMatch, key)
	case "HASHED_TREE":
		return setBool(value, &o.HashedTree, key)
	case "PROGRESS":
		return setInt(value, &o.Progress, key)
	case "CLIP_FACTOR":
		return setInt(value, &o.ClipFactor, key)
	default:
		if v, ok := parseVerbosity(key); ok {
			o.Verbosity[v] = parseVerbosityValue(value)
			return nil
		}
		return &ConfigError{Key: key, Msg: "unknown option"}
	}
	return nil
}

// Load reads one `KEY: value` pair per line from r, `#` starts a comment,
// blank lines are skipped; an ambient CLI convenience not in the core spec
// (see SPEC_FULL.md §6).
func (o *Options) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		i := strings.Index(line, ":")
		if i < 0 {
			return &ConfigError{Key: line, Msg: "expected KEY: value"}
		}
		if err := o.Set(line[:i], line[i+1:]); err != nil {
			return err
		}
	}
	return sc.Err()
}

func setInt(value string, dst *int, key string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return &ConfigError{Key: key, Msg: fmt.Sprintf("not an integer: %q", value)}
	}
	*dst = n
	return nil
}

func setFloat(value string, dst *float64, key string) error {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return &ConfigError{Key: key, Msg: fmt.Sprintf("not a number: %q", value)}
	}
	*dst = n
	return nil
}

func setBool(value string, dst *bool, key string) error {
	switch strings.ToLower(value) {
	case "true", "yes", "1", "on":
		*dst = true
	case "false", "no", "0", "off", "":
		*dst = false
	default:
		return &ConfigError{Key: key, Msg: fmt.Sprintf("not a bool: %q", value)}
	}
	return nil
}

func (o *Options) setPerFeatureMetrics(value string) error {
	// i=metric, j=metric, ...
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			return &ConfigError{Key: "METRICS", Msg: fmt.Sprintf("malformed entry %q", pair)}
		}
		idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return &ConfigError{Key: "METRICS", Msg: fmt.Sprintf("bad feature index %q", parts[0])}
		}
		o.PerFeature[idx] = MetricTag(strings.TrimSpace(parts[1]))
	}
	return nil
}

func parseInputFormat(v string) (InputFormat, error) {
	switch strings.ToUpper(v) {
	case "C4.5", "C45":
		return FormatC45, nil
	case "COLUMNS":
		return FormatColumns, nil
	case "TABBED":
		return FormatTabbed, nil
	case "ARFF":
		return FormatARFF, nil
	case "COMPACT":
		return FormatCompact, nil
	case "SPARSE":
		return FormatSparse, nil
	case "SPARSEBIN":
		return FormatSparseBin, nil
	default:
		return FormatAuto, &ConfigError{Key: "INPUTFORMAT", Msg: fmt.Sprintf("unknown format %q", v)}
	}
}

func parseWeighting(v string) (stats.Weighting, error) {
	switch strings.ToUpper(v) {
	case "NO", "NONE":
		return stats.WeightNone, nil
	case "GR":
		return stats.WeightGainRatio, nil
	case "IG":
		return stats.WeightInfoGain, nil
	case "CHI2", "CHISQUARE":
		return stats.WeightChi2, nil
	case "SV":
		return stats.WeightSharedVariance, nil
	case "SD":
		return stats.WeightStdDev, nil
	case "USERDEFINED":
		return stats.WeightUserDefined, nil
	default:
		return 0, &ConfigError{Key: "WEIGHTING", Msg: fmt.Sprintf("unknown weighting %q", v)}
	}
}

func parseOrder(v string) (stats.OrderCriterion, error) {
	switch strings.ToUpper(v) {
	case "DATAFILE":
		return stats.OrderDataFile, nil
	case "NOORDER":
		return stats.OrderNone, nil
	case "IG":
		return stats.OrderInfoGain, nil
	case "GR":
		return stats.OrderGainRatio, nil
	case "IGSPLIT":
		return stats.OrderInfoGainSplit, nil
	case "GRSPLIT":
		return stats.OrderGainRatioSplit, nil
	case "CHI2":
		return stats.OrderChi2, nil
	case "SV":
		return stats.OrderSharedVariance, nil
	case "SD":
		return stats.OrderStdDev, nil
	case "1/V":
		return stats.OrderInvValueCount, nil
	default:
		return 0, &ConfigError{Key: "TREE_ORDER", Msg: fmt.Sprintf("unknown order %q", v)}
	}
}

func parseVerbosity(key string) (Verbosity, bool) {
	m := map[string]Verbosity{
		"SILENT": VSilent, "OPTIONS": VOptions, "FEATUREW": VFeatureW,
		"VDMATRIX": VVDMatrix, "EXACT": VExact, "DISTANCE": VDistance,
		"DISTRIBUTION": VDistribution, "NEARN": VNearN, "CONFMATRIX": VConfMatrix,
		"CONFIDENCE": VConfidence, "MATCHDEPTH": VMatchDepth,
	}
	v, ok := m[key]
	return v, ok
}

func parseVerbosityValue(v string) bool {
	switch strings.ToLower(v) {
	case "false", "no", "0", "off":
		return false
	default:
		return true
	}
}
