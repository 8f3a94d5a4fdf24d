// Package telemetry wires the ambient logging and metrics stack: zerolog for
// structured DataWarn/progress output and Prometheus counters/histograms for
// the rows learned/classified and the time spent doing it.
package telemetry

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	RowsLearned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mbl_rows_learned_total",
		Help: "Total number of training instances added to an instance base.",
	})

	RowsClassified = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mbl_rows_classified_total",
		Help: "Total number of rows classified, by algorithm.",
	}, []string{"algorithm"})

	RowsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mbl_rows_skipped_total",
		Help: "Total number of input rows skipped due to a schema warning.",
	}, []string{"reason"})

	LearnDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mbl_learn_duration_seconds",
		Help:    "Wall-clock time spent building an instance base.",
		Buckets: prometheus.DefBuckets,
	})

	ClassifyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mbl_classify_duration_seconds",
		Help:    "Wall-clock time spent classifying a batch of rows.",
		Buckets: prometheus.DefBuckets,
	})
)

// NewLogger returns a zerolog.Logger writing to w at the given level, console-
// formatted when pretty is true (interactive CLI use) or plain JSON
// otherwise (piped/batch use).
func NewLogger(w io.Writer, level zerolog.Level, pretty bool) zerolog.Logger {
	if pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// LevelForVerbosity maps the presence of any §6 verbosity flag to a zerolog
// level: any flag on means Debug, none means Info.
func LevelForVerbosity(anySet bool) zerolog.Level {
	if anySet {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}
