// Package metrics records scan counters in a Prometheus registry and dumps
// them in the node_exporter textfile format at the end of a run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"peopledetect/internal/classify"
)

// Result label values of files_total.
const (
	ResultPerson   = "person"
	ResultNoPerson = "no_person"
	ResultError    = "error"
)

// Recorder holds the scan metrics.
type Recorder struct {
	registry *prometheus.Registry

	FilesTotal          *prometheus.CounterVec
	FramesExaminedTotal prometheus.Counter
	BytesScannedTotal   prometheus.Counter
	PersonHitsTotal     prometheus.Counter
	FileDuration        *prometheus.HistogramVec
}

// NewRecorder registers the scan metrics on a fresh registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		FilesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "peopledetect_files_total",
			Help: "Total number of files classified, by result",
		}, []string{"result"}),
		FramesExaminedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "peopledetect_frames_examined_total",
			Help: "Total number of sampled frames passed to the detector",
		}),
		BytesScannedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "peopledetect_bytes_scanned_total",
			Help: "Total size of classified files",
		}),
		PersonHitsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "peopledetect_person_hits_total",
			Help: "Total number of sampled frames containing a person",
		}),
		FileDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peopledetect_file_duration_seconds",
			Help:    "Time spent classifying one file",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records one verdict and how long it took.
func (r *Recorder) Observe(v classify.FileVerdict, took time.Duration) {
	r.FilesTotal.WithLabelValues(Result(v)).Inc()
	r.FramesExaminedTotal.Add(float64(v.FramesExamined))
	r.BytesScannedTotal.Add(float64(v.File.Size))
	r.PersonHitsTotal.Add(float64(len(v.Hits)))
	r.FileDuration.WithLabelValues(v.File.Kind.String()).Observe(took.Seconds())
}

// WriteTextfile writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Result maps a verdict to its files_total label.
func Result(v classify.FileVerdict) string {
	switch {
	case v.AnalyzeError:
		return ResultError
	case v.PersonFound:
		return ResultPerson
	default:
		return ResultNoPerson
	}
}
