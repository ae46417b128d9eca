// Package run drives a batch: it classifies each selected file in order and
// keeps the report, run log, history, metrics and observers up to date.
package run

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"peopledetect/internal/classify"
	"peopledetect/internal/logger"
	"peopledetect/internal/media"
	"peopledetect/internal/metrics"
	"peopledetect/internal/model"
	"peopledetect/internal/progress"
)

// Classifier produces a verdict for one file.
type Classifier interface {
	Classify(ctx context.Context, file media.File, ordinal int) classify.FileVerdict
}

// Journal is the plain text run log.
type Journal interface {
	Printf(format string, args ...any) error
}

// Settings describe the run for history records.
type Settings struct {
	Dir         string
	Input       string
	Mode        classify.Mode
	Model       string
	Confidence  float64
	Stride      int
	DebugAmount int
}

// Runner executes a batch.
type Runner struct {
	classifier Classifier
	settings   Settings
	logger     *logger.Logger

	Journal   Journal
	History   *History
	Metrics   *metrics.Recorder
	Observers []progress.Observer

	now   func() time.Time
	newID func() string
}

// NewRunner creates a Runner. Journal, History, Metrics and Observers are
// optional and may be set before Execute.
func NewRunner(classifier Classifier, settings Settings, logger *logger.Logger) *Runner {
	return &Runner{
		classifier: classifier,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// Execute classifies files in order and returns the report. It stops early
// after DebugAmount files when DebugAmount > 0, or when ctx is canceled.
func (r *Runner) Execute(ctx context.Context, files []media.File) *Report {
	report := &Report{
		RunID:     r.newID(),
		Dir:       r.settings.Dir,
		StartedAt: r.now(),
		Planned:   len(files),
	}

	rec := &model.Run{
		ID:         report.RunID,
		StartedAt:  report.StartedAt,
		Input:      r.settings.Input,
		Mode:       r.settings.Mode.String(),
		Model:      r.settings.Model,
		Confidence: r.settings.Confidence,
		Stride:     r.settings.Stride,
		OutputDir:  r.settings.Dir,
	}
	if err := r.History.start(rec); err != nil {
		r.logger.Warning("Could not record run in history: %v", err)
		r.History = nil
	}

	total := len(files)
	for _, o := range r.Observers {
		o.OnStart(report.RunID, total)
	}

	for i, file := range files {
		if ctx.Err() != nil {
			r.logger.Warning("Run interrupted after %d of %d files", report.Examined(), total)
			report.StoppedEarly = true
			break
		}
		ordinal := i + 1
		r.logger.Info("Examining %s: %d of %d (%s)", file.Path, ordinal, total, humanize.IBytes(uint64(file.Size)))

		started := time.Now()
		v := r.classifier.Classify(ctx, file, ordinal)
		took := time.Since(started)

		report.Add(v)
		r.journal(v)
		if err := r.History.record(report.RunID, ordinal, v); err != nil {
			r.logger.Warning("Could not record verdict for %s: %v", file.Path, err)
		}
		if r.Metrics != nil {
			r.Metrics.Observe(v, took)
		}
		for _, o := range r.Observers {
			o.OnFile(ordinal, total, v)
		}

		if v.AnalyzeError {
			r.logger.Error("Error in analyzing %s", file.Path)
		}

		if r.settings.DebugAmount > 0 && ordinal == r.settings.DebugAmount {
			r.logger.Info("Debug amount of %d files reached", ordinal)
			report.StoppedEarly = ordinal < total
			break
		}
	}

	report.FinishedAt = r.now()

	finished := report.FinishedAt
	rec.FinishedAt = &finished
	rec.FilesTotal = report.Examined()
	rec.FilesFound = len(report.Found)
	rec.FilesNotFound = len(report.NotFound)
	rec.FilesErrored = len(report.Errors)
	rec.TotalBytes = report.TotalBytes
	rec.BytesToDelete = report.BytesToDelete()
	rec.StoppedEarly = report.StoppedEarly
	if err := r.History.finish(rec); err != nil {
		r.logger.Warning("Could not finish run in history: %v", err)
	}

	summary := progress.Summary{
		RunID:         report.RunID,
		Found:         len(report.Found),
		NotFound:      len(report.NotFound),
		Errors:        len(report.Errors),
		TotalBytes:    report.TotalBytes,
		BytesToDelete: report.BytesToDelete(),
		StoppedEarly:  report.StoppedEarly,
	}
	for _, o := range r.Observers {
		o.OnDone(summary)
	}
	return report
}

func (r *Runner) journal(v classify.FileVerdict) {
	if r.Journal == nil {
		return
	}

	var err error
	switch {
	case v.AnalyzeError:
		err = r.Journal.Printf("Error analyzing %s: %v", v.File.Path, v.Err)
	case v.PersonFound:
		frames := make([]int, 0, len(v.Hits))
		for _, h := range v.Hits {
			frames = append(frames, h.Index)
		}
		err = r.Journal.Printf("Person detected in %s (frames %v)", v.File.Path, frames)
	default:
		return
	}
	if err != nil {
		r.logger.Warning("Could not write run log: %v", err)
	}
}
