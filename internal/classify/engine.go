package classify

import (
	"context"
	"fmt"

	"peopledetect/internal/dto"
	"peopledetect/internal/logger"
	"peopledetect/internal/media"
	"peopledetect/internal/sampler"
)

// Engine drives sampling and detection for one file at a time.
type Engine struct {
	opener    Opener
	detector  Detector
	annotator Annotator
	images    ImageWriter
	opts      Options
	logger    *logger.Logger
}

// NewEngine creates an Engine. annotator and images may be nil when
// opts.NoImages is set.
func NewEngine(opener Opener, detector Detector, annotator Annotator, images ImageWriter, opts Options, logger *logger.Logger) *Engine {
	if opts.Stride < 1 {
		opts.Stride = 1
	}
	if annotator == nil || images == nil {
		opts.NoImages = true
	}
	return &Engine{
		opener:    opener,
		detector:  detector,
		annotator: annotator,
		images:    images,
		opts:      opts,
		logger:    logger,
	}
}

// Options returns the effective engine options.
func (e *Engine) Options() Options {
	return e.opts
}

// run holds the per-file state while a verdict is being built.
type run struct {
	verdict  FileVerdict
	state    State
	ordinal  int
	last     media.Frame
	lastDets dto.Detections
}

// Classify examines file and returns its verdict. ordinal is the file's
// 1-based position in the batch and keeps first-hit image names unique.
func (e *Engine) Classify(ctx context.Context, file media.File, ordinal int) FileVerdict {
	r := &run{
		verdict: FileVerdict{File: file},
		state:   StatePending,
		ordinal: ordinal,
	}

	e.transition(r, StateValidating)
	src, seq, err := e.validate(file)
	if err != nil {
		e.fail(r, StateInvalid, err)
		return e.done(r)
	}
	defer src.Close()

	e.transition(r, StateSampling)
	e.sample(ctx, r, src, seq)
	defer func() {
		if r.last != nil {
			r.last.Close()
		}
	}()

	if r.state == StateSampling {
		if r.verdict.PersonHits > 0 {
			e.transition(r, StateFound)
		} else {
			e.transition(r, StateExhausted)
		}
	}
	r.verdict.PersonFound = r.state == StateFound

	if e.opts.Mode == ModeFirstHit && !e.opts.NoImages && r.last != nil && r.state != StateError {
		e.saveFirstHitImage(r)
	}
	return e.done(r)
}

func (e *Engine) validate(file media.File) (media.Source, *sampler.Sequence, error) {
	src, err := e.opener.Open(file)
	if err != nil {
		return nil, nil, err
	}

	seq, err := sampler.Plan(file.Kind, src.FrameCount(), e.opts.Stride)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return src, seq, nil
}

func (e *Engine) sample(ctx context.Context, r *run, src media.Source, seq *sampler.Sequence) {
	total := src.FrameCount()
	for idx, ok := seq.Next(); ok; idx, ok = seq.Next() {
		if err := ctx.Err(); err != nil {
			e.fail(r, StateError, err)
			return
		}

		frame, err := src.ReadFrame(idx)
		if err != nil {
			e.fail(r, StateError, fmt.Errorf("read frame %d: %w", idx, err))
			return
		}

		dets, err := e.detector.Detect(frame)
		if err != nil {
			frame.Close()
			e.fail(r, StateError, fmt.Errorf("%w: frame %d: %w", ErrDetection, idx, err))
			return
		}
		r.verdict.FramesExamined++

		hit := dets.Has(PersonLabel)
		if hit {
			r.verdict.Hits = append(r.verdict.Hits, FrameHit{Index: idx, Detections: dets})
			e.logger.Info("Person detected in frame %d/%d", idx, total)
		} else {
			e.logger.Debug("No person detected in frame %d/%d", idx, total)
		}

		if e.opts.Mode == ModeContinuous {
			if hit {
				r.verdict.PersonHits++
				e.saveContinuousHit(r, frame, dets)
			}
			frame.Close()
			continue
		}

		if r.last != nil {
			r.last.Close()
		}
		r.last, r.lastDets = frame, dets
		if hit {
			r.verdict.PersonHits = 1
			e.transition(r, StateFound)
			return
		}
	}
}

func (e *Engine) saveFirstHitImage(r *run) {
	subdir := NoPersonDir
	if r.verdict.PersonFound {
		subdir = PersonDir
	}
	name := fmt.Sprintf("%s.%d.jpg", r.verdict.File.Name(), r.ordinal)

	path, err := e.writeAnnotated(subdir, name, r.last, r.lastDets)
	if err != nil {
		e.logger.Warning("Could not write debug image for %s: %v", r.verdict.File.Path, err)
		return
	}
	r.verdict.SavedImagePath = path
	r.verdict.SavedImages = append(r.verdict.SavedImages, path)
	e.logger.Info("Wrote debug image to %s", path)
}

func (e *Engine) saveContinuousHit(r *run, frame media.Frame, dets dto.Detections) {
	if e.opts.NoImages {
		return
	}
	name := fmt.Sprintf("%s-%d.jpg", r.verdict.File.Name(), r.verdict.PersonHits)

	path, err := e.writeAnnotated("", name, frame, dets)
	if err != nil {
		e.logger.Warning("Could not write debug image for %s: %v", r.verdict.File.Path, err)
		return
	}
	r.verdict.SavedImagePath = path
	r.verdict.SavedImages = append(r.verdict.SavedImages, path)
	e.logger.Info("Wrote debug image to %s", path)
}

func (e *Engine) writeAnnotated(subdir, name string, frame media.Frame, dets dto.Detections) (string, error) {
	data, err := e.annotator.Annotate(frame, dets)
	if err != nil {
		return "", fmt.Errorf("annotate: %w", err)
	}
	return e.images.WriteImage(subdir, name, data)
}

func (e *Engine) fail(r *run, state State, err error) {
	r.verdict.AnalyzeError = true
	r.verdict.PersonFound = false
	r.verdict.Err = err
	e.transition(r, state)
	e.logger.Error("Error analyzing %s: %v", r.verdict.File.Path, err)
}

func (e *Engine) done(r *run) FileVerdict {
	r.verdict.Outcome = r.state
	e.transition(r, StateDone)
	return r.verdict
}

func (e *Engine) transition(r *run, to State) {
	e.logger.Debug("%s: %s -> %s", r.verdict.File.Name(), r.state, to)
	r.state = to
}
