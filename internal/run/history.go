package run

import (
	"peopledetect/internal/classify"
	"peopledetect/internal/model"
	"peopledetect/internal/repository"
)

// History persists runs and verdicts. A nil *History records nothing.
type History struct {
	Runs       repository.RunRepository
	Verdicts   repository.VerdictRepository
	Detections repository.DetectionRepository
}

func (h *History) start(r *model.Run) error {
	if h == nil {
		return nil
	}
	return h.Runs.Create(r)
}

func (h *History) finish(r *model.Run) error {
	if h == nil {
		return nil
	}
	return h.Runs.Finish(r)
}

func (h *History) record(runID string, ordinal int, v classify.FileVerdict) error {
	if h == nil {
		return nil
	}

	rec := &model.Verdict{
		RunID:          runID,
		Ordinal:        ordinal,
		Path:           v.File.Path,
		Kind:           v.File.Kind.String(),
		Size:           v.File.Size,
		PersonFound:    v.PersonFound,
		AnalyzeError:   v.AnalyzeError,
		Outcome:        v.Outcome.String(),
		FramesExamined: v.FramesExamined,
		PersonHits:     v.PersonHits,
		SavedImage:     v.SavedImagePath,
	}
	if v.Err != nil {
		rec.Error = v.Err.Error()
	}
	id, err := h.Verdicts.Insert(rec)
	if err != nil {
		return err
	}

	var dets []model.Detection
	for _, hit := range v.Hits {
		for _, d := range hit.Detections {
			dets = append(dets, model.Detection{
				VerdictID:  id,
				FrameIndex: hit.Index,
				ObjectName: d.Label,
				X:          d.X,
				Y:          d.Y,
				Width:      d.Width,
				Height:     d.Height,
				Confidence: d.Confidence,
			})
		}
	}
	return h.Detections.InsertBatch(dets)
}
