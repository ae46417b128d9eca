package main

import (
	"peopledetect/internal/app"
	"peopledetect/internal/config"
	"peopledetect/internal/logger"
	"peopledetect/internal/vision"
)

func newBackend(cfg *config.Config, logger *logger.Logger) (*app.Backend, error) {
	detector, err := vision.NewDetector(vision.DetectorConfig{
		ModelDir:   cfg.ModelDir,
		ModelName:  cfg.ModelName(),
		Confidence: float32(cfg.ConfidenceThreshold()),
		NMS:        float32(cfg.NMSThreshold),
		InputSize:  cfg.InputSize,
		GPU:        cfg.GPU,
	}, logger)
	if err != nil {
		return nil, err
	}
	return &app.Backend{
		Opener:    vision.NewLoader(),
		Detector:  detector,
		Annotator: vision.NewAnnotator(),
		Close:     detector.Close,
	}, nil
}
