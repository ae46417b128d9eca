package vision

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gocv.io/x/gocv"

	"peopledetect/internal/dto"
	"peopledetect/internal/logger"
	"peopledetect/internal/media"
	"peopledetect/internal/vision/yolo"
)

// ErrModelNotFound is returned when the darknet cfg or weights are missing.
var ErrModelNotFound = errors.New("model file not found")

// DetectorConfig selects the network and its thresholds.
type DetectorConfig struct {
	ModelDir   string
	ModelName  string  // yolov4 or yolov4-tiny
	Confidence float32 // 0..1
	NMS        float32
	InputSize  int
	GPU        bool
}

// ModelFiles returns the cfg and weights paths for cfg.
func (cfg DetectorConfig) ModelFiles() (string, string) {
	return filepath.Join(cfg.ModelDir, cfg.ModelName+".cfg"),
		filepath.Join(cfg.ModelDir, cfg.ModelName+".weights")
}

// Detector runs a YOLOv4 darknet network through the OpenCV DNN module.
type Detector struct {
	net     gocv.Net
	outputs []string
	cfg     DetectorConfig
	logger  *logger.Logger
}

// NewDetector loads the network described by cfg.
func NewDetector(cfg DetectorConfig, logger *logger.Logger) (*Detector, error) {
	cfgPath, weightsPath := cfg.ModelFiles()
	for _, p := range []string{cfgPath, weightsPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, p)
		}
	}

	// darknet is picked from the .weights/.cfg extensions
	net := gocv.ReadNet(weightsPath, cfgPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load network %s", cfg.ModelName)
	}

	backend, target := gocv.NetBackendDefault, gocv.NetTargetCPU
	if cfg.GPU {
		backend, target = gocv.NetBackendCUDA, gocv.NetTargetCUDA
	}
	errBackend := net.SetPreferableBackend(backend)
	errTarget := net.SetPreferableTarget(target)
	if errBackend != nil || errTarget != nil {
		net.Close()
		return nil, fmt.Errorf("failed to set preferable backend or target: %w", errors.Join(errBackend, errTarget))
	}

	names := net.GetLayerNames()
	var outputs []string
	for _, id := range net.GetUnconnectedOutLayers() {
		// layer ids are 1-based
		outputs = append(outputs, names[id-1])
	}

	logger.Info("Detection network %s initialized (gpu=%t)", cfg.ModelName, cfg.GPU)
	return &Detector{net: net, outputs: outputs, cfg: cfg, logger: logger}, nil
}

// Detect implements classify.Detector.
func (d *Detector) Detect(frame media.Frame) (dto.Detections, error) {
	f, ok := frame.(*Frame)
	if !ok {
		return nil, fmt.Errorf("unexpected frame type %T", frame)
	}
	if f.Mat.Empty() {
		return nil, fmt.Errorf("frame is empty")
	}

	size := image.Pt(d.cfg.InputSize, d.cfg.InputSize)
	blob := gocv.BlobFromImage(f.Mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	outs := d.net.ForwardLayers(d.outputs)
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()

	var rows [][]float32
	for _, out := range outs {
		for r := 0; r < out.Rows(); r++ {
			row := make([]float32, out.Cols())
			for c := range row {
				row[c] = out.GetFloatAt(r, c)
			}
			rows = append(rows, row)
		}
	}

	cands := yolo.Decode(rows, f.Mat.Cols(), f.Mat.Rows(), d.cfg.Confidence)
	if len(cands) == 0 {
		return dto.Detections{}, nil
	}
	boxes, scores := yolo.Split(cands)
	keep := gocv.NMSBoxes(boxes, scores, d.cfg.Confidence, d.cfg.NMS)

	dets := make(dto.Detections, 0, len(keep))
	for _, i := range keep {
		c := cands[i]
		dets = append(dets, dto.DetectionResult{
			Label:      yolo.Label(c.ClassID),
			Confidence: float64(c.Confidence),
			X:          c.Box.Min.X,
			Y:          c.Box.Min.Y,
			Width:      c.Box.Dx(),
			Height:     c.Box.Dy(),
		})
	}
	d.logger.Debug("Detected %v", dets.Labels())
	return dets, nil
}

// Close releases the network.
func (d *Detector) Close() error {
	return d.net.Close()
}
