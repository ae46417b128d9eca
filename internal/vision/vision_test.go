package vision

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"peopledetect/internal/dto"
	"peopledetect/internal/logger"
	"peopledetect/internal/media"
)

func solidMat(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 80, 120, 0), rows, cols, gocv.MatTypeCV8UC3)
}

func writeImage(t *testing.T, dir, name string) media.File {
	t.Helper()
	mat := solidMat(48, 64)
	defer mat.Close()

	path := filepath.Join(dir, name)
	require.True(t, gocv.IMWrite(path, mat))
	f, err := media.Stat(path)
	require.NoError(t, err)
	return f
}

func TestLoader_Image(t *testing.T) {
	file := writeImage(t, t.TempDir(), "still.png")

	src, err := NewLoader().Open(file)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 1, src.FrameCount())

	frame, err := src.ReadFrame(1)
	require.NoError(t, err)
	defer frame.Close()
	f, ok := frame.(*Frame)
	require.True(t, ok)
	assert.Equal(t, 64, f.Mat.Cols())
	assert.Equal(t, 48, f.Mat.Rows())

	_, err = src.ReadFrame(2)
	assert.Error(t, err)
}

func TestLoader_UndecodableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.jpg")
	require.NoError(t, os.WriteFile(path, []byte("not a jpeg"), 0o644))

	_, err := NewLoader().Open(media.File{Path: path, Kind: media.Image})
	assert.ErrorIs(t, err, media.ErrInvalid)
}

func TestLoader_UndecodableVideo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.mp4")
	require.NoError(t, os.WriteFile(path, []byte("not a video"), 0o644))

	_, err := NewLoader().Open(media.File{Path: path, Kind: media.Video})
	assert.ErrorIs(t, err, media.ErrInvalid)
}

func TestLoader_Unsupported(t *testing.T) {
	_, err := NewLoader().Open(media.File{Path: "notes.txt", Kind: media.Unsupported})
	assert.ErrorIs(t, err, media.ErrInvalid)
}

func TestAnnotate_EncodesJPEG(t *testing.T) {
	frame := &Frame{Mat: solidMat(120, 160)}
	defer frame.Close()

	dets := dto.Detections{
		{Label: "person", Confidence: 0.91, X: 10, Y: 20, Width: 40, Height: 80},
		{Label: "dog", Confidence: 0.7, X: 90, Y: 60, Width: 30, Height: 30},
	}

	out, err := NewAnnotator().Annotate(frame, dets)
	require.NoError(t, err)
	require.Greater(t, len(out), 2)
	assert.True(t, bytes.HasPrefix(out, []byte{0xFF, 0xD8}), "missing JPEG SOI marker")

	decoded, err := gocv.IMDecode(out, gocv.IMReadColor)
	require.NoError(t, err)
	defer decoded.Close()
	assert.Equal(t, 160, decoded.Cols())
	assert.Equal(t, 120, decoded.Rows())
}

type otherFrame struct{}

func (otherFrame) Close() error { return nil }

func TestAnnotate_RejectsForeignFrame(t *testing.T) {
	_, err := NewAnnotator().Annotate(otherFrame{}, nil)
	assert.Error(t, err)
}

func TestNewDetector_MissingModel(t *testing.T) {
	cfg := DetectorConfig{ModelDir: t.TempDir(), ModelName: "yolov4-tiny", Confidence: 0.65, NMS: 0.4, InputSize: 416}

	_, err := NewDetector(cfg, logger.Discard())
	assert.ErrorIs(t, err, ErrModelNotFound)
}

func TestDetectorConfig_ModelFiles(t *testing.T) {
	cfg := DetectorConfig{ModelDir: "models", ModelName: "yolov4"}

	cfgPath, weightsPath := cfg.ModelFiles()
	assert.Equal(t, filepath.Join("models", "yolov4.cfg"), cfgPath)
	assert.Equal(t, filepath.Join("models", "yolov4.weights"), weightsPath)
}
