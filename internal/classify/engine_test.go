package classify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peopledetect/internal/classify"
	"peopledetect/internal/classify/classifytest"
	"peopledetect/internal/logger"
	"peopledetect/internal/media"
)

type fixture struct {
	opener   *classifytest.Opener
	detector *classifytest.Detector
	images   *classifytest.ImageWriter
}

func newFixture() *fixture {
	opener := classifytest.NewOpener()
	return &fixture{
		opener:   opener,
		detector: &classifytest.Detector{Opener: opener},
		images:   &classifytest.ImageWriter{Root: "run"},
	}
}

func (f *fixture) engine(opts classify.Options) *classify.Engine {
	return classify.NewEngine(f.opener, f.detector, &classifytest.Annotator{}, f.images, opts, logger.Discard())
}

func video(path string) media.File { return media.File{Path: path, Kind: media.Video, Size: 1000} }
func image(path string) media.File { return media.File{Path: path, Kind: media.Image, Size: 100} }

// A 100 frame video at stride 10 samples 1, 11, ..., 91.
func hundredFrames(labels map[int][]string) *classifytest.Media {
	return &classifytest.Media{FrameCount: 100, Labels: labels}
}

func TestClassify_ImageWithPerson(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/a.jpg", &classifytest.Media{FrameCount: 1, Labels: map[int][]string{1: {"person", "dog"}}})

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), image("/in/a.jpg"), 3)

	assert.True(t, v.PersonFound)
	assert.False(t, v.AnalyzeError)
	assert.Equal(t, classify.StateFound, v.Outcome)
	assert.Equal(t, 1, v.FramesExamined)
	assert.Equal(t, []int{1}, f.detector.Calls("/in/a.jpg"))
	assert.Equal(t, "run/person/a.jpg.3.jpg", v.SavedImagePath)
	assert.Equal(t, []string{"run/person/a.jpg.3.jpg"}, v.SavedImages)
	assert.Contains(t, string(f.images.Images[v.SavedImagePath]), "[dog person]")
}

func TestClassify_ImageWithoutPerson(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/b.png", &classifytest.Media{FrameCount: 1, Labels: map[int][]string{1: {"cat"}}})

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), image("/in/b.png"), 1)

	assert.False(t, v.PersonFound)
	assert.False(t, v.AnalyzeError)
	assert.Equal(t, classify.StateExhausted, v.Outcome)
	assert.Equal(t, "run/no_person/b.png.1.jpg", v.SavedImagePath)
}

func TestClassify_FirstHitStopsAtFirstPerson(t *testing.T) {
	f := newFixture()
	m := f.opener.Add("/in/clip.mp4", hundredFrames(map[int][]string{
		21: {"person"},
		41: {"person"},
	}))

	v := f.engine(classify.Options{Mode: classify.ModeFirstHit, Stride: 10}).
		Classify(context.Background(), video("/in/clip.mp4"), 1)

	assert.True(t, v.PersonFound)
	assert.Equal(t, []int{1, 11, 21}, f.detector.Calls("/in/clip.mp4"))
	assert.Equal(t, 3, v.FramesExamined)
	assert.Equal(t, 1, v.PersonHits)
	require.Len(t, v.Hits, 1)
	assert.Equal(t, 21, v.Hits[0].Index)
	assert.Equal(t, "run/person/clip.mp4.1.jpg", v.SavedImagePath)
	assert.Contains(t, string(f.images.Images[v.SavedImagePath]), "#21:")
	assert.Equal(t, 0, m.OpenFrames())
}

func TestClassify_ContinuousExaminesEveryFrame(t *testing.T) {
	f := newFixture()
	m := f.opener.Add("/in/clip.mp4", hundredFrames(map[int][]string{
		21: {"person"},
		41: {"car"},
		71: {"person", "person"},
	}))

	v := f.engine(classify.Options{Mode: classify.ModeContinuous, Stride: 10}).
		Classify(context.Background(), video("/in/clip.mp4"), 1)

	assert.True(t, v.PersonFound)
	assert.Equal(t, classify.StateFound, v.Outcome)
	assert.Equal(t, []int{1, 11, 21, 31, 41, 51, 61, 71, 81, 91}, f.detector.Calls("/in/clip.mp4"))
	assert.Equal(t, 10, v.FramesExamined)
	assert.Equal(t, 2, v.PersonHits)
	assert.Equal(t, []string{"run/clip.mp4-1.jpg", "run/clip.mp4-2.jpg"}, v.SavedImages)
	assert.Equal(t, "run/clip.mp4-2.jpg", v.SavedImagePath)
	assert.Contains(t, string(f.images.Images["run/clip.mp4-1.jpg"]), "#21:")
	assert.Contains(t, string(f.images.Images["run/clip.mp4-2.jpg"]), "#71:")
	assert.Equal(t, 0, m.OpenFrames())
}

func TestClassify_ContinuousWithoutHits(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/empty.mkv", hundredFrames(nil))

	v := f.engine(classify.Options{Mode: classify.ModeContinuous, Stride: 10}).
		Classify(context.Background(), video("/in/empty.mkv"), 1)

	assert.False(t, v.PersonFound)
	assert.Equal(t, classify.StateExhausted, v.Outcome)
	assert.Equal(t, 10, v.FramesExamined)
	assert.Empty(t, v.SavedImages)
	assert.Empty(t, f.images.Images)
}

func TestClassify_DetectorFailureStopsSampling(t *testing.T) {
	f := newFixture()
	m := f.opener.Add("/in/clip.mp4", hundredFrames(map[int][]string{31: {"person"}}))
	m.DetectErrAt = 11

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), video("/in/clip.mp4"), 1)

	assert.True(t, v.AnalyzeError)
	assert.False(t, v.PersonFound)
	assert.Equal(t, classify.StateError, v.Outcome)
	assert.True(t, errors.Is(v.Err, classify.ErrDetection))
	assert.True(t, errors.Is(v.Err, classifytest.ErrFake))
	assert.Equal(t, []int{1, 11}, f.detector.Calls("/in/clip.mp4"))
	assert.Empty(t, v.SavedImagePath)
	assert.Empty(t, f.images.Images)
	assert.Equal(t, 0, m.OpenFrames())
}

func TestClassify_ContinuousDetectorFailureAfterHit(t *testing.T) {
	f := newFixture()
	m := f.opener.Add("/in/clip.mp4", hundredFrames(map[int][]string{11: {"person"}}))
	m.DetectErrAt = 31

	v := f.engine(classify.Options{Mode: classify.ModeContinuous, Stride: 10}).
		Classify(context.Background(), video("/in/clip.mp4"), 1)

	assert.True(t, v.AnalyzeError)
	assert.False(t, v.PersonFound)
	assert.Equal(t, []int{1, 11, 21, 31}, f.detector.Calls("/in/clip.mp4"))
	assert.Equal(t, 1, v.PersonHits)
}

func TestClassify_FrameReadFailure(t *testing.T) {
	f := newFixture()
	m := f.opener.Add("/in/clip.mp4", hundredFrames(nil))
	m.ReadErrAt = 21

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), video("/in/clip.mp4"), 1)

	assert.True(t, v.AnalyzeError)
	assert.Equal(t, classify.StateError, v.Outcome)
	assert.Equal(t, []int{1, 11}, f.detector.Calls("/in/clip.mp4"))
	assert.Equal(t, 0, m.OpenFrames())
}

func TestClassify_InvalidMedia(t *testing.T) {
	f := newFixture()

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), image("/in/corrupt.jpg"), 1)

	assert.True(t, v.AnalyzeError)
	assert.False(t, v.PersonFound)
	assert.Equal(t, classify.StateInvalid, v.Outcome)
	assert.True(t, errors.Is(v.Err, media.ErrInvalid))
	assert.Empty(t, f.detector.Calls("/in/corrupt.jpg"))
}

func TestClassify_NonPositiveFrameCount(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/zero.mp4", &classifytest.Media{FrameCount: 0})

	v := f.engine(classify.Options{Stride: 10}).Classify(context.Background(), video("/in/zero.mp4"), 1)

	assert.True(t, v.AnalyzeError)
	assert.Equal(t, classify.StateInvalid, v.Outcome)
	assert.True(t, errors.Is(v.Err, media.ErrInvalid))
}

func TestClassify_VideoShorterThanTailMargin(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/tiny.mp4", &classifytest.Media{FrameCount: 5, Labels: map[int][]string{1: {"person"}}})

	v := f.engine(classify.Options{Stride: 1}).Classify(context.Background(), video("/in/tiny.mp4"), 1)

	assert.False(t, v.AnalyzeError)
	assert.False(t, v.PersonFound)
	assert.Equal(t, classify.StateExhausted, v.Outcome)
	assert.Zero(t, v.FramesExamined)
	assert.Empty(t, f.images.Images)
}

func TestClassify_NoImages(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/a.jpg", &classifytest.Media{FrameCount: 1, Labels: map[int][]string{1: {"person"}}})

	v := f.engine(classify.Options{Stride: 1, NoImages: true}).Classify(context.Background(), image("/in/a.jpg"), 1)

	assert.True(t, v.PersonFound)
	assert.Empty(t, v.SavedImagePath)
	assert.Empty(t, f.images.Images)
}

func TestClassify_AnnotationFailureIsNotAnAnalyzeError(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/a.jpg", &classifytest.Media{FrameCount: 1, Labels: map[int][]string{1: {"person"}}})
	engine := classify.NewEngine(f.opener, f.detector, &classifytest.Annotator{Err: errors.New("encode")},
		f.images, classify.Options{Stride: 1}, logger.Discard())

	v := engine.Classify(context.Background(), image("/in/a.jpg"), 1)

	assert.True(t, v.PersonFound)
	assert.False(t, v.AnalyzeError)
	assert.Empty(t, v.SavedImagePath)
}

func TestClassify_CanceledContext(t *testing.T) {
	f := newFixture()
	f.opener.Add("/in/clip.mp4", hundredFrames(nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v := f.engine(classify.Options{Stride: 10}).Classify(ctx, video("/in/clip.mp4"), 1)

	assert.True(t, v.AnalyzeError)
	assert.Equal(t, classify.StateError, v.Outcome)
	assert.True(t, errors.Is(v.Err, context.Canceled))
	assert.Empty(t, f.detector.Calls("/in/clip.mp4"))
}

func TestNewEngine_Defaults(t *testing.T) {
	f := newFixture()

	e := classify.NewEngine(f.opener, f.detector, nil, nil, classify.Options{Stride: 0}, logger.Discard())
	assert.Equal(t, 1, e.Options().Stride)
	assert.True(t, e.Options().NoImages)
}

func TestStateAndModeStrings(t *testing.T) {
	assert.Equal(t, "found", classify.StateFound.String())
	assert.Equal(t, "done", classify.StateDone.String())
	assert.Equal(t, "continuous", classify.ModeContinuous.String())
	assert.Equal(t, "first-hit", classify.ModeFirstHit.String())
}
