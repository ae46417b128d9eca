package media

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalid marks a file that exists but cannot be decoded as the media kind
// its extension claims (unreadable image, non-positive frame count).
var ErrInvalid = errors.New("invalid media")

// Kind is the media category derived from a file extension.
type Kind int

const (
	Unsupported Kind = iota
	Image
	Video
)

func (k Kind) String() string {
	switch k {
	case Image:
		return "image"
	case Video:
		return "video"
	default:
		return "unsupported"
	}
}

// Extensions are matched lower case, with the leading dot.
var (
	imageExtensions = map[string]bool{
		".jpg":  true,
		".jpeg": true,
		".png":  true,
		".tiff": true,
		".gif":  true,
		".webp": true,
	}
	videoExtensions = map[string]bool{
		".mov":  true,
		".mp4":  true,
		".avi":  true,
		".mpg":  true,
		".mpeg": true,
		".m4v":  true,
		".mkv":  true,
	}
)

// Classify maps a path to its media kind by extension. Matching ignores case.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return Image
	case videoExtensions[ext]:
		return Video
	default:
		return Unsupported
	}
}

// File is a media file found at discovery time.
type File struct {
	Path string
	Kind Kind
	Size int64
}

// Name returns the base name of the file.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// Stat builds a File for path. Unsupported extensions are returned with
// Kind == Unsupported and no error; callers decide whether to skip them.
func Stat(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{Path: path, Kind: Classify(path)}, err
	}
	if info.IsDir() {
		return File{Path: path}, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Path: path,
		Kind: Classify(path),
		Size: info.Size(),
	}, nil
}

// Frame is a decoded picture handle. Implementations own native memory,
// so every frame must be closed after use.
type Frame interface {
	Close() error
}

// Source is an opened media file that can hand out frames by index.
// Images report a frame count of 1 and serve the picture for any index.
type Source interface {
	FrameCount() int
	ReadFrame(index int) (Frame, error)
	Close() error
}
