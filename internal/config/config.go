package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	ModelYOLOv4     = "yolov4"
	ModelYOLOv4Tiny = "yolov4-tiny"
)

// ErrInputSelection is returned when neither or both of the file and
// directory inputs are set.
var ErrInputSelection = errors.New("exactly one of -f <file> or -d <directory> is required")

// Config holds environment defaults and command-line settings for a scan.
type Config struct {
	// Environment
	ModelDir     string  `env:"MODEL_DIR"        envDefault:"models"`
	OutputRoot   string  `env:"OUTPUT_DIR"       envDefault:"."`
	DBPath       string  `env:"DB_PATH"          envDefault:".peopledetect.db"`
	MetricsFile  string  `env:"METRICS_FILE"`
	ProgressAddr string  `env:"PROGRESS_ADDR"`
	LogLevel     string  `env:"LOG_LEVEL"        envDefault:"info"`
	NMSThreshold float64 `env:"NMS_THRESHOLD"    envDefault:"0.4"`
	InputSize    int     `env:"MODEL_INPUT_SIZE" envDefault:"416"`

	// Command line
	Directory   string
	File        string
	TinyYOLO    bool
	Continuous  bool
	Confidence  int  `env:"CONFIDENCE"   envDefault:"65"` // percent, 1-99
	Frames      int  `env:"FRAMES"       envDefault:"10"` // examine every nth frame
	GPU         bool `env:"GPU"          envDefault:"false"`
	NoImages    bool `env:"NO_IMAGES"    envDefault:"false"`
	DebugAmount int  `env:"DEBUG_AMOUNT" envDefault:"-1"`
	ImgOnly     bool
	VidOnly     bool
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings that make a run impossible.
func (c *Config) Validate() error {
	if (c.File == "") == (c.Directory == "") {
		return ErrInputSelection
	}
	if c.Confidence < 1 || c.Confidence > 99 {
		return fmt.Errorf("confidence must be between 1 and 99, got %d", c.Confidence)
	}
	if c.Frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", c.Frames)
	}
	if c.ImgOnly && c.VidOnly {
		return errors.New("--img-only and --vid-only cannot be combined")
	}
	if c.NMSThreshold <= 0 || c.NMSThreshold >= 1 {
		return fmt.Errorf("nms threshold must be in (0,1), got %v", c.NMSThreshold)
	}
	if c.InputSize <= 0 || c.InputSize%32 != 0 {
		return fmt.Errorf("model input size must be a positive multiple of 32, got %d", c.InputSize)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warning", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// ModelName picks the YOLO variant.
func (c *Config) ModelName() string {
	if c.TinyYOLO {
		return ModelYOLOv4Tiny
	}
	return ModelYOLOv4
}

// ConfidenceThreshold converts the percent setting to a 0-1 score.
func (c *Config) ConfidenceThreshold() float64 {
	return float64(c.Confidence) / 100
}

// IncludeImages reports whether image files take part in a directory scan.
func (c *Config) IncludeImages() bool {
	return !c.VidOnly
}

// IncludeVideos reports whether video files take part in a directory scan.
func (c *Config) IncludeVideos() bool {
	return !c.ImgOnly
}
