package main

import (
	"os"

	"github.com/spf13/cobra"

	"peopledetect/internal/app"
	"peopledetect/internal/config"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "peopledetect",
		Short: "Find images and videos with people in them",
		Long: "Scans a file or directory tree of images and videos with a YOLOv4 network, sorts them\n" +
			"into files with and without a person, writes annotated debug frames and offers to\n" +
			"delete either group.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			_, err := app.NewApp(cfg, newBackend, os.Stdin, cmd.OutOrStdout()).Run(cmd.Context())
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&cfg.Directory, "directory", "d", cfg.Directory, "directory to scan recursively")
	f.StringVarP(&cfg.File, "file", "f", cfg.File, "single file to scan")
	f.BoolVar(&cfg.TinyYOLO, "tiny_yolo", cfg.TinyYOLO, "use YOLOv4-tiny instead of YOLOv4; faster but less accurate")
	f.BoolVar(&cfg.Continuous, "continuous", cfg.Continuous, "examine every sampled frame and save each frame with a person")
	f.IntVar(&cfg.Confidence, "confidence", cfg.Confidence, "detection confidence threshold in percent (1-99)")
	f.IntVar(&cfg.Frames, "frames", cfg.Frames, "examine every nth frame of a video")
	f.BoolVar(&cfg.GPU, "gpu", cfg.GPU, "run the network on a CUDA device")
	f.BoolVar(&cfg.NoImages, "no-images", cfg.NoImages, "do not write annotated debug images")
	f.IntVar(&cfg.DebugAmount, "debug-amount", cfg.DebugAmount, "only examine the first n files")
	f.BoolVar(&cfg.ImgOnly, "img-only", cfg.ImgOnly, "only examine image files")
	f.BoolVar(&cfg.VidOnly, "vid-only", cfg.VidOnly, "only examine video files")
	f.StringVar(&cfg.ModelDir, "model-dir", cfg.ModelDir, "directory holding <model>.cfg and <model>.weights")
	f.StringVar(&cfg.OutputRoot, "output", cfg.OutputRoot, "where run directories are created")
	f.Float64Var(&cfg.NMSThreshold, "nms", cfg.NMSThreshold, "non-maximum suppression threshold")
	cmd.MarkFlagsMutuallyExclusive("directory", "file")
	cmd.MarkFlagsMutuallyExclusive("img-only", "vid-only")

	p := cmd.PersistentFlags()
	p.StringVar(&cfg.DBPath, "db", cfg.DBPath, "scan history database, empty to disable")
	p.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this file after the run")
	p.StringVar(&cfg.ProgressAddr, "progress-addr", cfg.ProgressAddr, "serve live progress over WebSocket at this address")
	p.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warning or error")

	cmd.AddCommand(newHistoryCmd(cfg))
	return cmd
}
