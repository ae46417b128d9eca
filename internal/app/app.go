package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"peopledetect/internal/classify"
	"peopledetect/internal/cleanup"
	"peopledetect/internal/config"
	"peopledetect/internal/logger"
	"peopledetect/internal/metrics"
	"peopledetect/internal/progress"
	"peopledetect/internal/repository/sqlite"
	"peopledetect/internal/run"
	"peopledetect/internal/scan"
	"peopledetect/internal/storage"
	"peopledetect/internal/ui"
)

// Backend is the decoding and detection stack used by the engine.
type Backend struct {
	Opener    classify.Opener
	Detector  classify.Detector
	Annotator classify.Annotator
	Close     func() error
}

// BackendFactory builds the backend once the run logger exists.
type BackendFactory func(cfg *config.Config, logger *logger.Logger) (*Backend, error)

type App struct {
	config  *config.Config
	backend BackendFactory
	in      io.Reader
	out     io.Writer
	now     func() time.Time

	logger  *logger.Logger
	runDir  string
	runLog  *storage.RunLog
	db      *sqlite.DB
	hub     *progress.Hub
	metrics *metrics.Recorder
	closers []func() error
}

// NewApp creates an App for a validated configuration. in and out carry the
// interactive delete menu.
func NewApp(cfg *config.Config, backend BackendFactory, in io.Reader, out io.Writer) *App {
	return &App{
		config:  cfg,
		backend: backend,
		in:      in,
		out:     out,
		now:     time.Now,
	}
}

// RunDir returns the output directory of the current run.
func (a *App) RunDir() string {
	return a.runDir
}

// Run performs one scan, prints the summary and offers the delete actions.
func (a *App) Run(ctx context.Context) (*run.Report, error) {
	defer a.close()

	if err := a.setup(); err != nil {
		return nil, err
	}
	cfg := a.config

	fmt.Fprint(a.out, ui.Banner(ui.Settings{
		Dir:         a.runDir,
		Model:       cfg.ModelName(),
		Confidence:  cfg.Confidence,
		Frames:      cfg.Frames,
		Mode:        a.mode().String(),
		NoImages:    cfg.NoImages,
		DebugAmount: cfg.DebugAmount,
		GPU:         cfg.GPU,
	}))

	input := run.Input{
		File:      cfg.File,
		Directory: cfg.Directory,
		Scan: scan.Options{
			IncludeImages: cfg.IncludeImages(),
			IncludeVideos: cfg.IncludeVideos(),
			Exclude:       []string{a.runDir},
		},
	}
	var unreadable []string
	input.Scan.OnError = func(path string, err error) {
		a.logger.Warning("Skipping %s: %v", path, err)
		unreadable = append(unreadable, path)
	}
	files, skipped, err := run.Resolve(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input: %w", err)
	}
	for _, p := range skipped {
		a.logger.Warning("Skipping %s: unsupported file type", p)
	}

	backend, err := a.backend(cfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize detector: %w", err)
	}
	if backend.Close != nil {
		a.closers = append(a.closers, backend.Close)
	}

	var images classify.ImageWriter
	if !cfg.NoImages {
		images = storage.NewImageStore(a.runDir)
	}
	engine := classify.NewEngine(backend.Opener, backend.Detector, backend.Annotator, images, classify.Options{
		Mode:     a.mode(),
		Stride:   cfg.Frames,
		NoImages: cfg.NoImages,
	}, a.logger)

	runner := run.NewRunner(engine, run.Settings{
		Dir:         a.runDir,
		Input:       input.String(),
		Mode:        a.mode(),
		Model:       cfg.ModelName(),
		Confidence:  cfg.ConfidenceThreshold(),
		Stride:      cfg.Frames,
		DebugAmount: cfg.DebugAmount,
	}, a.logger)
	runner.Journal = a.runLog
	runner.Metrics = a.metrics
	if a.db != nil {
		runner.History = &run.History{
			Runs:       sqlite.NewRunRepository(a.db),
			Verdicts:   sqlite.NewVerdictRepository(a.db),
			Detections: sqlite.NewDetectionRepository(a.db),
		}
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	if cfg.ProgressAddr != "" {
		a.hub = progress.NewHub(a.logger)
		go a.hub.Run(hubCtx)
		imagesDir := a.runDir
		if cfg.NoImages {
			imagesDir = ""
		}
		go func() {
			if err := progress.Serve(hubCtx, cfg.ProgressAddr, progress.Routes(a.hub, imagesDir), a.logger); err != nil {
				a.logger.Error("Progress server stopped: %v", err)
			}
		}()
		runner.Observers = append(runner.Observers, a.hub)
	}

	report := runner.Execute(ctx, files)
	report.Skipped = append(skipped, unreadable...)
	stopHub()

	if a.metrics != nil {
		if err := a.metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			a.logger.Warning("Could not write metrics: %v", err)
		}
	}

	fmt.Fprint(a.out, "\n"+ui.Summary(report))

	if ctx.Err() != nil {
		return report, nil
	}
	prompter := &cleanup.Prompter{In: a.in, Out: a.out, Remover: cleanup.OSRemover{}, Menu: ui.Menu}
	action, res, err := prompter.Prompt(report)
	if err != nil {
		return report, fmt.Errorf("read action: %w", err)
	}
	if action != cleanup.ActionNone && len(res.Deleted) > 0 {
		a.logger.Info("Action %d deleted %d files (%s)", int(action), len(res.Deleted), ui.Size(res.FreedBytes))
	}
	return report, nil
}

func (a *App) mode() classify.Mode {
	if a.config.Continuous {
		return classify.ModeContinuous
	}
	return classify.ModeFirstHit
}

func (a *App) setup() error {
	dir, err := storage.NewRunDir(a.config.OutputRoot, a.now())
	if err != nil {
		return err
	}
	a.runDir = dir

	log, err := logger.New(dir, a.config.LogLevel)
	if err != nil {
		return err
	}
	a.logger = log
	a.closers = append(a.closers, log.Close)

	runLog, err := storage.NewRunLog(dir, a.now())
	if err != nil {
		return err
	}
	a.runLog = runLog
	a.closers = append(a.closers, runLog.Close)

	if a.config.DBPath != "" {
		db, err := sqlite.New(a.config.DBPath)
		if err != nil {
			a.logger.Warning("Scan history disabled: %v", err)
		} else {
			a.db = db
			a.closers = append(a.closers, db.Close)
		}
	}

	if a.config.MetricsFile != "" {
		a.metrics = metrics.NewRecorder()
	}
	return nil
}

func (a *App) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

// ShowHistory prints the most recent runs and aggregate stats.
func ShowHistory(cfg *config.Config, limit int, out io.Writer) error {
	if cfg.DBPath == "" {
		return errors.New("scan history is disabled (empty DB_PATH)")
	}
	db, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := sqlite.NewRunRepository(db)
	runs, err := repo.List(limit)
	if err != nil {
		return err
	}
	stats, err := repo.GetStats()
	if err != nil {
		return err
	}
	fmt.Fprint(out, ui.History(runs, stats))
	return nil
}
