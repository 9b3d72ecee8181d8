package splitter

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/knx-log-splitter/internal/commlog"
)

// previewFrames is how many raw frames are logged after reading the input.
const previewFrames = 3

// Logger defines the logging interface for the splitter.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config holds the settings for one split run.
type Config struct {
	// InputPath is the telegram log to read.
	InputPath string

	// Filters selects the telegrams routed to the filtered file.
	Filters FilterSet

	// OutputDir receives both output files. Defaults to the working directory.
	OutputDir string

	// OtherFile overrides the name of the non-matching output file.
	OtherFile string

	// DiscardOthers skips writing the non-matching output file.
	DiscardOthers bool
}

// Report summarizes a completed run.
type Report struct {
	Stats

	// RunID identifies the run across the inventory, MQTT and InfluxDB.
	RunID        string    `json:"run_id"`
	Input        string    `json:"input"`
	Filters      []string  `json:"filters"`
	FilteredFile string    `json:"filtered_file"`
	OtherFile    string    `json:"other_file,omitempty"`
	StartedAt    time.Time `json:"started_at"`
	DurationMS   int64     `json:"duration_ms"`
}

// Splitter reads a telegram log and writes the filtered and other files.
type Splitter struct {
	cfg         Config
	logger      Logger
	partitioner *Partitioner
}

// New creates a Splitter. Zero value output settings are replaced by
// their defaults.
func New(cfg Config) *Splitter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if cfg.OtherFile == "" {
		cfg.OtherFile = OtherFilename
	}

	return &Splitter{
		cfg:         cfg,
		logger:      noopLogger{},
		partitioner: NewPartitioner(cfg.Filters),
	}
}

// SetLogger sets the logger for run progress and decode tracing.
func (s *Splitter) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
	s.partitioner.SetLogger(logger)
}

// SetRecorder sets an optional recorder for decoded addresses.
func (s *Splitter) SetRecorder(recorder AddressRecorder) {
	s.partitioner.SetRecorder(recorder)
}

// SetProgress sets an optional progress indicator for the partition pass.
func (s *Splitter) SetProgress(progress Progress) {
	s.partitioner.SetProgress(progress)
}

// FilteredPath returns the path of the filtered output file.
func (s *Splitter) FilteredPath() string {
	return filepath.Join(s.cfg.OutputDir, s.cfg.Filters.OutputFilename())
}

// OtherPath returns the path of the non-matching output file.
func (s *Splitter) OtherPath() string {
	return filepath.Join(s.cfg.OutputDir, s.cfg.OtherFile)
}

// Run reads the input log, partitions it and writes the output files.
//
// The filtered file is always written, even when empty. The other file is
// written unless DiscardOthers is set. Both files carry the input's root
// attributes.
//
// Returns:
//   - *Report: Counts and file names of the run
//   - error: ErrReadInput or ErrWriteOutput wrapping the cause, or ctx.Err()
func (s *Splitter) Run(ctx context.Context) (*Report, error) {
	if s.cfg.InputPath == "" {
		return nil, ErrNoInput
	}
	started := time.Now()

	doc, err := commlog.ParseFile(s.cfg.InputPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	s.logger.Info("telegram log loaded",
		"input", s.cfg.InputPath,
		"telegrams", len(doc.Telegrams),
	)
	for i, tel := range doc.Telegrams {
		if i == previewFrames {
			break
		}
		s.logger.Debug("raw frame", "index", i, "raw", tel.RawData())
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	part := s.partitioner.Partition(doc.Telegrams)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Stats:        part.Stats,
		RunID:        "run-" + uuid.NewString()[:8],
		Input:        s.cfg.InputPath,
		Filters:      s.cfg.Filters.Prefixes(),
		FilteredFile: s.FilteredPath(),
		StartedAt:    started,
	}

	if err := commlog.WriteFile(report.FilteredFile, commlog.NewOutput(doc, part.Filtered)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	s.logger.Debug("filtered file written", "path", report.FilteredFile, "telegrams", len(part.Filtered))

	if s.cfg.DiscardOthers {
		s.logger.Debug("other telegrams discarded", "telegrams", len(part.Other))
	} else {
		report.OtherFile = s.OtherPath()
		if err := commlog.WriteFile(report.OtherFile, commlog.NewOutput(doc, part.Other)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		s.logger.Debug("other file written", "path", report.OtherFile, "telegrams", len(part.Other))
	}

	report.DurationMS = time.Since(started).Milliseconds()

	s.logger.Info("telegram log split",
		"telegrams", report.Telegrams,
		"skipped", report.Skipped,
		"filtered", report.Filtered,
		"other", report.Other,
		"acknowledgements", report.Acknowledgements,
		"undecodable", report.Undecodable,
		"filtered_file", report.FilteredFile,
		"other_file", report.OtherFile,
		"duration_ms", report.DurationMS,
	)

	return report, nil
}
