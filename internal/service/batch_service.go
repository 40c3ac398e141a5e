package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"quizforge/internal/dto"
)

// BatchOptions controls one batch run over a directory of text files.
type BatchOptions struct {
	InputGlob   string
	OutputDir   string
	Concurrency int
	// Topic is used for every file; empty detects it per file.
	Topic       string
	TotalCount  int
	MCCount     int
	WithSummary bool
	// Seed, when set, makes file i use Seed+i.
	Seed *int64
}

// BatchFileResult records what happened to one input file.
type BatchFileResult struct {
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	Topic     string `json:"topic,omitempty"`
	Questions int    `json:"questions"`
	Error     string `json:"error,omitempty"`
}

// BatchReport summarizes a batch run. Files are listed in input order.
type BatchReport struct {
	Files     []BatchFileResult `json:"files"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Duration  time.Duration     `json:"duration"`
}

// BatchService generates one quiz document per text file.
type BatchService interface {
	Run(ctx context.Context, opts BatchOptions) (*BatchReport, error)
}

type batchService struct {
	quiz   QuizService
	fs     afero.Fs
	logger *zap.Logger
}

// NewBatchService creates a new instance of batchService.
func NewBatchService(quiz QuizService, fs afero.Fs, logger *zap.Logger) BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &batchService{quiz: quiz, fs: fs, logger: logger}
}

// Run processes the matching files with at most opts.Concurrency in
// flight. A failing file is recorded in the report and does not stop the
// others; only a bad glob or an unusable output directory fails the run.
func (s *batchService) Run(ctx context.Context, opts BatchOptions) (*BatchReport, error) {
	start := time.Now()
	s.logger.Info("Starting batch generation", zap.String("input", opts.InputGlob), zap.String("output_dir", opts.OutputDir))

	files, err := afero.Glob(s.fs, opts.InputGlob)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", opts.InputGlob, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		s.logger.Info("No input files found. Batch process finishing early.")
		return &BatchReport{Files: []BatchFileResult{}, Duration: time.Since(start)}, nil
	}
	if err := s.fs.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]BatchFileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, path := range files {
		g.Go(func() error {
			results[i] = s.processFile(gctx, i, path, opts)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &BatchReport{Files: results}
	for _, r := range results {
		if r.Error != "" {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
	report.Duration = time.Since(start)
	s.logger.Info("Batch generation finished",
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Duration("duration", report.Duration))
	return report, nil
}

func (s *batchService) processFile(ctx context.Context, index int, path string, opts BatchOptions) BatchFileResult {
	res := BatchFileResult{Input: path}
	fail := func(stage string, err error) BatchFileResult {
		s.logger.Error("Batch file failed", zap.String("file", path), zap.String("stage", stage), zap.Error(err))
		res.Error = fmt.Sprintf("%s: %v", stage, err)
		return res
	}

	raw, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return fail("read", err)
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return fail("read", fmt.Errorf("file is empty"))
	}

	topic := opts.Topic
	if topic == "" {
		det, err := s.quiz.DetectTopics(ctx, &dto.DetectTopicsRequest{Text: text, TopN: 1})
		if err != nil {
			return fail("detect topic", err)
		}
		topic = det.Primary
	}
	res.Topic = topic

	total := opts.TotalCount
	if total <= 0 {
		total = DefaultTotalCount
	}
	mc := min(max(opts.MCCount, 0), total)
	openCount := total - mc
	req := &dto.GenerateQuizRequest{
		Topic:       topic,
		Text:        text,
		TotalCount:  &total,
		OpenCount:   &openCount,
		MCCount:     &mc,
		WithSummary: opts.WithSummary,
	}
	if opts.Seed != nil {
		seed := *opts.Seed + int64(index)
		req.Seed = &seed
	}

	quiz, err := s.quiz.GenerateQuiz(ctx, req)
	if err != nil {
		return fail("generate", err)
	}
	res.Questions = len(quiz.Questions)

	data, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		return fail("encode", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".json"
	out := filepath.Join(opts.OutputDir, name)
	if err := afero.WriteFile(s.fs, out, data, 0o644); err != nil {
		return fail("write", err)
	}
	res.Output = out

	s.logger.Info("Batch file done", zap.String("file", path), zap.String("topic", topic), zap.Int("questions", res.Questions))
	return res
}
