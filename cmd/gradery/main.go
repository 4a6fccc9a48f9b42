// Command gradery runs the exam grading pipeline as a batch tool.
//
// Subcommands:
//
//	ingest  parse a marking-scheme text file into scheme artifacts
//	        (points, metadata, embedding index)
//	score   score a students_ocr.csv against ingested artifacts into
//	        final_scores.csv
//	search  query the point index with free text (nearest neighbours)
//
// PDF extraction, cropping, and OCR are upstream collaborators; ingest
// consumes their text output.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/gradery/gradery/internal/config"
	"github.com/gradery/gradery/internal/domain"
	"github.com/gradery/gradery/internal/index"
	"github.com/gradery/gradery/internal/judge"
	"github.com/gradery/gradery/internal/scheme"
	"github.com/gradery/gradery/internal/scoring"
	"github.com/gradery/gradery/internal/store"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "ingest":
		err = runIngest(ctx, cfg, logger, os.Args[2:])
	case "score":
		err = runScore(ctx, cfg, logger, os.Args[2:])
	case "search":
		err = runSearch(ctx, cfg, logger, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("run failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gradery <ingest|score|search> [flags]")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func newEmbedder(cfg *config.Config) (index.Embedder, error) {
	return index.NewOrtEmbedder(index.OrtConfig{
		LibraryPath:   cfg.OrtLibrary,
		ModelPath:     cfg.EmbedModel,
		TokenizerPath: cfg.EmbedTokenizer,
		MaxSeqLen:     cfg.EmbedMaxSeqLen,
	})
}

func runIngest(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	schemePath := fs.String("scheme", "", "path to the marking-scheme text file")
	outDir := fs.String("out", "scheme_artifacts", "artifacts output directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *schemePath == "" {
		return fmt.Errorf("ingest: -scheme is required")
	}

	raw, err := os.ReadFile(*schemePath)
	if err != nil {
		return fmt.Errorf("read scheme document: %w", err)
	}

	points, err := scheme.NewRegexSegmenter().Segment(string(raw))
	if err != nil {
		return fmt.Errorf("segment scheme document: %w", err)
	}
	logger.Info("scheme segmented", "points", len(points))

	emb, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	defer emb.Close()

	flat, err := index.Build(ctx, emb, points, *outDir)
	if err != nil {
		return err
	}
	logger.Info("scheme artifacts written",
		"dir", *outDir, "vectors", flat.Len(), "dim", flat.Dim())
	return nil
}

func runScore(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("score", flag.ExitOnError)
	answersPath := fs.String("answers", "students_ocr.csv", "path to the OCR answers CSV")
	artifactsDir := fs.String("artifacts", "scheme_artifacts", "scheme artifacts directory")
	outPath := fs.String("out", "final_scores.csv", "output scores CSV")
	if err := fs.Parse(args); err != nil {
		return err
	}

	meta, err := index.ReadMeta(index.Artifacts{Dir: *artifactsDir}.MetaPath())
	if err != nil {
		return fmt.Errorf("read scheme metadata: %w", err)
	}
	answers, err := scoring.ReadAnswersFile(*answersPath)
	if err != nil {
		return fmt.Errorf("read answers: %w", err)
	}

	client, err := judge.NewClientFromConfig(judge.BackendConfig{
		OllamaModels: cfg.OllamaModels,
		GeminiAPIKey: cfg.GeminiAPIKey,
		GeminiModel:  cfg.GeminiModel,
	}, logger)
	if err != nil {
		return err
	}
	logger.Info("judge fallback list", "backends", strings.Join(client.Backends(), ", "))

	engine := scoring.NewEngine(index.PointsByQuestion(meta), client, logger)
	records, err := engine.ScoreAll(ctx, answers)
	if err != nil {
		// Run-fatal: abandon remaining rows rather than scoring them all
		// as errors. Nothing is written.
		return err
	}

	if err := scoring.WriteRecordsFile(*outPath, records); err != nil {
		return fmt.Errorf("write scores: %w", err)
	}
	logger.Info("scores written", "path", *outPath, "rows", len(records))

	if cfg.DBDriver != "" {
		if err := archiveRun(ctx, cfg, logger, records); err != nil {
			// The CSV is the canonical output; a failed archive is worth a
			// warning, not a failed run.
			logger.Warn("archive failed", "error", err)
		}
	}
	return nil
}

func archiveRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, records []domain.ScoreRecord) error {
	db, err := store.Open(ctx, store.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := store.New(db).SaveRun(ctx, records)
	if err != nil {
		return err
	}
	logger.Info("run archived", "run_id", runID)
	return nil
}

func runSearch(ctx context.Context, cfg *config.Config, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	artifactsDir := fs.String("artifacts", "scheme_artifacts", "scheme artifacts directory")
	query := fs.String("query", "", "free-text query")
	k := fs.Int("k", 5, "number of neighbours")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *query == "" {
		return fmt.Errorf("search: -query is required")
	}

	flat, meta, err := index.Load(*artifactsDir)
	if err != nil {
		return err
	}

	emb, err := newEmbedder(cfg)
	if err != nil {
		return fmt.Errorf("initialize embedder: %w", err)
	}
	defer emb.Close()

	vecs, err := emb.EmbedTexts(ctx, []string{*query})
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}
	hits, err := flat.Search(vecs[0], *k)
	if err != nil {
		return err
	}

	for _, h := range hits {
		pt := meta[h.FID]
		fmt.Printf("%.4f  q%s.%d (%d marks)  %s\n",
			h.Score, pt.QuestionID, pt.PointIndex, pt.Marks, pt.Text)
	}
	logger.Info("search complete", "hits", len(hits))
	return nil
}
