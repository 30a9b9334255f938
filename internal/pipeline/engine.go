package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/rank"
	"github.com/dgallion1/docmark/internal/relocate"
	"github.com/dgallion1/docmark/internal/textindex"
)

// EngineConfig tunes the processing steps.
type EngineConfig struct {
	Parser       parser.Options
	TopFraction  float64 // Share of sentences kept by rank.Classify.
	MaxErrors    int     // Fuzzy error budget per sentence, 0 for the default, negative for exact.
	InclusiveEnd bool    // See relocate.WithInclusiveEnd.
	Prefix       string  // Class prefix for mark elements.
}

// Result is the outcome of processing one document.
type Result struct {
	Title     string             `json:"title"`
	Format    string             `json:"format"`
	Sentences []doctree.Sentence `json:"sentences"`
	Ranges    relocate.Groups    `json:"ranges"`
	Marked    int                `json:"marked"`
	HTML      string             `json:"html,omitempty"`
}

// Engine runs parse, rank, locate and highlight for a document.
type Engine struct {
	scorer rank.Scorer
	cfg    EngineConfig
	log    *slog.Logger
}

func NewEngine(scorer rank.Scorer, cfg EngineConfig, log *slog.Logger) *Engine {
	if cfg.TopFraction <= 0 {
		cfg.TopFraction = rank.DefaultTopFraction
	}
	if cfg.Prefix == "" {
		cfg.Prefix = highlight.DefaultPrefix
	}
	if log == nil {
		log = slog.Default()
	}
	return &Engine{scorer: scorer, cfg: cfg, log: log}
}

// Parse picks a parser by filename.
func (e *Engine) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	p, err := parser.ForFile(filename, e.cfg.Parser)
	if err != nil {
		return nil, err
	}
	page, err := p.Parse(r, filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return page, nil
}

// Relevant ranks the page's readable text. It fails with parser.ErrNotReadable
// or parser.ErrNoContent when there is nothing worth ranking.
func (e *Engine) Relevant(ctx context.Context, page *doctree.Page) ([]doctree.Sentence, error) {
	if err := parser.CheckReadable(page); err != nil {
		return nil, err
	}
	scored, err := e.scorer.Score(ctx, page.Article)
	if err != nil {
		return nil, fmt.Errorf("score: %w", err)
	}
	return rank.Classify(scored, e.cfg.TopFraction), nil
}

// Locate finds every sentence on the page.
func (e *Engine) Locate(page *doctree.Page, sentences []doctree.Sentence) relocate.Groups {
	return e.Relocator(page.Leaves).LocateAll(sentences)
}

// Relocator builds a relocator over leaves with the engine's settings.
func (e *Engine) Relocator(leaves []textindex.Leaf) *relocate.Relocator {
	return relocate.New(textindex.Build(leaves),
		relocate.WithMaxErrors(e.cfg.MaxErrors),
		relocate.WithInclusiveEnd(e.cfg.InclusiveEnd),
		relocate.WithLogger(e.log),
	)
}

// Mark applies groups to an HTML page and renders it. Pages without markup
// are returned unmarked with no HTML.
func (e *Engine) Mark(page *doctree.Page, groups relocate.Groups) (int, string, error) {
	marked, err := highlight.Apply(page, groups, e.cfg.Prefix)
	if errors.Is(err, highlight.ErrNotMarkable) && page.Root == nil {
		return 0, "", nil
	}
	if err != nil {
		return 0, "", err
	}
	out, err := highlight.RenderString(page)
	if err != nil {
		return 0, "", fmt.Errorf("render: %w", err)
	}
	return marked, out, nil
}

// Process runs every step, reporting each phase to progress if set.
func (e *Engine) Process(ctx context.Context, r io.Reader, filename string, progress func(JobStatus)) (*Result, error) {
	report := func(s JobStatus) {
		if progress != nil {
			progress(s)
		}
	}

	report(StatusParsing)
	page, err := e.Parse(r, filename)
	if err != nil {
		return nil, err
	}

	report(StatusRanking)
	sentences, err := e.Relevant(ctx, page)
	if err != nil {
		return nil, err
	}

	report(StatusLocating)
	groups := e.Locate(page, sentences)

	report(StatusHighlighting)
	marked, out, err := e.Mark(page, groups)
	if err != nil {
		return nil, err
	}

	e.log.Info("processed document",
		"filename", filename,
		"format", page.Format,
		"sentences", len(sentences),
		"ranges", groups.Count(),
		"marked", marked,
	)
	return &Result{
		Title:     page.Title,
		Format:    page.Format,
		Sentences: sentences,
		Ranges:    groups,
		Marked:    marked,
		HTML:      out,
	}, nil
}
