package cli

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmark/internal/chunker"
	"github.com/dgallion1/docmark/internal/config"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/pipeline"
	"github.com/dgallion1/docmark/internal/rank"
)

// NewEngine builds the scorer chain and engine described by cfg. stats is nil
// for scorers that make no model calls. Call closeFn when done.
func NewEngine(cfg config.Config, log *slog.Logger) (engine *pipeline.Engine, stats *rank.LLMStats, closeFn func(), err error) {
	if err := cfg.ValidateScorer(); err != nil {
		return nil, nil, nil, err
	}

	chunkCfg := chunker.Config{BatchTokens: cfg.RankBatchTokens, MinWords: cfg.RankMinWords}
	closeFn = func() {}

	var base rank.Scorer
	switch cfg.Scorer {
	case config.ScorerClaude:
		stats = rank.NewLLMStats(0)
		claude := rank.NewClaudeScorer(cfg.AnthropicAPIKey, cfg.AnthropicModel, rank.ClaudeConfig{
			BaseURL:       cfg.AnthropicURL,
			Chunk:         chunkCfg,
			MaxConcurrent: cfg.MaxConcurrentScore,
			RatePerSecond: cfg.RankRatePerSec,
		}, stats, log)
		base = claude
		closeFn = claude.Close
	default:
		base = rank.LocalScorer{Chunk: chunkCfg}
	}

	cached, err := rank.NewCachedScorer(base, cfg.RankCacheSize, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("score cache: %w", err)
	}

	engine = pipeline.NewEngine(cached, pipeline.EngineConfig{
		Parser:       parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		TopFraction:  cfg.RankTopFraction,
		MaxErrors:    cfg.MatchMaxErrors,
		InclusiveEnd: cfg.MatchInclusiveEnd,
		Prefix:       cfg.HighlightPrefix,
	}, log)
	return engine, stats, closeFn, nil
}
