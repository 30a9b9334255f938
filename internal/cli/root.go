// Package cli implements the docmark command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmark/internal/config"
)

var version = "dev"

var (
	cfg       config.Config
	log       *slog.Logger
	verbose   bool
	scorer    string
	maxErrors int
)

var rootCmd = &cobra.Command{
	Use:   "docmark",
	Short: "Find important sentences and mark them where they appear",
	Long: `docmark ranks the sentences of a document and maps each ranked sentence
back onto the document's own text, tolerating collapsed whitespace, dropped
citation markers and small transcription errors.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&scorer, "scorer", "", "sentence scorer: claude or local (default from SCORER)")
	rootCmd.PersistentFlags().IntVar(&maxErrors, "max-errors", -2, "fuzzy error budget per sentence, -1 for exact (default from MATCH_MAX_ERRORS)")
}

func setup(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded
	if scorer != "" {
		cfg.Scorer = scorer
	}
	if cmd.Flags().Changed("max-errors") {
		cfg.MatchMaxErrors = maxErrors
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openInput(path string) (io.ReadCloser, string, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), "stdin.html", nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("open input: %w", err)
	}
	return f, path, nil
}
