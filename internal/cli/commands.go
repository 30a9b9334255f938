package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/highlight"
	"github.com/dgallion1/docmark/internal/pipeline"
)

var (
	sentenceTexts []string
	sentenceLevel string
	sentencesFile string
	outPath       string
	markStyle     string
)

var relevantCmd = &cobra.Command{
	Use:   "relevant [file]",
	Short: "Rank a document and print its important sentences",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelevant,
}

var locateCmd = &cobra.Command{
	Use:   "locate [file]",
	Short: "Locate sentences in a document and print their ranges",
	Long: `Locates each sentence in the document's text and prints the ranges as JSON,
grouped by importance level. Sentences come from --sentence flags or a JSON
file of {"txt", "level"} objects; without either the document is ranked first.`,
	Args: cobra.ExactArgs(1),
	RunE: runLocate,
}

var highlightCmd = &cobra.Command{
	Use:   "highlight [file]",
	Short: "Mark important sentences in a document",
	Long: `Writes the document with located sentences marked. HTML documents get <mark>
elements; other formats are printed as text with terminal colors or brackets.`,
	Args: cobra.ExactArgs(1),
	RunE: runHighlight,
}

func init() {
	for _, c := range []*cobra.Command{locateCmd, highlightCmd} {
		c.Flags().StringArrayVarP(&sentenceTexts, "sentence", "s", nil, "sentence to locate (repeatable)")
		c.Flags().StringVar(&sentenceLevel, "level", string(doctree.LevelHigh), "level for --sentence values")
		c.Flags().StringVar(&sentencesFile, "sentences", "", "JSON file of sentences to locate")
	}
	highlightCmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to a file instead of stdout")
	highlightCmd.Flags().StringVar(&markStyle, "style", "ansi", "text marking style: ansi or brackets")

	rootCmd.AddCommand(relevantCmd, locateCmd, highlightCmd)
}

func runRelevant(cmd *cobra.Command, args []string) error {
	engine, page, closeFn, err := loadPage(args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	sentences, err := engine.Relevant(cmd.Context(), page)
	if err != nil {
		return err
	}
	return printJSON(cmd, sentences)
}

func runLocate(cmd *cobra.Command, args []string) error {
	engine, page, closeFn, err := loadPage(args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	sentences, err := sentencesFor(cmd.Context(), engine, page)
	if err != nil {
		return err
	}
	return printJSON(cmd, engine.Locate(page, sentences))
}

func runHighlight(cmd *cobra.Command, args []string) error {
	engine, page, closeFn, err := loadPage(args[0])
	if err != nil {
		return err
	}
	defer closeFn()

	sentences, err := sentencesFor(cmd.Context(), engine, page)
	if err != nil {
		return err
	}
	groups := engine.Locate(page, sentences)

	var output string
	if page.Root != nil {
		marked, html, err := engine.Mark(page, groups)
		if err != nil {
			return err
		}
		log.Info("marked page", "marks", marked, "ranges", groups.Count())
		output = html
	} else {
		var m highlight.Marker = highlight.ANSIMarker{}
		switch markStyle {
		case "ansi":
		case "brackets":
			m = highlight.BracketMarker{}
		default:
			return fmt.Errorf("unknown style %q", markStyle)
		}
		output = highlight.Annotate(page, groups, m)
	}

	if outPath == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), output)
		return err
	}
	return os.WriteFile(outPath, []byte(output), 0o644)
}

func loadPage(path string) (*pipeline.Engine, *doctree.Page, func(), error) {
	engine, _, closeFn, err := NewEngine(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	in, name, err := openInput(path)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	defer in.Close()

	page, err := engine.Parse(in, name)
	if err != nil {
		closeFn()
		return nil, nil, nil, err
	}
	return engine, page, closeFn, nil
}

// sentencesFor gathers sentences from flags, falling back to ranking.
func sentencesFor(ctx context.Context, engine *pipeline.Engine, page *doctree.Page) ([]doctree.Sentence, error) {
	var sentences []doctree.Sentence
	if sentencesFile != "" {
		data, err := os.ReadFile(sentencesFile)
		if err != nil {
			return nil, fmt.Errorf("read sentences: %w", err)
		}
		if err := json.Unmarshal(data, &sentences); err != nil {
			return nil, fmt.Errorf("parse sentences: %w", err)
		}
		for i, s := range sentences {
			if _, err := doctree.ParseLevel(string(s.Level)); err != nil {
				return nil, fmt.Errorf("sentence %d: %w", i, err)
			}
		}
	}
	if len(sentenceTexts) > 0 {
		level, err := doctree.ParseLevel(sentenceLevel)
		if err != nil {
			return nil, err
		}
		for _, t := range sentenceTexts {
			sentences = append(sentences, doctree.Sentence{Text: t, Level: level})
		}
	}
	if sentences != nil {
		return sentences, nil
	}
	sentences, err := engine.Relevant(ctx, page)
	if err != nil {
		return nil, errors.Join(errors.New("no sentences given and ranking failed"), err)
	}
	return sentences, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
