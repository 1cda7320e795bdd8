package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"groundchat/internal/summarizer"
)

var summarySentences int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base and report its status",
	Long: `Extract, chunk and index the knowledge folder once and print what was found.

Examples:
  groundchat index
  groundchat index --summary 3`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().IntVar(&summarySentences, "summary", 0, "Print an extractive digest of this many sentences")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	kb := a.indexer.Knowledge(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Folder:     %s\n", kb.Corpus.Dir)
	fmt.Fprintf(out, "Documents:  %d\n", len(kb.Documents()))
	fmt.Fprintf(out, "Skipped:    %d\n", len(kb.Corpus.Skipped))
	fmt.Fprintf(out, "Chunks:     %d\n", len(kb.Chunks))
	fmt.Fprintf(out, "Embedder:   %s\n", a.embedder)
	switch {
	case kb.IndexReady():
		fmt.Fprintln(out, "Retrieval:  semantic")
	case kb.Empty():
		fmt.Fprintln(out, "Retrieval:  none (no knowledge available)")
	default:
		fmt.Fprintf(out, "Retrieval:  truncation (%v)\n", kb.BuildErr)
	}

	if len(kb.Documents()) > 0 {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "DOCUMENT\tPAGES\tCHARACTERS")
		for _, d := range kb.Documents() {
			_, _ = fmt.Fprintf(w, "%s\t%d\t%d\n", d.Path, d.Pages, len([]rune(d.Text)))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	for _, path := range kb.Corpus.Skipped {
		fmt.Fprintf(out, "skipped: %s\n", path)
	}

	if summarySentences > 0 && !kb.Empty() {
		fmt.Fprintf(out, "\nSummary:\n%s\n", summarizer.NewFrequencySummarizer().Summarize(kb.Corpus.RawText(), summarySentences))
	}
	return nil
}
