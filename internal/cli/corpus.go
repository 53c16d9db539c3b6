package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/notes-export/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Export all notes into a single aggregated text file",
		Long: "Append every note as a delimited text-only record into one file, " +
			"prefixed by a run header with an optional total token count.",
		Run: runCorpus,
	}

	cmd.Flags().String("out", "llm_export.txt", "Output file")
	cmd.Flags().Bool("no-tokens", false, "Skip token counting")

	RootCmd.AddCommand(cmd)
}

func runCorpus(cmd *cobra.Command, args []string) {
	outPath, _ := cmd.Flags().GetString("out")
	noTokens, _ := cmd.Flags().GetBool("no-tokens")

	logger := newLogger()
	s, err := openStore(logger)
	if err != nil {
		exitErr("open database", err)
	}
	defer s.Close()

	var counter export.TokenCounter
	if !noTokens {
		counter, err = export.NewTiktokenCounter()
		if err != nil {
			logger.Warn("tokenizer unavailable, token count will be omitted", "err", err)
			counter = nil
		}
	}

	logger.Info("corpus export", "db", getDBPath(), "out", outPath)
	e := export.New(s, getDataDir(), logger)
	written, tokens, err := e.ExportCorpus(cmd.Context(), outPath, counter)
	if err != nil {
		exitErr("corpus export", err)
	}
	logger.Info("corpus finished", "notes", written, "tokens", tokens)
}
