package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/notes-export/internal/export"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export notes as per-note Markdown documents",
		Long: "Write one Markdown file per note into the output directory, plus a " +
			"shared _attachments directory holding copies of every resolved attachment.",
		Run: runExport,
	}

	cmd.Flags().StringP("output-dir", "o", "exported_notes", "Output directory")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	outDir, _ := cmd.Flags().GetString("output-dir")

	logger := newLogger()
	s, err := openStore(logger)
	if err != nil {
		exitErr("open database", err)
	}
	defer s.Close()

	logger.Info("markdown export", "db", getDBPath(), "out", outDir)
	e := export.New(s, getDataDir(), logger)
	written, err := e.ExportMarkdown(cmd.Context(), outDir)
	if err != nil {
		exitErr("export", err)
	}
	logger.Info("export finished", "notes", written)
}
