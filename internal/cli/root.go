// Package cli implements the notes-export CLI commands.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/notes-export/internal/store"
)

var (
	dbPath  string
	dataDir string
	verbose bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "notes-export",
	Short: "Export Apple Notes to Markdown or an LLM corpus",
	Long: "Reads NoteStore.sqlite directly, reconstructs note text from its " +
		"compressed binary records, and resolves embedded attachments to files on disk.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "",
		"Path to NoteStore.sqlite (default: $NOTES_EXPORT_DB or the Notes group container)")
	RootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"Notes data directory holding the Media/FallbackImages/Previews trees (default: the database directory)")
	RootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("NOTES_EXPORT_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, "Library", "Group Containers", "group.com.apple.notes", "NoteStore.sqlite")
}

func getDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	return filepath.Dir(getDBPath())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func openStore(logger *slog.Logger) (*store.SQLiteStore, error) {
	return store.NewSQLiteStore(getDBPath(), logger)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
