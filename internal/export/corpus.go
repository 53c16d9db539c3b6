package export

import (
	"fmt"
	"io"
	"time"
)

// Corpus record delimiters. Downstream consumers split on these, so they
// are format constants.
const (
	corpusRecordStart = "--- NOTE START ---"
	corpusRecordEnd   = "--- NOTE END ---"
)

// AppendCorpusRecord writes one delimited note record to the aggregate
// stream. content is expected to be text-only reconstructed output.
func AppendCorpusRecord(w io.Writer, title string, modified *time.Time, content string) error {
	modStr := "Unknown Date"
	if modified != nil {
		modStr = modified.Format(timeFormat)
	}
	_, err := fmt.Fprintf(w, "%s\nTitle: %s\nModified: %s\nContent:\n%s\n%s\n\n",
		corpusRecordStart, title, modStr, content, corpusRecordEnd)
	return err
}

// WriteCorpusHeader writes the run header that precedes the note records.
// tokens of zero means the count is unavailable and the token line is
// omitted.
func WriteCorpusHeader(w io.Writer, exportedAt time.Time, runID string, tokens int) error {
	if _, err := fmt.Fprintf(w, "# Apple Notes Export for LLM\n# Exported on: %s\n# Run ID: %s\n",
		exportedAt.Format(timeFormat), runID); err != nil {
		return err
	}
	if tokens > 0 {
		if _, err := fmt.Fprintf(w, "# Total Tokens (%s): %d\n", Encoding, tokens); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\n---\n\n")
	return err
}
