// Package export composes the final per-note documents and the aggregated
// corpus from reconstructed note text.
package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/notes-export/internal/attachment"
	"github.com/rcliao/notes-export/internal/notedata"
)

const (
	timeFormat  = "2006-01-02 15:04:05"
	maxTitleLen = 80
)

// DeriveTitle picks a display title for a note: the explicit title, else the
// first non-placeholder line of the body, else the snippet, else a
// synthesized label from the primary key.
func DeriveTitle(explicit, snippet, body string, pk int64) string {
	if explicit != "" {
		return explicit
	}
	if trimmed := strings.TrimSpace(body); trimmed != "" {
		first := strings.TrimSpace(strings.SplitN(trimmed, "\n", 2)[0])
		if first != "" && !strings.HasPrefix(first, "![ATTACHMENT") {
			return truncate(first, maxTitleLen)
		}
	}
	if snippet != "" {
		return strings.TrimSpace(truncate(snippet, maxTitleLen))
	}
	return fmt.Sprintf("Untitled_Note_%d", pk)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// NoteFilename builds the output filename for a note document. The primary
// key suffix keeps same-titled notes from colliding.
func NoteFilename(title string, pk int64) string {
	return fmt.Sprintf("%s_%d.md", attachment.SanitizeFilename(title), pk)
}

// RenderDocument lays out one note document: heading, optional metadata
// block, separator, then the body with the object replacement character
// stripped.
func RenderDocument(title string, created, modified *time.Time, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)

	var meta []string
	if created != nil {
		meta = append(meta, "**Created:** "+created.Format(timeFormat))
	}
	if modified != nil {
		meta = append(meta, "**Modified:** "+modified.Format(timeFormat))
	}
	if len(meta) > 0 {
		b.WriteString(strings.Join(meta, "\n"))
		b.WriteString("\n\n---\n\n")
	}

	b.WriteString(strings.ReplaceAll(body, notedata.ObjectReplacementChar, ""))
	b.WriteString("\n")
	return b.String()
}
