package notedata

import (
	"fmt"
	"strings"
)

// Mode selects how attachment runs are rendered during reconstruction.
type Mode int

const (
	// WithPlaceholders renders each attachment run as an inline
	// ![ATTACHMENT|id|uti] token for later substitution.
	WithPlaceholders Mode = iota
	// TextOnly drops attachment runs entirely and strips the object
	// replacement character; used for corpus aggregation.
	TextOnly
)

// ObjectReplacementChar is the reserved code point Notes uses to stand in
// for embedded objects in the text buffer.
const ObjectReplacementChar = "￼"

// Sentinel bodies substituted when a note cannot be decoded. Per-note decode
// failures never abort a run; the sentinel becomes the note body.
const (
	SentinelNoData          = "[No data blob]"
	SentinelDecompressError = "[Decompression failed]"
	SentinelNoNote          = "[Doc/Note not found in Proto]"
	SentinelDecodeError     = "[Proto decode error]"
)

// Placeholder formats the inline token for an attachment reference.
func Placeholder(identifier, uti string) string {
	return fmt.Sprintf("![ATTACHMENT|%s|%s]", identifier, uti)
}

// Reconstruct replays the attribute runs against the text buffer. Runs are
// consumed in order, each covering the next Length code points of the
// buffer; attachment runs contribute a placeholder token (or nothing in
// TextOnly mode) instead of their buffer content. A note without runs
// reconstructs to its entire buffer. Returns false when the runs overrun
// the buffer, which means the record violates its own length invariant.
func Reconstruct(note *Note, mode Mode) (string, bool) {
	if len(note.Runs) == 0 {
		if mode == TextOnly {
			return cleanTextOnly(note.Text), true
		}
		return note.Text, true
	}

	content := []rune(note.Text)
	var b strings.Builder
	pos := 0
	for _, run := range note.Runs {
		end := pos + int(run.Length)
		if run.Length < 0 || end > len(content) {
			return "", false
		}
		switch {
		case run.Attachment == nil:
			b.WriteString(string(content[pos:end]))
		case mode == WithPlaceholders:
			b.WriteString(Placeholder(run.Attachment.Identifier, run.Attachment.TypeUTI))
		}
		pos = end
	}

	if mode == TextOnly {
		return cleanTextOnly(b.String()), true
	}
	return b.String(), true
}

func cleanTextOnly(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ObjectReplacementChar, ""))
}

// Decode runs the full blob-to-text chain: decompress, parse, reconstruct.
// Every failure degrades to a sentinel body rather than an error; the
// second return reports whether decoding actually succeeded.
func Decode(blob []byte, mode Mode) (string, bool) {
	if len(blob) == 0 {
		return SentinelNoData, false
	}
	raw, err := Decompress(blob)
	if err != nil {
		return SentinelDecompressError, false
	}
	doc, err := Parse(raw)
	if err != nil {
		return SentinelDecodeError, false
	}
	if doc.Note == nil {
		return SentinelNoNote, false
	}
	text, ok := Reconstruct(doc.Note, mode)
	if !ok {
		return SentinelDecodeError, false
	}
	return text, true
}
