package attachment

import (
	"strings"
	"unicode"
)

const maxFilenameLen = 150

// SanitizeFilename reduces a name to letters, digits, spaces, underscores,
// and hyphens, collapses whitespace runs into single underscores, and bounds
// the length. Empty results become "Untitled".
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == ' ' || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	joined := strings.Join(strings.Fields(b.String()), "_")
	runes := []rune(joined)
	if len(runes) > maxFilenameLen {
		joined = string(runes[:maxFilenameLen])
	}
	joined = strings.TrimSpace(joined)
	if joined == "" {
		return "Untitled"
	}
	return joined
}
