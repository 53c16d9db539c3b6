package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Subdir is the attachments directory created inside the export tree.
const Subdir = "_attachments"

var placeholderRE = regexp.MustCompile(`!\[ATTACHMENT\|([^|]+)\|([^\]]+)\]`)

// Materializer substitutes placeholder tokens in reconstructed note text,
// copying each referenced file into the attachments directory under a
// collision-safe name. Resolution is memoized per note: two placeholders
// for the same identifier share one lookup and one copy.
type Materializer struct {
	meta    Metadata
	locator *Locator
	destDir string
	logger  *slog.Logger
}

// NewMaterializer creates a Materializer writing into destDir, which must
// already exist.
func NewMaterializer(meta Metadata, locator *Locator, destDir string, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Materializer{meta: meta, locator: locator, destDir: destDir, logger: logger}
}

// Substitute rewrites every placeholder token in text. The scan moves
// strictly forward: each replacement is spliced in and scanning resumes
// after it, so replacement text containing bracket characters is never
// re-entered and the scan always terminates.
func (m *Materializer) Substitute(ctx context.Context, text, accountUUID string) string {
	memo := make(map[string]string)
	processed := text
	offset := 0
	for {
		loc := placeholderRE.FindStringSubmatchIndex(processed[offset:])
		if loc == nil {
			break
		}
		start, end := offset+loc[0], offset+loc[1]
		identifier := processed[offset+loc[2] : offset+loc[3]]
		uti := processed[offset+loc[4] : offset+loc[5]]

		repl := m.replacement(ctx, memo, identifier, uti, accountUUID)
		processed = processed[:start] + repl + processed[end:]
		offset = start + len(repl)
	}
	return processed
}

func (m *Materializer) replacement(ctx context.Context, memo map[string]string, identifier, declaredUTI, accountUUID string) string {
	if nonFileUTIs[declaredUTI] {
		return "[Unsupported: " + declaredUTI + "]"
	}
	if repl, hit := memo[identifier]; hit {
		return repl
	}
	repl := m.resolve(ctx, identifier, declaredUTI, accountUUID)
	memo[identifier] = repl
	return repl
}

// resolve performs the single lookup-locate-copy pass for one identifier.
// Every failure degrades to a bracketed marker naming the failure class.
func (m *Materializer) resolve(ctx context.Context, identifier, declaredUTI, accountUUID string) string {
	att, err := m.meta.AttachmentByIdentifier(ctx, identifier)
	if err != nil {
		m.logger.Warn("attachment row missing", "identifier", identifier, "uti", declaredUTI, "err", err)
		return "[Att DB missing: " + identifier + "]"
	}

	// The stored UTI is authoritative; the declared one fills in when the
	// row has none.
	if att.TypeUTI == "" {
		att.TypeUTI = declaredUTI
	}

	src, ok := m.locator.Locate(ctx, att, accountUUID)
	if !ok {
		name := identifier
		if att.Media != nil && att.Media.Filename != "" {
			name = att.Media.Filename
		}
		m.logger.Warn("attachment source missing", "identifier", identifier, "uti", att.TypeUTI)
		return "[Att source missing: " + name + "]"
	}

	baseName := filepath.Base(src)
	if att.Media != nil && att.Media.Filename != "" {
		baseName = att.Media.Filename
	}
	stem := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	safeStem := SanitizeFilename(stem)
	destName := fmt.Sprintf("%s_%d%s", safeStem, att.PK, ExtensionForUTI(att.TypeUTI, baseName))

	if err := copyFile(src, filepath.Join(m.destDir, destName)); err != nil {
		m.logger.Warn("copy attachment", "src", src, "err", err)
		return "[Error copy " + baseName + "]"
	}

	alt := strings.ReplaceAll(safeStem, "_", " ")
	rel := path.Join(Subdir, destName)
	switch Classify(att.TypeUTI) {
	case KindImage:
		return fmt.Sprintf("![%s](%s)", alt, rel)
	case KindPDF:
		return fmt.Sprintf("[%s (PDF)](%s)", alt, rel)
	default:
		return fmt.Sprintf("[%s (File)](%s)", alt, rel)
	}
}

// copyFile copies src to dst, carrying over the permission bits and
// modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, time.Now(), info.ModTime())
}
