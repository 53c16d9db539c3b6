package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/notes-export/internal/attachment"
	"github.com/rcliao/notes-export/internal/model"
	"github.com/rcliao/notes-export/internal/notedata"
	"github.com/rcliao/notes-export/internal/store"
)

// progressEvery is the note interval between progress log lines.
const progressEvery = 100

// Exporter drives a full export run. Notes are processed strictly one at a
// time: decompressed, parsed, reconstructed, and materialized before the
// next begins.
type Exporter struct {
	Store    *store.SQLiteStore
	Resolver *store.Resolver
	DataRoot string
	Logger   *slog.Logger
}

// New creates an Exporter with its own Resolver over the store's lookups.
func New(s *store.SQLiteStore, dataRoot string, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		Store:    s,
		Resolver: store.NewResolver(s, s),
		DataRoot: dataRoot,
		Logger:   logger,
	}
}

func (e *Exporter) listNotes(ctx context.Context) ([]model.Note, error) {
	notes, skips, err := e.Store.ListNotes(ctx, e.Resolver)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	e.Logger.Info("notes filtered",
		"exportable", len(notes),
		"trash", skips.Trash, "smart", skips.Smart,
		"no_data", skips.NoData, "no_folder", skips.NoFolder)
	return notes, nil
}

// ExportMarkdown writes one Markdown document per note into outDir plus a
// shared attachments subdirectory. Per-note write failures are logged and
// skipped; the run continues. Returns the number of documents written.
func (e *Exporter) ExportMarkdown(ctx context.Context, outDir string) (int, error) {
	notes, err := e.listNotes(ctx)
	if err != nil {
		return 0, err
	}

	attachDir := filepath.Join(outDir, attachment.Subdir)
	if err := os.MkdirAll(attachDir, 0o755); err != nil {
		return 0, fmt.Errorf("create output dir: %w", err)
	}

	locator := attachment.NewLocator(e.Store, e.DataRoot, e.Logger)
	mat := attachment.NewMaterializer(e.Store, locator, attachDir, e.Logger)

	written := 0
	for i, n := range notes {
		body, ok := notedata.Decode(n.Data, notedata.WithPlaceholders)
		if !ok {
			e.Logger.Warn("note body degraded to sentinel", "pk", n.PK, "body", body)
		}
		title := DeriveTitle(n.Title, n.Snippet, body, n.PK)

		accountUUID, err := e.Resolver.AccountUUID(ctx, n.OwnerPK)
		if err != nil {
			return written, fmt.Errorf("resolve account for note %d: %w", n.PK, err)
		}

		final := mat.Substitute(ctx, body, accountUUID)
		doc := RenderDocument(title, n.Created, n.Modified, final)

		dest := filepath.Join(outDir, NoteFilename(title, n.PK))
		if err := os.WriteFile(dest, []byte(doc), 0o644); err != nil {
			e.Logger.Error("write note, skipping", "pk", n.PK, "path", dest, "err", err)
			continue
		}
		written++

		if (i+1)%progressEvery == 0 || i+1 == len(notes) {
			e.Logger.Info("progress", "processed", i+1, "total", len(notes))
		}
	}
	return written, nil
}

// ExportCorpus writes all notes as delimited records into a single corpus
// file at outPath. Records stream to a temp file first so the header can
// carry the total token count; counter may be nil to skip counting.
// Returns the number of records and the token count.
func (e *Exporter) ExportCorpus(ctx context.Context, outPath string, counter TokenCounter) (int, int, error) {
	notes, err := e.listNotes(ctx)
	if err != nil {
		return 0, 0, err
	}

	runID := ulid.Make().String()
	tmpPath := filepath.Join(os.TempDir(), "notes-export-"+runID+".txt")
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return 0, 0, fmt.Errorf("create temp corpus: %w", err)
	}
	defer os.Remove(tmpPath)

	written := 0
	for i, n := range notes {
		text, _ := notedata.Decode(n.Data, notedata.TextOnly)
		title := DeriveTitle(n.Title, n.Snippet, text, n.PK)
		if err := AppendCorpusRecord(tmp, title, n.Modified, text); err != nil {
			tmp.Close()
			return written, 0, fmt.Errorf("append note %d: %w", n.PK, err)
		}
		written++
		if (i+1)%progressEvery == 0 || i+1 == len(notes) {
			e.Logger.Info("progress", "processed", i+1, "total", len(notes))
		}
	}
	if err := tmp.Close(); err != nil {
		return written, 0, fmt.Errorf("close temp corpus: %w", err)
	}

	tokens := 0
	if counter != nil {
		tokens, err = CountFileTokens(tmpPath, counter)
		if err != nil {
			e.Logger.Warn("token counting failed, omitting count", "err", err)
			tokens = 0
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return written, tokens, fmt.Errorf("create corpus: %w", err)
	}
	if err := e.writeCorpus(out, tmpPath, runID, tokens); err != nil {
		out.Close()
		return written, tokens, err
	}
	if err := out.Close(); err != nil {
		return written, tokens, fmt.Errorf("close corpus: %w", err)
	}
	return written, tokens, nil
}

func (e *Exporter) writeCorpus(out io.Writer, tmpPath, runID string, tokens int) error {
	if err := WriteCorpusHeader(out, time.Now(), runID, tokens); err != nil {
		return fmt.Errorf("write corpus header: %w", err)
	}
	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("reopen temp corpus: %w", err)
	}
	defer src.Close()
	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}
