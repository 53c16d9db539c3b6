package attachment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/rcliao/notes-export/internal/model"
)

// Metadata supplies the database side of attachment resolution.
type Metadata interface {
	AttachmentByIdentifier(ctx context.Context, identifier string) (*model.Attachment, error)
	FallbackImage(ctx context.Context, attachmentPK int64) (model.FallbackRef, error)
	FallbackPDF(ctx context.Context, attachmentPK int64) (model.FallbackRef, error)
	PreviewGeometry(ctx context.Context, attachmentPK int64) (model.PreviewGeometry, error)
}

// Locator finds the on-disk source file for an attachment. Candidate bases
// are tried in priority order (account-scoped directory first, then the
// top-level data directory); within each base the applicable strategies run
// in a fixed order and the first existing path wins.
type Locator struct {
	meta     Metadata
	dataRoot string
	logger   *slog.Logger
}

// NewLocator creates a Locator rooted at the Notes data directory.
func NewLocator(meta Metadata, dataRoot string, logger *slog.Logger) *Locator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{meta: meta, dataRoot: dataRoot, logger: logger}
}

// Locate returns the source path for an attachment row, or ok=false when no
// strategy yields an existing file. accountUUID may be empty when the
// owning account is unknown.
func (l *Locator) Locate(ctx context.Context, att *model.Attachment, accountUUID string) (string, bool) {
	bases := []string{l.dataRoot}
	if accountUUID != "" {
		bases = []string{filepath.Join(l.dataRoot, "Accounts", accountUUID), l.dataRoot}
	}

	rels := l.candidates(ctx, att)
	for _, base := range bases {
		for _, rel := range rels {
			p := filepath.Join(base, rel)
			if fileExists(p) {
				return p, true
			}
		}
	}
	return "", false
}

// candidates builds the base-relative candidate paths for an attachment.
// The strategies are keyed by content kind but share one priority list:
// standard media, drawing fallback image, scanned-document fallback PDF,
// gallery preview.
func (l *Locator) candidates(ctx context.Context, att *model.Attachment) []string {
	var rels []string

	if m := att.Media; m != nil && m.Identifier != "" && m.Filename != "" {
		rels = append(rels, mediaCandidates(m)...)
	}
	if drawingUTIs[att.TypeUTI] {
		rels = append(rels, l.fallbackImageCandidates(ctx, att.PK)...)
	}
	if att.TypeUTI == utiScanPDF {
		rels = append(rels, l.fallbackPDFCandidates(ctx, att.PK)...)
	}
	if att.TypeUTI == utiGallery {
		rels = append(rels, l.previewCandidates(ctx, att.PK)...)
	}
	return rels
}

// mediaCandidates yields the generation-suffixed media path followed by the
// generation-less path. The latter is a hard fallback even when no
// generation value exists (the two then coincide and collapse to one probe).
func mediaCandidates(m *model.Media) []string {
	withGen := filepath.Join("Media", m.Identifier, m.Generation, m.Filename)
	noGen := filepath.Join("Media", m.Identifier, m.Filename)
	if withGen == noGen {
		return []string{noGen}
	}
	return []string{withGen, noGen}
}

func (l *Locator) fallbackImageCandidates(ctx context.Context, attachmentPK int64) []string {
	ref, err := l.meta.FallbackImage(ctx, attachmentPK)
	if err != nil || ref.Identifier == "" {
		l.logDegrade("fallback image", attachmentPK, err)
		return nil
	}
	var rels []string
	if ref.Generation != "" {
		rels = append(rels, filepath.Join("FallbackImages", ref.Identifier, ref.Generation, "FallbackImage.png"))
	}
	rels = append(rels,
		filepath.Join("FallbackImages", ref.Identifier+".jpg"),
		filepath.Join("FallbackImages", ref.Identifier+".png"),
	)
	return rels
}

func (l *Locator) fallbackPDFCandidates(ctx context.Context, attachmentPK int64) []string {
	ref, err := l.meta.FallbackPDF(ctx, attachmentPK)
	if err != nil || ref.Identifier == "" {
		l.logDegrade("fallback pdf", attachmentPK, err)
		return nil
	}
	// Generation may legitimately be empty here.
	return []string{filepath.Join("FallbackPDFs", ref.Identifier, ref.Generation, "FallbackPDF.pdf")}
}

func (l *Locator) previewCandidates(ctx context.Context, attachmentPK int64) []string {
	geo, err := l.meta.PreviewGeometry(ctx, attachmentPK)
	if err != nil || geo.Identifier == "" || geo.Width == 0 || geo.Height == 0 {
		l.logDegrade("gallery preview", attachmentPK, err)
		return nil
	}
	name := fmt.Sprintf("%s-1-%dx%d-0.jpeg", geo.Identifier, geo.Width, geo.Height)
	return []string{filepath.Join("Previews", name)}
}

func (l *Locator) logDegrade(strategy string, attachmentPK int64, err error) {
	if err != nil {
		l.logger.Debug("strategy metadata unavailable", "strategy", strategy, "attachment_pk", attachmentPK, "err", err)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
