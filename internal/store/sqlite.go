// Package store provides read-only access to the Apple Notes database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/rcliao/notes-export/internal/model"
)

// ErrNotFound reports a row that does not exist in the database.
var ErrNotFound = errors.New("not found")

// SQLiteStore reads the NoteStore database. It never writes: the database is
// owned by Notes itself and is opened in read-only mode.
type SQLiteStore struct {
	db     *sql.DB
	ids    model.EntityIDs
	logger *slog.Logger
}

// NewSQLiteStore opens the database at dbPath read-only and discovers the
// entity discriminators. A missing file or an unreachable database is fatal
// for the run.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("database not found: %w", err)
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect db: %w", err)
	}

	s := &SQLiteStore{db: db, ids: model.DefaultEntityIDs(), logger: logger}
	s.discoverEntityIDs(context.Background())
	return s, nil
}

// EntityIDs returns the discriminators in use for this database.
func (s *SQLiteStore) EntityIDs() model.EntityIDs { return s.ids }

// discoverEntityIDs reads Z_PRIMARYKEY for the per-database Z_ENT values.
// Databases without the table keep the defaults.
func (s *SQLiteStore) discoverEntityIDs(ctx context.Context) {
	rows, err := s.db.QueryContext(ctx, `SELECT Z_NAME, Z_ENT FROM Z_PRIMARYKEY`)
	if err != nil {
		s.logger.Debug("entity discovery unavailable, using defaults", "err", err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var ent int64
		if err := rows.Scan(&name, &ent); err != nil {
			continue
		}
		switch name {
		case "ICNote":
			s.ids.Note = ent
		case "ICFolder":
			s.ids.Folder = ent
		case "ICAttachment":
			s.ids.Attachment = ent
		case "ICMedia":
			s.ids.Media = ent
		case "ICAccount":
			s.ids.Account = ent
		default:
			continue
		}
		s.logger.Debug("discovered entity", "name", name, "z_ent", ent)
	}
}

// SkipCounts tallies notes excluded from an export, by reason.
type SkipCounts struct {
	Trash    int `json:"trash"`
	Smart    int `json:"smart"`
	NoData   int `json:"no_data"`
	NoFolder int `json:"no_folder"`
}

// ListNotes returns the exportable notes, newest first. Notes in the trash,
// in smart folders, without a folder, or without a data blob are skipped and
// counted. Folder ownership is resolved through r and recorded on each note.
func (s *SQLiteStore) ListNotes(ctx context.Context, r *Resolver) ([]model.Note, SkipCounts, error) {
	var skips SkipCounts

	rows, err := s.db.QueryContext(ctx,
		`SELECT Z_PK, ZTITLE1, ZSNIPPET, ZCREATIONDATE1, ZMODIFICATIONDATE1, ZFOLDER, ZNOTEDATA
		 FROM ZICCLOUDSYNCINGOBJECT WHERE Z_ENT = ?
		 ORDER BY ZMODIFICATIONDATE1 DESC`, s.ids.Note)
	if err != nil {
		return nil, skips, fmt.Errorf("query notes: %w", err)
	}
	defer rows.Close()

	type candidate struct {
		note   model.Note
		dataPK int64
	}
	var candidates []candidate
	for rows.Next() {
		var (
			n                  model.Note
			title, snippet     sql.NullString
			created, modified  sql.NullFloat64
			folderPK, noteData sql.NullInt64
		)
		if err := rows.Scan(&n.PK, &title, &snippet, &created, &modified, &folderPK, &noteData); err != nil {
			return nil, skips, fmt.Errorf("scan note: %w", err)
		}
		n.Title = title.String
		n.Snippet = snippet.String
		n.Created = model.FromAppleTime(created.Float64)
		n.Modified = model.FromAppleTime(modified.Float64)

		if !noteData.Valid {
			skips.NoData++
			continue
		}
		if !folderPK.Valid {
			skips.NoFolder++
			continue
		}
		n.FolderPK = folderPK.Int64
		candidates = append(candidates, candidate{note: n, dataPK: noteData.Int64})
	}
	if err := rows.Err(); err != nil {
		return nil, skips, fmt.Errorf("iterate notes: %w", err)
	}

	var notes []model.Note
	for _, c := range candidates {
		ftype, known, err := r.FolderType(ctx, c.note.FolderPK)
		if err != nil {
			return nil, skips, err
		}
		if !known {
			skips.NoFolder++
			continue
		}
		switch ftype {
		case model.FolderTypeSmart:
			skips.Smart++
			continue
		case model.FolderTypeTrash:
			skips.Trash++
			continue
		}

		owner, err := r.FolderOwner(ctx, c.note.FolderPK)
		if err != nil {
			return nil, skips, err
		}
		c.note.OwnerPK = owner

		blob, err := s.noteData(ctx, c.dataPK)
		if err != nil {
			return nil, skips, err
		}
		if len(blob) == 0 {
			skips.NoData++
			continue
		}
		c.note.Data = blob
		notes = append(notes, c.note)
	}

	return notes, skips, nil
}

func (s *SQLiteStore) noteData(ctx context.Context, dataPK int64) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT ZDATA FROM ZICNOTEDATA WHERE Z_PK = ?`, dataPK).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query note data %d: %w", dataPK, err)
	}
	return blob, nil
}

// AttachmentByIdentifier looks up an attachment row by its external
// identifier, including its linked media row when one exists. Returns
// ErrNotFound when no attachment row matches.
func (s *SQLiteStore) AttachmentByIdentifier(ctx context.Context, identifier string) (*model.Attachment, error) {
	var (
		att     model.Attachment
		typeUTI sql.NullString
		mediaPK sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT Z_PK, ZTYPEUTI, ZMEDIA FROM ZICCLOUDSYNCINGOBJECT
		 WHERE ZIDENTIFIER = ? AND Z_ENT = ?`, identifier, s.ids.Attachment).
		Scan(&att.PK, &typeUTI, &mediaPK)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attachment %q: %w", identifier, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query attachment %q: %w", identifier, err)
	}
	att.TypeUTI = typeUTI.String

	if !mediaPK.Valid {
		return &att, nil
	}
	att.MediaPK = mediaPK.Int64

	media, err := s.mediaByPK(ctx, mediaPK.Int64)
	if err != nil {
		return nil, err
	}
	att.Media = media
	return &att, nil
}

// mediaByPK reads the media row. Older schemas lack the ZGENERATION1 column;
// those are re-queried without it and the generation treated as absent.
func (s *SQLiteStore) mediaByPK(ctx context.Context, pk int64) (*model.Media, error) {
	var id, filename, generation sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT ZIDENTIFIER, ZFILENAME, ZGENERATION1 FROM ZICCLOUDSYNCINGOBJECT
		 WHERE Z_PK = ? AND Z_ENT = ?`, pk, s.ids.Media).
		Scan(&id, &filename, &generation)
	if err != nil && strings.Contains(err.Error(), "no such column: ZGENERATION1") {
		s.logger.Warn("ZGENERATION1 column missing, assuming pre-generation schema")
		err = s.db.QueryRowContext(ctx,
			`SELECT ZIDENTIFIER, ZFILENAME FROM ZICCLOUDSYNCINGOBJECT
			 WHERE Z_PK = ? AND Z_ENT = ?`, pk, s.ids.Media).
			Scan(&id, &filename)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query media %d: %w", pk, err)
	}
	return &model.Media{
		Identifier: id.String,
		Filename:   filename.String,
		Generation: generation.String,
	}, nil
}

// FallbackImage returns the fallback-image reference for a drawing-family
// attachment row.
func (s *SQLiteStore) FallbackImage(ctx context.Context, attachmentPK int64) (model.FallbackRef, error) {
	return s.fallbackRef(ctx, attachmentPK, "ZFALLBACKIMAGEGENERATION")
}

// FallbackPDF returns the fallback-PDF reference for a scanned-document
// attachment row.
func (s *SQLiteStore) FallbackPDF(ctx context.Context, attachmentPK int64) (model.FallbackRef, error) {
	return s.fallbackRef(ctx, attachmentPK, "ZFALLBACKPDFGENERATION")
}

func (s *SQLiteStore) fallbackRef(ctx context.Context, attachmentPK int64, genColumn string) (model.FallbackRef, error) {
	var id, gen sql.NullString
	query := `SELECT ZIDENTIFIER, ` + genColumn + ` FROM ZICCLOUDSYNCINGOBJECT
	          WHERE Z_PK = ? AND Z_ENT = ?`
	err := s.db.QueryRowContext(ctx, query, attachmentPK, s.ids.Attachment).Scan(&id, &gen)
	if errors.Is(err, sql.ErrNoRows) {
		return model.FallbackRef{}, fmt.Errorf("attachment %d: %w", attachmentPK, ErrNotFound)
	}
	if err != nil {
		return model.FallbackRef{}, fmt.Errorf("query fallback for %d: %w", attachmentPK, err)
	}
	return model.FallbackRef{Identifier: id.String, Generation: gen.String}, nil
}

// PreviewGeometry returns the identifier and pixel dimensions used to name a
// gallery preview image.
func (s *SQLiteStore) PreviewGeometry(ctx context.Context, attachmentPK int64) (model.PreviewGeometry, error) {
	var (
		id   sql.NullString
		w, h sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT ZIDENTIFIER, ZSIZEWIDTH, ZSIZEHEIGHT FROM ZICCLOUDSYNCINGOBJECT
		 WHERE Z_PK = ? AND Z_ENT = ?`, attachmentPK, s.ids.Attachment).
		Scan(&id, &w, &h)
	if errors.Is(err, sql.ErrNoRows) {
		return model.PreviewGeometry{}, fmt.Errorf("attachment %d: %w", attachmentPK, ErrNotFound)
	}
	if err != nil {
		return model.PreviewGeometry{}, fmt.Errorf("query preview geometry for %d: %w", attachmentPK, err)
	}
	return model.PreviewGeometry{Identifier: id.String, Width: w.Int64, Height: h.Int64}, nil
}

// FolderInfo returns the owner, parent, and type of a folder row. ok is
// false when the folder does not exist.
func (s *SQLiteStore) FolderInfo(ctx context.Context, folderPK int64) (owner, parent, ftype int64, ok bool, err error) {
	var ownerN, parentN, ftypeN sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT ZOWNER, ZPARENT, ZFOLDERTYPE FROM ZICCLOUDSYNCINGOBJECT
		 WHERE Z_PK = ? AND Z_ENT = ?`, folderPK, s.ids.Folder).
		Scan(&ownerN, &parentN, &ftypeN)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, 0, false, nil
	}
	if err != nil {
		return 0, 0, 0, false, fmt.Errorf("query folder %d: %w", folderPK, err)
	}
	return ownerN.Int64, parentN.Int64, ftypeN.Int64, true, nil
}

// AccountIdentifier returns the UUID string of an account row, or empty when
// the row does not exist.
func (s *SQLiteStore) AccountIdentifier(ctx context.Context, accountPK int64) (string, error) {
	var id sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT ZIDENTIFIER FROM ZICCLOUDSYNCINGOBJECT
		 WHERE Z_PK = ? AND Z_ENT = ?`, accountPK, s.ids.Account).
		Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query account %d: %w", accountPK, err)
	}
	return id.String, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
