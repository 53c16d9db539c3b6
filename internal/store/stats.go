package store

import (
	"context"
	"fmt"
)

// Stats summarizes the database contents and what an export would cover.
type Stats struct {
	Path        string     `json:"path"`
	Notes       int        `json:"notes"`
	Folders     int        `json:"folders"`
	Attachments int        `json:"attachments"`
	Media       int        `json:"media"`
	Accounts    int        `json:"accounts"`
	Exportable  int        `json:"exportable"`
	Skipped     SkipCounts `json:"skipped"`
}

// Stats gathers row counts per entity plus the exportable-note count under
// the same filtering rules as an export run.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{Path: dbPath}

	counts := []struct {
		ent  int64
		dest *int
	}{
		{s.ids.Note, &st.Notes},
		{s.ids.Folder, &st.Folders},
		{s.ids.Attachment, &st.Attachments},
		{s.ids.Media, &st.Media},
		{s.ids.Account, &st.Accounts},
	}
	for _, c := range counts {
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM ZICCLOUDSYNCINGOBJECT WHERE Z_ENT = ?`, c.ent).Scan(c.dest)
		if err != nil {
			return nil, fmt.Errorf("count entity %d: %w", c.ent, err)
		}
	}

	notes, skips, err := s.ListNotes(ctx, NewResolver(s, s))
	if err != nil {
		return nil, err
	}
	st.Exportable = len(notes)
	st.Skipped = skips
	return st, nil
}
