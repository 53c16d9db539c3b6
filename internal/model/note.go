// Package model defines the NoteStore row types shared across the exporter.
package model

import "time"

// AppleEpoch is the Core Data reference date. All timestamps in the Notes
// database are stored as seconds since this instant.
var AppleEpoch = time.Date(2001, time.January, 1, 0, 0, 0, 0, time.UTC)

// FromAppleTime converts a Core Data timestamp to calendar time. A zero
// timestamp means "not set" and converts to nil.
func FromAppleTime(sec float64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := AppleEpoch.Add(time.Duration(sec * float64(time.Second)))
	return &t
}

// Note is one exportable note row. OwnerPK is the resolved owning account
// primary key; zero means the owner could not be resolved. Data holds the
// raw compressed note blob.
type Note struct {
	PK       int64
	Title    string
	Snippet  string
	Created  *time.Time
	Modified *time.Time
	FolderPK int64
	OwnerPK  int64
	Data     []byte
}

// Attachment is an attachment row looked up by its external identifier.
// TypeUTI is the stored content type and is authoritative over the UTI
// declared in the note text. Media is the linked media row, nil when the
// attachment has no media record.
type Attachment struct {
	PK      int64
	TypeUTI string
	MediaPK int64
	Media   *Media
}

// Media is the media row linked from an attachment. Generation is empty for
// schemas or rows without a generation value.
type Media struct {
	Identifier string
	Filename   string
	Generation string
}

// FallbackRef points at a rendered fallback representation (image or PDF)
// of a non-text attachment.
type FallbackRef struct {
	Identifier string
	Generation string
}

// PreviewGeometry identifies a gallery preview image by its identifier and
// pixel dimensions.
type PreviewGeometry struct {
	Identifier string
	Width      int64
	Height     int64
}

// EntityIDs maps Core Data entity names to their Z_ENT discriminator values
// for this particular database.
type EntityIDs struct {
	Note       int64
	Folder     int64
	Attachment int64
	Media      int64
	Account    int64
}

// DefaultEntityIDs returns the discriminators used when the database has no
// Z_PRIMARYKEY table to discover them from.
func DefaultEntityIDs() EntityIDs {
	return EntityIDs{Note: 10, Folder: 5, Attachment: 7, Media: 8, Account: 1}
}

// Folder types that exclude a note from export.
const (
	FolderTypeTrash int64 = 1
	FolderTypeSmart int64 = 3
)
