package notedata

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// NoteStore message field numbers. The schema is a small closed tree, so the
// decoder walks the wire format directly instead of carrying generated
// message types.
const (
	fieldDocument      = 2  // NoteStoreProto.document
	fieldNote          = 3  // Document.note
	fieldNoteText      = 2  // Note.note_text
	fieldAttributeRun  = 5  // Note.attribute_run
	fieldRunLength     = 1  // AttributeRun.length
	fieldAttachmentRef = 12 // AttributeRun.attachment_info
	fieldAttachmentID  = 1  // AttachmentInfo.attachment_identifier
	fieldTypeUTI       = 2  // AttachmentInfo.type_uti
)

// ErrMalformed reports an undecodable record.
var ErrMalformed = errors.New("malformed note record")

// ErrNoNote reports a well-formed record without a document/note
// substructure. Not fatal: the note may be empty or of an unsupported kind.
var ErrNoNote = errors.New("document/note not found")

// Document is the root of the decoded record tree.
type Document struct {
	Note *Note
}

// Note holds the flat text buffer and its ordered attribute runs.
type Note struct {
	Text string
	Runs []AttributeRun
}

// AttributeRun covers a contiguous span of the text buffer. A run with
// Attachment set stands for one placeholder character rather than literal
// content.
type AttributeRun struct {
	Length     int64
	Attachment *AttachmentInfo
}

// AttachmentInfo identifies the attachment a run points at.
type AttachmentInfo struct {
	Identifier string
	TypeUTI    string
}

// Parse decodes decompressed record bytes into the document tree. The
// returned document has a nil Note when the record carries none; callers
// distinguish that from a malformed record via ErrNoNote versus ErrMalformed.
func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	err := walkMessage(data, func(num protowire.Number, payload []byte) error {
		if num != fieldDocument {
			return nil
		}
		return walkMessage(payload, func(num protowire.Number, payload []byte) error {
			if num != fieldNote {
				return nil
			}
			note, err := parseNote(payload)
			if err != nil {
				return err
			}
			doc.Note = note
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func parseNote(data []byte) (*Note, error) {
	note := &Note{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == fieldNoteText && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return n, nil
			}
			note.Text = v
			return n, nil
		case num == fieldAttributeRun && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return n, nil
			}
			run, err := parseRun(v)
			if err != nil {
				return 0, err
			}
			note.Runs = append(note.Runs, run)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
	if err != nil {
		return nil, err
	}
	return note, nil
}

func parseRun(data []byte) (AttributeRun, error) {
	var run AttributeRun
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		switch {
		case num == fieldRunLength && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return n, nil
			}
			run.Length = int64(v)
			return n, nil
		case num == fieldAttachmentRef && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return n, nil
			}
			info, err := parseAttachmentInfo(v)
			if err != nil {
				return 0, err
			}
			run.Attachment = info
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
	return run, err
}

func parseAttachmentInfo(data []byte) (*AttachmentInfo, error) {
	info := &AttachmentInfo{}
	err := walkFields(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if typ == protowire.BytesType {
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return n, nil
			}
			switch num {
			case fieldAttachmentID:
				info.Identifier = v
			case fieldTypeUTI:
				info.TypeUTI = v
			}
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, data), nil
	})
	return info, err
}

// walkMessage iterates the length-delimited submessages of data, invoking fn
// for each; every other field is skipped.
func walkMessage(data []byte, fn func(num protowire.Number, payload []byte) error) error {
	return walkFields(data, func(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
		if typ != protowire.BytesType {
			return protowire.ConsumeFieldValue(num, typ, data), nil
		}
		v, n := protowire.ConsumeBytes(data)
		if n < 0 {
			return n, nil
		}
		return n, fn(num, v)
	})
}

// walkFields drives a tag-by-tag scan of one message. fn consumes the field
// value and returns the byte count consumed; a negative count or an error
// aborts the walk.
func walkFields(data []byte, fn func(num protowire.Number, typ protowire.Type, data []byte) (int, error)) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("%w: bad tag", ErrMalformed)
		}
		data = data[n:]

		n, err := fn(num, typ, data)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: bad field %d", ErrMalformed, num)
		}
		data = data[n:]
	}
	return nil
}
