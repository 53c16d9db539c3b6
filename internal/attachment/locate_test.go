package attachment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/notes-export/internal/model"
)

type fakeMeta struct {
	atts     map[string]model.Attachment
	images   map[int64]model.FallbackRef
	pdfs     map[int64]model.FallbackRef
	previews map[int64]model.PreviewGeometry

	lookupCalls int
}

var errFakeMissing = errors.New("missing")

func (f *fakeMeta) AttachmentByIdentifier(_ context.Context, id string) (*model.Attachment, error) {
	f.lookupCalls++
	att, ok := f.atts[id]
	if !ok {
		return nil, errFakeMissing
	}
	out := att
	if att.Media != nil {
		m := *att.Media
		out.Media = &m
	}
	return &out, nil
}

func (f *fakeMeta) FallbackImage(_ context.Context, pk int64) (model.FallbackRef, error) {
	ref, ok := f.images[pk]
	if !ok {
		return model.FallbackRef{}, errFakeMissing
	}
	return ref, nil
}

func (f *fakeMeta) FallbackPDF(_ context.Context, pk int64) (model.FallbackRef, error) {
	ref, ok := f.pdfs[pk]
	if !ok {
		return model.FallbackRef{}, errFakeMissing
	}
	return ref, nil
}

func (f *fakeMeta) PreviewGeometry(_ context.Context, pk int64) (model.PreviewGeometry, error) {
	geo, ok := f.previews[pk]
	if !ok {
		return model.PreviewGeometry{}, errFakeMissing
	}
	return geo, nil
}

func touch(t *testing.T, parts ...string) string {
	t.Helper()
	p := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func mediaAttachment(gen string) *model.Attachment {
	return &model.Attachment{
		PK:      1,
		TypeUTI: "public.jpeg",
		Media:   &model.Media{Identifier: "M1", Filename: "photo.jpg", Generation: gen},
	}
}

func TestLocateStandardMedia(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "Media", "M1", "5", "photo.jpg")
	l := NewLocator(&fakeMeta{}, root, nil)

	got, ok := l.Locate(context.Background(), mediaAttachment("5"), "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateMediaGenerationFallback(t *testing.T) {
	// Generation recorded in the database but only the generation-less
	// path exists on disk.
	root := t.TempDir()
	want := touch(t, root, "Media", "M1", "photo.jpg")
	l := NewLocator(&fakeMeta{}, root, nil)

	got, ok := l.Locate(context.Background(), mediaAttachment("5"), "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateMediaNoGeneration(t *testing.T) {
	root := t.TempDir()
	want := touch(t, root, "Media", "M1", "photo.jpg")
	l := NewLocator(&fakeMeta{}, root, nil)

	got, ok := l.Locate(context.Background(), mediaAttachment(""), "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateAccountScopedFirst(t *testing.T) {
	const uuid = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	root := t.TempDir()
	want := touch(t, root, "Accounts", uuid, "Media", "M1", "5", "photo.jpg")
	touch(t, root, "Media", "M1", "5", "photo.jpg")
	l := NewLocator(&fakeMeta{}, root, nil)

	got, ok := l.Locate(context.Background(), mediaAttachment("5"), uuid)
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateTopLevelFallbackForAccount(t *testing.T) {
	const uuid = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	root := t.TempDir()
	want := touch(t, root, "Media", "M1", "5", "photo.jpg")
	l := NewLocator(&fakeMeta{}, root, nil)

	got, ok := l.Locate(context.Background(), mediaAttachment("5"), uuid)
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateDrawingFallbackImage(t *testing.T) {
	root := t.TempDir()
	meta := &fakeMeta{images: map[int64]model.FallbackRef{7: {Identifier: "D1", Generation: "3"}}}
	att := &model.Attachment{PK: 7, TypeUTI: "com.apple.drawing"}
	l := NewLocator(meta, root, nil)
	ctx := context.Background()

	want := touch(t, root, "FallbackImages", "D1", "3", "FallbackImage.png")
	got, ok := l.Locate(ctx, att, "")
	if !ok || got != want {
		t.Errorf("generation dir: got %q ok=%v, want %q", got, ok, want)
	}

	// Without the generation directory, the flat files are probed, jpg
	// before png.
	root2 := t.TempDir()
	l2 := NewLocator(meta, root2, nil)
	wantPNG := touch(t, root2, "FallbackImages", "D1.png")
	got, ok = l2.Locate(ctx, att, "")
	if !ok || got != wantPNG {
		t.Errorf("flat png: got %q ok=%v, want %q", got, ok, wantPNG)
	}
	wantJPG := touch(t, root2, "FallbackImages", "D1.jpg")
	got, ok = l2.Locate(ctx, att, "")
	if !ok || got != wantJPG {
		t.Errorf("flat jpg priority: got %q ok=%v, want %q", got, ok, wantJPG)
	}
}

func TestLocateScanPDF(t *testing.T) {
	root := t.TempDir()
	meta := &fakeMeta{pdfs: map[int64]model.FallbackRef{8: {Identifier: "S1", Generation: "2"}}}
	att := &model.Attachment{PK: 8, TypeUTI: "com.apple.paper.doc.scan"}
	l := NewLocator(meta, root, nil)

	want := touch(t, root, "FallbackPDFs", "S1", "2", "FallbackPDF.pdf")
	got, ok := l.Locate(context.Background(), att, "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateScanPDFEmptyGeneration(t *testing.T) {
	root := t.TempDir()
	meta := &fakeMeta{pdfs: map[int64]model.FallbackRef{8: {Identifier: "S1"}}}
	att := &model.Attachment{PK: 8, TypeUTI: "com.apple.paper.doc.scan"}
	l := NewLocator(meta, root, nil)

	want := touch(t, root, "FallbackPDFs", "S1", "FallbackPDF.pdf")
	got, ok := l.Locate(context.Background(), att, "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateGalleryPreview(t *testing.T) {
	root := t.TempDir()
	meta := &fakeMeta{previews: map[int64]model.PreviewGeometry{9: {Identifier: "G1", Width: 100, Height: 200}}}
	att := &model.Attachment{PK: 9, TypeUTI: "com.apple.notes.gallery"}
	l := NewLocator(meta, root, nil)

	want := touch(t, root, "Previews", "G1-1-100x200-0.jpeg")
	got, ok := l.Locate(context.Background(), att, "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}

func TestLocateNotFound(t *testing.T) {
	l := NewLocator(&fakeMeta{}, t.TempDir(), nil)
	if _, ok := l.Locate(context.Background(), mediaAttachment("5"), ""); ok {
		t.Error("expected not found")
	}
}

func TestLocateMediaBeatsFallback(t *testing.T) {
	// A drawing with a media row prefers the media file over its
	// fallback image, matching the per-base strategy order.
	root := t.TempDir()
	meta := &fakeMeta{images: map[int64]model.FallbackRef{1: {Identifier: "D1"}}}
	att := &model.Attachment{
		PK:      1,
		TypeUTI: "com.apple.drawing",
		Media:   &model.Media{Identifier: "M1", Filename: "drawing.png"},
	}
	touch(t, root, "FallbackImages", "D1.png")
	want := touch(t, root, "Media", "M1", "drawing.png")
	l := NewLocator(meta, root, nil)

	got, ok := l.Locate(context.Background(), att, "")
	if !ok || got != want {
		t.Errorf("got %q ok=%v, want %q", got, ok, want)
	}
}
