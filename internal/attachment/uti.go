// Package attachment resolves attachment references to files on disk and
// materializes them into the export tree.
package attachment

import (
	"mime"
	"path/filepath"
	"strings"
)

// Drawing-family and scan UTIs that are stored as rendered fallbacks rather
// than plain media files.
const (
	utiScanPDF = "com.apple.paper.doc.scan"
	utiGallery = "com.apple.notes.gallery"
)

var drawingUTIs = map[string]bool{
	"com.apple.drawing":   true,
	"com.apple.drawing.2": true,
	"com.apple.paper":     true,
}

// nonFileUTIs are inline attachment kinds with no file representation.
// They substitute a descriptive marker and never trigger a lookup.
var nonFileUTIs = map[string]bool{
	"com.apple.notes.table":                        true,
	"com.apple.notes.inlinetextattachment.hashtag": true,
	"com.apple.notes.inlinetextattachment.mention": true,
	"com.apple.notes.inlinetextattachment.link":    true,
	"public.url":                                   true,
}

// utiExtensions maps known UTIs to output file extensions.
var utiExtensions = map[string]string{
	"public.jpeg":       ".jpg",
	"public.png":        ".png",
	"public.gif":        ".gif",
	"public.tiff":       ".tiff",
	"com.adobe.pdf":     ".pdf",
	"public.plain-text": ".txt",
	"public.rtf":        ".rtf",
	"public.url":        ".url",
	"public.vcard":      ".vcf",

	"com.apple.keynote.key":     ".key",
	"com.apple.keynote.kth":     ".kth",
	"com.apple.numbers.numbers": ".numbers",
	"com.apple.pages.pages":     ".pages",

	"com.microsoft.word.doc":                         ".doc",
	"org.openxmlformats.wordprocessingml.document":   ".docx",
	"com.microsoft.excel.xls":                        ".xls",
	"org.openxmlformats.spreadsheetml.sheet":         ".xlsx",
	"com.microsoft.powerpoint.ppt":                   ".ppt",
	"org.openxmlformats.presentationml.presentation": ".pptx",

	"public.mpeg-4":             ".mp4",
	"public.mpeg-4-audio":       ".m4a",
	"public.mp3":                ".mp3",
	"com.apple.quicktime-movie": ".mov",

	"com.apple.drawing":        ".png",
	"com.apple.drawing.2":      ".png",
	"com.apple.paper":          ".png",
	"com.apple.paper.doc.scan": ".pdf",
	"com.apple.notes.gallery":  ".jpg",
}

// ExtensionForUTI picks the output extension for a content type: the static
// table first, then a generic MIME guess, then the source file's own
// extension, then a binary-blob extension.
func ExtensionForUTI(uti, fallbackFilename string) string {
	if ext, ok := utiExtensions[uti]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(uti); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if ext := filepath.Ext(fallbackFilename); ext != "" {
		return ext
	}
	return ".bin"
}

// Kind classifies a resolved attachment for substitution markup.
type Kind int

const (
	KindFile Kind = iota
	KindImage
	KindPDF
)

var imageHints = []string{
	"image", "jpeg", "png", "gif", "tiff", "scan", "drawing", "gallery",
	"public.jpeg", "public.png", "public.tiff", "public.gif",
	"com.apple.drawing", "com.apple.drawing.2", "com.apple.paper",
}

var pdfHints = []string{"pdf", "com.adobe.pdf", "com.apple.paper.doc.scan"}

// Classify maps a UTI to the markup kind by case-insensitive substring
// match. Image wins over PDF, matching the substitution precedence.
func Classify(uti string) Kind {
	lower := strings.ToLower(uti)
	for _, hint := range imageHints {
		if strings.Contains(lower, hint) {
			return KindImage
		}
	}
	for _, hint := range pdfHints {
		if strings.Contains(lower, hint) {
			return KindPDF
		}
	}
	return KindFile
}
