package attachment

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo", "photo"},
		{"My Vacation Photo", "My_Vacation_Photo"},
		{"a/b\\c:d", "abcd"},
		{"  spaced   out  ", "spaced_out"},
		{"dash-ok_under ok", "dash-ok_under_ok"},
		{"???", "Untitled"},
		{"", "Untitled"},
		{"héllo wörld", "héllo_wörld"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilenameBounded(t *testing.T) {
	long := make([]rune, 400)
	for i := range long {
		long[i] = 'a'
	}
	got := SanitizeFilename(string(long))
	if len([]rune(got)) != maxFilenameLen {
		t.Errorf("length: got %d, want %d", len([]rune(got)), maxFilenameLen)
	}
}

func TestExtensionForUTI(t *testing.T) {
	tests := []struct {
		uti      string
		fallback string
		want     string
	}{
		{"public.jpeg", "", ".jpg"},
		{"com.adobe.pdf", "", ".pdf"},
		{"com.apple.drawing", "", ".png"},
		{"com.apple.paper.doc.scan", "", ".pdf"},
		{"com.example.unknown", "notes.dat", ".dat"},
		{"com.example.unknown", "bare", ".bin"},
		{"com.example.unknown", "", ".bin"},
	}
	for _, tt := range tests {
		if got := ExtensionForUTI(tt.uti, tt.fallback); got != tt.want {
			t.Errorf("ExtensionForUTI(%q, %q) = %q, want %q", tt.uti, tt.fallback, got, tt.want)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		uti  string
		want Kind
	}{
		{"public.jpeg", KindImage},
		{"Public.PNG", KindImage},
		{"com.apple.drawing.2", KindImage},
		{"com.apple.notes.gallery", KindImage},
		{"com.adobe.pdf", KindPDF},
		{"com.microsoft.word.doc", KindFile},
		{"public.mpeg-4", KindFile},
	}
	for _, tt := range tests {
		if got := Classify(tt.uti); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.uti, got, tt.want)
		}
	}
}

func TestNonFileUTIs(t *testing.T) {
	if !nonFileUTIs["com.apple.notes.inlinetextattachment.link"] {
		t.Error("link attachments must be non-file")
	}
	if nonFileUTIs["public.jpeg"] {
		t.Error("jpeg is a file attachment")
	}
}
