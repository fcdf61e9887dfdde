package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeDocumentText(t *testing.T) {
	t.Run("collapses whitespace runs", func(t *testing.T) {
		got := NormalizeDocumentText("  hello\t\tworld\n\n\r\n again  ")
		if got.Text != "hello world again" {
			t.Errorf("Text = %q", got.Text)
		}
		if got.Truncated {
			t.Error("short text reported as truncated")
		}
	})

	t.Run("truncates at the cap", func(t *testing.T) {
		long := strings.Repeat("a ", MaxDocumentChars) // normalizes to > cap
		got := NormalizeDocumentText(long)
		if n := len([]rune(got.Text)); n != MaxDocumentChars {
			t.Errorf("len = %d, want %d", n, MaxDocumentChars)
		}
		if !got.Truncated {
			t.Error("Truncated = false for over-cap text")
		}
	})

	t.Run("exact cap is not truncated", func(t *testing.T) {
		got := NormalizeDocumentText(strings.Repeat("b", MaxDocumentChars))
		if got.Truncated {
			t.Error("Truncated = true for text exactly at the cap")
		}
	})
}

func TestDeriveAsset(t *testing.T) {
	t.Run("sniffed image", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))
		asset, err := DeriveAsset(png, "pic.png", "")
		if err != nil {
			t.Fatalf("DeriveAsset: %v", err)
		}
		if asset.Kind != KindImage {
			t.Errorf("Kind = %q, want image", asset.Kind)
		}
		if asset.MediaType != "image/png" {
			t.Errorf("MediaType = %q", asset.MediaType)
		}
	})

	t.Run("plain text document", func(t *testing.T) {
		asset, err := DeriveAsset([]byte("some notes about the meeting"), "notes.txt", "")
		if err != nil {
			t.Fatalf("DeriveAsset: %v", err)
		}
		if asset.Kind != KindDocument {
			t.Errorf("Kind = %q, want document", asset.Kind)
		}
	})

	t.Run("pdf document", func(t *testing.T) {
		pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")
		asset, err := DeriveAsset(pdf, "doc.pdf", "")
		if err != nil {
			t.Fatalf("DeriveAsset: %v", err)
		}
		if asset.Kind != KindDocument || asset.MediaType != "application/pdf" {
			t.Errorf("got kind=%q mediaType=%q", asset.Kind, asset.MediaType)
		}
	})

	t.Run("archives rejected", func(t *testing.T) {
		zip := []byte("PK\x03\x04" + strings.Repeat("\x00", 32))
		_, err := DeriveAsset(zip, "bundle.zip", "")
		if !errors.Is(err, ErrUnsupportedMediaType) {
			t.Errorf("err = %v, want ErrUnsupportedMediaType", err)
		}
	})

	t.Run("hint overrides generic sniff only", func(t *testing.T) {
		asset, err := DeriveAsset([]byte("col1,col2\n1,2\n"), "data.csv", "text/csv")
		if err != nil {
			t.Fatalf("DeriveAsset: %v", err)
		}
		if asset.MediaType != "text/csv" {
			t.Errorf("MediaType = %q, want text/csv", asset.MediaType)
		}

		// A specific sniff result is authoritative over the hint.
		png := []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 32))
		asset, err = DeriveAsset(png, "pic.png", "application/pdf")
		if err != nil {
			t.Fatalf("DeriveAsset: %v", err)
		}
		if asset.MediaType != "image/png" {
			t.Errorf("MediaType = %q, want image/png", asset.MediaType)
		}
	})
}

func TestExtractDocumentTextPlain(t *testing.T) {
	asset := &AssetInput{
		Kind:      KindDocument,
		MediaType: "text/plain",
		Bytes:     []byte("  spaced   out\n text  "),
	}
	got, err := ExtractDocumentText(asset)
	if err != nil {
		t.Fatalf("ExtractDocumentText: %v", err)
	}
	if got.Text != "spaced out text" {
		t.Errorf("Text = %q", got.Text)
	}
}

func TestExtractDocumentTextUnsupported(t *testing.T) {
	asset := &AssetInput{
		Kind:      KindDocument,
		MediaType: "application/vnd.ms-powerpoint",
		Bytes:     []byte("binary"),
	}
	if _, err := ExtractDocumentText(asset); !errors.Is(err, ErrUnsupportedMediaType) {
		t.Errorf("err = %v, want ErrUnsupportedMediaType", err)
	}
}

func TestCanPreprocess(t *testing.T) {
	tests := []struct {
		mediaType string
		want      bool
	}{
		{"text/html", true},
		{"text/csv", true},
		{"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"application/pdf", false},
		{"image/png", false},
	}
	for _, tt := range tests {
		if got := CanPreprocess(tt.mediaType); got != tt.want {
			t.Errorf("CanPreprocess(%q) = %v, want %v", tt.mediaType, got, tt.want)
		}
	}
}
