package extract

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/unidoc/unioffice/v2/document"
)

// MaxDocumentChars is the hard cap on extracted document text. It is shared
// across all formats and applied after whitespace normalization.
const MaxDocumentChars = 20000

const (
	mediaTypePDF  = "application/pdf"
	mediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mediaTypeXlsx = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mediaTypeCSV  = "text/csv"
	mediaTypeHTML = "text/html"
	mediaTypeRTF  = "text/rtf"
)

// archiveTypes are always rejected regardless of size.
var archiveTypes = []string{
	"application/zip",
	"application/x-tar",
	"application/gzip",
	"application/x-rar-compressed",
	"application/vnd.rar",
	"application/x-7z-compressed",
	"application/x-bzip2",
	"application/zstd",
}

// preprocessTypes are not natively parseable but can go through the
// markdown conversion registry.
var preprocessTypes = map[string]bool{
	mediaTypeHTML: true,
	mediaTypeCSV:  true,
	mediaTypeXlsx: true,
	mediaTypeRTF:  true,
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// DeriveAsset sniffs the media type of a binary payload and wraps it as an
// AssetInput. The sniffed type is authoritative; hint is only consulted when
// sniffing yields a generic result. Archives and unrecognized binary
// formats are rejected.
func DeriveAsset(data []byte, filename, hint string) (*AssetInput, error) {
	mtype := mimetype.Detect(data)
	mediaType := mtype.String()
	if i := strings.Index(mediaType, ";"); i > 0 {
		mediaType = mediaType[:i]
	}

	// Sniffing unknown bytes yields application/octet-stream or text/plain;
	// a more specific caller hint wins in that case.
	if hint != "" && (mediaType == "application/octet-stream" || mediaType == "text/plain") {
		if h := strings.TrimSpace(strings.SplitN(hint, ";", 2)[0]); h != "" && h != "application/octet-stream" {
			mediaType = h
		}
	}

	for _, archive := range archiveTypes {
		if mediaType == archive {
			return nil, fmt.Errorf("%w: archive %s", ErrUnsupportedMediaType, mediaType)
		}
	}

	asset := &AssetInput{
		MediaType: mediaType,
		Filename:  filename,
		Bytes:     data,
		SizeBytes: int64(len(data)),
	}

	switch {
	case strings.HasPrefix(mediaType, "image/"):
		asset.Kind = KindImage
	case isDocumentMediaType(mediaType):
		asset.Kind = KindDocument
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, mediaType)
	}
	return asset, nil
}

func isDocumentMediaType(mediaType string) bool {
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case mediaTypePDF, mediaTypeDocx, mediaTypeXlsx:
		return true
	}
	return preprocessTypes[mediaType]
}

// CanPreprocess reports whether the media type should be routed through the
// markdown conversion registry instead of native extraction.
func CanPreprocess(mediaType string) bool {
	return preprocessTypes[mediaType]
}

// ExtractDocumentText converts a document payload into normalized,
// length-bounded plain text. Dispatch is purely on the media type; the
// extractor never inspects page structure.
func ExtractDocumentText(input *AssetInput) (*ExtractedDocumentText, error) {
	var raw string
	switch {
	case strings.HasPrefix(input.MediaType, "text/plain"):
		raw = string(input.Bytes)
	case input.MediaType == mediaTypePDF:
		text, err := extractPDFText(input.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse pdf: %w", err)
		}
		raw = text
	case input.MediaType == mediaTypeDocx:
		text, err := extractDocxText(input.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse docx: %w", err)
		}
		raw = text
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMediaType, input.MediaType)
	}

	return NormalizeDocumentText(raw), nil
}

// NormalizeDocumentText collapses whitespace runs to single spaces, trims
// the ends and enforces the shared character cap.
func NormalizeDocumentText(raw string) *ExtractedDocumentText {
	normalized := strings.TrimSpace(whitespaceRun.ReplaceAllString(raw, " "))

	runes := []rune(normalized)
	if len(runes) <= MaxDocumentChars {
		return &ExtractedDocumentText{Text: normalized}
	}
	return &ExtractedDocumentText{
		Text:      string(runes[:MaxDocumentChars]),
		Truncated: true,
	}
}

func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", err
	}
	return string(text), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	var sb strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}
