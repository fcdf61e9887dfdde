package extract

import "github.com/STop211650/ai-scrapbook/internal/models"

// AssetKind discriminates the two binary payload shapes.
type AssetKind string

const (
	KindImage    AssetKind = "image"
	KindDocument AssetKind = "document"
)

// AssetInput is a normalized binary payload ready for text extraction.
// MediaType is sniffed from the bytes and is authoritative over any
// caller-supplied hint.
type AssetInput struct {
	Kind      AssetKind
	MediaType string
	Filename  string // may be empty
	Bytes     []byte
	SizeBytes int64
}

// ExtractedLinkContent is the result of generic web/article extraction.
// Truncated is true iff the extractor cut the content to its cap.
type ExtractedLinkContent struct {
	Title       string
	Description string
	SiteName    string
	Content     string
	Truncated   bool
}

// ExtractedDocumentText is normalized document text.
// Text never exceeds MaxDocumentChars; Truncated is true iff the normalized
// source was longer.
type ExtractedDocumentText struct {
	Text      string
	Truncated bool
}

// Extraction is the orchestrator's uniform output for one input.
type Extraction struct {
	Content   string
	Title     string
	Type      models.ContentType
	SourceURL string
	Truncated bool
	Metadata  map[string]interface{}
}
