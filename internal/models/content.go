package models

import "time"

// ContentType classifies a captured item by its source shape.
type ContentType string

const (
	ContentTypeTwitter  ContentType = "twitter"
	ContentTypeReddit   ContentType = "reddit"
	ContentTypeArticle  ContentType = "article"
	ContentTypeText     ContentType = "text"
	ContentTypeImage    ContentType = "image"
	ContentTypeDocument ContentType = "document"
	ContentTypeUnknown  ContentType = "unknown"
)

// EnrichmentStatus tracks the background metadata-generation job for an item.
type EnrichmentStatus string

const (
	EnrichmentPending   EnrichmentStatus = "pending"
	EnrichmentCompleted EnrichmentStatus = "completed"
	EnrichmentFailed    EnrichmentStatus = "failed"
)

// ContentItem is a captured piece of content persisted in MongoDB.
type ContentItem struct {
	ID               string                 `bson:"_id" json:"id"`
	UserID           string                 `bson:"user_id" json:"-"`
	Type             ContentType            `bson:"content_type" json:"contentType"`
	Title            string                 `bson:"title" json:"title"`
	Description      string                 `bson:"description" json:"description"`
	Tags             []string               `bson:"tags" json:"tags"`
	Content          string                 `bson:"content" json:"content"`
	SourceURL        string                 `bson:"source_url,omitempty" json:"sourceUrl,omitempty"`
	Metadata         map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	EnrichmentStatus EnrichmentStatus       `bson:"enrichment_status" json:"enrichmentStatus"`
	CreatedAt        time.Time              `bson:"created_at" json:"createdAt"`
}

// Enrichment is the AI-generated metadata attached to an item after capture.
type Enrichment struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// SearchResult is a single retrieval hit returned to the client.
// Score is set only when the result was reachable via semantic search.
type SearchResult struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ContentType ContentType `json:"contentType"`
	Tags        []string    `json:"tags"`
	SourceURL   string      `json:"sourceUrl,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Score       *float32    `json:"score,omitempty"`
}

// AskSource identifies a stored item cited in a generated answer.
// CitationNumber is the 1-indexed position of the item in the source list
// handed to the model, not its rank in this slice.
type AskSource struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	ContentType    ContentType `json:"contentType"`
	SourceURL      string      `json:"sourceUrl,omitempty"`
	CitationNumber int         `json:"citationNumber"`
}

// AskResponse is the answer to a question over the user's library.
type AskResponse struct {
	Answer               string      `json:"answer"`
	Sources              []AskSource `json:"sources"`
	TotalSourcesSearched int         `json:"totalSourcesSearched"`
}

// SummarizeResult is the uniform output of the summarize endpoints.
// ExtractedContent is a fixed-length preview, truncated independently of
// whatever was sent to the language model.
type SummarizeResult struct {
	Summary          string                 `json:"summary"`
	ContentType      ContentType            `json:"contentType"`
	Title            string                 `json:"title"`
	SourceURL        string                 `json:"sourceUrl,omitempty"`
	ExtractedContent string                 `json:"extractedContent"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

// SummarizeStatus reports which extraction sources are usable.
// Article extraction has no credential precondition so it is always true.
type SummarizeStatus struct {
	Twitter  bool `json:"twitter"`
	Reddit   bool `json:"reddit"`
	Articles bool `json:"articles"`
}
