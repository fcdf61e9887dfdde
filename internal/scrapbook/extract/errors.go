package extract

import "errors"

// Extraction failure taxonomy. Callers branch with errors.Is; every wrapped
// error keeps its sentinel in the chain.
var (
	// ErrInvalidInput marks a malformed URL or unsupported protocol.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotConfigured marks a social source whose credentials are absent.
	ErrNotConfigured = errors.New("source not configured")

	// ErrUpstreamFetch marks a network or API failure from a third-party source.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrUnsupportedMediaType marks archives and unknown binary formats.
	ErrUnsupportedMediaType = errors.New("unsupported media type")

	// ErrSizeLimitExceeded marks a payload over the configured cap, detected
	// either before or after download.
	ErrSizeLimitExceeded = errors.New("size limit exceeded")

	// ErrLooksLikeWebsite marks an asset download that turned out to be an
	// HTML page. The orchestrator retries it through article extraction.
	ErrLooksLikeWebsite = errors.New("asset looks like a website")

	// ErrEmptyText marks an extraction that produced no usable text.
	ErrEmptyText = errors.New("no text extracted")
)
