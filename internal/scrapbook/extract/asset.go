package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// AssetDownloader fetches a URL that the classifier judged to be a direct
// asset and wraps the payload as an AssetInput.
type AssetDownloader struct {
	client   *http.Client
	maxBytes int64
}

// NewAssetDownloader creates an AssetDownloader with the given payload cap.
func NewAssetDownloader(maxBytes int64) *AssetDownloader {
	return &AssetDownloader{
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: maxBytes,
	}
}

// Download fetches the asset. It enforces the size cap twice: against the
// advertised Content-Length before reading, and against the actual byte
// count after. A payload that turns out to be an HTML page is reported as
// ErrLooksLikeWebsite so the caller can retry article extraction.
func (d *AssetDownloader) Download(ctx context.Context, rawURL string) (*AssetInput, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", linkUserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d fetching %s", ErrUpstreamFetch, resp.StatusCode, rawURL)
	}
	if resp.ContentLength > d.maxBytes {
		return nil, fmt.Errorf("%w: advertised %d bytes, limit %d", ErrSizeLimitExceeded, resp.ContentLength, d.maxBytes)
	}

	// Read one byte past the cap to distinguish "exactly at the limit" from
	// "over it" when Content-Length was absent or lied.
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	if int64(len(data)) > d.maxBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrSizeLimitExceeded, d.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if isHTMLContentType(contentType) || looksLikeHTML(data) {
		return nil, fmt.Errorf("%w: %s", ErrLooksLikeWebsite, rawURL)
	}

	filename := dispositionFilename(resp.Header.Get("Content-Disposition"))
	if filename == "" {
		filename = filenameFromURL(rawURL)
	}

	asset, err := DeriveAsset(data, filename, contentType)
	if err != nil {
		return nil, err
	}
	return asset, nil
}

func filenameFromURL(rawURL string) string {
	trimmed := rawURL
	if i := strings.IndexAny(trimmed, "?#"); i >= 0 {
		trimmed = trimmed[:i]
	}
	name := path.Base(trimmed)
	if name == "." || name == "/" || !strings.Contains(name, ".") {
		return ""
	}
	return name
}
