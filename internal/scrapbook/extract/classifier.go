package extract

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

// URLKind is the result of asset-vs-website classification.
type URLKind string

const (
	KindWebsite URLKind = "website"
	KindAsset   URLKind = "asset"
)

const (
	probeTimeout    = 5 * time.Second
	sniffBytes      = 2048
	classifierCache = "classify:"
	cacheTTL        = time.Hour
)

// pageExtensions are path extensions that still mean "webpage".
var pageExtensions = map[string]bool{
	".html": true,
	".htm":  true,
	".php":  true,
	".asp":  true,
	".aspx": true,
}

// Classifier decides whether a URL points at a downloadable file or a
// webpage, without downloading the full resource when avoidable.
type Classifier struct {
	client *http.Client
	cache  *redis.Client // optional, may be nil
	log    *logger.Logger
}

// NewClassifier creates a Classifier. cache may be nil to disable caching.
func NewClassifier(cache *redis.Client, log *logger.Logger) *Classifier {
	return &Classifier{
		client: &http.Client{Timeout: probeTimeout},
		cache:  cache,
		log:    log,
	}
}

// Classify runs the classification cascade: path extension, then a HEAD
// probe, then a ranged GET of the first 2KB. Probe failures are treated as
// inconclusive, never as errors; anything inconclusive is a website.
func (c *Classifier) Classify(ctx context.Context, rawURL string) URLKind {
	u, err := url.Parse(rawURL)
	if err != nil {
		return KindWebsite
	}

	// 1. A recognizable non-page file extension settles it with zero
	// network calls.
	if ext := strings.ToLower(path.Ext(u.Path)); ext != "" && !pageExtensions[ext] {
		return KindAsset
	}

	if kind, ok := c.cachedKind(ctx, rawURL); ok {
		return kind
	}

	kind := c.probe(ctx, rawURL)
	c.storeKind(ctx, rawURL, kind)
	return kind
}

func (c *Classifier) probe(ctx context.Context, rawURL string) URLKind {
	// 2. HEAD probe: a non-HTML content type or an attachment filename
	// means asset.
	if kind, conclusive := c.probeHead(ctx, rawURL); conclusive {
		return kind
	}

	// 3. Ranged GET of the first 2KB: sniff the byte prefix.
	if kind, conclusive := c.probeRange(ctx, rawURL); conclusive {
		return kind
	}

	return KindWebsite
}

func (c *Classifier) probeHead(ctx context.Context, rawURL string) (URLKind, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return KindWebsite, false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return KindWebsite, false
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return KindAsset, true
	}
	if filename := dispositionFilename(resp.Header.Get("Content-Disposition")); filename != "" {
		if ext := strings.ToLower(path.Ext(filename)); ext != "" && !pageExtensions[ext] {
			return KindAsset, true
		}
	}
	return KindWebsite, false
}

func (c *Classifier) probeRange(ctx context.Context, rawURL string) (URLKind, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return KindWebsite, false
	}
	req.Header.Set("Range", "bytes=0-2047")

	resp, err := c.client.Do(req)
	if err != nil {
		return KindWebsite, false
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isHTMLContentType(ct) {
		return KindAsset, true
	}

	// Servers that ignore Range return the full body; reading a bounded
	// prefix keeps the probe cheap either way.
	prefix, err := io.ReadAll(io.LimitReader(resp.Body, sniffBytes))
	if err != nil {
		return KindWebsite, false
	}
	if !looksLikeHTML(prefix) {
		return KindAsset, true
	}
	return KindWebsite, true
}

func (c *Classifier) cachedKind(ctx context.Context, rawURL string) (URLKind, bool) {
	if c.cache == nil {
		return "", false
	}
	val, err := c.cache.Get(ctx, classifierCache+rawURL).Result()
	if err != nil {
		return "", false
	}
	switch URLKind(val) {
	case KindAsset, KindWebsite:
		return URLKind(val), true
	}
	return "", false
}

func (c *Classifier) storeKind(ctx context.Context, rawURL string, kind URLKind) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Set(ctx, classifierCache+rawURL, string(kind), cacheTTL).Err(); err != nil {
		c.log.Debug("classifier cache write failed: " + err.Error())
	}
}

// isHTMLContentType reports whether a Content-Type header names an
// HTML-family document.
func isHTMLContentType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.SplitN(ct, ";", 2)[0]))
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return true
	}
	return false
}

// dispositionFilename extracts the filename parameter from a
// Content-Disposition header, or "" if absent or unparseable.
func dispositionFilename(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// looksLikeHTML sniffs whether a byte prefix starts an HTML document.
func looksLikeHTML(prefix []byte) bool {
	head := strings.ToLower(strings.TrimLeft(string(prefix), " \t\r\n\uFEFF"))
	for _, marker := range []string{"<!doctype html", "<html", "<head"} {
		if strings.HasPrefix(head, marker) {
			return true
		}
	}
	return false
}
