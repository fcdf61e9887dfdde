package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/go-redis/redis/v8"
	"golang.org/x/net/html"

	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

const (
	linkFetchTimeout = 15 * time.Second
	linkMaxReadBytes = int64(5 * 1024 * 1024) // 5MB page cap
	linkContentCap   = 50000                  // chars of converted markdown
	linkCachePrefix  = "linkpreview:"
	linkCacheTTL     = 30 * time.Minute
	linkUserAgent    = "ai-scrapbook/1.0 (+link preview)"
)

// LinkExtractor fetches a webpage and produces title, description and a
// markdown rendition of its content.
type LinkExtractor struct {
	client *http.Client
	cache  *redis.Client // optional, may be nil
	log    *logger.Logger
}

// NewLinkExtractor creates a LinkExtractor. cache may be nil.
func NewLinkExtractor(cache *redis.Client, log *logger.Logger) *LinkExtractor {
	return &LinkExtractor{
		client: &http.Client{Timeout: linkFetchTimeout},
		cache:  cache,
		log:    log,
	}
}

// Fetch downloads the page and extracts its content. Network and HTTP
// errors are reported as upstream fetch failures.
func (e *LinkExtractor) Fetch(ctx context.Context, rawURL string) (*ExtractedLinkContent, error) {
	if cached := e.cachedContent(ctx, rawURL); cached != nil {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", linkUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d fetching %s", ErrUpstreamFetch, resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, linkMaxReadBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}

	result := e.extract(string(body))
	e.storeContent(ctx, rawURL, result)
	return result, nil
}

func (e *LinkExtractor) extract(page string) *ExtractedLinkContent {
	meta := parseHTMLMeta(page)

	markdown, err := htmltomarkdown.ConvertString(page)
	if err != nil {
		// Fall back to the tokenizer's plain-text rendition when the page
		// defeats the markdown converter.
		markdown = extractPlainText(page)
	}
	markdown = strings.TrimSpace(markdown)

	content := markdown
	truncated := false
	if runes := []rune(markdown); len(runes) > linkContentCap {
		content = string(runes[:linkContentCap])
		truncated = true
	}

	return &ExtractedLinkContent{
		Title:       meta.title,
		Description: meta.description,
		SiteName:    meta.siteName,
		Content:     content,
		Truncated:   truncated,
	}
}

type htmlMeta struct {
	title       string
	description string
	siteName    string
}

// parseHTMLMeta pulls <title> and the usual meta/OpenGraph tags out of the
// document head.
func parseHTMLMeta(page string) htmlMeta {
	var meta htmlMeta
	z := html.NewTokenizer(strings.NewReader(page))
	inTitle := false

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return meta
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "title" {
				inTitle = true
				continue
			}
			if tag != "meta" || !hasAttr {
				continue
			}
			var key, content string
			for {
				k, v, more := z.TagAttr()
				switch string(k) {
				case "name", "property":
					key = strings.ToLower(string(v))
				case "content":
					content = string(v)
				}
				if !more {
					break
				}
			}
			switch key {
			case "og:title":
				if meta.title == "" {
					meta.title = content
				}
			case "description", "og:description":
				if meta.description == "" {
					meta.description = content
				}
			case "og:site_name":
				meta.siteName = content
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "title" {
				inTitle = false
			}
		case html.TextToken:
			if inTitle && meta.title == "" {
				meta.title = strings.TrimSpace(string(z.Text()))
			}
		}
	}
}

// extractPlainText strips tags, scripts and styles from an HTML document.
func extractPlainText(page string) string {
	z := html.NewTokenizer(strings.NewReader(page))
	var sb strings.Builder
	var inScript, inStyle bool

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return sb.String()
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script":
				inScript = tt == html.StartTagToken
			case "style":
				inStyle = tt == html.StartTagToken
			}
		case html.TextToken:
			if !inScript && !inStyle {
				if text := strings.TrimSpace(string(z.Text())); text != "" {
					sb.WriteString(text)
					sb.WriteString(" ")
				}
			}
		}
	}
}

func (e *LinkExtractor) cachedContent(ctx context.Context, rawURL string) *ExtractedLinkContent {
	if e.cache == nil {
		return nil
	}
	val, err := e.cache.Get(ctx, linkCachePrefix+rawURL).Bytes()
	if err != nil {
		return nil
	}
	var content ExtractedLinkContent
	if err := json.Unmarshal(val, &content); err != nil {
		return nil
	}
	return &content
}

func (e *LinkExtractor) storeContent(ctx context.Context, rawURL string, content *ExtractedLinkContent) {
	if e.cache == nil {
		return
	}
	data, err := json.Marshal(content)
	if err != nil {
		return
	}
	if err := e.cache.Set(ctx, linkCachePrefix+rawURL, data, linkCacheTTL).Err(); err != nil {
		e.log.Debug("link preview cache write failed: " + err.Error())
	}
}
