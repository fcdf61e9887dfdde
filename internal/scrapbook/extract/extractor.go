package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/STop211650/ai-scrapbook/internal/models"
	"github.com/STop211650/ai-scrapbook/internal/scrapbook/extract/convert"
	"github.com/STop211650/ai-scrapbook/pkg/logger"
)

// SocialSource fetches a single post from one social platform.
type SocialSource interface {
	IsConfigured() bool
	FetchPost(ctx context.Context, rawURL string) (*SocialPost, error)
}

// LinkSource produces title/description/content for a generic webpage.
type LinkSource interface {
	Fetch(ctx context.Context, rawURL string) (*ExtractedLinkContent, error)
}

// AssetSource downloads a direct-asset URL into an AssetInput.
type AssetSource interface {
	Download(ctx context.Context, rawURL string) (*AssetInput, error)
}

// URLClassifier decides asset-vs-website for a non-social URL.
type URLClassifier interface {
	Classify(ctx context.Context, rawURL string) URLKind
}

var (
	_ SocialSource  = (*TwitterClient)(nil)
	_ SocialSource  = (*RedditClient)(nil)
	_ LinkSource    = (*LinkExtractor)(nil)
	_ AssetSource   = (*AssetDownloader)(nil)
	_ URLClassifier = (*Classifier)(nil)
)

// Extractor classifies one input, selects the matching strategy and runs it
// with the fallback order each strategy defines.
type Extractor struct {
	classifier URLClassifier
	twitter    SocialSource
	reddit     SocialSource
	links      LinkSource
	assets     AssetSource
	converters *convert.Registry
	log        *logger.Logger
}

// NewExtractor wires the orchestrator from its strategy capabilities.
func NewExtractor(
	classifier URLClassifier,
	twitter, reddit SocialSource,
	links LinkSource,
	assets AssetSource,
	converters *convert.Registry,
	log *logger.Logger,
) *Extractor {
	return &Extractor{
		classifier: classifier,
		twitter:    twitter,
		reddit:     reddit,
		links:      links,
		assets:     assets,
		converters: converters,
		log:        log,
	}
}

// TwitterConfigured reports whether the twitter strategy has credentials.
func (x *Extractor) TwitterConfigured() bool { return x.twitter.IsConfigured() }

// RedditConfigured reports whether the reddit strategy has credentials.
func (x *Extractor) RedditConfigured() bool { return x.reddit.IsConfigured() }

// Extract runs the full cascade over a raw content input: coarse type
// detection, strategy selection, extraction with per-strategy fallback.
func (x *Extractor) Extract(ctx context.Context, input string) (*Extraction, error) {
	input = strings.TrimSpace(input)
	contentType := DetectContentType(input)

	switch contentType {
	case models.ContentTypeTwitter:
		return x.extractSocial(ctx, x.twitter, input, contentType)
	case models.ContentTypeReddit:
		return x.extractSocial(ctx, x.reddit, input, contentType)
	case models.ContentTypeArticle:
		return x.extractWebURL(ctx, input)
	case models.ContentTypeImage:
		return x.extractInlineImage(input)
	case models.ContentTypeText:
		if input == "" {
			return nil, fmt.Errorf("%w: empty input", ErrInvalidInput)
		}
		return &Extraction{
			Content: input,
			Type:    models.ContentTypeText,
		}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized input", ErrInvalidInput)
	}
}

// ExtractUpload runs the uploaded-file strategy on local bytes. No network
// classification is involved.
func (x *Extractor) ExtractUpload(ctx context.Context, data []byte, filename, mimeTypeHint string) (*Extraction, error) {
	asset, err := DeriveAsset(data, filename, mimeTypeHint)
	if err != nil {
		return nil, err
	}
	return x.extractAsset(ctx, asset, "")
}

// extractSocial fetches through the platform API when configured. Missing
// credentials or an upstream failure fall back to generic link extraction,
// and the content type keeps the social label either way.
func (x *Extractor) extractSocial(ctx context.Context, source SocialSource, rawURL string, contentType models.ContentType) (*Extraction, error) {
	post, err := source.FetchPost(ctx, rawURL)
	if err == nil {
		return &Extraction{
			Content:   post.Content,
			Title:     post.Title,
			Type:      contentType,
			SourceURL: rawURL,
			Metadata:  post.Metadata,
		}, nil
	}

	if errors.Is(err, ErrInvalidInput) {
		return nil, err
	}

	x.log.Warn(fmt.Sprintf("%s fetch failed, falling back to link extraction: %v", contentType, err))
	extraction, linkErr := x.extractArticle(ctx, rawURL)
	if linkErr != nil {
		return nil, linkErr
	}
	extraction.Type = contentType
	return extraction, nil
}

// extractWebURL classifies a non-social URL and routes it to the asset or
// article strategy. An asset download that turns out to be an HTML page is
// retried once through article extraction.
func (x *Extractor) extractWebURL(ctx context.Context, rawURL string) (*Extraction, error) {
	if x.classifier.Classify(ctx, rawURL) == KindAsset {
		extraction, err := x.extractRemoteAsset(ctx, rawURL)
		if err == nil {
			return extraction, nil
		}
		if !errors.Is(err, ErrLooksLikeWebsite) {
			return nil, err
		}
		x.log.Info("asset download returned an HTML page, retrying as article: " + rawURL)
	}
	return x.extractArticle(ctx, rawURL)
}

func (x *Extractor) extractRemoteAsset(ctx context.Context, rawURL string) (*Extraction, error) {
	asset, err := x.assets.Download(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return x.extractAsset(ctx, asset, rawURL)
}

func (x *Extractor) extractArticle(ctx context.Context, rawURL string) (*Extraction, error) {
	link, err := x.links.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	content := link.Content
	if content == "" {
		content = link.Description
	}
	if content == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, rawURL)
	}

	metadata := map[string]interface{}{}
	if link.Description != "" {
		metadata["description"] = link.Description
	}
	if link.SiteName != "" {
		metadata["site_name"] = link.SiteName
	}

	return &Extraction{
		Content:   content,
		Title:     link.Title,
		Type:      models.ContentTypeArticle,
		SourceURL: rawURL,
		Truncated: link.Truncated,
		Metadata:  metadata,
	}, nil
}

// extractAsset turns an AssetInput into an Extraction. Documents go through
// native text extraction first, then the markdown conversion registry for
// preprocess-capable types. Images carry no text; enrichment fills them in.
func (x *Extractor) extractAsset(_ context.Context, asset *AssetInput, sourceURL string) (*Extraction, error) {
	metadata := map[string]interface{}{
		"media_type": asset.MediaType,
		"size_bytes": asset.SizeBytes,
	}
	if asset.Filename != "" {
		metadata["filename"] = asset.Filename
	}

	if asset.Kind == KindImage {
		return &Extraction{
			Title:     asset.Filename,
			Type:      models.ContentTypeImage,
			SourceURL: sourceURL,
			Metadata:  metadata,
		}, nil
	}

	doc, err := x.extractDocument(asset)
	if err != nil {
		return nil, err
	}
	if doc.Text == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptyText, asset.MediaType)
	}

	return &Extraction{
		Content:   doc.Text,
		Title:     asset.Filename,
		Type:      models.ContentTypeDocument,
		SourceURL: sourceURL,
		Truncated: doc.Truncated,
		Metadata:  metadata,
	}, nil
}

func (x *Extractor) extractDocument(asset *AssetInput) (*ExtractedDocumentText, error) {
	doc, nativeErr := ExtractDocumentText(asset)
	if nativeErr == nil {
		return doc, nil
	}
	if !CanPreprocess(asset.MediaType) {
		return nil, nativeErr
	}

	markdown, convErr := x.converters.Convert(asset.Bytes)
	if convErr != nil {
		return nil, fmt.Errorf("%w: conversion failed for %s: %v", ErrUnsupportedMediaType, asset.MediaType, convErr)
	}
	return NormalizeDocumentText(markdown), nil
}

// extractInlineImage decodes a data URL into an image extraction.
func (x *Extractor) extractInlineImage(input string) (*Extraction, error) {
	mediaType, data, err := decodeDataURL(input)
	if err != nil {
		return nil, err
	}
	return &Extraction{
		Type: models.ContentTypeImage,
		Metadata: map[string]interface{}{
			"media_type": mediaType,
			"size_bytes": int64(len(data)),
		},
	}, nil
}

// decodeDataURL parses a base64 data URL, e.g. data:image/png;base64,AAAA.
func decodeDataURL(input string) (mediaType string, data []byte, err error) {
	rest, ok := strings.CutPrefix(input, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data url", ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: malformed data url", ErrInvalidInput)
	}

	mediaType = meta
	encoding := ""
	if i := strings.Index(meta, ";"); i >= 0 {
		mediaType = meta[:i]
		encoding = meta[i+1:]
	}

	if strings.Contains(encoding, "base64") {
		data, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return "", nil, fmt.Errorf("%w: bad base64 payload: %v", ErrInvalidInput, err)
		}
	} else {
		data = []byte(payload)
	}
	return mediaType, data, nil
}
