package extract

import (
	"net/url"
	"strings"

	"github.com/STop211650/ai-scrapbook/internal/models"
)

var twitterHosts = map[string]bool{
	"twitter.com":        true,
	"x.com":              true,
	"mobile.twitter.com": true,
}

var redditHosts = map[string]bool{
	"reddit.com":     true,
	"old.reddit.com": true,
	"new.reddit.com": true,
	"redd.it":        true,
}

// DetectContentType classifies a raw content input at the coarse level.
// Valid http(s) URLs map to twitter/reddit/article by hostname; inline
// image data maps to image; anything else is plain text. A string that
// looks like a URL but fails to parse, or carries a scheme we cannot
// fetch, maps to unknown.
func DetectContentType(input string) models.ContentType {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "data:image/") {
		return models.ContentTypeImage
	}

	if hasURLScheme(trimmed) {
		u, err := url.Parse(trimmed)
		if err != nil || u.Host == "" {
			return models.ContentTypeUnknown
		}
		return detectURLType(u)
	}
	if hasOtherScheme(trimmed) {
		return models.ContentTypeUnknown
	}

	return models.ContentTypeText
}

func hasURLScheme(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// hasOtherScheme reports whether s starts with a non-http URL scheme such
// as ftp:// or file://, so it is not mistaken for plain text.
func hasOtherScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func detectURLType(u *url.URL) models.ContentType {
	host := normalizeHost(u.Host)
	switch {
	case twitterHosts[host]:
		return models.ContentTypeTwitter
	case redditHosts[host]:
		return models.ContentTypeReddit
	default:
		return models.ContentTypeArticle
	}
}

// normalizeHost lowercases the host, strips any port and a leading "www.".
func normalizeHost(host string) string {
	host = strings.ToLower(host)
	if i := strings.LastIndex(host, ":"); i > 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.TrimPrefix(host, "www.")
}
