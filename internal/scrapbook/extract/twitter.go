package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

const twitterAPIBase = "https://api.twitter.com/2"

// SocialPost is one fetched social-media post composed into a text blob.
type SocialPost struct {
	Title    string
	Content  string
	Metadata map[string]interface{}
}

// TwitterClient fetches single tweets through the Twitter/X API v2.
type TwitterClient struct {
	bearerToken string
	client      *http.Client
}

// NewTwitterClient creates a TwitterClient. An empty bearer token produces
// an unconfigured client; FetchPost then fails with ErrNotConfigured.
func NewTwitterClient(cfg config.TwitterConfig) *TwitterClient {
	return &TwitterClient{
		bearerToken: cfg.BearerToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether API credentials are present.
func (t *TwitterClient) IsConfigured() bool {
	return t.bearerToken != ""
}

type tweetResponse struct {
	Data struct {
		ID            string `json:"id"`
		Text          string `json:"text"`
		AuthorID      string `json:"author_id"`
		CreatedAt     string `json:"created_at"`
		PublicMetrics struct {
			RetweetCount int `json:"retweet_count"`
			ReplyCount   int `json:"reply_count"`
			LikeCount    int `json:"like_count"`
		} `json:"public_metrics"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			Name     string `json:"name"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
	Errors []struct {
		Detail string `json:"detail"`
	} `json:"errors"`
}

// FetchPost fetches the tweet referenced by a status URL and composes a
// text blob with author and engagement metadata.
func (t *TwitterClient) FetchPost(ctx context.Context, rawURL string) (*SocialPost, error) {
	if !t.IsConfigured() {
		return nil, fmt.Errorf("%w: twitter bearer token missing", ErrNotConfigured)
	}

	tweetID, err := tweetIDFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf(
		"%s/tweets/%s?tweet.fields=created_at,public_metrics,author_id&expansions=author_id&user.fields=name,username",
		twitterAPIBase, tweetID,
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+t.bearerToken)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: twitter api status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	var tweet tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweet); err != nil {
		return nil, fmt.Errorf("%w: decoding tweet: %v", ErrUpstreamFetch, err)
	}
	if len(tweet.Errors) > 0 {
		return nil, fmt.Errorf("%w: twitter api: %s", ErrUpstreamFetch, tweet.Errors[0].Detail)
	}
	if tweet.Data.Text == "" {
		return nil, fmt.Errorf("%w: tweet %s", ErrEmptyText, tweetID)
	}

	name, username := "unknown", "unknown"
	if len(tweet.Includes.Users) > 0 {
		name = tweet.Includes.Users[0].Name
		username = tweet.Includes.Users[0].Username
	}

	metrics := tweet.Data.PublicMetrics
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tweet by %s (@%s)\n\n", name, username)
	sb.WriteString(tweet.Data.Text)
	fmt.Fprintf(&sb, "\n\nLikes: %d | Retweets: %d | Replies: %d",
		metrics.LikeCount, metrics.RetweetCount, metrics.ReplyCount)

	return &SocialPost{
		Title:   fmt.Sprintf("Tweet by @%s", username),
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"author":   name,
			"username": username,
			"tweet_id": tweet.Data.ID,
			"likes":    metrics.LikeCount,
			"retweets": metrics.RetweetCount,
			"replies":  metrics.ReplyCount,
			"posted":   tweet.Data.CreatedAt,
		},
	}, nil
}

// tweetIDFromURL pulls the numeric status ID out of a tweet URL path,
// e.g. https://x.com/user/status/123456.
func tweetIDFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, part := range parts {
		if part == "status" && i+1 < len(parts) {
			id := parts[i+1]
			if id != "" && strings.IndexFunc(id, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
				return id, nil
			}
		}
	}
	return "", fmt.Errorf("%w: no status id in %s", ErrInvalidInput, rawURL)
}
