package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/STop211650/ai-scrapbook/internal/config"
)

const (
	redditTokenURL   = "https://www.reddit.com/api/v1/access_token"
	redditAPIBase    = "https://oauth.reddit.com"
	redditMaxTopics  = 10  // top-level comments included in the blob
	redditCommentCap = 500 // chars per included comment
)

// RedditClient fetches posts and their top comments through the Reddit API
// using an application-only OAuth token.
type RedditClient struct {
	clientID     string
	clientSecret string
	userAgent    string
	client       *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewRedditClient creates a RedditClient. Missing credentials produce an
// unconfigured client; FetchPost then fails with ErrNotConfigured.
func NewRedditClient(cfg config.RedditConfig) *RedditClient {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "ai-scrapbook/1.0"
	}
	return &RedditClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		userAgent:    userAgent,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured reports whether API credentials are present.
func (r *RedditClient) IsConfigured() bool {
	return r.clientID != "" && r.clientSecret != ""
}

// FetchPost fetches the post referenced by a reddit URL and composes a text
// blob with the selftext and a bounded number of top-level comments.
func (r *RedditClient) FetchPost(ctx context.Context, rawURL string) (*SocialPost, error) {
	if !r.IsConfigured() {
		return nil, fmt.Errorf("%w: reddit api credentials missing", ErrNotConfigured)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if path == "" {
		return nil, fmt.Errorf("%w: not a reddit post url: %s", ErrInvalidInput, rawURL)
	}

	token, err := r.token(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s%s.json?limit=%d&depth=1", redditAPIBase, path, redditMaxTopics+5)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: reddit api status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	var listings []redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listings); err != nil {
		return nil, fmt.Errorf("%w: decoding reddit listing: %v", ErrUpstreamFetch, err)
	}
	if len(listings) == 0 || len(listings[0].Data.Children) == 0 {
		return nil, fmt.Errorf("%w: empty reddit listing for %s", ErrUpstreamFetch, rawURL)
	}

	post := listings[0].Data.Children[0].Data
	var comments []redditThing
	if len(listings) > 1 {
		for _, child := range listings[1].Data.Children {
			if child.Kind != "t1" || child.Data.Body == "" {
				continue
			}
			comments = append(comments, child.Data)
			if len(comments) == redditMaxTopics {
				break
			}
		}
	}

	return composeRedditPost(post, comments), nil
}

type redditListing struct {
	Data struct {
		Children []struct {
			Kind string      `json:"kind"`
			Data redditThing `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditThing struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	SelfText    string  `json:"selftext"`
	Body        string  `json:"body"`
	URL         string  `json:"url"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
}

func composeRedditPost(post redditThing, comments []redditThing) *SocialPost {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Reddit post in r/%s by u/%s\n\n%s\n", post.Subreddit, post.Author, post.Title)
	if post.SelfText != "" {
		sb.WriteString("\n" + post.SelfText + "\n")
	} else if post.URL != "" {
		sb.WriteString("\nLink: " + post.URL + "\n")
	}
	fmt.Fprintf(&sb, "\nScore: %d | Comments: %d\n", post.Score, post.NumComments)

	if len(comments) > 0 {
		sb.WriteString("\nTop comments:\n")
		for _, c := range comments {
			body := c.Body
			if runes := []rune(body); len(runes) > redditCommentCap {
				body = string(runes[:redditCommentCap]) + "..."
			}
			fmt.Fprintf(&sb, "- u/%s: %s\n", c.Author, body)
		}
	}

	return &SocialPost{
		Title:   post.Title,
		Content: sb.String(),
		Metadata: map[string]interface{}{
			"author":       post.Author,
			"subreddit":    post.Subreddit,
			"score":        post.Score,
			"num_comments": post.NumComments,
		},
	}
}

// token returns a valid application-only access token, refreshing it through
// the client-credentials grant when the cached one is near expiry.
func (r *RedditClient) token(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.accessToken != "" && time.Now().Before(r.tokenExpiry.Add(-time.Minute)) {
		return r.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, redditTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	req.SetBasicAuth(r.clientID, r.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: reddit token status %d", ErrUpstreamFetch, resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decoding reddit token: %v", ErrUpstreamFetch, err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("%w: empty reddit token", ErrUpstreamFetch)
	}

	r.accessToken = body.AccessToken
	r.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return r.accessToken, nil
}
