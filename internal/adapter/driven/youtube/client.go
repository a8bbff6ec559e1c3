// Package youtube implements the YouTubeClient port using the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/ericfisherdev/mentionpipe/internal/domain/model"
	"github.com/ericfisherdev/mentionpipe/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.YouTubeClient = (*Client)(nil)

const (
	// searchPageSize is the provider ceiling for search.list maxResults.
	searchPageSize = 50
	// threadPageSize is the provider ceiling for commentThreads.list maxResults.
	threadPageSize = 100
)

// Options tunes the client's retry and pacing behavior.
type Options struct {
	Retry RetryPolicy
	// RequestsPerSecond caps outbound calls. Zero or negative disables pacing.
	RequestsPerSecond float64
}

// DefaultOptions returns the production retry policy with 5 requests per second.
func DefaultOptions() Options {
	return Options{
		Retry:             DefaultRetryPolicy,
		RequestsPerSecond: 5,
	}
}

// Client implements the driven.YouTubeClient port.
type Client struct {
	yt      *yt.Service
	apiKey  string
	retry   RetryPolicy
	limiter *rate.Limiter
}

// NewClient creates a YouTube API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. x/time/rate limiter (paces calls made through this client)
//  3. youtube/v3 generated client, API key sent as the "key" query parameter
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	httpClient := cacheTransport.Client()
	httpClient.Timeout = 30 * time.Second

	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service: %w", err)
	}

	return newClient(svc, apiKey, opts), nil
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base URL.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, baseURL, apiKey string, opts Options) (*Client, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating youtube service for %s: %w", baseURL, err)
	}

	return newClient(svc, apiKey, opts), nil
}

func newClient(svc *yt.Service, apiKey string, opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	retry := opts.Retry
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}

	return &Client{
		yt:      svc,
		apiKey:  apiKey,
		retry:   retry,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// SearchItems pages through search.list for videos matching terms, newest first.
// Every result the provider returns counts toward maxItems, including ones
// skipped as duplicates or non-videos. Any failure ends pagination; the videos
// gathered so far are returned.
func (c *Client) SearchItems(ctx context.Context, terms []string, publishedAfter time.Time, maxItems int) []model.VideoRef {
	videos := []model.VideoRef{}
	if maxItems <= 0 {
		return videos
	}

	query := strings.Join(terms, " ")
	seen := make(map[string]struct{})
	pageToken := ""
	received := 0

	for page := 1; received < maxItems; page++ {
		call := c.yt.Search.List([]string{"snippet"}).
			Q(query).
			Type("video").
			Order("date").
			MaxResults(int64(min(searchPageSize, maxItems-received)))
		if !publishedAfter.IsZero() {
			call = call.PublishedAfter(publishedAfter.UTC().Format(time.RFC3339))
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			slog.Warn("youtube search interrupted", "page", page, "collected", len(videos), "error", err)
			break
		}

		resp, err := call.Context(ctx).Do(c.callOptions()...)
		if err != nil {
			slog.Warn("youtube search failed, returning partial results",
				"query", query,
				"page", page,
				"status", statusCode(err),
				"collected", len(videos),
				"error", err,
			)
			break
		}

		logPage("search", page, len(resp.Items), resp.NextPageToken != "")

		for _, item := range resp.Items {
			if received >= maxItems {
				break
			}
			received++
			ref, ok := mapSearchResult(item)
			if !ok {
				continue
			}
			if _, dup := seen[ref.ID]; dup {
				continue
			}
			seen[ref.ID] = struct{}{}
			videos = append(videos, ref)
		}

		// An empty page cannot advance the count, so a token on it is not followed.
		if resp.NextPageToken == "" || len(resp.Items) == 0 {
			break
		}
		pageToken = resp.NextPageToken
	}

	return videos
}

// pageOutcome tells the FetchThread loop how a page request ended.
type pageOutcome int

const (
	pageOK pageOutcome = iota
	pageCommentsDisabled
	pageAbandoned
)

// FetchThread pages through commentThreads.list for a video, flattening each
// thread into its top-level comment followed by its replies. The result never
// exceeds maxItems. A 403 means comments are disabled and yields an empty slice.
func (c *Client) FetchThread(ctx context.Context, videoID string, maxItems int) []model.RawComment {
	comments := []model.RawComment{}
	if maxItems <= 0 {
		return comments
	}

	seen := make(map[string]struct{})
	pageToken := ""

	for page := 1; len(comments) < maxItems; page++ {
		pageSize := min(threadPageSize, maxItems-len(comments))

		resp, outcome := c.fetchThreadPage(ctx, videoID, pageToken, pageSize, page)
		switch outcome {
		case pageCommentsDisabled:
			return []model.RawComment{}
		case pageAbandoned:
			return comments
		}

		logPage("commentThreads/"+videoID, page, len(resp.Items), resp.NextPageToken != "")

		appendComment := func(cm *yt.Comment) {
			if len(comments) >= maxItems {
				return
			}
			raw, ok := mapComment(cm)
			if !ok {
				return
			}
			if _, dup := seen[raw.ID]; dup {
				return
			}
			seen[raw.ID] = struct{}{}
			comments = append(comments, raw)
		}

		for _, thread := range resp.Items {
			if thread == nil {
				continue
			}
			if thread.Snippet != nil {
				appendComment(thread.Snippet.TopLevelComment)
			}
			if thread.Replies != nil {
				for _, reply := range thread.Replies.Comments {
					appendComment(reply)
				}
			}
		}

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return comments
}

// fetchThreadPage requests one page of comment threads, re-issuing the same
// request after a fixed backoff on retryable failures until the retry ceiling.
func (c *Client) fetchThreadPage(ctx context.Context, videoID, pageToken string, pageSize, page int) (*yt.CommentThreadListResponse, pageOutcome) {
	attempt := 0
	operation := func() (*yt.CommentThreadListResponse, error) {
		attempt++
		call := c.yt.CommentThreads.List([]string{"snippet", "replies"}).
			VideoId(videoID).
			Order("time").
			TextFormat("plainText").
			MaxResults(int64(pageSize))
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		resp, err := call.Context(ctx).Do(c.callOptions()...)
		if err != nil && !isRetryable(err) {
			return nil, backoff.Permanent(err)
		}
		return resp, err
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("comment fetch failed, retrying",
			"video_id", videoID,
			"page", page,
			"attempt", attempt,
			"status", statusCode(err),
			"backoff", wait,
		)
	}

	resp, err := backoff.Retry(ctx, operation, c.retry.options(notify)...)
	if err == nil {
		return resp, pageOK
	}

	code := statusCode(err)
	switch {
	case code == http.StatusForbidden:
		slog.Info("comments disabled for video", "video_id", videoID)
		return nil, pageCommentsDisabled
	case isRetryable(err):
		slog.Warn("comment fetch retry ceiling reached, abandoning page",
			"video_id", videoID,
			"page", page,
			"attempts", attempt,
			"status", code,
			"error", err,
		)
	default:
		slog.Warn("comment fetch failed, returning partial results",
			"video_id", videoID,
			"page", page,
			"status", code,
			"error", err,
		)
	}
	return nil, pageAbandoned
}

func (c *Client) callOptions() []googleapi.CallOption {
	return []googleapi.CallOption{googleapi.QueryParameter("key", c.apiKey)}
}

// logPage logs each page fetched at debug level.
func logPage(endpoint string, page, count int, hasNext bool) {
	slog.Debug("youtube api call",
		"endpoint", endpoint,
		"page", page,
		"count", count,
		"has_next", hasNext,
	)
}

// mapSearchResult converts a search result to a VideoRef. Results without a
// video ID (channels, playlists) are rejected.
func mapSearchResult(item *yt.SearchResult) (model.VideoRef, bool) {
	if item == nil || item.Id == nil || item.Id.VideoId == "" {
		return model.VideoRef{}, false
	}

	ref := model.VideoRef{ID: item.Id.VideoId}
	if s := item.Snippet; s != nil {
		// Search snippets carry HTML-escaped titles.
		ref.Title = html.UnescapeString(s.Title)
		ref.ChannelID = s.ChannelId
		ref.PublishedAt = parseTimestamp(s.PublishedAt)
	}
	return ref, true
}

// mapComment converts a top-level comment or reply to a RawComment.
func mapComment(cm *yt.Comment) (model.RawComment, bool) {
	if cm == nil || cm.Id == "" {
		return model.RawComment{}, false
	}

	raw := model.RawComment{ID: cm.Id}
	if s := cm.Snippet; s != nil {
		raw.Text = s.TextDisplay
		raw.AuthorDisplayName = s.AuthorDisplayName
		raw.LikeCount = max(s.LikeCount, 0)
		raw.PublishedAt = parseTimestamp(s.PublishedAt)
	}
	return raw, true
}

// parseTimestamp parses the RFC 3339 timestamps the API returns. Unparseable
// values map to the zero time.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		slog.Debug("unparseable youtube timestamp", "value", s, "error", err)
		return time.Time{}
	}
	return t
}
