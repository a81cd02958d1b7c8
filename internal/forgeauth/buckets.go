package forgeauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Bucket is the subset of an OSS bucket listing returned to callers.
type Bucket struct {
	Key       string `json:"bucketKey"`
	CreatedAt int64  `json:"createdDate"`
	Policy    string `json:"policyKey"`
}

// BucketClient lists OSS buckets on behalf of external callers. Its HTTP client
// carries the internal token; only bucket metadata is returned.
type BucketClient struct {
	baseURL string
	client  *http.Client
}

// NewBucketClient creates a client for the API at baseURL. httpClient must inject
// the internal token (see httpclient.Builder.WithTokenSource).
func NewBucketClient(baseURL string, httpClient *http.Client) (*BucketClient, error) {
	if httpClient == nil {
		return nil, errors.New("forgeauth: http client is required")
	}
	if _, err := url.Parse(baseURL); err != nil || baseURL == "" {
		return nil, fmt.Errorf("forgeauth: invalid API base URL %q", baseURL)
	}
	return &BucketClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}, nil
}

// ListBuckets returns the application's buckets, following pagination.
func (c *BucketClient) ListBuckets(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	startAt := ""

	for {
		page, next, err := c.listPage(ctx, startAt)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, page...)
		if next == "" || next == startAt {
			return buckets, nil
		}
		startAt = next
	}
}

type bucketPage struct {
	Items []Bucket `json:"items"`
	Next  string   `json:"next"`
}

func (c *BucketClient) listPage(ctx context.Context, startAt string) ([]Bucket, string, error) {
	endpoint := c.baseURL + "/oss/v2/buckets?limit=100"
	if startAt != "" {
		endpoint += "&startAt=" + url.QueryEscape(startAt)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", fmt.Errorf("forgeauth: build bucket request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("forgeauth: list buckets: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("forgeauth: list buckets: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page bucketPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("forgeauth: decode bucket list: %w", err)
	}

	return page.Items, nextStartAt(page.Next), nil
}

// nextStartAt extracts the startAt cursor from the "next" link, if any.
func nextStartAt(next string) string {
	if next == "" {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil {
		return ""
	}
	return u.Query().Get("startAt")
}
