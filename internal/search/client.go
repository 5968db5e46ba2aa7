// Package search queries a SearxNG-compatible metasearch endpoint and folds
// the answer into an explicit success-or-failure response, so callers branch
// on a variant instead of sniffing runtime types.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const DefaultEndpoint = "https://search.hbubli.cc/search"

type Result struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url,omitempty"`
}

// Response is the outcome of one search call. Exactly one of Results or Err
// is meaningful; Failed distinguishes the two.
type Response struct {
	Results []Result
	Err     *SearchError
}

func (r Response) Failed() bool { return r.Err != nil }

// SearchError is a collaborator-level failure: a non-200 answer or an
// undecodable body. Transport errors are returned as plain Go errors by
// Search instead.
type SearchError struct {
	StatusCode int
	Message    string
}

func (e *SearchError) Error() string {
	if e == nil {
		return "search error"
	}
	return e.Message
}

// Query carries the optional SearxNG parameters. Zero values are omitted
// from the request so the engine applies its own defaults.
type Query struct {
	Text       string
	Categories []string
	Engines    []string
	Language   string
	Page       int
}

type Client struct {
	http     *http.Client
	endpoint string
}

func NewClient(httpClient *http.Client, endpoint string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{http: httpClient, endpoint: endpoint}
}

type searchEngineResponse struct {
	Results []Result `json:"results"`
}

// Search performs one synchronous query. The returned error covers request
// construction and transport failures only; engine-level failures come back
// inside the Response.
func (c *Client) Search(ctx context.Context, q Query) (Response, error) {
	if strings.TrimSpace(q.Text) == "" {
		return Response{}, fmt.Errorf("search: query text is required")
	}

	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("format", "json")
	if len(q.Categories) > 0 {
		params.Set("categories", strings.Join(q.Categories, ","))
	}
	if len(q.Engines) > 0 {
		params.Set("engines", strings.Join(q.Engines, ","))
	}
	if strings.TrimSpace(q.Language) != "" {
		params.Set("language", q.Language)
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	params.Set("pageno", strconv.Itoa(page))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return Response{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, err
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Response{Err: &SearchError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Error accessing search engine. Status code: %d", resp.StatusCode),
		}}, nil
	}

	var out searchEngineResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return Response{Err: &SearchError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("Error parsing search results: %v", err),
		}}, nil
	}
	return Response{Results: out.Results}, nil
}
