package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchBuildsQueryParams(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	resp, err := c.Search(context.Background(), Query{
		Text:       "weather in oslo",
		Categories: []string{"news", "general"},
		Engines:    []string{"duckduckgo", "brave"},
		Language:   "en",
	})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if resp.Failed() {
		t.Fatalf("unexpected failure: %v", resp.Err)
	}

	want := map[string]string{
		"q":          "weather in oslo",
		"format":     "json",
		"categories": "news,general",
		"engines":    "duckduckgo,brave",
		"language":   "en",
		"pageno":     "1",
	}
	for k, v := range want {
		if len(gotQuery[k]) != 1 || gotQuery[k][0] != v {
			t.Errorf("param %s = %v, want %q", k, gotQuery[k], v)
		}
	}
}

func TestSearchOmitsUnsetParams(t *testing.T) {
	t.Parallel()

	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	if _, err := c.Search(context.Background(), Query{Text: "hi"}); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	for _, k := range []string{"categories", "engines", "language"} {
		if _, ok := gotQuery[k]; ok {
			t.Errorf("param %s should be omitted when unset", k)
		}
	}
	if got := gotQuery["pageno"]; len(got) != 1 || got[0] != "1" {
		t.Errorf("pageno = %v, want default 1", got)
	}
}

func TestSearchParsesResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"title":"A","content":"B"},{"title":"C","content":"D"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	resp, err := c.Search(context.Background(), Query{Text: "hi"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(resp.Results) != 2 {
		t.Fatalf("len(Results) = %d, want 2", len(resp.Results))
	}
	if resp.Results[0].Title != "A" || resp.Results[1].Content != "D" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchNon200BecomesSearchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	resp, err := c.Search(context.Background(), Query{Text: "hi"})
	if err != nil {
		t.Fatalf("transport error not expected: %v", err)
	}
	if !resp.Failed() {
		t.Fatal("expected failed response")
	}
	if resp.Err.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d", resp.Err.StatusCode)
	}
	if want := "Error accessing search engine. Status code: 429"; resp.Err.Message != want {
		t.Errorf("message = %q, want %q", resp.Err.Message, want)
	}
}

func TestSearchBadJSONBecomesSearchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL)
	resp, err := c.Search(context.Background(), Query{Text: "hi"})
	if err != nil {
		t.Fatalf("transport error not expected: %v", err)
	}
	if !resp.Failed() {
		t.Fatal("expected failed response")
	}
}

func TestSearchTransportErrorPropagates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := NewClient(nil, srv.URL)
	if _, err := c.Search(context.Background(), Query{Text: "hi"}); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestFormatResponseSingleResult(t *testing.T) {
	t.Parallel()

	got := FormatResponse(Response{Results: []Result{{Title: "A", Content: "B"}}})
	if want := "**A**\nB\n"; got != want {
		t.Errorf("FormatResponse() = %q, want %q", got, want)
	}
}

func TestFormatResponseMultipleResults(t *testing.T) {
	t.Parallel()

	got := FormatResponse(Response{Results: []Result{
		{Title: "A", Content: "B"},
		{Title: "C", Content: "D"},
	}})
	if want := "**A**\nB\n\n**C**\nD\n"; got != want {
		t.Errorf("FormatResponse() = %q, want %q", got, want)
	}
}

func TestFormatResponseError(t *testing.T) {
	t.Parallel()

	got := FormatResponse(Response{Err: &SearchError{Message: "boom"}})
	if want := "Search Error: boom"; got != want {
		t.Errorf("FormatResponse() = %q, want %q", got, want)
	}
}

func TestFormatResponseEmpty(t *testing.T) {
	t.Parallel()

	if got := FormatResponse(Response{}); got != "" {
		t.Errorf("FormatResponse() = %q, want empty", got)
	}
}
