package devanswers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetchParsesQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/advanced" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("site"); got != "stackoverflow" {
			t.Errorf("site = %q", got)
		}
		if got := r.URL.Query().Get("q"); got != "billing export" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{
					"title": "Why does the billing export fail with &quot;timeout&quot;?",
					"link": "https://devanswers.example/q/101",
					"creation_date": 1767225600,
					"owner": {"display_name": "dev&amp;ops"}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	items, err := c.Fetch(context.Background(), "billing export", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}

	it := items[0]
	if it.Content != `Why does the billing export fail with "timeout"?` {
		t.Fatalf("html entities not unescaped: %q", it.Content)
	}
	if it.Author != "dev&ops" {
		t.Fatalf("author = %q", it.Author)
	}
	want := time.Unix(1767225600, 0).UTC()
	if !it.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v, want %v", it.CreatedAt, want)
	}
	if it.Relevance != 1 {
		t.Fatalf("relevance = %v, want 1", it.Relevance)
	}
}

func TestDefaults(t *testing.T) {
	c := New(Config{}, nil)
	if c.cfg.BaseURL != "https://api.stackexchange.com/2.3" {
		t.Fatalf("default base url = %q", c.cfg.BaseURL)
	}
	if c.cfg.Site != "stackoverflow" {
		t.Fatalf("default site = %q", c.cfg.Site)
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backoff", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	if _, err := c.Fetch(context.Background(), "billing", 10); err == nil {
		t.Fatal("expected error on 400")
	}
}
