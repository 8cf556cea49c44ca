package forgeissues

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetchParsesIssues(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{
					"title": "Billing export broken",
					"body": "Since 2.3 the billing export returns 500",
					"html_url": "https://forge.example/o/r/issues/1",
					"created_at": "2026-02-10T08:30:00Z",
					"user": {"login": "casey"}
				},
				{
					"title": "Unrelated question",
					"body": "",
					"html_url": "https://forge.example/o/r/issues/2",
					"created_at": "not-a-date",
					"user": {"login": "rs"}
				}
			]
		}`))
	}))
	defer srv.Close()

	c := New(Config{
		BaseURL: srv.URL,
		Repos:   []string{"acme/sync", "acme/billing"},
		Token:   func() (string, error) { return "tok-123", nil },
	}, nil)

	items, err := c.Fetch(context.Background(), "billing", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/search/issues" {
		t.Fatalf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "repo:acme/sync") || !strings.Contains(gotQuery, "repo:acme/billing") {
		t.Fatalf("repo qualifiers missing from query %q", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("auth header = %q", gotAuth)
	}

	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	first := items[0]
	if first.Author != "casey" || first.URL != "https://forge.example/o/r/issues/1" {
		t.Fatalf("item = %+v", first)
	}
	if !strings.Contains(first.Content, "Billing export broken") || !strings.Contains(first.Content, "returns 500") {
		t.Fatalf("title and body not joined: %q", first.Content)
	}
	want := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v, want %v", first.CreatedAt, want)
	}
	if first.Relevance != 1 {
		t.Fatalf("relevance = %v, want 1 for a title hit", first.Relevance)
	}
	// unparseable timestamps come back zero; scoring treats them as fresh
	if !items[1].CreatedAt.IsZero() {
		t.Fatalf("bad timestamp should be zero, got %v", items[1].CreatedAt)
	}
}

func TestFetchWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("unexpected Authorization header")
		}
		w.Write([]byte(`{"items": []}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	items, err := c.Fetch(context.Background(), "billing", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limit", http.StatusForbidden)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL}, nil)
	if _, err := c.Fetch(context.Background(), "billing", 10); err == nil {
		t.Fatal("expected error on 403")
	}
}
