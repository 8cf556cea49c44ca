package newsrss

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
  <channel>
    <title>Tech Wire</title>
    <item>
      <title>Acme billing outage hits enterprise customers</title>
      <link>https://news.example/billing-outage</link>
      <description>Customers report failed invoices after the outage.</description>
      <pubDate>Tue, 10 Feb 2026 09:00:00 +0000</pubDate>
      <dc:creator>Jordan Li</dc:creator>
    </item>
    <item>
      <title>Completely unrelated story</title>
      <link>https://news.example/other</link>
      <description>Nothing to see here.</description>
      <pubDate>Tue, 10 Feb 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

func TestFetchFiltersByKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(feedXML))
	}))
	defer srv.Close()

	c := New(Config{Feeds: []Feed{{Name: "techwire", URL: srv.URL}}}, nil)
	items, err := c.Fetch(context.Background(), "billing", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 (non-matching story filtered out)", len(items))
	}

	it := items[0]
	if it.URL != "https://news.example/billing-outage" {
		t.Fatalf("url = %q", it.URL)
	}
	if it.Author != "Jordan Li" {
		t.Fatalf("dc:creator not used as author: %q", it.Author)
	}
	want := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	if !it.CreatedAt.Equal(want) {
		t.Fatalf("pubDate = %v, want %v", it.CreatedAt, want)
	}
	if it.Relevance == 0 {
		t.Fatal("matching item has zero relevance")
	}
}

func TestFetchSurvivesDeadFeed(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(feedXML))
	}))
	defer good.Close()

	c := New(Config{Feeds: []Feed{
		{Name: "dead", URL: dead.URL},
		{Name: "good", URL: good.URL},
	}}, nil)

	items, err := c.Fetch(context.Background(), "billing", 10)
	if err != nil {
		t.Fatalf("one dead feed should not fail the fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want 1 from the healthy feed", len(items))
	}
}

func TestFetchAllFeedsDead(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusBadGateway)
	}))
	defer dead.Close()

	c := New(Config{Feeds: []Feed{{Name: "dead", URL: dead.URL}}}, nil)
	if _, err := c.Fetch(context.Background(), "billing", 10); err == nil {
		t.Fatal("expected error when every feed fails")
	}
}

func TestParsePubDate(t *testing.T) {
	cases := []struct {
		in   string
		zero bool
	}{
		{"Tue, 10 Feb 2026 09:00:00 +0000", false},
		{"Tue, 10 Feb 2026 09:00:00 GMT", false},
		{"2026-02-10T09:00:00Z", false},
		{"yesterday-ish", true},
		{"", true},
	}
	for _, tc := range cases {
		got := parsePubDate(tc.in)
		if got.IsZero() != tc.zero {
			t.Errorf("parsePubDate(%q) zero=%v, want zero=%v", tc.in, got.IsZero(), tc.zero)
		}
	}
}
