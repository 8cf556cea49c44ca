package trustreviews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const reviewPage = `<!doctype html>
<html><body>
<article class="review">
  <a class="review-link" href="/reviews/abc123">permalink</a>
  <h3 class="review-title">Billing&nbsp;export broken</h3>
  <div class="review-body">
     The billing   export has failed
     every night this week.
  </div>
  <span class="review-author">Casey R.</span>
  <time datetime="2026-02-09T18:00:00Z">Feb 9</time>
</article>
<article class="review">
  <a class="review-link" href="/reviews/abc123"></a>
  <div class="review-body">duplicate of the first card</div>
</article>
<article class="review">
  <div class="review-body">card without a permalink is skipped</div>
</article>
<article class="review">
  <a class="review-link" href="https://other.example/reviews/x"></a>
  <div class="review-body">absolute links pass through for the billing team</div>
</article>
</body></html>`

func TestFetchScrapesReviews(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(reviewPage))
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL, Product: "acme-sync"}, nil)
	items, err := s.Fetch(context.Background(), "billing", 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotPath != "/review/acme-sync" {
		t.Fatalf("path = %q", gotPath)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2 (duplicate and link-less cards skipped)", len(items))
	}

	first := items[0]
	if first.URL != srv.URL+"/reviews/abc123" {
		t.Fatalf("relative href not absolutized: %q", first.URL)
	}
	if !strings.HasPrefix(first.Content, "Billing export broken") {
		t.Fatalf("nbsp not normalized in title: %q", first.Content)
	}
	if strings.Contains(first.Content, "  ") {
		t.Fatalf("whitespace not collapsed: %q", first.Content)
	}
	if first.Author != "Casey R." {
		t.Fatalf("author = %q", first.Author)
	}
	want := time.Date(2026, 2, 9, 18, 0, 0, 0, time.UTC)
	if !first.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v, want %v", first.CreatedAt, want)
	}
	if first.Relevance != 1 {
		t.Fatalf("relevance = %v, want 1", first.Relevance)
	}

	if items[1].URL != "https://other.example/reviews/x" {
		t.Fatalf("absolute href mangled: %q", items[1].URL)
	}
}

func TestFetchRespectsLimit(t *testing.T) {
	var cards strings.Builder
	cards.WriteString("<html><body>")
	for i := 0; i < 5; i++ {
		cards.WriteString(`<article class="review">
  <a class="review-link" href="/reviews/r` + string(rune('a'+i)) + `"></a>
  <div class="review-body">billing complaint</div>
</article>`)
	}
	cards.WriteString("</body></html>")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(cards.String()))
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL, Product: "acme-sync"}, nil)
	items, err := s.Fetch(context.Background(), "billing", 3)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items = %d, want the limit of 3", len(items))
	}
}

func TestFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "blocked", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := New(Config{BaseURL: srv.URL, Product: "acme-sync"}, nil)
	if _, err := s.Fetch(context.Background(), "billing", 10); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestCleanText(t *testing.T) {
	in := "  Billing export   has\n\tfailed  "
	if got := cleanText(in); got != "Billing export has failed" {
		t.Fatalf("cleanText = %q", got)
	}
}
