// Package trustreviews scrapes a review-site product page. Review boards
// render server-side HTML, so this is a goquery parse rather than an API
// call.
package trustreviews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/util"
)

type Config struct {
	BaseURL string // https://www.trustreviews.example
	Product string // product slug on the review site
}

type Scraper struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Scraper {
	return &Scraper{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (s *Scraper) Name() string { return "trustreviews" }

func (s *Scraper) Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	pageURL := fmt.Sprintf("%s/review/%s?search=%s",
		strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(s.cfg.Product), url.QueryEscape(query))

	if s.limiter != nil {
		if err := s.limiter.WaitURL(ctx, pageURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "FeedbackRadar/1.0 (+local)")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trustreviews get page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("trustreviews page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, fmt.Errorf("trustreviews parse html: %w", err)
	}

	seen := map[string]bool{}
	var out []domain.RawItem

	doc.Find("article.review").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		if len(out) >= limit {
			return false
		}

		href, ok := card.Find("a.review-link").First().Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		abs := href
		if strings.HasPrefix(href, "/") {
			abs = strings.TrimRight(s.cfg.BaseURL, "/") + href
		}
		if seen[abs] {
			return true
		}
		seen[abs] = true

		title := cleanText(card.Find(".review-title").First().Text())
		body := cleanText(card.Find(".review-body").First().Text())
		author := cleanText(card.Find(".review-author").First().Text())

		var createdAt time.Time
		if dt, ok := card.Find("time").First().Attr("datetime"); ok {
			createdAt, _ = time.Parse(time.RFC3339, dt)
		}

		content := body
		if title != "" {
			content = title + "\n\n" + body
		}
		if content == "" {
			return true
		}

		out = append(out, domain.RawItem{
			Author:       author,
			Content:      content,
			URL:          abs,
			CreatedAt:    createdAt,
			Relevance:    source.Relevance(query, title, body),
			HasRelevance: true,
		})
		return true
	})

	return out, nil
}

func cleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	return strings.TrimSpace(strings.Join(strings.Fields(s), " "))
}
