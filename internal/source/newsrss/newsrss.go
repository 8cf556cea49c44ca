// Package newsrss scans configured news RSS feeds for items mentioning
// a keyword. Feeds are fetched whole; matching happens locally.
package newsrss

import (
	"context"
	"encoding/xml"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/util"
)

type Feed struct {
	Name string
	URL  string
}

type Config struct {
	Feeds []Feed
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "newsrss" }

// rss covers the RSS 2.0 subset the news feeds we care about emit.
type rss struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Creator     string `xml:"creator"` // dc:creator
	Author      string `xml:"author"`
}

func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	var out []domain.RawItem
	var lastErr error

	for _, feed := range c.cfg.Feeds {
		if len(out) >= limit {
			break
		}
		items, err := c.fetchFeed(ctx, feed)
		if err != nil {
			// one dead feed must not sink the rest
			log.Printf("[newsrss] feed=%q err=%v", feed.Name, err)
			lastErr = err
			continue
		}

		for _, it := range items {
			if len(out) >= limit {
				break
			}
			rel := source.Relevance(query, it.Title, it.Description)
			if rel == 0 {
				continue
			}
			author := it.Creator
			if author == "" {
				author = it.Author
			}
			out = append(out, domain.RawItem{
				Author:       author,
				Content:      strings.TrimSpace(it.Title + "\n\n" + it.Description),
				URL:          it.Link,
				CreatedAt:    parsePubDate(it.PubDate),
				Relevance:    rel,
				HasRelevance: true,
			})
		}
	}

	if len(out) == 0 && lastErr != nil {
		return nil, fmt.Errorf("newsrss: all feeds failed: %w", lastErr)
	}
	return out, nil
}

func (c *Client) fetchFeed(ctx context.Context, feed Feed) ([]rssItem, error) {
	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, feed.URL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "FeedbackRadar/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("feed status %d", res.StatusCode)
	}

	var doc rss
	if err := xml.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse feed xml: %w", err)
	}
	return doc.Channel.Items, nil
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
