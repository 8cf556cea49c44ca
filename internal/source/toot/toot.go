// Package toot searches a Mastodon-compatible instance's public status
// search for keyword mentions.
package toot

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/util"
)

type Config struct {
	BaseURL string // https://mastodon.social
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://mastodon.social"
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "toot" }

type searchResponse struct {
	Statuses []struct {
		Content   string `json:"content"` // html
		URL       string `json:"url"`
		CreatedAt string `json:"created_at"`
		Account   struct {
			Acct string `json:"acct"`
		} `json:"account"`
	} `json:"statuses"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func stripHTML(s string) string {
	s = strings.ReplaceAll(s, "</p><p>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	s = tagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(html.UnescapeString(s))
}

func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	endpoint := fmt.Sprintf("%s/api/v2/search?q=%s&type=statuses&limit=%d",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query), limit)

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "FeedbackRadar/1.0 (+local)")

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("toot search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("toot search status %d", res.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("toot decode: %w", err)
	}

	out := make([]domain.RawItem, 0, len(body.Statuses))
	for _, st := range body.Statuses {
		if st.URL == "" {
			continue
		}
		text := stripHTML(st.Content)
		createdAt, _ := time.Parse(time.RFC3339, st.CreatedAt)
		out = append(out, domain.RawItem{
			Author:       st.Account.Acct,
			Content:      text,
			URL:          st.URL,
			CreatedAt:    createdAt,
			Relevance:    source.Relevance(query, text),
			HasRelevance: true,
		})
	}
	return out, nil
}
