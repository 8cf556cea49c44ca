// Package forgeissues searches code-forge issue trackers (GitHub-style
// search API) for feedback mentioning a keyword.
package forgeissues

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/util"
)

type Config struct {
	BaseURL string   // https://api.github.com
	Repos   []string // owner/name
	// Token returns an optional bearer token (kept in the OS keyring,
	// not in config). May be nil.
	Token func() (string, error)
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.github.com"
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "forgeissues" }

type issueSearchResponse struct {
	Items []struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		HTMLURL   string `json:"html_url"`
		CreatedAt string `json:"created_at"`
		User      struct {
			Login string `json:"login"`
		} `json:"user"`
	} `json:"items"`
}

func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	q := query
	for _, repo := range c.cfg.Repos {
		q += " repo:" + repo
	}

	endpoint := fmt.Sprintf("%s/search/issues?q=%s&per_page=%d&sort=created&order=desc",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(q), limit)

	if c.limiter != nil {
		if err := c.limiter.WaitURL(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "FeedbackRadar/1.0 (+local)")
	if c.cfg.Token != nil {
		if tok, err := c.cfg.Token(); err == nil && tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forgeissues search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("forgeissues search status %d", res.StatusCode)
	}

	var body issueSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("forgeissues decode: %w", err)
	}

	out := make([]domain.RawItem, 0, len(body.Items))
	for _, it := range body.Items {
		createdAt, _ := time.Parse(time.RFC3339, it.CreatedAt)
		content := it.Title
		if it.Body != "" {
			content += "\n\n" + it.Body
		}
		out = append(out, domain.RawItem{
			Author:       it.User.Login,
			Content:      content,
			URL:          it.HTMLURL,
			CreatedAt:    createdAt,
			Relevance:    source.Relevance(query, it.Title, it.Body),
			HasRelevance: true,
		})
	}
	return out, nil
}
