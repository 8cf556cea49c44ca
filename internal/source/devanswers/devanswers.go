// Package devanswers searches a StackExchange-style Q&A API for
// questions mentioning a keyword.
package devanswers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/util"
)

type Config struct {
	BaseURL string // https://api.stackexchange.com/2.3
	Site    string // e.g. stackoverflow
}

type Client struct {
	cfg     Config
	hc      *http.Client
	limiter *util.HostLimiter
}

func New(cfg Config, limiter *util.HostLimiter) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.stackexchange.com/2.3"
	}
	if strings.TrimSpace(cfg.Site) == "" {
		cfg.Site = "stackoverflow"
	}
	return &Client{
		cfg:     cfg,
		hc:      &http.Client{Timeout: 20 * time.Second},
		limiter: limiter,
	}
}

func (c *Client) Name() string { return "devanswers" }

type questionSearchResponse struct {
	Items []struct {
		Title        string `json:"title"`
		Link         string `json:"link"`
		CreationDate int64  `json:"creation_date"` // unix seconds
		Owner        struct {
			DisplayName string `json:"display_name"`
		} `json:"owner"`
	} `json:"items"`
}

func (c *Client) Fetch(ctx context.Context, query string, limit int) ([]domain.RawItem, error) {
	endpoint := fmt.Sprintf("%s/search/advanced?q=%s&site=%s&pagesize=%d&order=desc&sort=creation",
		strings.TrimRight(c.cfg.BaseURL, "/"), url.QueryEscape(query), url.QueryEscape(c.cfg.Site), limit)

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
		return nil, fmt.Errorf("devanswers search: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("devanswers search status %d", res.StatusCode)
	}

	var body questionSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("devanswers decode: %w", err)
	}

	out := make([]domain.RawItem, 0, len(body.Items))
	for _, it := range body.Items {
		title := html.UnescapeString(it.Title)
		out = append(out, domain.RawItem{
			Author:       it.Owner.DisplayName,
			Content:      title,
			URL:          it.Link,
			CreatedAt:    time.Unix(it.CreationDate, 0).UTC(),
			Relevance:    source.Relevance(query, title),
			HasRelevance: true,
		})
	}
	return out, nil
}
