package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

func Validate(cfg Config) error {
	var errs []string

	if cfg.App.Port <= 0 || cfg.App.Port > 65535 {
		errs = append(errs, "app.port must be 1..65535")
	}
	if cfg.Watch.IntervalMinutes <= 0 {
		errs = append(errs, "watch.interval_minutes must be > 0")
	}
	if cfg.Watch.Concurrency < 1 {
		errs = append(errs, "watch.concurrency must be >= 1")
	}
	if cfg.Watch.DelaySeconds < 0 {
		errs = append(errs, "watch.delay_seconds must be >= 0")
	}
	if cfg.Watch.MaxConcurrency < cfg.Watch.Concurrency {
		errs = append(errs, "watch.max_concurrency must be >= watch.concurrency")
	}
	if cfg.Watch.FetchLimit <= 0 {
		errs = append(errs, "watch.fetch_limit must be > 0")
	}
	if cfg.Gate.RelevanceThreshold < 0 || cfg.Gate.RelevanceThreshold > 1 {
		errs = append(errs, "gate.relevance_threshold must be 0..1")
	}
	if cfg.Retention.SweepIntervalHours <= 0 {
		errs = append(errs, "retention.sweep_interval_hours must be > 0")
	}
	if cfg.Scoring.RecencyHalfLifeHours <= 0 {
		errs = append(errs, "scoring.recency_half_life_hours must be > 0")
	}
	if cfg.Scoring.RecencyFloor < 0 || cfg.Scoring.RecencyFloor >= 1 {
		errs = append(errs, "scoring.recency_floor must be 0..1 (exclusive top)")
	}

	for i, kw := range cfg.Watch.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, fmt.Sprintf("watch.keywords[%d] cannot be blank", i))
		}
	}
	for i, f := range cfg.Sources.NewsRSS.Feeds {
		if strings.TrimSpace(f.URL) == "" {
			errs = append(errs, fmt.Sprintf("sources.newsrss.feeds[%d].url is required", i))
		}
	}
	if cfg.Sources.ForgeIssues.Enabled && len(cfg.Sources.ForgeIssues.Repos) == 0 {
		errs = append(errs, "sources.forgeissues.repos must list at least one owner/name when enabled")
	}
	for i, r := range cfg.Sources.ForgeIssues.Repos {
		if !strings.Contains(r, "/") {
			errs = append(errs, fmt.Sprintf("sources.forgeissues.repos[%d] must be owner/name, got %q", i, r))
		}
	}
	if cfg.Sources.TrustReviews.Enabled && strings.TrimSpace(cfg.Sources.TrustReviews.Product) == "" {
		errs = append(errs, "sources.trustreviews.product is required when enabled")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n- " + strings.Join(errs, "\n- "))
	}
	return nil
}

func SaveAtomic(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	bak := path + ".bak"

	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}

	_ = os.Remove(bak)
	_ = os.Rename(path, bak)

	return os.Rename(tmp, path)
}
