package main

import (
	"feedbackradar-engine/internal/config"
	"feedbackradar-engine/internal/secrets"
	"feedbackradar-engine/internal/source"
	"feedbackradar-engine/internal/source/devanswers"
	"feedbackradar-engine/internal/source/forgeissues"
	"feedbackradar-engine/internal/source/newsrss"
	"feedbackradar-engine/internal/source/toot"
	"feedbackradar-engine/internal/source/trustreviews"
	"feedbackradar-engine/internal/source/util"
)

// buildRegistry assembles the static adapter table from config. Source
// changes need an engine restart; the job total depends on this count.
func buildRegistry(cfg config.Config) *source.Registry {
	limiter := util.NewHostLimiter(1.0, 2)

	var adapters []source.Adapter

	if cfg.Sources.TrustReviews.Enabled {
		adapters = append(adapters, trustreviews.New(trustreviews.Config{
			BaseURL: cfg.Sources.TrustReviews.BaseURL,
			Product: cfg.Sources.TrustReviews.Product,
		}, limiter))
	}
	if cfg.Sources.ForgeIssues.Enabled {
		tokenAccount := cfg.Sources.ForgeIssues.TokenAccount
		adapters = append(adapters, forgeissues.New(forgeissues.Config{
			BaseURL: cfg.Sources.ForgeIssues.BaseURL,
			Repos:   cfg.Sources.ForgeIssues.Repos,
			Token: func() (string, error) {
				return secrets.GetSourceToken(tokenAccount)
			},
		}, limiter))
	}
	if cfg.Sources.DevAnswers.Enabled {
		adapters = append(adapters, devanswers.New(devanswers.Config{
			BaseURL: cfg.Sources.DevAnswers.BaseURL,
			Site:    cfg.Sources.DevAnswers.Site,
		}, limiter))
	}
	if cfg.Sources.Toot.Enabled {
		adapters = append(adapters, toot.New(toot.Config{
			BaseURL: cfg.Sources.Toot.BaseURL,
		}, limiter))
	}
	if cfg.Sources.NewsRSS.Enabled {
		feeds := make([]newsrss.Feed, 0, len(cfg.Sources.NewsRSS.Feeds))
		for _, f := range cfg.Sources.NewsRSS.Feeds {
			feeds = append(feeds, newsrss.Feed{Name: f.Name, URL: f.URL})
		}
		adapters = append(adapters, newsrss.New(newsrss.Config{Feeds: feeds}, limiter))
	}

	return source.NewRegistry(adapters...)
}
