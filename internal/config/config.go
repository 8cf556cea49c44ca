package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Feed struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	// Watch drives the scheduled default job and bounds caller-supplied
	// execution parameters.
	Watch struct {
		Keywords        []string `yaml:"keywords" json:"keywords"`
		IntervalMinutes int      `yaml:"interval_minutes" json:"interval_minutes"`
		Concurrency     int      `yaml:"concurrency" json:"concurrency"`
		DelaySeconds    int      `yaml:"delay_seconds" json:"delay_seconds"`
		FetchLimit      int      `yaml:"fetch_limit" json:"fetch_limit"`
		MaxKeywords     int      `yaml:"max_keywords" json:"max_keywords"`
		MaxConcurrency  int      `yaml:"max_concurrency" json:"max_concurrency"`
		MaxDelaySeconds int      `yaml:"max_delay_seconds" json:"max_delay_seconds"`
	} `yaml:"watch" json:"watch"`

	Gate struct {
		RelevanceThreshold float64 `yaml:"relevance_threshold" json:"relevance_threshold"`
	} `yaml:"gate" json:"gate"`

	// Retention bounds how long admitted posts stay in the database.
	// Days < 0 disables the sweep; 0 takes the default.
	Retention struct {
		Days               int `yaml:"days" json:"days"`
		SweepIntervalHours int `yaml:"sweep_interval_hours" json:"sweep_interval_hours"`
	} `yaml:"retention" json:"retention"`

	Scoring struct {
		RecencyHalfLifeHours float64 `yaml:"recency_half_life_hours" json:"recency_half_life_hours"`
		RecencyFloor         float64 `yaml:"recency_floor" json:"recency_floor"`
	} `yaml:"scoring" json:"scoring"`

	Sources struct {
		TrustReviews struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			BaseURL string `yaml:"base_url" json:"base_url"`
			Product string `yaml:"product" json:"product"`
		} `yaml:"trustreviews" json:"trustreviews"`

		ForgeIssues struct {
			Enabled      bool     `yaml:"enabled" json:"enabled"`
			BaseURL      string   `yaml:"base_url" json:"base_url"`
			Repos        []string `yaml:"repos" json:"repos"`
			TokenAccount string   `yaml:"token_account" json:"token_account"`
		} `yaml:"forgeissues" json:"forgeissues"`

		DevAnswers struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			BaseURL string `yaml:"base_url" json:"base_url"`
			Site    string `yaml:"site" json:"site"`
		} `yaml:"devanswers" json:"devanswers"`

		Toot struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			BaseURL string `yaml:"base_url" json:"base_url"`
		} `yaml:"toot" json:"toot"`

		NewsRSS struct {
			Enabled bool   `yaml:"enabled" json:"enabled"`
			Feeds   []Feed `yaml:"feeds" json:"feeds"`
		} `yaml:"newsrss" json:"newsrss"`
	} `yaml:"sources" json:"sources"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38472
	}
	if cfg.Watch.IntervalMinutes == 0 {
		cfg.Watch.IntervalMinutes = 180
	}
	if cfg.Watch.Concurrency == 0 {
		cfg.Watch.Concurrency = 3
	}
	if cfg.Watch.FetchLimit == 0 {
		cfg.Watch.FetchLimit = 25
	}
	if cfg.Watch.MaxKeywords == 0 {
		cfg.Watch.MaxKeywords = 20
	}
	if cfg.Watch.MaxConcurrency == 0 {
		cfg.Watch.MaxConcurrency = 8
	}
	if cfg.Watch.MaxDelaySeconds == 0 {
		cfg.Watch.MaxDelaySeconds = 60
	}
	if cfg.Gate.RelevanceThreshold == 0 {
		cfg.Gate.RelevanceThreshold = 0.3
	}
	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = 90
	}
	if cfg.Retention.SweepIntervalHours == 0 {
		cfg.Retention.SweepIntervalHours = 12
	}
	if cfg.Scoring.RecencyHalfLifeHours == 0 {
		cfg.Scoring.RecencyHalfLifeHours = 72
	}
	if cfg.Scoring.RecencyFloor == 0 {
		cfg.Scoring.RecencyFloor = 0.05
	}
}
