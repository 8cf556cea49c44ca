package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"feedbackradar-engine/internal/config"
	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/events"
	"feedbackradar-engine/internal/gate"
	"feedbackradar-engine/internal/httpapi"
	"feedbackradar-engine/internal/jobs"
	"feedbackradar-engine/internal/rank"
	"feedbackradar-engine/internal/scheduler"
	"feedbackradar-engine/internal/sentiment"
	"feedbackradar-engine/internal/store"
)

func main() {
	dataDir := os.Getenv("FEEDBACKRADAR_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	if locked, err := lock.TryLock(); err != nil {
		log.Fatalf("data dir lock: %v", err)
	} else if !locked {
		log.Fatalf("another engine instance already owns %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	db, err := store.Open(filepath.Join(dataDir, "feedbackradar.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A previous process may have died mid-job; those can't resume.
	if n, err := store.MarkOrphanJobsFailed(ctx, db.Pool); err != nil {
		log.Fatalf("orphan job sweep: %v", err)
	} else if n > 0 {
		log.Printf("[startup] marked %d orphaned jobs failed", n)
	}

	if err := store.SeedDefaultQuery(ctx, db.Pool, cfg.Watch.Keywords); err != nil {
		log.Fatalf("seed default query: %v", err)
	}

	hub := events.NewHub()

	registry := buildRegistry(cfg)
	log.Printf("[startup] sources registered: %v", registry.Names())

	g := gate.New(store.PostWriter{DB: db.Pool}, cfg.Gate.RelevanceThreshold)

	dispatcher := jobs.NewDispatcher(jobs.DispatcherOptions{
		Classifier: sentiment.NewLexicon(),
		Gate:       g,
		Params: rank.Params{
			RecencyHalfLife: time.Duration(cfg.Scoring.RecencyHalfLifeHours * float64(time.Hour)),
			RecencyFloor:    cfg.Scoring.RecencyFloor,
		},
		FetchLimit: cfg.Watch.FetchLimit,
		OnAdded: func(item domain.FeedbackItem) {
			hub.Publish(events.MakeEvent("", "post_added", 1, map[string]any{
				"source":   item.Source,
				"url":      item.URL,
				"priority": item.Priority,
			}))
		},
	})

	manager := jobs.NewManager(ctx, jobs.ManagerOptions{
		Store:      store.JobStore{DB: db.Pool},
		Registry:   registry,
		Dispatcher: dispatcher,
		Limits: jobs.Limits{
			MaxKeywords:     cfg.Watch.MaxKeywords,
			MaxConcurrency:  cfg.Watch.MaxConcurrency,
			MaxDelaySeconds: cfg.Watch.MaxDelaySeconds,
		},
		OnEvent: func(typ string, data any) {
			hub.Publish(events.MakeEvent("", typ, 1, data))
		},
	})
	dispatcher.SetSink(manager)

	// Scheduler trigger: a default-keyword job every few hours.
	go scheduler.Every(ctx, time.Duration(cfg.Watch.IntervalMinutes)*time.Minute, "trigger",
		scheduler.DefaultJobTask(scheduler.TriggerOptions{
			DB:          db.Pool,
			Manager:     manager,
			Fallback:    cfg.Watch.Keywords,
			Concurrency: cfg.Watch.Concurrency,
			Delay:       cfg.Watch.DelaySeconds,
		}))

	// Retention sweep: old posts age out of the database.
	if cfg.Retention.Days > 0 {
		go scheduler.Every(ctx, time.Duration(cfg.Retention.SweepIntervalHours)*time.Hour, "retention",
			scheduler.RetentionTask(db.Pool, time.Duration(cfg.Retention.Days)*24*time.Hour))
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:          db.Pool,
		Manager:     manager,
		Hub:         hub,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
	})

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler: httpapi.Chain(mux,
			httpapi.RequestID,
			httpapi.AccessLog,
			httpapi.Recover,
			httpapi.Cors,
		),
		ReadHeaderTimeout: 5 * time.Second,
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	addr := net.JoinHostPort("127.0.0.1", itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s) shutdown_token=%s", addr, dataDir, token)

	go func() {
		<-ctx.Done()
		log.Printf("[shutdown] signal received, cancelling jobs")
		cancelled := manager.CancelAll(context.Background())
		log.Printf("[shutdown] cancelled %d jobs, draining", cancelled)
		manager.Wait()

		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
