package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/source"
)

var (
	ErrNotFound        = errors.New("job not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store is the slice of persistence the manager needs. Load reports
// missing rows via found=false; an error means the store itself broke.
type Store interface {
	Save(ctx context.Context, j domain.Job) error
	Load(ctx context.Context, id string) (j domain.Job, found bool, err error)
}

// Limits bound caller-supplied job parameters to sane values.
type Limits struct {
	MaxKeywords     int
	MaxConcurrency  int
	MaxDelaySeconds int
}

func DefaultLimits() Limits {
	return Limits{MaxKeywords: 20, MaxConcurrency: 8, MaxDelaySeconds: 60}
}

// Manager owns the job lifecycle. All mutations of a job's counters go
// through it; persistence is a write-through side effect of each
// mutation, so the database never drifts from memory.
type Manager struct {
	store      Store
	registry   *source.Registry
	dispatcher *Dispatcher
	limits     Limits
	onEvent    func(typ string, data any)

	// baseCtx outlives individual jobs: cancelling a job must not abort
	// its in-flight tasks, only stop new launches.
	baseCtx context.Context

	// saveCtx never cancels: terminal states must still reach the store
	// while the process is draining.
	saveCtx context.Context

	mu   sync.RWMutex
	jobs map[string]*tracked

	wg sync.WaitGroup
}

// tracked pairs a live job with its per-entry lock and the context that
// gates new task launches.
type tracked struct {
	mu           sync.Mutex
	job          domain.Job
	cancelLaunch context.CancelFunc
}

type ManagerOptions struct {
	Store      Store
	Registry   *source.Registry
	Dispatcher *Dispatcher
	Limits     Limits
	// OnEvent receives job lifecycle notifications (SSE). May be nil.
	OnEvent func(typ string, data any)
}

func NewManager(baseCtx context.Context, opts ManagerOptions) *Manager {
	limits := opts.Limits
	if limits.MaxKeywords == 0 {
		limits = DefaultLimits()
	}
	return &Manager{
		store:      opts.Store,
		registry:   opts.Registry,
		dispatcher: opts.Dispatcher,
		limits:     limits,
		onEvent:    opts.OnEvent,
		baseCtx:    baseCtx,
		saveCtx:    context.WithoutCancel(baseCtx),
		jobs:       make(map[string]*tracked),
	}
}

// Create validates, persists a pending job and kicks off dispatch in the
// background. It returns as soon as the row exists; it never blocks on
// scraping.
func (m *Manager) Create(ctx context.Context, keywords []string, concurrency, delaySeconds int) (domain.Job, error) {
	cleaned := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}

	switch {
	case len(cleaned) == 0:
		return domain.Job{}, fmt.Errorf("%w: keywords must not be empty", ErrInvalidArgument)
	case len(cleaned) > m.limits.MaxKeywords:
		return domain.Job{}, fmt.Errorf("%w: at most %d keywords", ErrInvalidArgument, m.limits.MaxKeywords)
	case concurrency < 1:
		return domain.Job{}, fmt.Errorf("%w: concurrency must be >= 1", ErrInvalidArgument)
	case concurrency > m.limits.MaxConcurrency:
		return domain.Job{}, fmt.Errorf("%w: concurrency must be <= %d", ErrInvalidArgument, m.limits.MaxConcurrency)
	case delaySeconds < 0:
		return domain.Job{}, fmt.Errorf("%w: delay must be >= 0", ErrInvalidArgument)
	case delaySeconds > m.limits.MaxDelaySeconds:
		return domain.Job{}, fmt.Errorf("%w: delay must be <= %d seconds", ErrInvalidArgument, m.limits.MaxDelaySeconds)
	}

	if m.registry.Len() == 0 {
		return domain.Job{}, errors.New("no source adapters registered")
	}

	now := time.Now().UTC()
	job := domain.Job{
		ID:           uuid.NewString(),
		Status:       domain.JobPending,
		Keywords:     cleaned,
		Concurrency:  concurrency,
		DelaySeconds: delaySeconds,
		Progress: domain.Progress{
			Total: len(cleaned) * m.registry.Len(),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.Save(ctx, job); err != nil {
		return domain.Job{}, fmt.Errorf("persist job: %w", err)
	}

	launchCtx, cancel := context.WithCancel(m.baseCtx)
	t := &tracked{job: job, cancelLaunch: cancel}

	m.mu.Lock()
	m.jobs[job.ID] = t
	m.mu.Unlock()

	m.emit("job_created", map[string]any{"id": job.ID, "total": job.Progress.Total})

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.run(launchCtx, t)
	}()

	return job.Clone(), nil
}

func (m *Manager) run(launchCtx context.Context, t *tracked) {
	jobID, ok := m.transitionRunning(t)
	if !ok {
		return
	}

	t.mu.Lock()
	keywords := append([]string(nil), t.job.Keywords...)
	concurrency := t.job.Concurrency
	delay := time.Duration(t.job.DelaySeconds) * time.Second
	total := t.job.Progress.Total
	t.mu.Unlock()

	launched := m.dispatcher.Run(launchCtx, m.baseCtx, jobID, keywords, m.registry.Adapters(), concurrency, delay)

	m.finalize(t, launched, total)
}

// transitionRunning moves pending -> running. Failing to persist the
// running row is the dispatcher-level fatal path: the job goes to
// failed and nothing is dispatched.
func (m *Manager) transitionRunning(t *tracked) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return "", false
	}
	t.job.Status = domain.JobRunning
	t.job.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(m.saveCtx, t.job); err != nil {
		log.Printf("[jobs] id=%s fatal: mark running: %v", t.job.ID, err)
		t.job.Status = domain.JobFailed
		t.job.UpdatedAt = time.Now().UTC()
		_ = m.store.Save(m.saveCtx, t.job)
		m.emit("job_failed", map[string]any{"id": t.job.ID})
		return "", false
	}
	return t.job.ID, true
}

func (m *Manager) finalize(t *tracked, launched, total int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() {
		return
	}

	if t.job.CancelRequested && launched < total {
		t.job.Status = domain.JobCancelled
	} else {
		t.job.Status = domain.JobCompleted
	}
	t.job.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(m.saveCtx, t.job); err != nil {
		log.Printf("[jobs] id=%s fatal: persist terminal state: %v", t.job.ID, err)
		t.job.Status = domain.JobFailed
		_ = m.store.Save(m.saveCtx, t.job)
	}

	m.emit("job_"+string(t.job.Status), map[string]any{
		"id":        t.job.ID,
		"completed": t.job.Progress.Completed,
		"total":     t.job.Progress.Total,
	})
	log.Printf("[jobs] id=%s done status=%s completed=%d/%d errors=%d",
		t.job.ID, t.job.Status, t.job.Progress.Completed, t.job.Progress.Total, len(t.job.Errors))
}

// Get returns a consistent snapshot. Jobs created before a restart are
// served from the store.
func (m *Manager) Get(ctx context.Context, id string) (domain.Job, error) {
	m.mu.RLock()
	t, ok := m.jobs[id]
	m.mu.RUnlock()

	if ok {
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.job.Clone(), nil
	}

	job, found, err := m.store.Load(ctx, id)
	if err != nil {
		return domain.Job{}, fmt.Errorf("load job: %w", err)
	}
	if !found {
		return domain.Job{}, ErrNotFound
	}
	return job, nil
}

// Cancel requests cooperative cancellation: no new tasks launch after
// the flag is observed; in-flight tasks finish and still report.
// Idempotent; returns whether cancellation was newly applied.
func (m *Manager) Cancel(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	t, ok := m.jobs[id]
	m.mu.RUnlock()

	if !ok {
		// Jobs from a previous process are terminal by the startup
		// sweep; cancelling them is a no-op, unknown ids are an error.
		_, found, err := m.store.Load(ctx, id)
		if err != nil {
			return false, fmt.Errorf("load job: %w", err)
		}
		if !found {
			return false, ErrNotFound
		}
		return false, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Status.Terminal() || t.job.CancelRequested {
		return false, nil
	}

	t.job.CancelRequested = true
	t.job.UpdatedAt = time.Now().UTC()
	t.cancelLaunch()

	if err := m.store.Save(m.saveCtx, t.job); err != nil {
		log.Printf("[jobs] id=%s persist cancel flag: %v", id, err)
	}
	m.emit("job_cancel_requested", map[string]any{"id": id})
	return true, nil
}

// CancelAll cancels every non-terminal job; used on shutdown.
func (m *Manager) CancelAll(ctx context.Context) int {
	m.mu.RLock()
	ids := make([]string, 0, len(m.jobs))
	for id := range m.jobs {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	count := 0
	for _, id := range ids {
		if applied, err := m.Cancel(ctx, id); err == nil && applied {
			count++
		}
	}
	return count
}

// Wait blocks until all running dispatchers have finished. Call after
// CancelAll during shutdown.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// TaskCompleted is called by dispatcher workers; safe under concurrent
// invocation for the same job.
func (m *Manager) TaskCompleted(jobID string, res domain.TaskResult) {
	m.record(jobID, func(j *domain.Job) {
		j.Results = append(j.Results, res)
	})
}

// TaskFailed records a per-task failure. A failed task still counts
// toward progress; it never aborts the job.
func (m *Manager) TaskFailed(jobID, src, keyword, message string) {
	m.record(jobID, func(j *domain.Job) {
		j.Errors = append(j.Errors, domain.TaskError{Source: src, Keyword: keyword, Message: message})
	})
}

func (m *Manager) record(jobID string, mutate func(*domain.Job)) {
	m.mu.RLock()
	t, ok := m.jobs[jobID]
	m.mu.RUnlock()
	if !ok {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.job.Progress.Completed < t.job.Progress.Total {
		t.job.Progress.Completed++
	}
	mutate(&t.job)
	t.job.UpdatedAt = time.Now().UTC()

	if err := m.store.Save(m.saveCtx, t.job); err != nil {
		log.Printf("[jobs] id=%s persist progress: %v", jobID, err)
	}
	m.emit("job_progress", map[string]any{
		"id":        jobID,
		"completed": t.job.Progress.Completed,
		"total":     t.job.Progress.Total,
	})
}

func (m *Manager) emit(typ string, data any) {
	if m.onEvent != nil {
		m.onEvent(typ, data)
	}
}
