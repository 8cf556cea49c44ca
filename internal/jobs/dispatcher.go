package jobs

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"feedbackradar-engine/internal/domain"
	"feedbackradar-engine/internal/gate"
	"feedbackradar-engine/internal/rank"
	"feedbackradar-engine/internal/sentiment"
	"feedbackradar-engine/internal/source"
)

// Sink receives per-task outcomes from worker goroutines. The manager
// is the production implementation.
type Sink interface {
	TaskCompleted(jobID string, res domain.TaskResult)
	TaskFailed(jobID, source, keyword, message string)
}

// Dispatcher runs the keywords x adapters cartesian product for one job
// under a concurrency cap and a launch-rate delay, routing every fetched
// item through classification, scoring and the insertion gate.
type Dispatcher struct {
	classifier sentiment.Classifier
	gate       *gate.Gate
	sink       Sink
	params     rank.Params

	fetchLimit  int
	taskTimeout time.Duration

	// OnAdded fires for every item that made it past the gate. May be nil.
	OnAdded func(item domain.FeedbackItem)
}

type DispatcherOptions struct {
	Classifier  sentiment.Classifier
	Gate        *gate.Gate
	Params      rank.Params
	FetchLimit  int
	TaskTimeout time.Duration
	OnAdded     func(item domain.FeedbackItem)
}

func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = 25
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = 2 * time.Minute
	}
	return &Dispatcher{
		classifier:  opts.Classifier,
		gate:        opts.Gate,
		params:      opts.Params,
		fetchLimit:  opts.FetchLimit,
		taskTimeout: opts.TaskTimeout,
		OnAdded:     opts.OnAdded,
	}
}

// SetSink must be called before Run. It exists because the manager and
// dispatcher reference each other.
func (d *Dispatcher) SetSink(s Sink) { d.sink = s }

// Run launches tasks until the product is exhausted or launchCtx is
// cancelled, and blocks until every launched task has finished. Task
// execution derives from taskCtx, not launchCtx: cancelling a job stops
// new launches but lets in-flight adapter calls run to completion.
// Returns how many tasks were actually launched.
func (d *Dispatcher) Run(
	launchCtx, taskCtx context.Context,
	jobID string,
	keywords []string,
	adapters []source.Adapter,
	concurrency int,
	delay time.Duration,
) (launched int) {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(int64(concurrency))

	var spacing *rate.Limiter
	if delay > 0 {
		spacing = rate.NewLimiter(rate.Every(delay), 1)
	}

	var wg sync.WaitGroup

launch:
	for _, kw := range keywords {
		for _, a := range adapters {
			if launchCtx.Err() != nil {
				break launch
			}
			if spacing != nil {
				if err := spacing.Wait(launchCtx); err != nil {
					break launch
				}
			}
			// Acquire gates on a free slot; cancellation while waiting
			// also stops launching.
			if err := sem.Acquire(launchCtx, 1); err != nil {
				break launch
			}

			launched++
			wg.Add(1)
			go func(a source.Adapter, kw string) {
				defer wg.Done()
				defer sem.Release(1)
				d.runTask(taskCtx, jobID, a, kw)
			}(a, kw)
		}
	}

	wg.Wait()
	return launched
}

// runTask is one (adapter, keyword) execution. Any failure stays inside
// the task boundary: it becomes an error entry on the job, never a
// panic up the stack or an abort of sibling tasks.
func (d *Dispatcher) runTask(taskCtx context.Context, jobID string, a source.Adapter, keyword string) {
	ctx, cancel := context.WithTimeout(taskCtx, d.taskTimeout)
	defer cancel()

	items, err := a.Fetch(ctx, keyword, d.fetchLimit)
	if err != nil {
		log.Printf("[dispatch] job=%s source=%s keyword=%q fetch err: %v", jobID, a.Name(), keyword, err)
		d.sink.TaskFailed(jobID, a.Name(), keyword, err.Error())
		return
	}

	added := 0
	for _, raw := range items {
		if raw.URL == "" {
			continue
		}

		item := d.scoreItem(a.Name(), keyword, raw)

		outcome, err := d.gate.Admit(ctx, item)
		if err != nil {
			// storage broke mid-task; report what we have as a failure
			log.Printf("[dispatch] job=%s source=%s keyword=%q gate err: %v", jobID, a.Name(), keyword, err)
			d.sink.TaskFailed(jobID, a.Name(), keyword, err.Error())
			return
		}
		if outcome == gate.Added {
			added++
			if d.OnAdded != nil {
				d.OnAdded(item)
			}
		}
	}

	d.sink.TaskCompleted(jobID, domain.TaskResult{Source: a.Name(), Keyword: keyword, Added: added})
}

func (d *Dispatcher) scoreItem(src, keyword string, raw domain.RawItem) domain.FeedbackItem {
	now := time.Now().UTC()

	relevance := raw.Relevance
	if !raw.HasRelevance {
		relevance = source.Relevance(keyword, raw.Content)
	}

	createdAt := raw.CreatedAt
	if createdAt.IsZero() {
		// sources without publish times score as fresh
		createdAt = now
	}

	score, label := d.classifier.Classify(raw.Content)

	return domain.FeedbackItem{
		Source:         src,
		Keyword:        keyword,
		Author:         raw.Author,
		Content:        raw.Content,
		URL:            raw.URL,
		CreatedAt:      createdAt,
		SentimentScore: score,
		SentimentLabel: label,
		Relevance:      relevance,
		Priority:       rank.PriorityScore(score, relevance, createdAt, now, d.params),
	}
}
