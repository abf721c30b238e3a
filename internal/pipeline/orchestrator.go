// Package pipeline drives transactions through request building,
// classification and parsing, producing one enriched record per input.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Veraticus/spice-categorizer/internal/common"
	"github.com/Veraticus/spice-categorizer/internal/llm"
	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/Veraticus/spice-categorizer/internal/ratelimit"
)

// Options configures an Orchestrator.
type Options struct {
	Limiter          ratelimit.Limiter
	Logger           *slog.Logger
	Categories       []string
	Concurrency      int
	StrictCategories bool
}

// Orchestrator classifies transactions one call at a time per worker.
type Orchestrator struct {
	client     llm.Client
	limiter    ratelimit.Limiter
	logger     *slog.Logger
	categories []string
	workers    int
	strict     bool
}

// New creates an orchestrator. Zero options fall back to the default
// vocabulary, a single worker and no throttling.
func New(client llm.Client, opts Options) *Orchestrator {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = model.DefaultCategories()
	}
	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}

	return &Orchestrator{
		client:     client,
		limiter:    limiter,
		logger:     common.LoggerOrDefault(opts.Logger),
		categories: model.EnsureUncategorized(categories),
		workers:    workers,
		strict:     opts.StrictCategories,
	}
}

// Categories returns the vocabulary offered to the classifier.
func (o *Orchestrator) Categories() []string {
	out := make([]string, len(o.categories))
	copy(out, o.categories)
	return out
}

// run carries the shared state of one Run call.
type run struct {
	onProgress ProgressFunc
	records    []model.EnrichedRecord
	completed  int
	mu         sync.Mutex
}

// Run classifies every transaction and returns the records in input order.
// If ctx is canceled before every transaction completes, Run returns nil and
// an error wrapping the context error.
func (o *Orchestrator) Run(ctx context.Context, txns []model.Transaction, onProgress ProgressFunc) ([]model.EnrichedRecord, error) {
	state := &run{
		records:    make([]model.EnrichedRecord, len(txns)),
		onProgress: onProgress,
	}
	if len(txns) == 0 {
		return state.records, nil
	}

	workers := min(o.workers, len(txns))
	o.logger.Info("Starting categorization",
		"transactions", len(txns),
		"workers", workers,
		"categories", len(o.categories))

	jobs := make(chan int, len(txns))
	for i := range txns {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(workerID int) {
			defer wg.Done()
			o.worker(ctx, workerID, txns, jobs, state)
		}(w)
	}
	wg.Wait()

	// A run whose last record finished keeps its results even if ctx was
	// canceled afterwards.
	state.mu.Lock()
	completed := state.completed
	state.mu.Unlock()
	if err := ctx.Err(); err != nil && completed < len(txns) {
		o.logger.Warn("Categorization canceled",
			"completed", completed,
			"total", len(txns))
		return nil, fmt.Errorf("categorization canceled: %w", err)
	}

	o.logger.Info("Categorization complete", "transactions", len(txns))
	return state.records, nil
}

func (o *Orchestrator) worker(ctx context.Context, workerID int, txns []model.Transaction, jobs <-chan int, state *run) {
	for i := range jobs {
		if ctx.Err() != nil {
			return
		}

		o.logger.Debug("Classifying transaction", "worker_id", workerID, "index", i)
		result := o.classify(ctx, i, txns[i])
		state.records[i] = model.EnrichedRecord{
			Transaction:          txns[i],
			ClassificationResult: result,
		}

		if last := o.finish(state, len(txns), txns[i]); last {
			continue
		}
		if err := o.limiter.Wait(ctx); err != nil {
			return
		}
	}
}

// finish counts a completed transaction and reports progress. It returns
// true for the run's final completion, which is not followed by a throttle.
func (o *Orchestrator) finish(state *run, total int, txn model.Transaction) bool {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.completed++
	if state.onProgress != nil {
		state.onProgress(Progress{
			Completed: state.completed,
			Total:     total,
			Current:   txn.Label(50),
		})
	}
	return state.completed == total
}

// classify produces a result for one transaction and never fails.
func (o *Orchestrator) classify(ctx context.Context, index int, txn model.Transaction) (result model.ClassificationResult) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("Classification panicked",
				"index", index,
				"description", txn.Description,
				"panic", r)
			result = model.FailureResult(fmt.Errorf("%w: %v", common.ErrClassificationFailed, r))
		}
	}()

	raw, err := o.client.Complete(ctx, llm.BuildRequest(txn, o.categories))
	if err != nil {
		o.logger.Warn("Classification failed",
			"index", index,
			"description", txn.Description,
			"error", err)
		return model.FailureResult(err)
	}

	result, outcome := llm.ParseOutcome(raw)
	if outcome != llm.OutcomeParsed {
		o.logger.Debug("Unparseable classifier response",
			"index", index,
			"outcome", outcome.String(),
			"response", raw)
	}

	result.Category = o.resolveCategory(result.Category)
	return result
}

// resolveCategory maps a label onto the run's vocabulary spelling. Unknown
// labels are kept unless strict mode clamps them to Uncategorized.
func (o *Orchestrator) resolveCategory(label string) string {
	trimmed := strings.TrimSpace(label)
	for _, category := range o.categories {
		if strings.EqualFold(category, trimmed) {
			return category
		}
	}
	if o.strict {
		return model.Uncategorized
	}
	return label
}
