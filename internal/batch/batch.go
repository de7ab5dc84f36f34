// Package batch runs the document pipeline concurrently over a collection
// of documents under one concurrency budget.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

// Coordinator schedules per-document pipeline runs with bounded concurrency.
// Document failures are isolated: a failed document is recorded in the
// summary and never aborts its siblings or the batch call.
type Coordinator struct {
	pipeline       *pipeline.Pipeline
	engines        []engine.Engine
	maxConcurrency int
	logger         *slog.Logger
}

// Option configures the coordinator
type Option func(*Coordinator)

// WithMaxConcurrency bounds the number of documents in flight. Values below
// one fall back to the default.
func WithMaxConcurrency(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxConcurrency = n
		}
	}
}

// WithLogger sets the progress logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCoordinator creates a batch coordinator driving the given pipeline and
// engine set. Default concurrency follows available parallelism.
func NewCoordinator(p *pipeline.Pipeline, engines []engine.Engine, opts ...Option) *Coordinator {
	c := &Coordinator{
		pipeline:       p,
		engines:        engines,
		maxConcurrency: runtime.GOMAXPROCS(0),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every document and returns the aggregated summary. The
// batch never fails because a document did.
//
// Cancelling ctx stops scheduling new documents; documents already in
// flight run to completion and unscheduled ones are counted as skipped.
// Summary order is completion order, not submission order.
func (c *Coordinator) Run(ctx context.Context, docs []model.Document) model.BatchSummary {
	start := time.Now()
	var (
		mu      sync.Mutex
		summary model.BatchSummary
	)

	// Cancellation must not tear down in-flight documents, so the pipeline
	// runs on a detached context.
	work := context.WithoutCancel(ctx)

	var g errgroup.Group
	g.SetLimit(c.maxConcurrency)

	for _, doc := range docs {
		if ctx.Err() != nil {
			mu.Lock()
			summary.Skipped++
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				summary.Skipped++
				mu.Unlock()
				return nil
			}
			dr := c.pipeline.Process(work, doc, c.engines)
			c.logger.Info("document processed",
				"document_id", doc.ID,
				"success", dr.Success,
				"engines", len(dr.EngineResults),
			)
			mu.Lock()
			summary.Add(dr)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	summary.Elapsed = time.Since(start)
	c.logger.Info("batch complete",
		"processed", summary.Processed,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed,
	)
	return summary
}
