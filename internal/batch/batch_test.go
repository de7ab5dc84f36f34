package batch_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/batch"
	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

// countingEngine fails for document payloads it was told to and tracks its
// peak concurrency.
type countingEngine struct {
	mu      sync.Mutex
	active  int
	peak    int
	delay   time.Duration
	failFor map[string]bool
	calls   atomic.Int64
}

func (e *countingEngine) Name() string { return "counting" }

func (e *countingEngine) Recognize(ctx context.Context, req engine.Request) (engine.Result, error) {
	e.calls.Add(1)
	e.mu.Lock()
	e.active++
	if e.active > e.peak {
		e.peak = e.active
	}
	e.mu.Unlock()

	if e.delay > 0 {
		time.Sleep(e.delay)
	}

	e.mu.Lock()
	e.active--
	e.mu.Unlock()

	return engine.Result{Text: "Item 1.00\nItem 2.00\nTotal 3.00", Confidence: 0.9}, nil
}

type failingEngine struct{}

func (e *failingEngine) Name() string { return "flaky" }

func (e *failingEngine) Recognize(ctx context.Context, req engine.Request) (engine.Result, error) {
	return engine.Result{}, errors.New("engine down")
}

func pngDoc(t *testing.T, id string) model.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return model.Document{ID: id, Data: buf.Bytes()}
}

func makeDocs(t *testing.T, n int) []model.Document {
	t.Helper()
	docs := make([]model.Document, n)
	for i := range docs {
		docs[i] = pngDoc(t, "doc-"+strconv.Itoa(i))
	}
	return docs
}

func TestRun_AllSucceed(t *testing.T) {
	eng := &countingEngine{}
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{eng})

	summary := c.Run(context.Background(), makeDocs(t, 5))

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 5, summary.Succeeded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 5, summary.Verified)
	assert.Len(t, summary.Documents, 5)
	assert.Positive(t, summary.Elapsed)
}

func TestRun_FailureIsolation(t *testing.T) {
	// One document carries bytes no engine can read; the other four still
	// complete and the batch call itself never errors.
	docs := makeDocs(t, 4)
	docs = append(docs, model.Document{ID: "broken", Data: []byte("not an image")})

	eng := &countingEngine{}
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{eng})

	summary := c.Run(context.Background(), docs)

	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 4, summary.Succeeded)
	assert.Equal(t, 1, summary.Failed)

	var broken *model.DocumentResult
	for i := range summary.Documents {
		if summary.Documents[i].DocumentID == "broken" {
			broken = &summary.Documents[i]
		}
	}
	require.NotNil(t, broken)
	assert.False(t, broken.Success)
	assert.NotEmpty(t, broken.ErrMessage)
}

func TestRun_AllEnginesDown(t *testing.T) {
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{&failingEngine{}})

	summary := c.Run(context.Background(), makeDocs(t, 3))

	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 3, summary.Failed)
}

func TestRun_ConcurrencyBound(t *testing.T) {
	eng := &countingEngine{delay: 20 * time.Millisecond}
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{eng},
		batch.WithMaxConcurrency(2))

	summary := c.Run(context.Background(), makeDocs(t, 8))

	assert.Equal(t, 8, summary.Processed)
	eng.mu.Lock()
	peak := eng.peak
	eng.mu.Unlock()
	assert.LessOrEqual(t, peak, 2)
}

func TestRun_CancellationSkipsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	eng := &countingEngine{}
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{eng})

	summary := c.Run(ctx, makeDocs(t, 6))

	// Nothing was in flight when the context died, so everything is
	// skipped, nothing processed.
	assert.Equal(t, 0, summary.Processed)
	assert.Equal(t, 6, summary.Skipped)
	assert.Equal(t, int64(0), eng.calls.Load())
}

func TestRun_EmptyBatch(t *testing.T) {
	c := batch.NewCoordinator(pipeline.New(), []engine.Engine{&countingEngine{}})

	summary := c.Run(context.Background(), nil)

	assert.Equal(t, 0, summary.Processed)
	assert.Empty(t, summary.Documents)
}
