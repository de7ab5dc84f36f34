package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/engine"
	"github.com/rezonia/ledgercheck/internal/model"
	"github.com/rezonia/ledgercheck/internal/money"
	"github.com/rezonia/ledgercheck/internal/pipeline"
)

type stubEngine struct {
	name string
	text string
	err  error
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Recognize(ctx context.Context, req engine.Request) (engine.Result, error) {
	if s.err != nil {
		return engine.Result{}, s.err
	}
	return engine.Result{Text: s.text, Confidence: 0.95}, nil
}

func testDoc(t *testing.T) model.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return model.Document{ID: "doc-1", Data: buf.Bytes()}
}

const receiptText = "Coffee 3.50\nBagel 2.25\nTotal 5.75"

func TestProcess_SingleEngine(t *testing.T) {
	p := pipeline.New()
	eng := &stubEngine{name: "stub", text: receiptText}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{eng})

	require.True(t, result.Success)
	require.Len(t, result.EngineResults, 1)
	assert.Empty(t, result.Comparisons)

	er := result.EngineResults[0]
	assert.Equal(t, "stub", er.EngineName)
	assert.Equal(t, 0.95, er.Confidence)
	require.NotNil(t, er.Verification)
	assert.Equal(t, model.StatusVerified, er.Verification.Status)
	assert.True(t, er.Verification.ItemsSum.Equal(money.MustFromString("5.75")))
}

func TestProcess_NoEngines(t *testing.T) {
	p := pipeline.New()

	result := p.Process(context.Background(), testDoc(t), nil)

	assert.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Contains(t, result.ErrMessage, "no engines")
}

func TestProcess_EngineFailureIsolated(t *testing.T) {
	p := pipeline.New()
	good := &stubEngine{name: "good", text: receiptText}
	bad := &stubEngine{name: "bad", err: errors.New("backend exploded")}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{bad, good})

	// One engine failing never takes down the document.
	assert.True(t, result.Success)
	require.Len(t, result.EngineResults, 2)

	// Results follow caller order, not completion order.
	assert.Equal(t, "bad", result.EngineResults[0].EngineName)
	assert.Equal(t, "good", result.EngineResults[1].EngineName)

	require.NotNil(t, result.EngineResults[0].Err)
	assert.Equal(t, "bad", result.EngineResults[0].Err.Engine)
	assert.Nil(t, result.EngineResults[1].Err)
}

func TestProcess_AllEnginesFail(t *testing.T) {
	p := pipeline.New()
	a := &stubEngine{name: "a", err: errors.New("down")}
	b := &stubEngine{name: "b", err: errors.New("also down")}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{a, b})

	assert.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Equal(t, "doc-1", result.Err.DocumentID)
	assert.NotEmpty(t, result.ErrMessage)
}

func TestProcess_EngineErrorKindPreserved(t *testing.T) {
	p := pipeline.New()
	unavailable := &stubEngine{name: "cloudy", err: &model.EngineError{
		Engine:  "cloudy",
		Kind:    model.KindUnavailable,
		Message: "no API key",
	}}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{unavailable})

	require.Len(t, result.EngineResults, 1)
	require.NotNil(t, result.EngineResults[0].Err)
	assert.Equal(t, model.KindUnavailable, result.EngineResults[0].Err.Kind)
}

func TestProcess_MultiEngineComparisons(t *testing.T) {
	p := pipeline.New()
	a := &stubEngine{name: "a", text: receiptText}
	b := &stubEngine{name: "b", text: receiptText}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{a, b})

	require.True(t, result.Success)
	require.Len(t, result.Comparisons, 1)

	pair := result.Comparisons[0]
	assert.Equal(t, "a", pair.EngineA)
	assert.Equal(t, "b", pair.EngineB)
	assert.Equal(t, 1.0, pair.TextSimilarity)
	assert.True(t, pair.TotalsAgree)
	require.NotNil(t, pair.SumDifference)
	assert.True(t, pair.SumDifference.IsZero())
}

func TestProcess_UnsupportedDocument(t *testing.T) {
	p := pipeline.New()
	eng := &stubEngine{name: "stub", text: receiptText}
	doc := model.Document{ID: "doc-x", Data: []byte("plain text, not an image")}

	result := p.Process(context.Background(), doc, []engine.Engine{eng})

	assert.False(t, result.Success)
	require.NotNil(t, result.Err)
	assert.Empty(t, result.EngineResults)
}

func TestProcess_Deterministic(t *testing.T) {
	p := pipeline.New()
	eng := &stubEngine{name: "stub", text: receiptText}
	doc := testDoc(t)

	first := p.Process(context.Background(), doc, []engine.Engine{eng})
	second := p.Process(context.Background(), doc, []engine.Engine{eng})

	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, first.EngineResults[0].Verification.Status,
		second.EngineResults[0].Verification.Status)
	assert.True(t, first.EngineResults[0].Verification.ItemsSum.Equal(
		second.EngineResults[0].Verification.ItemsSum))
}

func TestProcess_CustomTolerance(t *testing.T) {
	p := pipeline.New(pipeline.WithTolerance(money.MustFromString("1.00")))
	eng := &stubEngine{name: "stub", text: "Item 10.00\nItem 5.00\nTotal 15.75"}

	result := p.Process(context.Background(), testDoc(t), []engine.Engine{eng})

	require.True(t, result.Success)
	require.NotNil(t, result.EngineResults[0].Verification)
	assert.Equal(t, model.StatusVerified, result.EngineResults[0].Verification.Status)
}
