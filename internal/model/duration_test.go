package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/ledgercheck/internal/model"
)

func TestISODuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "PT0S"},
		{500 * time.Millisecond, "PT0.5S"},
		{2500 * time.Millisecond, "PT2.5S"},
		{3 * time.Second, "PT3S"},
		{1234 * time.Millisecond, "PT1.234S"},
		{90 * time.Second, "PT90S"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, model.ISODuration(tt.d))
		})
	}
}

func TestEngineResult_MarshalElapsed(t *testing.T) {
	er := model.EngineResult{
		EngineName: "tesseract",
		Confidence: 0.9,
		Elapsed:    1500 * time.Millisecond,
	}

	data, err := json.Marshal(er)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PT1.5S", decoded["elapsed"])
	assert.Equal(t, "tesseract", decoded["engine"])
}

func TestBatchSummary_MarshalElapsed(t *testing.T) {
	s := model.BatchSummary{Processed: 3, Elapsed: 250 * time.Millisecond}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PT0.25S", decoded["elapsed"])
	assert.Equal(t, float64(3), decoded["processed"])
}
