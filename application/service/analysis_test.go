package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisFixture(t *testing.T) *fakeStore {
	t.Helper()
	st := newFakeStore()
	storedRecord(t, st, "Ceramic tiles", "690100", "JAPAN", map[string]float64{
		"2019": 8.0,
		"2020": 9.0,
		"2021": 10.0,
		"2022": 11.0,
		"2023": 12.0,
		"2024": 13.0,
	}, []float64{1, 0})
	storedRecord(t, st, "Steel pipes", "730410", "INDIA", map[string]float64{
		"2023": 800,
	}, []float64{0, 1})
	return st
}

func newTestAnalyzer(st *fakeStore, gen *fakeGenerator) *Analyzer {
	em := &fakeEmbedder{vectors: map[string][]float64{"tiles": {1, 0}}, fallback: []float64{1, 0}}
	retriever := NewRetriever(st, em, 0, 0, nil, nil)
	if gen == nil {
		return NewAnalyzer(retriever, nil, 0, 0, nil, nil)
	}
	return NewAnalyzer(retriever, gen, 0, 0, nil, nil)
}

func TestAnalyzer_Analyze_UsesTopMatch(t *testing.T) {
	gen := &fakeGenerator{response: "Prices are rising. Estimated price: $14.00. High confidence."}
	svc := newTestAnalyzer(analysisFixture(t), gen)

	report, err := svc.Analyze(context.Background(), "tiles")
	require.NoError(t, err)

	assert.Equal(t, "Ceramic tiles", report.Match().Record().Name(), "should analyze the closest record")
	assert.Equal(t, gen.response, report.Analysis())
	assert.Equal(t, ConfidenceHigh, report.Confidence())
	assert.False(t, report.Fallback(), "model path should not be marked as fallback")
}

func TestAnalyzer_Analyze_HistoryIsFiveMostRecentYears(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	svc := newTestAnalyzer(analysisFixture(t), gen)

	report, err := svc.Analyze(context.Background(), "tiles")
	require.NoError(t, err)

	history := report.History()
	require.Len(t, history, 5)
	assert.Equal(t, "2024", history[0].Year, "most recent year first")
	assert.Equal(t, "2020", history[4].Year, "2019 should be dropped")
}

func TestAnalyzer_Analyze_PromptAndTemperature(t *testing.T) {
	gen := &fakeGenerator{response: "ok"}
	svc := newTestAnalyzer(analysisFixture(t), gen)

	_, err := svc.Analyze(context.Background(), "tiles")
	require.NoError(t, err)

	assert.InDelta(t, 0.3, gen.lastReq.Temperature(), 0.0001, "default temperature")

	messages := gen.lastReq.Messages()
	require.Len(t, messages, 1)
	prompt := messages[0].Content()
	for _, fragment := range []string{"Ceramic tiles", "690100", "JAPAN", "2024: USD13.00"} {
		assert.Contains(t, prompt, fragment)
	}
	assert.NotContains(t, prompt, "2019", "prompt should only carry the five most recent years")
}

func TestAnalyzer_Analyze_NoMatch(t *testing.T) {
	svc := newTestAnalyzer(newFakeStore(), &fakeGenerator{response: "ok"})

	_, err := svc.Analyze(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestAnalyzer_Analyze_GeneratorFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model down")}
	svc := newTestAnalyzer(analysisFixture(t), gen)

	report, err := svc.Analyze(context.Background(), "tiles")
	require.NoError(t, err, "fallback path must not error")
	assert.True(t, report.Fallback())
	assert.Contains(t, report.Analysis(), "increasing")
	assert.Equal(t, ConfidenceMedium, report.Confidence(), "5 years of data gives medium confidence")
}

func TestAnalyzer_Analyze_NilGeneratorUsesFallback(t *testing.T) {
	svc := newTestAnalyzer(analysisFixture(t), nil)

	report, err := svc.Analyze(context.Background(), "tiles")
	require.NoError(t, err)
	assert.True(t, report.Fallback(), "no generator means fallback report")
	assert.Contains(t, report.Analysis(), "Ceramic tiles")
}

func TestAnalyzer_Analyze_SingleYearLowConfidenceFallback(t *testing.T) {
	st := newFakeStore()
	storedRecord(t, st, "Steel pipes", "730410", "INDIA", map[string]float64{"2023": 800}, []float64{1, 0})
	svc := newTestAnalyzer(st, nil)

	report, err := svc.Analyze(context.Background(), "pipes")
	require.NoError(t, err)
	assert.Equal(t, ConfidenceLow, report.Confidence(), "1 year of data gives low confidence")
	assert.Contains(t, report.Analysis(), "stable", "a single year reads as a stable trend")
}
