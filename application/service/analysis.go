package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/internal/config"
)

// Confidence grades how much weight a price estimate carries.
type Confidence string

// Confidence values.
const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Report is the outcome of a price analysis: the best-matching record, its
// recent price history and a model-written estimate of the current price.
type Report struct {
	match      product.Match
	history    []product.YearPrice
	analysis   string
	confidence Confidence
	fallback   bool
}

// Match returns the record the analysis is based on.
func (r Report) Match() product.Match { return r.match }

// History returns the priced years fed into the analysis, most recent first.
func (r Report) History() []product.YearPrice {
	result := make([]product.YearPrice, len(r.history))
	copy(result, r.history)
	return result
}

// Analysis returns the analysis text.
func (r Report) Analysis() string { return r.analysis }

// Confidence returns the confidence grade.
func (r Report) Confidence() Confidence { return r.confidence }

// Fallback reports whether the analysis came from the local trend fallback
// instead of the model.
func (r Report) Fallback() bool { return r.fallback }

// historyYears is how many priced years an analysis considers.
const historyYears = 5

// Analyzer produces current-price estimates for a product query. It finds
// the closest stored record, extracts its recent price history and asks a
// text model for an estimate. When the model is unavailable the analyzer
// falls back to a local trend summary.
type Analyzer struct {
	retriever   *Retriever
	generator   provider.TextGenerator
	temperature float64
	maxTokens   int
	closed      *atomic.Bool
	logger      *slog.Logger
}

// NewAnalyzer creates a new Analyzer service. A nil generator disables the
// model path; every analysis then uses the local trend fallback.
func NewAnalyzer(
	retriever *Retriever,
	generator provider.TextGenerator,
	temperature float64,
	maxTokens int,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	if temperature <= 0 {
		temperature = config.DefaultAnalysisTemperature
	}
	if maxTokens <= 0 {
		maxTokens = config.DefaultEndpointMaxTokens
	}
	return &Analyzer{
		retriever:   retriever,
		generator:   generator,
		temperature: temperature,
		maxTokens:   maxTokens,
		closed:      closed,
		logger:      logger,
	}
}

// Analyze finds the record closest to the query and estimates its current
// price from the most recent priced years. Returns ErrNoMatch when no priced
// record resembles the query.
func (s *Analyzer) Analyze(ctx context.Context, query string, opts ...SearchOption) (Report, error) {
	if s.closed != nil && s.closed.Load() {
		return Report{}, ErrClientClosed
	}

	searchOpts := append([]SearchOption{WithTopK(1)}, opts...)
	matches, err := s.retriever.Query(ctx, query, searchOpts...)
	if err != nil {
		return Report{}, err
	}
	if len(matches) == 0 {
		return Report{}, fmt.Errorf("%w: %q", ErrNoMatch, query)
	}

	match := matches[0]
	history := match.Record().RecentPrices(historyYears)

	if s.generator == nil {
		return localTrendReport(match, history), nil
	}

	request := provider.NewChatCompletionRequest([]provider.Message{
		provider.UserMessage(analysisPrompt(match.Record(), history)),
	}).WithTemperature(s.temperature).WithMaxTokens(s.maxTokens)

	response, err := s.generator.ChatCompletion(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return Report{}, ctx.Err()
		}
		s.logger.Warn("analysis model failed, using local trend fallback",
			slog.String("error", err.Error()),
		)
		return localTrendReport(match, history), nil
	}

	analysis := response.Content()
	return Report{
		match:      match,
		history:    history,
		analysis:   analysis,
		confidence: confidenceFrom(analysis),
	}, nil
}

// analysisPrompt renders the instruction given to the text model.
func analysisPrompt(record product.Record, history []product.YearPrice) string {
	var lines []string
	for _, yp := range history {
		lines = append(lines, fmt.Sprintf("%s: %s%.2f", yp.Year, yp.Currency, yp.Price))
	}

	return fmt.Sprintf(`You are an expert market analyst specializing in international trade pricing.
Analyze the historical price data below and estimate the current average selling price
for %s (HSN: %s) in %s.

Historical Price Data:
%s

Consider price trends over time, seasonal variations if applicable, market
conditions in %s and any economic indicators that might affect pricing.

Provide:
1. A concise analysis of the price trends
2. Your estimated current price with reasoning
3. Confidence level in your estimate (low/medium/high)
4. Any relevant market insights

Keep the response short. Format it with clear sections.`,
		record.Name(), record.HSNCode(), record.Country(),
		strings.Join(lines, "\n"),
		record.Country(),
	)
}

// localTrendReport summarizes the price trend without a model: direction and
// percentage change between the oldest and newest priced year.
func localTrendReport(match product.Match, history []product.YearPrice) Report {
	record := match.Record()

	var summary []string
	for _, yp := range history {
		summary = append(summary, fmt.Sprintf("%s: %s%.2f", yp.Year, yp.Currency, yp.Price))
	}

	trend := "stable"
	changePercent := 0.0
	if len(history) > 1 {
		latest := history[0].Price
		oldest := history[len(history)-1].Price
		if latest > oldest {
			trend = "increasing"
		} else if latest < oldest {
			trend = "decreasing"
		}
		if oldest != 0 {
			changePercent = math.Abs((latest - oldest) / oldest * 100)
		}
	}

	confidence := ConfidenceLow
	if len(history) >= 3 {
		confidence = ConfidenceMedium
	}

	analysis := fmt.Sprintf(
		"Based on historical data for %s (HSN: %s) in %s:\n\n"+
			"Historical Prices:\n%s\n\n"+
			"Trend Analysis: Prices have been %s by approximately %.1f%% over the last %d years.",
		record.Name(), record.HSNCode(), record.Country(),
		strings.Join(summary, "\n"),
		trend, changePercent, len(history),
	)

	return Report{
		match:      match,
		history:    history,
		analysis:   analysis,
		confidence: confidence,
		fallback:   true,
	}
}

// confidenceFrom extracts the self-reported confidence grade from model output.
func confidenceFrom(analysis string) Confidence {
	lower := strings.ToLower(analysis)
	switch {
	case strings.Contains(lower, "high confidence") || strings.Contains(lower, "confidence: high"):
		return ConfidenceHigh
	case strings.Contains(lower, "medium confidence") || strings.Contains(lower, "confidence: medium"):
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
