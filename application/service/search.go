// Package service provides application layer services that orchestrate domain operations.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/domain/store"
	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/infrastructure/search"
	"github.com/pricedex/pricedex/internal/config"
)

// SearchOption configures a search request.
type SearchOption func(*searchConfig)

// searchConfig holds search parameters.
type searchConfig struct {
	limit          int
	candidateLimit int
	hsnCode        string
	country        string
}

func newSearchConfig(limit, candidateLimit int) *searchConfig {
	if limit <= 0 {
		limit = config.DefaultSearchLimit
	}
	if candidateLimit <= 0 {
		candidateLimit = config.DefaultCandidateLimit
	}
	return &searchConfig{
		limit:          limit,
		candidateLimit: candidateLimit,
	}
}

// WithTopK sets the maximum number of results.
func WithTopK(n int) SearchOption {
	return func(c *searchConfig) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithHSNFilter restricts candidates to a single HSN code.
func WithHSNFilter(hsn string) SearchOption {
	return func(c *searchConfig) {
		c.hsnCode = hsn
	}
}

// WithCountryFilter restricts candidates to a single country.
func WithCountryFilter(country string) SearchOption {
	return func(c *searchConfig) {
		c.country = country
	}
}

// WithCandidateLimit caps how many priced records are loaded for ranking.
func WithCandidateLimit(n int) SearchOption {
	return func(c *searchConfig) {
		if n > 0 {
			c.candidateLimit = n
		}
	}
}

// Retriever ranks priced product records against a free-text query by cosine
// similarity of their embeddings.
type Retriever struct {
	store          product.Store
	embedder       provider.Embedder
	searchLimit    int
	candidateLimit int
	closed         *atomic.Bool
	logger         *slog.Logger
}

// NewRetriever creates a new Retriever service.
func NewRetriever(
	productStore product.Store,
	embedder provider.Embedder,
	searchLimit int,
	candidateLimit int,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	if searchLimit <= 0 {
		searchLimit = config.DefaultSearchLimit
	}
	if candidateLimit <= 0 {
		candidateLimit = config.DefaultCandidateLimit
	}
	return &Retriever{
		store:          productStore,
		embedder:       embedder,
		searchLimit:    searchLimit,
		candidateLimit: candidateLimit,
		closed:         closed,
		logger:         logger,
	}
}

// Query embeds the query text once and returns the top-k priced records
// ranked by cosine similarity, expressed as a percentage. An empty candidate
// set yields an empty result, not an error. A stored record with a malformed
// embedding aborts the whole search with product.ErrEmbeddingParse.
func (s *Retriever) Query(ctx context.Context, query string, opts ...SearchOption) ([]product.Match, error) {
	if s.closed != nil && s.closed.Load() {
		return nil, ErrClientClosed
	}

	searchCfg := newSearchConfig(s.searchLimit, s.candidateLimit)
	for _, opt := range opts {
		opt(searchCfg)
	}

	candidates, err := s.loadCandidates(ctx, searchCfg)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []product.Match{}, nil
	}

	queryEmbedding, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	vectors := make([]search.StoredVector, len(candidates))
	byID := make(map[int64]product.Record, len(candidates))
	for i, record := range candidates {
		vectors[i] = search.NewStoredVector(record.ID(), record.Embedding())
		byID[record.ID()] = record
	}

	topK := search.TopKSimilar(queryEmbedding, vectors, searchCfg.limit)

	matches := make([]product.Match, len(topK))
	for i, m := range topK {
		matches[i] = product.NewMatch(byID[m.RecordID()], m.Similarity()*100)
	}

	s.logger.Debug("search completed",
		slog.Int("candidates", len(candidates)),
		slog.Int("results", len(matches)),
	)
	return matches, nil
}

// loadCandidates fetches priced records, re-checking price presence on the
// loaded rows so that stale or oddly-encoded price history never ranks.
func (s *Retriever) loadCandidates(ctx context.Context, cfg *searchConfig) ([]product.Record, error) {
	options := []store.Option{
		product.WithPricedOnly(),
		store.WithLimit(cfg.candidateLimit),
	}
	if cfg.hsnCode != "" {
		options = append(options, product.WithHSNCode(cfg.hsnCode))
	}
	if cfg.country != "" {
		options = append(options, product.WithCountry(cfg.country))
	}

	records, err := s.store.Find(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: load candidates: %w", ErrStore, err)
	}

	priced := records[:0]
	for _, record := range records {
		if record.HasPrices() {
			priced = append(priced, record)
		}
	}
	return priced, nil
}

func (s *Retriever) embedQuery(ctx context.Context, query string) ([]float64, error) {
	resp, err := s.embedder.Embed(ctx, provider.NewEmbeddingRequest([]string{query}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedder, wrapTransient(err))
	}
	embeddings := resp.Embeddings()
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrEmbedder, len(embeddings))
	}
	return embeddings[0], nil
}
