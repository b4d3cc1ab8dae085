package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/infrastructure/provider"
	"github.com/pricedex/pricedex/internal/database"
)

// Indexer stores product records with their embeddings, deduplicating on the
// (hsn_code, country) natural key. Concurrent upserts for the same key are
// serialized so that two writers cannot both observe the record as missing
// and insert duplicates.
type Indexer struct {
	store    product.Store
	embedder provider.Embedder
	closed   *atomic.Bool
	logger   *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewIndexer creates a new Indexer service.
func NewIndexer(
	store product.Store,
	embedder provider.Embedder,
	closed *atomic.Bool,
	logger *slog.Logger,
) *Indexer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		store:    store,
		embedder: embedder,
		closed:   closed,
		logger:   logger,
		locks:    map[string]*sync.Mutex{},
	}
}

// Upsert inserts or updates the record identified by the candidate's natural
// key. Candidates without price data are skipped, never stored. A candidate
// whose canonical text is unchanged keeps the stored embedding; only textual
// changes trigger re-embedding.
func (s *Indexer) Upsert(ctx context.Context, candidate product.Candidate) (product.UpsertResult, error) {
	if s.closed != nil && s.closed.Load() {
		return product.UpsertResult{}, ErrClientClosed
	}

	candidate = candidate.Normalize()
	if candidate.HasPrices() {
		if err := candidate.Validate(); err != nil {
			return product.UpsertResult{}, err
		}
	}

	hsn, country := candidate.NaturalKey()
	lock := s.lockFor(hsn + "\x00" + country)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.store.FindOne(ctx,
		product.WithHSNCode(hsn),
		product.WithCountry(country),
	)
	notFound := errors.Is(err, database.ErrNotFound)
	if err != nil && !notFound {
		return product.UpsertResult{}, fmt.Errorf("%w: lookup %s/%s: %w", ErrStore, hsn, country, err)
	}

	// Candidates without prices are never stored, but a skip against an
	// already-stored record reports that record's id.
	if !candidate.HasPrices() {
		var id int64
		if !notFound {
			id = existing.ID()
		}
		s.logger.Debug("skipping candidate without price data",
			slog.String("hsn_code", candidate.HSNCode),
			slog.String("country", candidate.Country),
			slog.Int64("existing_id", id),
		)
		return product.NewUpsertResult(product.ActionSkipped, "no price data", id), nil
	}

	if notFound {
		return s.insert(ctx, candidate)
	}
	return s.update(ctx, existing, candidate)
}

// UpsertBatch upserts candidates one at a time, collecting per-candidate
// results. The first error aborts the batch and returns the results so far.
func (s *Indexer) UpsertBatch(ctx context.Context, candidates []product.Candidate) ([]product.UpsertResult, error) {
	results := make([]product.UpsertResult, 0, len(candidates))
	for _, candidate := range candidates {
		result, err := s.Upsert(ctx, candidate)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Indexer) insert(ctx context.Context, candidate product.Candidate) (product.UpsertResult, error) {
	embedding, err := s.embedText(ctx, candidate.CanonicalText())
	if err != nil {
		return product.UpsertResult{}, err
	}

	now := time.Now().UTC()
	record := product.NewRecord(0, candidate, embedding, now, now)
	id, err := s.store.Insert(ctx, record)
	if err != nil {
		return product.UpsertResult{}, fmt.Errorf("%w: insert: %w", ErrStore, err)
	}

	s.logger.Info("product inserted",
		slog.Int64("id", id),
		slog.String("hsn_code", candidate.HSNCode),
		slog.String("country", candidate.Country),
	)
	return product.NewUpsertResult(product.ActionInserted, "", id), nil
}

func (s *Indexer) update(ctx context.Context, existing product.Record, candidate product.Candidate) (product.UpsertResult, error) {
	embedding := existing.Embedding()
	storedText := product.CanonicalText(
		existing.Name(), existing.HSNCode(), existing.Country(), existing.Description(),
	)
	if storedText != candidate.CanonicalText() {
		fresh, err := s.embedText(ctx, candidate.CanonicalText())
		if err != nil {
			return product.UpsertResult{}, err
		}
		embedding = fresh
	}

	record := product.NewRecord(existing.ID(), candidate, embedding, existing.CreatedAt(), time.Now().UTC())
	if err := s.store.Update(ctx, existing.ID(), record); err != nil {
		return product.UpsertResult{}, fmt.Errorf("%w: update id=%d: %w", ErrStore, existing.ID(), err)
	}

	s.logger.Info("product updated",
		slog.Int64("id", existing.ID()),
		slog.String("hsn_code", candidate.HSNCode),
		slog.String("country", candidate.Country),
		slog.Bool("re_embedded", storedText != candidate.CanonicalText()),
	)
	return product.NewUpsertResult(product.ActionUpdated, "", existing.ID()), nil
}

func (s *Indexer) embedText(ctx context.Context, text string) ([]float64, error) {
	resp, err := s.embedder.Embed(ctx, provider.NewEmbeddingRequest([]string{text}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedder, wrapTransient(err))
	}
	embeddings := resp.Embeddings()
	if len(embeddings) != 1 {
		return nil, fmt.Errorf("%w: expected 1 embedding, got %d", ErrEmbedder, len(embeddings))
	}
	return embeddings[0], nil
}

func (s *Indexer) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
