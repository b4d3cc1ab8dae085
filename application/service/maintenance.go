package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/domain/store"
)

// Maintenance performs housekeeping on the product index.
type Maintenance struct {
	store  product.Store
	closed *atomic.Bool
	logger *slog.Logger
}

// NewMaintenance creates a new Maintenance service.
func NewMaintenance(productStore product.Store, closed *atomic.Bool, logger *slog.Logger) *Maintenance {
	if logger == nil {
		logger = slog.Default()
	}
	return &Maintenance{
		store:  productStore,
		closed: closed,
		logger: logger,
	}
}

// PurgeUnpriced deletes every record whose price history is null or empty
// and returns how many rows were removed. Records without prices should never
// be stored in the first place; this cleans up rows left behind by older
// ingestion paths.
func (s *Maintenance) PurgeUnpriced(ctx context.Context) (int64, error) {
	if s.closed != nil && s.closed.Load() {
		return 0, ErrClientClosed
	}

	removed, err := s.store.Delete(ctx, product.WithUnpriced())
	if err != nil {
		return 0, fmt.Errorf("%w: purge unpriced: %w", ErrStore, err)
	}

	s.logger.Info("purged unpriced records", slog.Int64("removed", removed))
	return removed, nil
}

// ListPriced returns up to limit priced records starting at offset, newest
// first. Empty hsn or country means no filter on that field.
func (s *Maintenance) ListPriced(ctx context.Context, hsn, country string, limit, offset int) ([]product.Record, error) {
	if s.closed != nil && s.closed.Load() {
		return nil, ErrClientClosed
	}

	options := append(pricedFilter(hsn, country), store.WithOrderDesc("updated_at"))
	if limit > 0 {
		options = append(options, store.WithLimit(limit))
	}
	if offset > 0 {
		options = append(options, store.WithOffset(offset))
	}

	records, err := s.store.Find(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: list priced: %w", ErrStore, err)
	}
	return records, nil
}

// CountPriced returns the number of priced records matching the filters.
func (s *Maintenance) CountPriced(ctx context.Context, hsn, country string) (int64, error) {
	if s.closed != nil && s.closed.Load() {
		return 0, ErrClientClosed
	}

	count, err := s.store.Count(ctx, pricedFilter(hsn, country)...)
	if err != nil {
		return 0, fmt.Errorf("%w: count priced: %w", ErrStore, err)
	}
	return count, nil
}

func pricedFilter(hsn, country string) []store.Option {
	options := []store.Option{
		product.WithPricedOnly(),
		product.WithRecordType(product.DefaultRecordType),
	}
	if hsn != "" {
		options = append(options, product.WithHSNCode(hsn))
	}
	if country != "" {
		options = append(options, product.WithCountry(country))
	}
	return options
}

// Ping issues a minimal read against the backing store.
func (s *Maintenance) Ping(ctx context.Context) error {
	if s.closed != nil && s.closed.Load() {
		return ErrClientClosed
	}
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: ping: %w", ErrStore, err)
	}
	return nil
}
