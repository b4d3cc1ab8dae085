package product

import (
	"context"
	"strings"

	"github.com/pricedex/pricedex/domain/store"
)

// Store is the persistence port for product records. Implementations live
// in infrastructure/persistence.
type Store interface {
	// Find retrieves records matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Record, error)

	// FindOne retrieves a single record, or database.ErrNotFound.
	FindOne(ctx context.Context, options ...store.Option) (Record, error)

	// Insert stores a new record and returns its assigned ID.
	Insert(ctx context.Context, record Record) (int64, error)

	// Update overwrites the record stored under id.
	Update(ctx context.Context, id int64, record Record) error

	// Delete removes records matching the options and returns the count.
	Delete(ctx context.Context, options ...store.Option) (int64, error)

	// Count returns the number of records matching the options.
	Count(ctx context.Context, options ...store.Option) (int64, error)

	// Ping issues a minimal read against the backing store.
	Ping(ctx context.Context) error
}

// WithHSNCode filters by the "hsn_code" column.
func WithHSNCode(hsn string) store.Option {
	return store.WithCondition("hsn_code", hsn)
}

// WithCountry filters by the "country" column, uppercasing the value to
// match the storage normalization.
func WithCountry(country string) store.Option {
	return store.WithCondition("country", strings.ToUpper(country))
}

// WithRecordType filters by the "record_type" column.
func WithRecordType(recordType string) store.Option {
	return store.WithCondition("record_type", recordType)
}

// WithPricedOnly keeps records whose price history is present and non-empty.
func WithPricedOnly() store.Option {
	return store.WithWhere("price_history IS NOT NULL AND price_history != '{}' AND price_history != 'null'")
}

// WithUnpriced keeps records whose price history is null or empty, the
// target set of the maintenance purge.
func WithUnpriced() store.Option {
	return store.WithWhere("(price_history IS NULL OR price_history = '{}' OR price_history = 'null')")
}
