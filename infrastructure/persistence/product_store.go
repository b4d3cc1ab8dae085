package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pricedex/pricedex/domain/product"
	"github.com/pricedex/pricedex/domain/store"
	"github.com/pricedex/pricedex/internal/database"
)

// ProductStore implements product.Store on GORM.
type ProductStore struct {
	database.Repository[product.Record, ProductModel]
	logger *slog.Logger
}

// NewProductStore creates a new ProductStore.
func NewProductStore(db database.Database, logger *slog.Logger) *ProductStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductStore{
		Repository: database.NewRepository[product.Record, ProductModel](
			db, ProductMapper{}, "product",
		),
		logger: logger,
	}
}

// Insert stores a new record and returns its assigned ID.
func (s *ProductStore) Insert(ctx context.Context, record product.Record) (int64, error) {
	model := ProductMapper{}.ToModel(record)
	model.ID = 0
	if err := s.DB(ctx).Create(&model).Error; err != nil {
		return 0, fmt.Errorf("insert product: %w", err)
	}
	return model.ID, nil
}

// Update overwrites the record stored under id. The full row is replaced,
// so cleared fields do not linger from the previous version.
func (s *ProductStore) Update(ctx context.Context, id int64, record product.Record) error {
	model := ProductMapper{}.ToModel(record)
	model.ID = id
	result := s.DB(ctx).Save(&model)
	if result.Error != nil {
		return fmt.Errorf("update product %d: %w", id, result.Error)
	}
	return nil
}

// Delete removes records matching the options and returns the count.
func (s *ProductStore) Delete(ctx context.Context, options ...store.Option) (int64, error) {
	return s.DeleteBy(ctx, options...)
}

// Ping issues a minimal read against the backing store. Serverless Postgres
// providers pause idle databases; a periodic single-row select keeps the
// connection warm without touching data.
func (s *ProductStore) Ping(ctx context.Context) error {
	var ids []int64
	err := s.DB(ctx).Model(&ProductModel{}).Limit(1).Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("ping product store: %w", err)
	}
	return nil
}
