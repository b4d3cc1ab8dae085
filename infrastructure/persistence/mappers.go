package persistence

import (
	"github.com/pricedex/pricedex/domain/product"
)

// ProductMapper maps between domain product.Record and ProductModel.
type ProductMapper struct{}

// ToDomain converts a ProductModel to a domain Record.
func (m ProductMapper) ToDomain(e ProductModel) product.Record {
	candidate := product.Candidate{
		Name:        e.Name,
		HSNCode:     e.HSNCode,
		Country:     e.Country,
		Description: e.Description,
		RecordType:  e.RecordType,
		Prices:      map[string]float64(e.PriceHistory),
		Currencies:  map[string]string(e.Currencies),
	}
	return product.NewRecord(e.ID, candidate, []float64(e.Embedding), e.CreatedAt, e.UpdatedAt)
}

// ToModel converts a domain Record to a ProductModel.
func (m ProductMapper) ToModel(r product.Record) ProductModel {
	return ProductModel{
		ID:           r.ID(),
		Name:         r.Name(),
		HSNCode:      r.HSNCode(),
		Country:      r.Country(),
		Description:  r.Description(),
		RecordType:   r.RecordType(),
		PriceHistory: PriceMap(r.Prices()),
		Currencies:   CurrencyMap(r.Currencies()),
		Embedding:    Vector(r.Embedding()),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
}
